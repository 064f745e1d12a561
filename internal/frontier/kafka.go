package frontier

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"web-archiver/pkg/models"
)

// URLFrontier is the kafka-backed queue of pages waiting to be archived.
type URLFrontier struct {
	reader *kafka.Reader
	writer *kafka.Writer
}

func NewURLFrontier(brokers []string, topic string) *URLFrontier {
	return &URLFrontier{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			GroupID:  "web-archiver",
			Topic:    topic,
			MinBytes: 10e3, // 10KB
			MaxBytes: 10e6, // 10MB
		}),
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (uf *URLFrontier) AddURL(ctx context.Context, url string) error {
	return uf.writer.WriteMessages(ctx, kafka.Message{
		Value: []byte(url),
	})
}

func (uf *URLFrontier) GetURL(ctx context.Context) (string, error) {
	m, err := uf.reader.ReadMessage(ctx)
	if err != nil {
		return "", err
	}
	return string(m.Value), nil
}

func (uf *URLFrontier) Close() error {
	if err := uf.reader.Close(); err != nil {
		return err
	}
	return uf.writer.Close()
}

// EventWriter publishes archive completion events for downstream
// consumers (indexers, notifiers).
type EventWriter struct {
	writer *kafka.Writer
}

func NewEventWriter(brokers []string, topic string) *EventWriter {
	return &EventWriter{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (ew *EventWriter) WriteEvent(ctx context.Context, event models.ArchiveEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return ew.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.URL),
		Value: value,
	})
}

func (ew *EventWriter) Close() error {
	return ew.writer.Close()
}
