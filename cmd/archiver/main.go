package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"web-archiver/internal/archiver"
	"web-archiver/internal/config"
	"web-archiver/pkg/archive"
)

func main() {
	oneShot := flag.String("url", "", "archive a single URL and print the embedded document instead of running the service")
	output := flag.String("o", "", "output file for -url mode (default stdout)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *oneShot != "" {
		if err := archiveOnce(cfg, *oneShot, *output, log); err != nil {
			log.Fatalf("Failed to archive %s: %v", *oneShot, err)
		}
		return
	}

	coordinator, err := archiver.NewCoordinator(cfg, log)
	if err != nil {
		log.Fatalf("Failed to create coordinator: %v", err)
	}
	defer coordinator.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go coordinator.Run(ctx)

	for _, url := range cfg.SeedURLs {
		if err := coordinator.AddURL(ctx, url); err != nil {
			log.Errorf("Failed to add seed URL %s: %v", url, err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down...")
}

// archiveOnce runs the pipeline for a single page without touching
// kafka, redis, or cassandra.
func archiveOnce(cfg *config.Config, url, output string, log *zap.SugaredLogger) error {
	result, err := archive.Archive(url, cfg.ArchiveOptions())
	if err != nil {
		return err
	}

	for _, f := range result.Failures() {
		log.Warnf("Could not embed %s: %s", f.URL, f.Reason)
	}

	doc := result.EmbedResources()
	if output == "" {
		fmt.Println(doc)
		return nil
	}
	return os.WriteFile(output, []byte(doc), 0o644)
}
