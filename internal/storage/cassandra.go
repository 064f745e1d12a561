package storage

import (
	"context"
	"encoding/json"

	"github.com/gocql/gocql"

	"web-archiver/pkg/models"
)

// CassandraStorage persists embedded documents.
//
// Expected schema:
//
//	CREATE TABLE archives (
//	    url text PRIMARY KEY,
//	    archived_at timestamp,
//	    html text,
//	    failures text
//	);
type CassandraStorage struct {
	session *gocql.Session
}

func NewCassandraStorage(hosts []string, keyspace string) (*CassandraStorage, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = keyspace
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, err
	}
	return &CassandraStorage{session: session}, nil
}

func (cs *CassandraStorage) StoreArchivedPage(ctx context.Context, page *models.ArchivedPage) error {
	// failures are kept as a json string column
	failures, err := json.Marshal(page.Failures)
	if err != nil {
		return err
	}

	query := "INSERT INTO archives (url, archived_at, html, failures) VALUES (?, ?, ?, ?)"

	return cs.session.Query(query,
		page.URL,
		page.Timestamp,
		page.HTML,
		string(failures),
	).WithContext(ctx).Exec()
}

func (cs *CassandraStorage) GetArchivedPage(ctx context.Context, url string) (*models.ArchivedPage, error) {
	page := &models.ArchivedPage{URL: url}
	var failures string

	query := "SELECT archived_at, html, failures FROM archives WHERE url = ?"
	if err := cs.session.Query(query, url).WithContext(ctx).Scan(&page.Timestamp, &page.HTML, &failures); err != nil {
		return nil, err
	}
	if failures != "" {
		if err := json.Unmarshal([]byte(failures), &page.Failures); err != nil {
			return nil, err
		}
	}
	return page, nil
}

func (cs *CassandraStorage) Close() {
	cs.session.Close()
}
