// Package store persists normalized GTFS-RT observations in SQLite.
//
// The schema mirrors the partitioning of the raw archive: every row is keyed
// by (agency, service_date) so a pipeline run reads exactly one day of one
// agency. Writes are serialized; SQLite allows a single writer at a time.
package store

import (
	"database/sql"
	_ "embed"
	"sync"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps a SQLite database holding normalized observations.
type Store struct {
	conn    *sql.DB
	writeMu sync.Mutex
}

// Open opens (creating if needed) the observation database at path with WAL
// mode enabled and ensures the schema exists.
func Open(path string) (*Store, error) {
	dsn := path + "?_journal=WAL&_busy_timeout=5000"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	for _, pragma := range []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "set %s", pragma)
		}
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	return &Store{conn: conn}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// ServiceDate formats a snapshot timestamp as the YYYYMMDD partition key.
// Dates are taken in UTC, matching how the raw dumps were partitioned.
func ServiceDate(snapshotTS int64) string {
	return time.Unix(snapshotTS, 0).UTC().Format("20060102")
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v, sentinel int) any {
	if v == sentinel {
		return nil
	}
	return v
}

func strOrEmpty(v sql.NullString) string {
	if v.Valid {
		return v.String
	}
	return ""
}

func intOrSentinel(v sql.NullInt64, sentinel int) int {
	if v.Valid {
		return int(v.Int64)
	}
	return sentinel
}
