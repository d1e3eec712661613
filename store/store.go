package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gofrs/flock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

var (
	ErrLocked   = errors.New("database is in use by another process")
	ErrNotFound = errors.New("record not found")
)

const (
	DefaultPath        = "bt.db"
	DefaultTable       = "bt"
	DefaultBusyTimeout = 5 * time.Second

	// same layout as sqlite's current_timestamp.
	timeFormat = "2006-01-02 15:04:05"

	connectionTimeout = 5 * time.Second
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Config struct {
	Path        string
	Table       string
	BusyTimeout time.Duration
}

// Store persists device records in a single SQLite table keyed by address.
// Only one process may hold a Store on a given database at a time.
type Store struct {
	db    *sql.DB
	lock  *flock.Flock
	table string
	path  string

	now func() time.Time
}

func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}

	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}

	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = DefaultBusyTimeout
	}

	if !tableName.MatchString(cfg.Table) {
		return nil, fmt.Errorf("invalid table name %q", cfg.Table)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	lock := flock.New(cfg.Path + ".lock")

	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking database: %w", err)
	}

	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, cfg.Path)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=%d", cfg.Path, cfg.BusyTimeout.Milliseconds()))
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		lock.Unlock()
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	log.Debug().
		Str("Path", cfg.Path).
		Str("Table", cfg.Table).
		Msg("store: database opened")

	return &Store{
		db:    db,
		lock:  lock,
		table: cfg.Table,
		path:  cfg.Path,
		now:   time.Now,
	}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	err := s.db.Close()

	if uerr := s.lock.Unlock(); uerr != nil && err == nil {
		err = uerr
	}

	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}

	return nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeFormat)
}

func parseTimestamp(v string) time.Time {
	t, err := time.ParseInLocation(timeFormat, v, time.UTC)
	if err != nil {
		return time.Time{}
	}

	return t
}
