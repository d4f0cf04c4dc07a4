// Package storage provides the Badger-backed connection.
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v3"
)

// Connection is an open database home directory.
type Connection struct {
	db       *badger.DB
	home     string
	readOnly bool
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[*Session]struct{}
	closed   bool
}

// Open opens the database home directory at home.
//
// A read-write open creates the directory and bootstraps the catalog when
// needed. A read-only open fails with ErrHomeNotFound or ErrNoCatalog when
// the directory does not hold a database.
func Open(home string, opts Options) (*Connection, error) {
	if home == "" {
		return nil, fmt.Errorf("storage: home is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.ReadOnly {
		info, err := os.Stat(home)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrHomeNotFound, home)
			}
			return nil, fmt.Errorf("storage: stat home: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrHomeNotFound, home)
		}
	}

	bopts := badger.DefaultOptions(home)
	bopts.Logger = &badgerLogger{logger: logger}
	bopts.ReadOnly = opts.ReadOnly
	if opts.BlockCacheSize > 0 {
		bopts.BlockCacheSize = opts.BlockCacheSize
	}
	if opts.IndexCacheSize > 0 {
		bopts.IndexCacheSize = opts.IndexCacheSize
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", home, err)
	}

	conn := &Connection{
		db:       db,
		home:     home,
		readOnly: opts.ReadOnly,
		logger:   logger,
		sessions: make(map[*Session]struct{}),
	}

	if !opts.ReadOnly {
		if err := conn.bootstrap(); err != nil {
			db.Close()
			return nil, err
		}
	}
	if err := conn.checkCatalog(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("storage connection opened",
		"home", home,
		"read_only", opts.ReadOnly)

	return conn, nil
}

// Home returns the database home directory.
func (c *Connection) Home() string {
	return c.home
}

// OpenSession opens a read session over a consistent snapshot.
func (c *Connection) OpenSession() (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	s := &Session{
		conn:    c,
		txn:     c.db.NewTransaction(false),
		cursors: make(map[*Cursor]struct{}),
	}
	c.sessions[s] = struct{}{}
	return s, nil
}

// CreateTable registers a table in the catalog. config is stored verbatim as
// the table's configuration string.
func (c *Connection) CreateTable(name, config string) error {
	if err := validateName(name); err != nil {
		return fmt.Errorf("%w: %q", err, name)
	}
	return c.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(metaKey(TableURI(name))); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, TableURI(name))
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(metaKey(TableURI(name)), []byte(config)); err != nil {
			return err
		}
		return txn.Set(metaKey(FileKey(name)), []byte(config))
	})
}

// DropTable removes a table's catalog entries and records.
func (c *Connection) DropTable(name string) error {
	if err := c.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(metaKey(TableURI(name))); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, TableURI(name))
			}
			return err
		}
		if err := txn.Delete(metaKey(TableURI(name))); err != nil {
			return err
		}
		return txn.Delete(metaKey(FileKey(name)))
	}); err != nil {
		return err
	}
	if err := c.db.DropPrefix(rowPrefix(name)); err != nil {
		return fmt.Errorf("storage: drop records of %s: %w", name, err)
	}
	return nil
}

// Insert writes a record into table, replacing any existing value.
func (c *Connection) Insert(table, key, value string) error {
	return c.update(func(txn *badger.Txn) error {
		if err := requireTable(txn, table); err != nil {
			return err
		}
		return txn.Set(rowKey(table, key), []byte(value))
	})
}

// Remove deletes a record from table.
func (c *Connection) Remove(table, key string) error {
	return c.update(func(txn *badger.Txn) error {
		if err := requireTable(txn, table); err != nil {
			return err
		}
		if _, err := txn.Get(rowKey(table, key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s key %q", ErrNotFound, TableURI(table), key)
			}
			return err
		}
		return txn.Delete(rowKey(table, key))
	})
}

// Close closes any open sessions and the underlying store. Closing an
// already closed connection is a no-op.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	sessions := make([]*Session, 0, len(c.sessions))
	for s := range c.sessions {
		sessions = append(sessions, s)
	}
	c.mu.Unlock()

	for _, s := range sessions {
		c.logger.Warn("closing session left open", "home", c.home)
		s.Close()
	}

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", c.home, err)
	}

	c.logger.Debug("storage connection closed", "home", c.home)
	return nil
}

func (c *Connection) releaseSession(s *Session) {
	c.mu.Lock()
	delete(c.sessions, s)
	c.mu.Unlock()
}

func (c *Connection) update(fn func(txn *badger.Txn) error) error {
	if c.readOnly {
		return ErrReadOnly
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return c.db.Update(fn)
}

// bootstrap writes the catalog marker and internal file entries into a new
// store.
func (c *Connection) bootstrap() error {
	return c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(markerKey)); err == nil {
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		for _, f := range systemFiles {
			if err := txn.Set(metaKey(FilePrefix+f), []byte("internal=true")); err != nil {
				return err
			}
		}
		return txn.Set([]byte(markerKey), []byte(catalogFormat))
	})
}

func (c *Connection) checkCatalog() error {
	return c.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(markerKey)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrNoCatalog, c.home)
			}
			return fmt.Errorf("storage: read catalog marker: %w", err)
		}
		return nil
	})
}

func requireTable(txn *badger.Txn, table string) error {
	if _, err := txn.Get(metaKey(TableURI(table))); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, TableURI(table))
		}
		return err
	}
	return nil
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

// Badger info output is startup chatter; keep it below the default level.
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}
