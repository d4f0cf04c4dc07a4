package storage

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v3"
)

// Session is a read snapshot of the store. Cursors opened on a session see
// the data as of OpenSession.
type Session struct {
	conn *Connection
	txn  *badger.Txn

	mu      sync.Mutex
	cursors map[*Cursor]struct{}
	closed  bool
}

// OpenCursor opens a cursor on uri: MetadataURI for the catalog or
// "table:<name>" for a table's records. Opening a table that is not in the
// catalog returns ErrNotFound.
func (s *Session) OpenCursor(uri string) (*Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	var prefix []byte
	switch {
	case uri == MetadataURI:
		prefix = []byte(metaKeyPrefix)
	case strings.HasPrefix(uri, TablePrefix):
		name := strings.TrimPrefix(uri, TablePrefix)
		if name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidURI, uri)
		}
		if err := requireTable(s.txn, name); err != nil {
			return nil, err
		}
		prefix = rowPrefix(name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	c := &Cursor{
		sess:   s,
		uri:    uri,
		prefix: prefix,
		it:     s.txn.NewIterator(opts),
	}
	s.cursors[c] = struct{}{}
	return c, nil
}

// Close closes the session's open cursors and releases its snapshot.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cursors := make([]*Cursor, 0, len(s.cursors))
	for c := range s.cursors {
		cursors = append(cursors, c)
	}
	s.mu.Unlock()

	for _, c := range cursors {
		c.Close()
	}
	s.txn.Discard()
	s.conn.releaseSession(s)
	return nil
}

func (s *Session) releaseCursor(c *Cursor) {
	s.mu.Lock()
	delete(s.cursors, c)
	s.mu.Unlock()
}

type cursorState int

const (
	stateUnpositioned cursorState = iota
	statePending                  // positioned by SearchNear, not yet returned by Next
	statePendingLast              // as statePending, on the last key of the namespace
	statePositioned
	stateExhausted
)

// Cursor iterates a namespace in ascending key order.
//
// Next advances the cursor and reports whether a record is available. On an
// unpositioned cursor the first Next moves to the first record. After
// SearchNear the first Next returns the record SearchNear landed on.
type Cursor struct {
	sess   *Session
	uri    string
	prefix []byte
	it     *badger.Iterator

	searchKey string
	state     cursorState
	key       string
	value     string
	err       error
	closed    bool
}

// SetKey sets the key used by the next SearchNear.
func (c *Cursor) SetKey(key string) {
	c.searchKey = key
}

// SearchNear positions the cursor on the key set by SetKey or, if it does not
// exist, on the nearest key. It prefers the smallest key greater than the
// search key and falls back to the largest smaller key. The result is 0 for
// an exact match, 1 when positioned after the search key and -1 when
// positioned before it. ErrNotFound means the namespace is empty.
func (c *Cursor) SearchNear() (int, error) {
	if c.closed {
		return 0, ErrClosed
	}

	target := append(append([]byte{}, c.prefix...), c.searchKey...)

	c.it.Seek(target)
	if c.it.Valid() {
		if !c.load(c.it.Item()) {
			return 0, c.err
		}
		c.state = statePending
		if bytes.Equal(c.it.Item().Key(), target) {
			return 0, nil
		}
		return 1, nil
	}

	opts := badger.DefaultIteratorOptions
	opts.Prefix = c.prefix
	opts.Reverse = true
	rit := c.sess.txn.NewIterator(opts)
	defer rit.Close()

	rit.Seek(target)
	if !rit.Valid() {
		c.state = stateExhausted
		return 0, fmt.Errorf("%w: %s is empty", ErrNotFound, c.uri)
	}
	if !c.load(rit.Item()) {
		return 0, c.err
	}
	c.state = statePendingLast
	return -1, nil
}

// Search looks up key exactly and returns its value without moving the
// cursor. A missing key returns ErrNotFound.
func (c *Cursor) Search(key string) (string, error) {
	if c.closed {
		return "", ErrClosed
	}

	item, err := c.sess.txn.Get(append(append([]byte{}, c.prefix...), key...))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", fmt.Errorf("%w: %s key %q", ErrNotFound, c.uri, key)
		}
		return "", fmt.Errorf("storage: search %s: %w", c.uri, err)
	}

	value, err := item.ValueCopy(nil)
	if err != nil {
		return "", fmt.Errorf("storage: read %s: %w", c.uri, err)
	}
	return string(value), nil
}

// Next advances the cursor. It returns false when the namespace is exhausted
// or an error occurred; check Err afterwards.
func (c *Cursor) Next() bool {
	if c.closed {
		return false
	}

	switch c.state {
	case stateUnpositioned:
		c.it.Seek(c.prefix)
	case statePending:
		c.state = statePositioned
		return true
	case statePendingLast:
		c.state = stateExhausted
		return true
	case statePositioned:
		c.it.Next()
	case stateExhausted:
		return false
	}

	if !c.it.Valid() {
		c.state = stateExhausted
		return false
	}
	if !c.load(c.it.Item()) {
		return false
	}
	c.state = statePositioned
	return true
}

// Key returns the current record's key, without the namespace prefix.
func (c *Cursor) Key() string {
	return c.key
}

// Value returns the current record's value.
func (c *Cursor) Value() string {
	return c.value
}

// Err returns the first error met while iterating.
func (c *Cursor) Err() error {
	return c.err
}

// Close releases the cursor. Closing twice is a no-op.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.it.Close()
	c.sess.releaseCursor(c)
	return nil
}

func (c *Cursor) load(item *badger.Item) bool {
	value, err := item.ValueCopy(nil)
	if err != nil {
		c.err = fmt.Errorf("storage: read %s: %w", c.uri, err)
		c.state = stateExhausted
		return false
	}
	c.key = string(item.Key()[len(c.prefix):])
	c.value = string(value)
	return true
}
