package compare

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"path/filepath"
	"strings"

	"github.com/spaolacci/murmur3"
	"golang.org/x/time/rate"

	"github.com/yndnr/mirrorcheck-go/internal/core/domain"
	"github.com/yndnr/mirrorcheck-go/internal/storage"
	"github.com/yndnr/mirrorcheck-go/internal/telemetry/logger"
)

// DefaultMaxDiffs is the number of differences listed in a diagnostic.
const DefaultMaxDiffs = 10

// Options configures a Comparator.
type Options struct {
	// MaxDiffs caps the differences listed in a diagnostic. Differences past
	// the cap are counted but not listed.
	MaxDiffs int

	// MaxBytesPerSec throttles record reads. Zero disables throttling.
	MaxBytesPerSec int64
}

// DefaultOptions returns the default comparator options.
func DefaultOptions() Options {
	return Options{
		MaxDiffs: DefaultMaxDiffs,
	}
}

// Comparator compares tables of one open connection. Both locations of a
// comparison must be rooted at the connection's home.
type Comparator struct {
	conn    *storage.Connection
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
}

// New returns a Comparator reading through conn.
func New(conn *storage.Connection, opts Options, log logger.Logger) *Comparator {
	if opts.MaxDiffs <= 0 {
		opts.MaxDiffs = DefaultMaxDiffs
	}
	c := &Comparator{
		conn: conn,
		opts: opts,
		log:  log,
	}
	if opts.MaxBytesPerSec > 0 {
		burst := 1 << 20 // 1MB
		if opts.MaxBytesPerSec < int64(burst) {
			burst = int(opts.MaxBytesPerSec)
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.MaxBytesPerSec), burst)
	}
	return c
}

// Compare reads base and mirror in key order and reports whether they hold
// identical records.
func (c *Comparator) Compare(ctx context.Context, base, mirror domain.Location) (*domain.Comparison, error) {
	baseSide, err := c.openSide(base)
	if err != nil {
		return nil, err
	}
	defer baseSide.close()

	mirrorSide, err := c.openSide(mirror)
	if err != nil {
		return nil, err
	}
	defer mirrorSide.close()

	d := newDiff(c.opts.MaxDiffs)

	bOK, mOK := baseSide.next(), mirrorSide.next()
	for bOK || mOK {
		if err := ctx.Err(); err != nil {
			return nil, domain.ErrCompareFailed.WithDetails(base.String()).WithCause(err)
		}

		switch {
		case bOK && (!mOK || baseSide.key() < mirrorSide.key()):
			d.add("key %q: only in %s", baseSide.key(), base)
			if err := c.throttle(ctx, baseSide); err != nil {
				return nil, err
			}
			bOK = baseSide.next()

		case mOK && (!bOK || mirrorSide.key() < baseSide.key()):
			d.add("key %q: only in %s", mirrorSide.key(), mirror)
			if err := c.throttle(ctx, mirrorSide); err != nil {
				return nil, err
			}
			mOK = mirrorSide.next()

		default:
			if baseSide.value() != mirrorSide.value() {
				d.add("key %q: value mismatch (%d bytes in base, %d bytes in mirror)",
					baseSide.key(), len(baseSide.value()), len(mirrorSide.value()))
			}
			if err := c.throttle(ctx, baseSide); err != nil {
				return nil, err
			}
			if err := c.throttle(ctx, mirrorSide); err != nil {
				return nil, err
			}
			bOK, mOK = baseSide.next(), mirrorSide.next()
		}
	}

	for _, s := range []*side{baseSide, mirrorSide} {
		if err := s.cur.Err(); err != nil {
			return nil, domain.ErrCompareFailed.WithDetails(s.loc.String()).WithCause(err)
		}
	}

	result := &domain.Comparison{
		Match:             d.count == 0,
		BaseRows:          baseSide.rows,
		MirrorRows:        mirrorSide.rows,
		Differences:       d.count,
		BaseFingerprint:   baseSide.fingerprint(),
		MirrorFingerprint: mirrorSide.fingerprint(),
	}
	if !result.Match {
		result.Diagnostic = d.String(baseSide.rows, mirrorSide.rows)
	}

	c.log.Debug("tables compared",
		"base", base.String(),
		"mirror", mirror.String(),
		"match", result.Match,
		"base_rows", result.BaseRows,
		"mirror_rows", result.MirrorRows)

	return result, nil
}

func (c *Comparator) throttle(ctx context.Context, s *side) error {
	if c.limiter == nil {
		return nil
	}
	n := min(len(s.key())+len(s.value()), c.limiter.Burst())
	if err := c.limiter.WaitN(ctx, n); err != nil {
		return domain.ErrCompareFailed.WithDetails("throttle").WithCause(err)
	}
	return nil
}

// side is one table being walked.
type side struct {
	loc  domain.Location
	sess *storage.Session
	cur  *storage.Cursor
	hash hash.Hash
	rows int64
}

func (c *Comparator) openSide(loc domain.Location) (*side, error) {
	if filepath.Clean(loc.Home) != filepath.Clean(c.conn.Home()) {
		return nil, domain.ErrInvalidLocation.WithDetails(loc.String())
	}
	s := &side{loc: loc, hash: murmur3.New128()}

	sess, err := c.conn.OpenSession()
	if err != nil {
		s.close()
		return nil, domain.ErrCompareFailed.WithDetails(loc.String()).WithCause(err)
	}
	s.sess = sess

	cur, err := sess.OpenCursor(storage.TableURI(loc.Table))
	if err != nil {
		s.close()
		if errors.Is(err, storage.ErrNotFound) {
			return nil, domain.ErrTableMissing.WithDetails(loc.String()).WithCause(err)
		}
		return nil, domain.ErrCompareFailed.WithDetails(loc.String()).WithCause(err)
	}
	s.cur = cur
	return s, nil
}

func (s *side) next() bool {
	if !s.cur.Next() {
		return false
	}
	s.rows++

	var lenBuf [binary.MaxVarintLen64]byte
	for _, field := range []string{s.cur.Key(), s.cur.Value()} {
		n := binary.PutUvarint(lenBuf[:], uint64(len(field)))
		s.hash.Write(lenBuf[:n])
		s.hash.Write([]byte(field))
	}
	return true
}

func (s *side) key() string   { return s.cur.Key() }
func (s *side) value() string { return s.cur.Value() }

func (s *side) fingerprint() string {
	return fmt.Sprintf("%x", s.hash.Sum(nil))
}

func (s *side) close() {
	if s.cur != nil {
		s.cur.Close()
	}
	if s.sess != nil {
		s.sess.Close()
	}
}

// diff collects difference descriptions up to a limit.
type diff struct {
	limit int
	count int64
	lines []string
}

func newDiff(limit int) *diff {
	return &diff{limit: limit}
}

func (d *diff) add(format string, args ...any) {
	d.count++
	if len(d.lines) < d.limit {
		d.lines = append(d.lines, fmt.Sprintf(format, args...))
	}
}

func (d *diff) String(baseRows, mirrorRows int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d differences (base rows %d, mirror rows %d)", d.count, baseRows, mirrorRows)
	for _, line := range d.lines {
		b.WriteString("; ")
		b.WriteString(line)
	}
	if hidden := d.count - int64(len(d.lines)); hidden > 0 {
		fmt.Fprintf(&b, "; ... %d more", hidden)
	}
	return b.String()
}
