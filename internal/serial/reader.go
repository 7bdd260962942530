package serial

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/buckleypaul/guardflash/internal/logger"
)

// Boot log framing.
const (
	Sentinel       = "Entering Sleep."
	DefaultTimeout = 30 * time.Second
)

// MaxLineLength caps a buffered line; longer runs without '\n' are
// returned in pieces.
const MaxLineLength = 4096

// ErrDecode is returned when the device sends bytes that are not valid UTF-8.
var ErrDecode = errors.New("invalid UTF-8 in serial data")

// LineReader collects newline-delimited text from a serial stream.
type LineReader struct {
	// Sentinel ends the read; the matching line is kept.
	Sentinel string
	// Timeout bounds the whole read, measured from its start.
	Timeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	// OnLine, if set, sees every collected line as it arrives.
	OnLine func(string)
	Log    *logger.Logger
}

// NewLineReader returns a reader using the boot log sentinel and timeout.
func NewLineReader(log *logger.Logger) *LineReader {
	return &LineReader{
		Sentinel: Sentinel,
		Timeout:  DefaultTimeout,
		Log:      log,
	}
}

// ReadUntilSentinel reads trimmed, non-empty lines from src until one
// contains the sentinel, the timeout elapses, or src reports io.EOF. The
// lines gathered so far are returned in every one of those cases. Read and
// decode failures return a nil slice and the error.
func (r *LineReader) ReadUntilSentinel(ctx context.Context, src io.Reader) ([]string, error) {
	now := r.Now
	if now == nil {
		now = time.Now
	}
	log := r.Log
	if log == nil {
		log = logger.Nop()
	}

	start := now()
	ls := &lineSource{
		r:       src,
		chunk:   make([]byte, 256),
		max:     MaxLineLength,
		expired: func() bool { return now().Sub(start) > r.Timeout },
	}
	var lines []string

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := ls.next()
		if errors.Is(err, io.EOF) {
			log.Warnw("serial stream closed before sentinel", "lines", len(lines))
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read serial: %w", err)
		}
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("%w: %q", ErrDecode, raw)
		}

		if line := strings.TrimSpace(string(raw)); line != "" {
			log.Infow("serial port message", "line", line)
			lines = append(lines, line)
			if r.OnLine != nil {
				r.OnLine(line)
			}
			if r.Sentinel != "" && strings.Contains(line, r.Sentinel) {
				break
			}
		}

		if ls.expired() {
			log.Warnw("serial read timed out", "timeout", r.Timeout, "lines", len(lines))
			break
		}
	}

	if len(lines) == 0 {
		log.Warnw("no data received from the serial port")
	}
	return lines, nil
}

// lineSource splits a byte stream on '\n'. A read that returns no data
// (the port's read timeout) yields whatever partial line is buffered, as
// does running past the deadline or filling max bytes without a newline.
type lineSource struct {
	r       io.Reader
	buf     []byte
	chunk   []byte
	max     int
	expired func() bool
}

func (s *lineSource) next() ([]byte, error) {
	for {
		if i := bytes.IndexByte(s.buf, '\n'); i >= 0 {
			line := append([]byte(nil), s.buf[:i+1]...)
			s.buf = s.buf[i+1:]
			return line, nil
		}

		n, err := s.r.Read(s.chunk)
		s.buf = append(s.buf, s.chunk[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) && len(s.buf) > 0 {
				return s.flush(), nil
			}
			return nil, err
		}
		if bytes.IndexByte(s.buf, '\n') >= 0 {
			continue
		}
		if n == 0 || (s.expired != nil && s.expired()) {
			return s.flush(), nil
		}
		if s.max > 0 && len(s.buf) >= s.max {
			return s.cut(s.max), nil
		}
	}
}

// cut returns the first n buffered bytes, backing off so a multi-byte
// rune is not split.
func (s *lineSource) cut(n int) []byte {
	for i := 0; i < utf8.UTFMax-1 && n > 1 && !utf8.Valid(s.buf[:n]); i++ {
		n--
	}
	line := append([]byte(nil), s.buf[:n]...)
	s.buf = s.buf[n:]
	return line
}

func (s *lineSource) flush() []byte {
	line := s.buf
	s.buf = nil
	return line
}
