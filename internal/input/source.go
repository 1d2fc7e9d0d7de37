package input

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"
)

const (
	// DefaultMaxLine is the longest line kept; the rest of a longer line is dropped.
	DefaultMaxLine = 1024
	// DefaultBuffer is the number of complete lines held for the controller.
	DefaultBuffer = 64
)

// ErrClosed is returned by Next once the stream has ended and every line was consumed.
var ErrClosed = errors.New("input closed")

// Source is a line-framed view of a byte stream.
type Source struct {
	// lines carries complete lines from the reader goroutine.
	lines chan string
	// done is closed by Close to stop the reader goroutine.
	done chan struct{}
	// finished is closed when the reader goroutine exits.
	finished chan struct{}
	// closer releases the underlying stream, may be nil.
	closer io.Closer
	// maxLine bounds a single line.
	maxLine int

	// closeOnce guards Close.
	closeOnce sync.Once
	// mu protects err.
	mu sync.Mutex
	// err is the error that ended the stream, nil on clean EOF.
	err error
}

// Option configures a Source.
type Option func(*Source)

// WithMaxLine overrides DefaultMaxLine.
func WithMaxLine(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.maxLine = n
		}
	}
}

// WithCloser makes Close release c as well.
func WithCloser(c io.Closer) Option {
	return func(s *Source) {
		s.closer = c
	}
}

// NewSource starts framing r. The caller must Close the Source.
func NewSource(r io.Reader, opts ...Option) *Source {
	s := &Source{
		lines:    make(chan string, DefaultBuffer),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		maxLine:  DefaultMaxLine,
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.read(r)

	return s
}

// Poll returns the next buffered line without blocking.
func (s *Source) Poll() (string, bool) {
	select {
	case line, ok := <-s.lines:
		return line, ok
	default:
		return "", false
	}
}

// Next blocks until a line arrives, the stream ends or ctx is done.
func (s *Source) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			if err := s.Err(); err != nil {
				return "", errors.Join(ErrClosed, err)
			}

			return "", ErrClosed
		}

		return line, nil
	}
}

// Finished is closed once the stream has ended.
func (s *Source) Finished() <-chan struct{} {
	return s.finished
}

// Err returns the read error that ended the stream, or nil.
func (s *Source) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Close stops the reader and releases the stream.
func (s *Source) Close() error {
	var err error

	s.closeOnce.Do(func() {
		close(s.done)

		if s.closer != nil {
			err = s.closer.Close()
		}
	})

	return err
}

// read is the reader goroutine.
func (s *Source) read(r io.Reader) {
	defer close(s.finished)
	defer close(s.lines)

	br := bufio.NewReaderSize(r, s.maxLine)
	buf := make([]byte, 0, s.maxLine)

	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			// A final unterminated line still counts.
			if len(buf) > 0 {
				s.emit(string(buf))
			}

			if !errors.Is(err, io.EOF) {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}

			return
		}

		if room := s.maxLine - len(buf); room > 0 {
			if len(chunk) > room {
				chunk = chunk[:room]
			}

			buf = append(buf, chunk...)
		}

		if isPrefix {
			continue
		}

		if !s.emit(string(buf)) {
			return
		}

		buf = buf[:0]
	}
}

// emit hands a line to the controller; it reports false once the Source is closed.
func (s *Source) emit(line string) bool {
	select {
	case s.lines <- line:
		return true
	case <-s.done:
		return false
	}
}
