package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

type lineResult struct {
	err  error
	line string
}

// LineReader reads trimmed lines and gives up when the context ends.
//
// Reads happen only on demand, so nothing is consumed from the source between
// prompts (a terminal password read can share stdin with it). A read abandoned
// by cancellation keeps running; its line is handed to the next ReadLine
// instead of being lost. Calls must not overlap.
type LineReader struct {
	src     *bufio.Reader
	pending chan lineResult
	mu      sync.Mutex
}

// NewLineReader wraps src.
func NewLineReader(src io.Reader) *LineReader {
	if src == nil {
		panic("reader cannot be nil")
	}
	return &LineReader{src: bufio.NewReader(src)}
}

// ReadLine returns the next line without surrounding whitespace. A final line
// without a newline is returned as is; io.EOF follows on the next call.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}

	ch := r.inFlight()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-ch:
		r.mu.Lock()
		r.pending = nil
		r.mu.Unlock()

		line := strings.TrimSpace(res.line)
		if res.err != nil && (!errors.Is(res.err, io.EOF) || res.line == "") {
			return "", res.err
		}
		return line, nil
	}
}

// inFlight returns the channel of the current read, starting one if needed.
func (r *LineReader) inFlight() chan lineResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil {
		ch := make(chan lineResult, 1)
		r.pending = ch
		go func() {
			line, err := r.src.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}
	return r.pending
}
