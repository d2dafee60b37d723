package shell

import (
	"bufio"
	"errors"
	"io"
)

// line is one input line with its terminator removed
type line struct {
	text      string
	truncated bool
	err       error
}

// lineReader reads lines on a background goroutine, one line per request.
// Nothing is read from the input until the loop asks for it, so a child
// process sharing the same input is never raced for bytes during EXECUTE.
type lineReader struct {
	r        *bufio.Reader
	max      int
	requests chan struct{}
	lines    chan line
	pending  bool
}

func newLineReader(in io.Reader, max int) *lineReader {
	lr := &lineReader{
		r:        bufio.NewReader(in),
		max:      max,
		requests: make(chan struct{}, 1),
		lines:    make(chan line, 1),
	}
	go lr.loop()
	return lr
}

func (lr *lineReader) loop() {
	for range lr.requests {
		lr.lines <- lr.read()
	}
	close(lr.lines)
}

// Next asks for a line unless a request is already outstanding. An
// interrupted prompt keeps its outstanding request for the next prompt.
func (lr *lineReader) Next() <-chan line {
	if !lr.pending {
		lr.pending = true
		lr.requests <- struct{}{}
	}
	return lr.lines
}

// Done marks the outstanding request as answered
func (lr *lineReader) Done() {
	lr.pending = false
}

// Close stops the reader goroutine once any read in progress returns
func (lr *lineReader) Close() {
	close(lr.requests)
}

// read collects bytes up to a newline. Bytes past max are discarded so
// memory stays bounded whatever the input holds. The cut never splits a
// UTF-8 sequence.
func (lr *lineReader) read() line {
	var buf []byte
	truncated := false
	for {
		chunk, err := lr.r.ReadSlice('\n')
		if err == nil {
			chunk = chunk[:len(chunk)-1]
		}
		switch {
		case truncated:
			// rest of an overlong line
		case lr.max > 0 && len(buf)+len(chunk) > lr.max:
			buf = append(buf, chunk...)
			buf = buf[:runeBoundary(buf, lr.max)]
			truncated = true
		default:
			buf = append(buf, chunk...)
		}

		switch {
		case err == nil:
			return line{text: string(buf), truncated: truncated}
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && (len(buf) > 0 || truncated):
			// Last line without a terminator still runs
			return line{text: string(buf), truncated: truncated}
		default:
			return line{err: err}
		}
	}
}
