package singer

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
)

// maxLineBytes bounds a single message line. Schema documents are small,
// but RECORD lines can carry large embedded objects.
const maxLineBytes = 20 * 1024 * 1024

// Reader drains newline-delimited messages from an input stream.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader wraps r with a line scanner sized for large records.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Reader{sc: sc}
}

// Next returns the next message, io.EOF at end of input, or a decode error
// annotated with the line number. Blank lines are skipped. Cancellation is
// checked between lines.
func (r *Reader) Next(ctx context.Context) (Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Message{}, err
		}
		if !r.sc.Scan() {
			if err := r.sc.Err(); err != nil {
				return Message{}, fmt.Errorf("singer: read line %d: %w", r.line+1, err)
			}
			return Message{}, io.EOF
		}
		r.line++
		line := bytes.TrimSpace(r.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		m, err := DecodeMessage(line)
		if err != nil {
			return Message{}, fmt.Errorf("line %d: %w", r.line, err)
		}
		return m, nil
	}
}

// Line returns the number of lines consumed so far.
func (r *Reader) Line() int {
	return r.line
}
