package pathfile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/2767mr/duccipaths/internal/ducci"
)

// Writer buffers lines for an underlying io.Writer. Call Flush when done.
type Writer struct {
	w     *bufio.Writer
	buf   []byte
	lines int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 1<<16), buf: make([]byte, 0, 256)}
}

// Write appends the line for start and its results.
func (w *Writer) Write(start ducci.Quadruple, results []ducci.PathResult) error {
	w.buf = AppendLine(w.buf[:0], start, results)
	w.buf = append(w.buf, '\n')
	if _, err := w.w.Write(w.buf); err != nil {
		return fmt.Errorf("write line %d: %w", w.lines+1, err)
	}
	w.lines++
	return nil
}

func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Lines returns the number of lines written so far.
func (w *Writer) Lines() int {
	return w.lines
}

// ParseError reports the line a parse failure happened on.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reader reads a results file line by line.
type Reader struct {
	s    *bufio.Scanner
	line Line
	n    int
	err  error
}

// maxLineSize bounds a single line. Lines of deep searches hold many leaves.
const maxLineSize = 64 << 20

func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 1<<16), maxLineSize)
	return &Reader{s: s}
}

// Next advances to the next line. It returns false at the end of input or on
// the first error; check Err afterwards.
func (r *Reader) Next() bool {
	if r.err != nil || !r.s.Scan() {
		return false
	}
	r.n++

	line, err := ParseLine(r.s.Text())
	if err != nil {
		r.err = &ParseError{Line: r.n, Err: err}
		return false
	}
	r.line = line
	return true
}

// Line returns the most recent line read by Next.
func (r *Reader) Line() Line {
	return r.line
}

// LineNumber returns the 1-based number of the most recent line.
func (r *Reader) LineNumber() int {
	return r.n
}

func (r *Reader) Err() error {
	if r.err != nil {
		return r.err
	}
	if err := r.s.Err(); err != nil {
		return fmt.Errorf("read line %d: %w", r.n+1, err)
	}
	return nil
}
