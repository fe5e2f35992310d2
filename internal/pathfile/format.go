// Package pathfile reads and writes the line-oriented results file:
//
//	(a,b,c,d):[(t0,t1,t2,t3):depth,(t0,t1,t2,t3):depth,...]
//
// one line per starting quadruple, each terminated by a newline.
package pathfile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/2767mr/duccipaths/internal/ducci"
)

// ErrSyntax is wrapped by every parse failure.
var ErrSyntax = errors.New("malformed path line")

// Line is one parsed line of a results file.
type Line struct {
	Start   ducci.Quadruple
	Results []ducci.PathResult
}

// AppendQuadruple appends "(a,b,c,d)".
func AppendQuadruple(dst []byte, q ducci.Quadruple) []byte {
	dst = append(dst, '(')
	for i, v := range q {
		if i != 0 {
			dst = append(dst, ',')
		}
		dst = strconv.AppendInt(dst, int64(v), 10)
	}
	return append(dst, ')')
}

// AppendLine appends one line, without the trailing newline.
func AppendLine(dst []byte, start ducci.Quadruple, results []ducci.PathResult) []byte {
	dst = AppendQuadruple(dst, start)
	dst = append(dst, ':', '[')
	for i, r := range results {
		if i != 0 {
			dst = append(dst, ',')
		}
		dst = AppendQuadruple(dst, r.Terminal)
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, int64(r.Depth), 10)
	}
	return append(dst, ']')
}

// FormatLine is AppendLine into a new string.
func FormatLine(start ducci.Quadruple, results []ducci.PathResult) string {
	return string(AppendLine(nil, start, results))
}

// ParseQuadruple parses "(a,b,c,d)".
func ParseQuadruple(s string) (ducci.Quadruple, error) {
	q, rest, err := parseQuadruple(s)
	if err != nil {
		return q, err
	}
	if rest != "" {
		return q, fmt.Errorf("%w: trailing %q after quadruple", ErrSyntax, rest)
	}
	return q, nil
}

func parseQuadruple(s string) (ducci.Quadruple, string, error) {
	var q ducci.Quadruple

	if !strings.HasPrefix(s, "(") {
		return q, s, fmt.Errorf("%w: expected '(' at %q", ErrSyntax, s)
	}
	end := strings.IndexByte(s, ')')
	if end < 0 {
		return q, s, fmt.Errorf("%w: unterminated quadruple %q", ErrSyntax, s)
	}

	fields := strings.Split(s[1:end], ",")
	if len(fields) != len(q) {
		return q, s, fmt.Errorf("%w: quadruple %q has %d components", ErrSyntax, s[:end+1], len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 8)
		if err != nil {
			return q, s, fmt.Errorf("%w: component %q: %v", ErrSyntax, f, err)
		}
		q[i] = int8(v)
	}

	return q, s[end+1:], nil
}

// ParseLine parses one line as produced by AppendLine. A trailing "\n" or
// "\r\n" is ignored.
func ParseLine(s string) (Line, error) {
	s = strings.TrimRight(s, "\r\n")

	var line Line
	start, rest, err := parseQuadruple(s)
	if err != nil {
		return line, err
	}
	line.Start = start

	rest, ok := strings.CutPrefix(rest, ":[")
	if !ok {
		return line, fmt.Errorf("%w: expected \":[\" after %v", ErrSyntax, start)
	}
	rest, ok = strings.CutSuffix(rest, "]")
	if !ok {
		return line, fmt.Errorf("%w: missing closing ']'", ErrSyntax)
	}

	for rest != "" {
		terminal, tail, err := parseQuadruple(rest)
		if err != nil {
			return line, err
		}
		tail, ok = strings.CutPrefix(tail, ":")
		if !ok {
			return line, fmt.Errorf("%w: expected ':' after %v", ErrSyntax, terminal)
		}

		digits, next, more := strings.Cut(tail, ",")
		depth, err := strconv.Atoi(digits)
		if err != nil || depth < 0 {
			return line, fmt.Errorf("%w: depth %q", ErrSyntax, digits)
		}
		line.Results = append(line.Results, ducci.PathResult{Terminal: terminal, Depth: depth})

		if more && next == "" {
			return line, fmt.Errorf("%w: trailing ','", ErrSyntax)
		}
		rest = next
	}

	return line, nil
}
