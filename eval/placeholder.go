// Copyright 2026 The epdcal Authors
// SPDX-License-Identifier: MIT

package eval

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxContentLen bounds the byte length of substituted text.
const MaxContentLen = 512

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// span is one top-level placeholder found in a string.
type span struct {
	start, end int // byte range including delimiters
	inner      string
}

// scan finds top-level placeholders with depth counting, so "{{a.{{b}}}}"
// is one placeholder whose path itself contains a placeholder. An opening
// delimiter without a close, or a close without an opening, is a syntax
// error.
func scan(s string) ([]span, error) {
	var spans []span
	depth := 0
	start := 0
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], openDelim):
			if depth == 0 {
				start = i
			}
			depth++
			i += len(openDelim)
		case strings.HasPrefix(s[i:], closeDelim):
			if depth == 0 {
				return nil, fmt.Errorf("%w: unmatched %q at byte %d", ErrSyntax, closeDelim, i)
			}
			depth--
			i += len(closeDelim)
			if depth == 0 {
				spans = append(spans, span{
					start: start,
					end:   i,
					inner: s[start+len(openDelim) : i-len(closeDelim)],
				})
			}
		default:
			i++
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unmatched %q at byte %d", ErrSyntax, openDelim, start)
	}
	return spans, nil
}

// Substitute replaces every {{path}} in s with the provider's value.
//
// A syntax error or oversized result fails the whole string. Paths that do
// not resolve substitute as empty; the degraded text is returned together
// with the joined *VariableNotFoundError values. A nil p resolves nothing.
func Substitute(s string, p Provider) (string, error) {
	if !strings.Contains(s, openDelim) && !strings.Contains(s, closeDelim) {
		if len(s) > MaxContentLen {
			return "", fmt.Errorf("%w: %d bytes", ErrContentTooLong, len(s))
		}
		return norm.NFC.String(s), nil
	}
	spans, err := scan(s)
	if err != nil {
		return "", err
	}

	var (
		b       strings.Builder
		missing []error
		last    int
	)
	for _, sp := range spans {
		b.WriteString(s[last:sp.start])
		last = sp.end

		path, err := Substitute(sp.inner, p)
		if err != nil && !errors.Is(err, ErrVariableNotFound) {
			return "", err
		}
		if err != nil {
			missing = append(missing, err)
		}
		path = strings.TrimSpace(path)
		if path == "" {
			if err == nil {
				return "", fmt.Errorf("%w: empty placeholder at byte %d", ErrSyntax, sp.start)
			}
			continue
		}
		v, err := lookup(p, path)
		if err != nil {
			if !errors.Is(err, ErrVariableNotFound) {
				err = fmt.Errorf("%w: %s: %w", ErrVariableNotFound, path, err)
			}
			missing = append(missing, err)
			continue
		}
		b.WriteString(v.String())
		if b.Len() > MaxContentLen {
			return "", fmt.Errorf("%w: exceeds %d bytes", ErrContentTooLong, MaxContentLen)
		}
	}
	b.WriteString(s[last:])
	if b.Len() > MaxContentLen {
		return "", fmt.Errorf("%w: %d bytes", ErrContentTooLong, b.Len())
	}
	return norm.NFC.String(b.String()), errors.Join(missing...)
}

// Paths returns the top-level placeholder paths of s in order of
// appearance. Paths with nested placeholders are returned verbatim.
func Paths(s string) ([]string, error) {
	spans, err := scan(s)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(spans))
	for _, sp := range spans {
		if p := strings.TrimSpace(sp.inner); p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}
