// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dbs

import (
	"bytes"
	"fmt"

	"github.com/fyyzkd/redis/alloc"
)

// Split splits b at every exact occurrence of sep, returning a new DBS for
// each piece (including empty pieces between adjacent separators). A
// zero-length input returns an empty, non-nil slice. A separator shorter
// than 1 byte is invalid input.
func Split(a alloc.Allocator, b, sep []byte) ([]DBS, error) {
	if len(sep) < 1 {
		return nil, ErrInvalidSeparator
	}
	if len(b) == 0 {
		return []DBS{}, nil
	}

	var out []DBS
	start := 0
	for i := 0; i+len(sep) <= len(b); {
		if bytes.Equal(b[i:i+len(sep)], sep) {
			piece, err := Create(a, b[start:i])
			if err != nil {
				return nil, err
			}
			out = append(out, piece)
			i += len(sep)
			start = i
			continue
		}
		i++
	}
	piece, err := Create(a, b[start:])
	if err != nil {
		return nil, err
	}
	return append(out, piece), nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func hexByte(hi, lo byte) byte { return hexVal(hi)<<4 | hexVal(lo) }

// SplitArgs splits line the way a shell splits a command line: unquoted
// tokens break on whitespace, double-quoted strings honor the escapes
// \n \r \t \a \b and \xHH, single-quoted strings are literal except for the
// \' escape, and a closing quote must be immediately followed by whitespace
// or end of input. Unbalanced quotes return ErrUnbalancedQuotes.
func SplitArgs(a alloc.Allocator, line string) ([]DBS, error) {
	out := []DBS{}
	p, n := 0, len(line)

	for {
		for p < n && isSpace(line[p]) {
			p++
		}
		if p >= n {
			break
		}

		var cur []byte
		for p < n && !isSpace(line[p]) {
			switch line[p] {
			case '"':
				p++
				for {
					if p >= n {
						return nil, ErrUnbalancedQuotes
					}
					if line[p] == '\\' && p+1 < n {
						switch line[p+1] {
						case 'n':
							cur = append(cur, '\n')
							p += 2
						case 'r':
							cur = append(cur, '\r')
							p += 2
						case 't':
							cur = append(cur, '\t')
							p += 2
						case 'a':
							cur = append(cur, '\a')
							p += 2
						case 'b':
							cur = append(cur, '\b')
							p += 2
						case 'x':
							if p+3 < n && isHexDigit(line[p+2]) && isHexDigit(line[p+3]) {
								cur = append(cur, hexByte(line[p+2], line[p+3]))
								p += 4
							} else {
								cur = append(cur, line[p+1])
								p += 2
							}
						default:
							cur = append(cur, line[p+1])
							p += 2
						}
						continue
					}
					if line[p] == '"' {
						p++
						if p < n && !isSpace(line[p]) {
							return nil, ErrUnbalancedQuotes
						}
						break
					}
					cur = append(cur, line[p])
					p++
				}
			case '\'':
				p++
				for {
					if p >= n {
						return nil, ErrUnbalancedQuotes
					}
					if line[p] == '\\' && p+1 < n && line[p+1] == '\'' {
						cur = append(cur, '\'')
						p += 2
						continue
					}
					if line[p] == '\'' {
						p++
						if p < n && !isSpace(line[p]) {
							return nil, ErrUnbalancedQuotes
						}
						break
					}
					cur = append(cur, line[p])
					p++
				}
			default:
				cur = append(cur, line[p])
				p++
			}
		}

		piece, err := Create(a, cur)
		if err != nil {
			return nil, err
		}
		out = append(out, piece)
	}

	return out, nil
}

// CatRepr appends to h a quoted, backslash-escaped representation of b that
// SplitArgs can parse back into the original bytes.
func CatRepr(h DBS, b []byte) (DBS, error) {
	var err error
	if h, err = h.Append([]byte{'"'}); err != nil {
		return h, err
	}

	for _, c := range b {
		switch c {
		case '\\', '"':
			h, err = h.Append([]byte{'\\', c})
		case '\n':
			h, err = h.Append([]byte("\\n"))
		case '\r':
			h, err = h.Append([]byte("\\r"))
		case '\t':
			h, err = h.Append([]byte("\\t"))
		case '\a':
			h, err = h.Append([]byte("\\a"))
		case '\b':
			h, err = h.Append([]byte("\\b"))
		default:
			if c < 32 || c >= 127 {
				h, err = h.Append([]byte(fmt.Sprintf("\\x%02x", c)))
			} else {
				h, err = h.Append([]byte{c})
			}
		}
		if err != nil {
			return h, err
		}
	}

	return h.Append([]byte{'"'})
}
