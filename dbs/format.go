// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dbs

import (
	"fmt"
	"strconv"
)

// AppendFormatted appends fmt.Sprintf(format, args...) to h. This is the
// general, printf-compatible path; unlike AppendPrintf it is free to call
// into the standard formatting machinery.
func AppendFormatted(h DBS, format string, args ...interface{}) (DBS, error) {
	return h.Append([]byte(fmt.Sprintf(format, args...)))
}

// AppendPrintf is the fast formatting path: it supports only %s (a Go
// string treated as C-string content), %S (a DBS), %i/%I (signed 32/64 bit
// integer), %u/%U (unsigned 32/64 bit integer) and %%. It never calls
// fmt.Sprintf for a supported directive, converting integers with strconv
// and copying strings directly.
func AppendPrintf(h DBS, format string, args ...interface{}) (DBS, error) {
	argi := 0
	next := func() interface{} {
		if argi >= len(args) {
			panic("dbs: AppendPrintf: too few arguments for format")
		}
		v := args[argi]
		argi++
		return v
	}

	var err error
	i := 0
	for i < len(format) {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			h, err = h.Append([]byte{c})
			if err != nil {
				return h, err
			}
			i++
			continue
		}

		spec := format[i+1]
		i += 2
		switch spec {
		case 's':
			h, err = h.Append([]byte(next().(string)))
		case 'S':
			d := next().(DBS)
			h, err = h.Append(d.Bytes())
		case 'i':
			h, err = h.Append([]byte(strconv.FormatInt(int64(next().(int32)), 10)))
		case 'I':
			h, err = h.Append([]byte(strconv.FormatInt(next().(int64), 10)))
		case 'u':
			h, err = h.Append([]byte(strconv.FormatUint(uint64(next().(uint32)), 10)))
		case 'U':
			h, err = h.Append([]byte(strconv.FormatUint(next().(uint64), 10)))
		case '%':
			h, err = h.Append([]byte{'%'})
		default:
			h, err = h.Append([]byte{'%', spec})
		}
		if err != nil {
			return h, err
		}
	}
	return h, nil
}
