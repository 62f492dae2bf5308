/*
Package rle implements the run-length encoding understood by the matching
Game Boy decompression routine.

A run of two or more equal values is written as the value twice followed by
the length of the run. A value that is not repeated is written once. Runs
longer than MaxRun are split.
*/
package rle

import (
	"errors"
	"fmt"
)

// MaxRun is the longest run encoded by a single marker
const MaxRun = 200

var (
	// ErrTruncated is returned when a stream ends before a run length
	ErrTruncated = errors.New("rle: truncated stream")
	// ErrBadRun is returned when a run length is out of range
	ErrBadRun = errors.New("rle: invalid run length")
)

// Compress encodes in.
func Compress(in []int) []int {
	out := make([]int, 0, len(in))
	for i := 0; i < len(in); {
		v := in[i]
		n := 1
		for i+n < len(in) && in[i+n] == v && n < MaxRun {
			n++
		}
		out = append(out, v)
		if n > 1 {
			out = append(out, v, n)
		}
		i += n
	}
	return out
}

// Decompress reverses Compress.
func Decompress(in []int) ([]int, error) {
	out := make([]int, 0, len(in))
	for i := 0; i < len(in); i++ {
		v := in[i]
		if i+1 == len(in) || in[i+1] != v {
			out = append(out, v)
			continue
		}
		if i+2 >= len(in) {
			return nil, ErrTruncated
		}
		n := in[i+2]
		if n < 2 || n > MaxRun {
			return nil, fmt.Errorf("%w: %d at offset %d", ErrBadRun, n, i+2)
		}
		for j := 0; j < n; j++ {
			out = append(out, v)
		}
		i += 2
	}
	return out, nil
}

// Ints widens a byte stream for Compress.
func Ints(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

// Uint8s narrows a stream back to bytes, failing if any value does not fit.
func Uint8s(in []int) ([]byte, error) {
	b := make([]byte, len(in))
	for i, v := range in {
		if v < 0 || v > 0xff {
			return nil, fmt.Errorf("rle: value %d at offset %d does not fit in a byte", v, i)
		}
		b[i] = byte(v)
	}
	return b, nil
}
