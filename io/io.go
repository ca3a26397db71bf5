package io

import (
	"bytes"
	"errors"
	"io"
)

var (
	ErrLineTooLong   = errors.New("smtp: line too long")
	ErrBadLineEnding = errors.New("smtp: line not terminated by CRLF")
)

var crlf = []byte("\r\n")

// readChunk is the size of a single read from the underlying channel.
const readChunk = 512

// LineReader frames CRLF-terminated lines out of a byte stream. Bytes that
// arrive after a line terminator stay buffered for the next call.
type LineReader struct {
	r     io.Reader
	raw   *Buffer
	chunk []byte
	max   int
	err   error

	// resync is set while the tail of an oversized line is being dropped.
	resync bool
}

// NewLineReader reads lines from r. Lines longer than max bytes, excluding
// the terminator, fail with ErrLineTooLong; max <= 0 means unlimited.
func NewLineReader(r io.Reader, max int) *LineReader {
	return &LineReader{
		r:     r,
		raw:   NewBuffer(0),
		chunk: make([]byte, readChunk),
		max:   max,
	}
}

// ReadLine returns the next line without its CRLF.
//
// A read error is only reported once every complete line received before it
// has been returned. An EOF in the middle of a line becomes
// io.ErrUnexpectedEOF.
func (lr *LineReader) ReadLine() (string, error) {
	for {
		if i := lr.raw.Index(crlf); i >= 0 {
			if lr.resync {
				lr.raw.ConsumePrefix(i + 2)
				lr.resync = false
				continue
			}
			return lr.take(i)
		}

		if lr.max > 0 && lr.raw.Len() > lr.max+1 {
			lr.discard()
			if !lr.resync {
				lr.resync = true
				return "", ErrLineTooLong
			}
			continue
		}

		if lr.err != nil {
			err := lr.err
			if errors.Is(err, io.EOF) && lr.raw.Len() > 0 {
				err = io.ErrUnexpectedEOF
			}
			return "", err
		}

		n, err := lr.r.Read(lr.chunk)
		lr.raw.Append(lr.chunk[:n])
		lr.err = err
	}
}

// Buffered returns the number of received bytes not yet returned as a line.
func (lr *LineReader) Buffered() int { return lr.raw.Len() }

func (lr *LineReader) take(i int) (string, error) {
	line := lr.raw.Bytes()[:i]
	if lr.max > 0 && len(line) > lr.max {
		lr.raw.ConsumePrefix(i + 2)
		return "", ErrLineTooLong
	}
	if bytes.IndexByte(line, '\n') >= 0 {
		lr.raw.ConsumePrefix(i + 2)
		return "", ErrBadLineEnding
	}
	s := string(line)
	lr.raw.ConsumePrefix(i + 2)
	return s, nil
}

// discard drops the oversized line, keeping a trailing CR in case the LF
// arrives with the next read.
func (lr *LineReader) discard() {
	keep := 0
	if b := lr.raw.Bytes(); b[len(b)-1] == '\r' {
		keep = 1
	}
	lr.raw.ConsumePrefix(lr.raw.Len() - keep)
}
