package io

import (
	"errors"
	"io"
)

// ErrDotClosed is returned when a line is written after the terminator.
var ErrDotClosed = errors.New("smtp: data already terminated")

// DotWriter writes message lines in the SMTP DATA encoding (RFC 5321
// 4.5.2). Every line is CRLF-terminated and a leading '.' is doubled.
// Close writes the ".\r\n" end-of-data marker.
type DotWriter struct {
	w      io.Writer
	lines  int
	closed bool
}

// NewDotWriter returns a DotWriter on w.
func NewDotWriter(w io.Writer) *DotWriter {
	return &DotWriter{w: w}
}

var (
	dotPrefix = []byte{'.'}
	dotEnd    = []byte(".\r\n")
)

// WriteLine implements LineWriter.
func (d *DotWriter) WriteLine(line []byte) error {
	if d.closed {
		return ErrDotClosed
	}
	if len(line) > 0 && line[0] == '.' {
		if _, err := d.w.Write(dotPrefix); err != nil {
			return err
		}
	}
	if _, err := d.w.Write(line); err != nil {
		return err
	}
	if _, err := d.w.Write(crlf); err != nil {
		return err
	}
	d.lines++
	return nil
}

// Lines returns the number of lines written so far.
func (d *DotWriter) Lines() int { return d.lines }

// Close writes the end-of-data marker. Only the first call writes anything.
func (d *DotWriter) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	_, err := d.w.Write(dotEnd)
	return err
}
