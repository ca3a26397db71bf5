package io

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestLineReader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected []string
		finalErr error
	}{
		{
			name:     "single line",
			input:    "220 mx.example.com ready\r\n",
			max:      512,
			expected: []string{"220 mx.example.com ready"},
			finalErr: io.EOF,
		},
		{
			name:     "multiple lines in one read",
			input:    "250-first\r\n250-second\r\n250 third\r\n",
			max:      512,
			expected: []string{"250-first", "250-second", "250 third"},
			finalErr: io.EOF,
		},
		{
			name:     "empty line",
			input:    "\r\n",
			max:      512,
			expected: []string{""},
			finalErr: io.EOF,
		},
		{
			name:     "truncated line",
			input:    "250 ok\r\n221 by",
			max:      512,
			expected: []string{"250 ok"},
			finalErr: io.ErrUnexpectedEOF,
		},
		{
			name:     "bare LF inside line",
			input:    "250 a\nb\r\n",
			max:      512,
			finalErr: ErrBadLineEnding,
		},
		{
			name:     "line at max length",
			input:    "abcde\r\n",
			max:      5,
			expected: []string{"abcde"},
			finalErr: io.EOF,
		},
		{
			name:     "line over max length",
			input:    "abcdef\r\n",
			max:      5,
			finalErr: ErrLineTooLong,
		},
		{
			name:     "unlimited",
			input:    strings.Repeat("x", 3000) + "\r\n",
			max:      0,
			expected: []string{strings.Repeat("x", 3000)},
			finalErr: io.EOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := NewLineReader(strings.NewReader(tt.input), tt.max)
			var got []string
			var err error
			for {
				var line string
				line, err = lr.ReadLine()
				if err != nil {
					break
				}
				got = append(got, line)
			}
			if !errors.Is(err, tt.finalErr) {
				t.Errorf("final error = %v, want %v", err, tt.finalErr)
			}
			if strings.Join(got, "|") != strings.Join(tt.expected, "|") {
				t.Errorf("lines = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLineReaderOneByteReads(t *testing.T) {
	input := "250-first\r\n250 second\r\n"
	lr := NewLineReader(iotest.OneByteReader(strings.NewReader(input)), 512)

	for _, want := range []string{"250-first", "250 second"} {
		got, err := lr.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine() error = %v", err)
		}
		if got != want {
			t.Errorf("ReadLine() = %q, want %q", got, want)
		}
	}
	if lr.Buffered() != 0 {
		t.Errorf("Buffered() = %d, want 0", lr.Buffered())
	}
}

func TestLineReaderRecoversAfterLongLine(t *testing.T) {
	input := strings.Repeat("a", 2000) + "\r\n250 ok\r\n"
	lr := NewLineReader(iotest.HalfReader(strings.NewReader(input)), 100)

	if _, err := lr.ReadLine(); !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("first ReadLine() error = %v, want ErrLineTooLong", err)
	}
	got, err := lr.ReadLine()
	if err != nil {
		t.Fatalf("second ReadLine() error = %v", err)
	}
	if got != "250 ok" {
		t.Errorf("second ReadLine() = %q, want %q", got, "250 ok")
	}
}

func TestLineReaderReadError(t *testing.T) {
	boom := errors.New("connection reset")
	lr := NewLineReader(iotest.ErrReader(boom), 512)

	if _, err := lr.ReadLine(); !errors.Is(err, boom) {
		t.Errorf("ReadLine() error = %v, want %v", err, boom)
	}
}

func TestDotWriter(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected string
	}{
		{
			name:     "no body",
			expected: ".\r\n",
		},
		{
			name:     "plain lines",
			lines:    []string{"Subject: hi", "", "hello"},
			expected: "Subject: hi\r\n\r\nhello\r\n.\r\n",
		},
		{
			name:     "lone dot",
			lines:    []string{"."},
			expected: "..\r\n.\r\n",
		},
		{
			name:     "leading dot",
			lines:    []string{".hidden", "a.b", "..two"},
			expected: "..hidden\r\na.b\r\n...two\r\n.\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			dw := NewDotWriter(&out)
			for _, l := range tt.lines {
				if err := dw.WriteLine([]byte(l)); err != nil {
					t.Fatalf("WriteLine(%q) error = %v", l, err)
				}
			}
			if err := dw.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			if err := dw.Close(); err != nil {
				t.Fatalf("second Close() error = %v", err)
			}
			if out.String() != tt.expected {
				t.Errorf("output = %q, want %q", out.String(), tt.expected)
			}
			if dw.Lines() != len(tt.lines) {
				t.Errorf("Lines() = %d, want %d", dw.Lines(), len(tt.lines))
			}
		})
	}
}

func TestDotWriterAfterClose(t *testing.T) {
	dw := NewDotWriter(io.Discard)
	dw.Close()
	if err := dw.WriteLine([]byte("late")); !errors.Is(err, ErrDotClosed) {
		t.Errorf("WriteLine() after Close error = %v, want ErrDotClosed", err)
	}
}
