package io

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewBuffer(t *testing.T) {
	tests := []struct {
		name string
		hint int
		cap  int
	}{
		{name: "default", hint: 0, cap: DefaultBufferSize},
		{name: "negative", hint: -5, cap: DefaultBufferSize},
		{name: "hint", hint: 16, cap: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(tt.hint)
			if b.Len() != 0 {
				t.Errorf("Len() = %d, want 0", b.Len())
			}
			if b.Cap() != tt.cap {
				t.Errorf("Cap() = %d, want %d", b.Cap(), tt.cap)
			}
		})
	}
}

func TestBufferAppendGrowth(t *testing.T) {
	b := NewBuffer(4)
	var want bytes.Buffer
	chunks := []string{"ab", "cde", "", "fghijklmnop", strings.Repeat("q", 100), "r"}

	prevCap := b.Cap()
	for _, c := range chunks {
		n := b.AppendString(c)
		want.WriteString(c)
		if n != want.Len() {
			t.Fatalf("AppendString(%q) = %d, want %d", c, n, want.Len())
		}
		if b.Cap() < b.Len() {
			t.Fatalf("Cap() = %d below Len() = %d", b.Cap(), b.Len())
		}
		if b.Cap() != prevCap && b.Cap() < 2*prevCap {
			t.Errorf("capacity grew from %d to %d, want at least doubling", prevCap, b.Cap())
		}
		prevCap = b.Cap()
	}

	if !bytes.Equal(b.Bytes(), want.Bytes()) {
		t.Errorf("Bytes() = %q, want %q", b.Bytes(), want.Bytes())
	}
	if b.String() != want.String() {
		t.Errorf("String() = %q, want %q", b.String(), want.String())
	}
}

func TestBufferZeroValue(t *testing.T) {
	var b Buffer
	b.Append([]byte("hello"))
	if b.String() != "hello" {
		t.Errorf("String() = %q, want %q", b.String(), "hello")
	}
	if b.Cap() != DefaultBufferSize {
		t.Errorf("Cap() = %d, want %d", b.Cap(), DefaultBufferSize)
	}
}

func TestBufferConsumePrefix(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		n        int
		expected string
	}{
		{name: "partial", initial: "250 ok\r\n354 go", n: 8, expected: "354 go"},
		{name: "zero", initial: "abc", n: 0, expected: "abc"},
		{name: "negative", initial: "abc", n: -1, expected: "abc"},
		{name: "exact length", initial: "abc", n: 3, expected: ""},
		{name: "beyond length", initial: "abc", n: 10, expected: ""},
		{name: "empty buffer", initial: "", n: 1, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(0)
			b.AppendString(tt.initial)
			capBefore := b.Cap()
			n := b.ConsumePrefix(tt.n)
			if n != len(tt.expected) {
				t.Errorf("ConsumePrefix(%d) = %d, want %d", tt.n, n, len(tt.expected))
			}
			if b.String() != tt.expected {
				t.Errorf("String() = %q, want %q", b.String(), tt.expected)
			}
			if b.Cap() != capBefore {
				t.Errorf("Cap() changed from %d to %d", capBefore, b.Cap())
			}
		})
	}
}

func TestBufferIndexAndReset(t *testing.T) {
	b := NewBuffer(0)
	b.Write([]byte("250-a\r\n250 b\r\n"))
	if i := b.Index([]byte("\r\n")); i != 5 {
		t.Errorf("Index() = %d, want 5", i)
	}
	b.Reset()
	if b.Len() != 0 || b.Index([]byte("\r\n")) != -1 {
		t.Errorf("after Reset Len() = %d, Index() = %d", b.Len(), b.Index([]byte("\r\n")))
	}
}
