package mime

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestEncodeChunk(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "one byte", input: "f", expected: "Zg=="},
		{name: "two bytes", input: "fo", expected: "Zm8="},
		{name: "three bytes", input: "foo", expected: "Zm9v"},
		{name: "RFC 4648 vector", input: "foobar", expected: "Zm9vYmFy"},
		{name: "high bytes", input: "\xff\xfe\xfd", expected: "//79"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(EncodeChunk([]byte(tt.input)))
			if got != tt.expected {
				t.Errorf("EncodeChunk(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEncodeStreamRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 2, 3, 4, 100, base64Block - 1, base64Block, base64Block + 1, 3*base64Block + 2}

	for _, size := range sizes {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i*7 + i/3)
		}

		var out bytes.Buffer
		n, err := EncodeStream(iotest.HalfReader(bytes.NewReader(data)), &out)
		if err != nil {
			t.Fatalf("size %d: EncodeStream() error = %v", size, err)
		}
		if n != int64(out.Len()) {
			t.Errorf("size %d: EncodeStream() = %d, wrote %d", size, n, out.Len())
		}
		if out.Len()%4 != 0 {
			t.Errorf("size %d: output length %d not a multiple of 4", size, out.Len())
		}

		pad := strings.Count(out.String(), "=")
		wantPad := map[int]int{0: 0, 1: 2, 2: 1}[size%3]
		if pad != wantPad {
			t.Errorf("size %d: %d padding chars, want %d", size, pad, wantPad)
		}

		decoded, err := base64.StdEncoding.DecodeString(out.String())
		if err != nil {
			t.Fatalf("size %d: decode error = %v", size, err)
		}
		if !bytes.Equal(decoded, data) {
			t.Errorf("size %d: round trip mismatch", size)
		}
	}
}

func TestEncodeStreamErrors(t *testing.T) {
	t.Run("source failure", func(t *testing.T) {
		_, err := EncodeStream(iotest.ErrReader(errors.New("disk error")), &bytes.Buffer{})
		if !errors.Is(err, ErrSourceRead) {
			t.Errorf("EncodeStream() error = %v, want ErrSourceRead", err)
		}
	})

	t.Run("sink failure", func(t *testing.T) {
		n, err := EncodeStream(strings.NewReader("payload"), failWriter{})
		if !errors.Is(err, ErrSinkWrite) {
			t.Errorf("EncodeStream() error = %v, want ErrSinkWrite", err)
		}
		if n != 0 {
			t.Errorf("EncodeStream() = %d, want 0", n)
		}
	})
}
