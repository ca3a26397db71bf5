package mime

import (
	"io"
	"strings"
)

// ContentTransferEncoding represents the encoding used for the MIME part's body.
type ContentTransferEncoding string

const (
	// Encoding7Bit is for 7-bit ASCII data (RFC 2045 default).
	Encoding7Bit ContentTransferEncoding = "7bit"
	// EncodingBase64 is for base64 encoding.
	EncodingBase64 ContentTransferEncoding = "base64"
)

// Header represents a MIME header field.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered list of header fields with case-insensitive names.
type Headers []Header

// Set replaces the value of the first field named name, or appends a new
// field when there is none. It returns the number of fields.
func (h *Headers) Set(name, value string) int {
	for i := range *h {
		if strings.EqualFold((*h)[i].Name, name) {
			(*h)[i].Value = value
			return len(*h)
		}
	}
	*h = append(*h, Header{Name: name, Value: value})
	return len(*h)
}

// Get returns the value of the field named name, or "".
func (h Headers) Get(name string) string {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// Has reports whether a field named name exists.
func (h Headers) Has(name string) bool {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// WriteTo writes each field as "Name: Value\r\n" in order.
func (h Headers) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, f := range h {
		n, err := writeStrings(w, f.Name, ": ", f.Value, "\r\n")
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func writeStrings(w io.Writer, parts ...string) (int64, error) {
	var total int64
	for _, s := range parts {
		n, err := io.WriteString(w, s)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
