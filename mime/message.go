package mime

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	cnio "github.com/robertabcd/cn-smtp-client/io"
)

const (
	boundaryPrefix = "BOUNDARY-"
	boundaryChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	boundaryLen    = 16
)

// Message is a MIME message made of ordered headers and ordered parts.
//
// With no parts only the headers are rendered. A single part is rendered
// inline, its own header block continuing the message headers. Two or more
// parts are rendered as multipart/mixed.
type Message struct {
	headers  Headers
	parts    []Part
	boundary string
	rnd      *rand.Rand
}

// NewMessage returns a message carrying "Mime-Version: 1.0". Boundaries are
// drawn from rnd; a nil rnd uses the automatically seeded global source.
func NewMessage(rnd *rand.Rand) *Message {
	m := &Message{rnd: rnd}
	m.headers.Set("Mime-Version", "1.0")
	return m
}

// SetHeader sets a message header, replacing an existing field of the same
// name in place. It returns the number of header fields.
func (m *Message) SetHeader(name, value string) int {
	return m.headers.Set(name, value)
}

// Header returns the value of a message header.
func (m *Message) Header(name string) string {
	return m.headers.Get(name)
}

// Headers returns a copy of the message headers in order.
func (m *Message) Headers() Headers {
	return append(Headers(nil), m.headers...)
}

// AddPart appends p and returns the number of parts.
func (m *Message) AddPart(p Part) int {
	m.parts = append(m.parts, p)
	return len(m.parts)
}

// Parts returns the parts in rendering order.
func (m *Message) Parts() []Part {
	return m.parts
}

// SetBoundary fixes the multipart boundary. An empty string discards the
// current one so a new random boundary is generated on next use.
func (m *Message) SetBoundary(b string) {
	m.boundary = b
}

// Boundary returns the multipart boundary, generating it on first use.
func (m *Message) Boundary() string {
	if m.boundary == "" {
		m.boundary = m.newBoundary()
	}
	return m.boundary
}

func (m *Message) newBoundary() string {
	b := make([]byte, 0, len(boundaryPrefix)+boundaryLen)
	b = append(b, boundaryPrefix...)
	for range boundaryLen {
		var i int
		if m.rnd != nil {
			i = m.rnd.IntN(len(boundaryChars))
		} else {
			i = rand.IntN(len(boundaryChars))
		}
		b = append(b, boundaryChars[i])
	}
	return string(b)
}

// Render writes the complete message to w.
func (m *Message) Render(w io.Writer) error {
	if _, err := m.headers.WriteTo(w); err != nil {
		return sinkError(err)
	}

	switch len(m.parts) {
	case 0:
		return nil
	case 1:
		if err := m.parts[0].Render(w); err != nil {
			return err
		}
		return writeString(w, "\r\n")
	}

	b := m.Boundary()
	if err := writeString(w, `Content-Type: multipart/mixed; boundary="`+b+"\"\r\n\r\n"); err != nil {
		return err
	}
	for _, p := range m.parts {
		if err := writeString(w, "--"+b+"\r\n"); err != nil {
			return err
		}
		if err := p.Render(w); err != nil {
			return err
		}
		if err := writeString(w, "\r\n"); err != nil {
			return err
		}
	}
	return writeString(w, "--"+b+"--\r\n")
}

// WriteLines renders the message through a LineWrapper of the given width,
// delivering each line to lw.
func (m *Message) WriteLines(width int, lw cnio.LineWriter) error {
	wrapper := cnio.NewLineWrapper(width, lw)
	if err := m.Render(wrapper); err != nil {
		return err
	}
	if err := wrapper.Flush(); err != nil {
		return sinkError(err)
	}
	return nil
}

// Close releases every part holding an open source.
func (m *Message) Close() error {
	var errs []error
	for _, p := range m.parts {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func writeString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return sinkError(err)
	}
	return nil
}

func sinkError(err error) error {
	if errors.Is(err, ErrSinkWrite) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrSinkWrite, err)
}
