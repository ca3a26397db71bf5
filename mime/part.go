package mime

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrAttachmentUnreadable is returned when an attachment file cannot be opened.
var ErrAttachmentUnreadable = errors.New("mime: attachment unreadable")

// Part is a body part of a Message. Render writes the part's own header
// block, an empty line and the encoded body.
type Part interface {
	ContentType() string
	TransferEncoding() ContentTransferEncoding
	Render(w io.Writer) error
}

// PlainText is a 7bit US-ASCII text part. The text is written verbatim.
type PlainText struct {
	Text string
}

// NewPlainText returns a text part holding s.
func NewPlainText(s string) *PlainText {
	return &PlainText{Text: s}
}

func (p *PlainText) ContentType() string { return "text/plain; charset=US-ASCII" }

func (p *PlainText) TransferEncoding() ContentTransferEncoding { return Encoding7Bit }

func (p *PlainText) Render(w io.Writer) error {
	if _, err := writePartHeader(w, p, nil); err != nil {
		return err
	}
	if _, err := io.WriteString(w, p.Text); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
	return nil
}

// Attachment is a binary part whose content is base64 encoded from a
// seekable source each time it is rendered.
type Attachment struct {
	filename string
	src      io.ReadSeeker
}

// NewAttachment returns an attachment named after the last path segment of
// name, reading its content from src. If src is an io.Closer it is closed by
// Close.
func NewAttachment(name string, src io.ReadSeeker) *Attachment {
	return &Attachment{filename: filepath.Base(name), src: src}
}

// OpenAttachment opens the file at path for an attachment part. The file
// stays open until Close.
func OpenAttachment(path string) (*Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAttachmentUnreadable, err)
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrAttachmentUnreadable, path)
	}
	return NewAttachment(path, f), nil
}

// Filename returns the name announced in the part headers.
func (a *Attachment) Filename() string { return a.filename }

func (a *Attachment) ContentType() string {
	return `application/x-msdownload; name="` + a.filename + `"`
}

func (a *Attachment) TransferEncoding() ContentTransferEncoding { return EncodingBase64 }

func (a *Attachment) Render(w io.Writer) error {
	extra := Headers{{Name: "Content-Disposition", Value: `attachment; filename="` + a.filename + `"`}}
	if _, err := writePartHeader(w, a, extra); err != nil {
		return err
	}
	if _, err := a.src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", ErrSourceRead, err)
	}
	_, err := EncodeStream(a.src, w)
	return err
}

// Close releases the underlying source.
func (a *Attachment) Close() error {
	if c, ok := a.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// writePartHeader writes the header block of a part followed by the empty
// separator line.
func writePartHeader(w io.Writer, p Part, extra Headers) (int64, error) {
	h := Headers{
		{Name: "Content-Type", Value: p.ContentType()},
		{Name: "Content-Transfer-Encoding", Value: string(p.TransferEncoding())},
	}
	h = append(h, extra...)
	n, err := h.WriteTo(w)
	if err == nil {
		var m int
		m, err = io.WriteString(w, "\r\n")
		n += int64(m)
	}
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
	return n, nil
}
