package cnsmtp

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime"
	"time"

	"github.com/oklog/ulid/v2"

	cnmime "github.com/robertabcd/cn-smtp-client/mime"
	"github.com/robertabcd/cn-smtp-client/utils"
)

// Mail is a message together with its envelope.
type Mail struct {
	Envelope Envelope
	Message  *cnmime.Message

	// ID is the ULID used in the generated Message-ID.
	ID string
}

// Close releases the attachments of the message.
func (m *Mail) Close() error {
	return m.Message.Close()
}

// MailBuilder provides a fluent API for constructing Mail objects.
// Errors are collected and reported by Build.
type MailBuilder struct {
	fromPath  string
	to        []string
	cc        []string
	envelope  []string
	subject   string
	messageID string
	date      time.Time
	headers   cnmime.Headers
	parts     []cnmime.Part
	rnd       *rand.Rand
	errors    []error
}

// NewMailBuilder creates a new MailBuilder instance.
func NewMailBuilder() *MailBuilder {
	return &MailBuilder{}
}

// From sets the envelope sender and the From header.
func (b *MailBuilder) From(address string) *MailBuilder {
	path, err := NormalizeAddress(address)
	if err != nil {
		b.errors = append(b.errors, fmt.Errorf("from: %w", err))
		return b
	}
	b.fromPath = path
	return b
}

// To adds recipients listed in the To header.
func (b *MailBuilder) To(addresses ...string) *MailBuilder {
	b.to = append(b.to, b.recipients("to", addresses)...)
	return b
}

// Cc adds recipients listed in the Cc header.
func (b *MailBuilder) Cc(addresses ...string) *MailBuilder {
	b.cc = append(b.cc, b.recipients("cc", addresses)...)
	return b
}

// Bcc adds recipients that appear only in the envelope.
func (b *MailBuilder) Bcc(addresses ...string) *MailBuilder {
	b.recipients("bcc", addresses)
	return b
}

func (b *MailBuilder) recipients(field string, addresses []string) []string {
	out := make([]string, 0, len(addresses))
	for _, a := range addresses {
		path, err := NormalizeAddress(a)
		if err != nil {
			b.errors = append(b.errors, fmt.Errorf("%s: %w", field, err))
			continue
		}
		out = append(out, path)
		b.envelope = append(b.envelope, path)
	}
	return out
}

// Subject sets the Subject header. Non-ASCII text is encoded per RFC 2047.
func (b *MailBuilder) Subject(subject string) *MailBuilder {
	b.subject = subject
	return b
}

// Header sets an additional header.
func (b *MailBuilder) Header(name, value string) *MailBuilder {
	b.headers.Set(name, value)
	return b
}

// MessageID overrides the generated Message-ID.
func (b *MailBuilder) MessageID(id string) *MailBuilder {
	b.messageID = id
	return b
}

// Date sets the Date header. Default: time of Build.
func (b *MailBuilder) Date(t time.Time) *MailBuilder {
	b.date = t
	return b
}

// Rand sets the source of the multipart boundary.
func (b *MailBuilder) Rand(rnd *rand.Rand) *MailBuilder {
	b.rnd = rnd
	return b
}

// TextBody adds a plain text part.
func (b *MailBuilder) TextBody(body string) *MailBuilder {
	b.parts = append(b.parts, cnmime.NewPlainText(body))
	return b
}

// AttachFile opens path and adds it as a base64 attachment.
func (b *MailBuilder) AttachFile(path string) *MailBuilder {
	a, err := cnmime.OpenAttachment(path)
	if err != nil {
		b.errors = append(b.errors, err)
		return b
	}
	b.parts = append(b.parts, a)
	return b
}

// Attach adds src as a base64 attachment named name.
func (b *MailBuilder) Attach(name string, src io.ReadSeeker) *MailBuilder {
	b.parts = append(b.parts, cnmime.NewAttachment(name, src))
	return b
}

// Build validates the collected input and assembles the message. On error
// every attachment opened by the builder is closed.
func (b *MailBuilder) Build() (*Mail, error) {
	if b.fromPath == "" {
		b.errors = append(b.errors, errors.New("from address is required"))
	}
	if len(b.envelope) == 0 {
		b.errors = append(b.errors, ErrNoRecipients)
	}
	if len(b.errors) > 0 {
		b.closeParts()
		return nil, fmt.Errorf("mail builder: %w", errors.Join(b.errors...))
	}

	id := ulid.Make().String()
	msg := cnmime.NewMessage(b.rnd)
	msg.SetHeader("From", b.fromPath)
	if len(b.to) > 0 {
		msg.SetHeader("To", JoinAddresses(b.to))
	}
	if len(b.cc) > 0 {
		msg.SetHeader("Cc", JoinAddresses(b.cc))
	}
	if b.subject != "" {
		msg.SetHeader("Subject", encodeHeaderValue(b.subject))
	}

	date := b.date
	if date.IsZero() {
		date = time.Now()
	}
	msg.SetHeader("Date", date.Format(time.RFC1123Z))

	messageID := b.messageID
	if messageID == "" {
		domain := "localhost"
		if _, d, ok := utils.SplitAddress(b.fromPath); ok {
			domain = d
		}
		messageID = "<" + id + "@" + domain + ">"
	}
	msg.SetHeader("Message-ID", messageID)

	for _, h := range b.headers {
		msg.SetHeader(h.Name, h.Value)
	}
	for _, p := range b.parts {
		msg.AddPart(p)
	}

	return &Mail{
		Envelope: Envelope{From: b.fromPath, To: b.envelope},
		Message:  msg,
		ID:       id,
	}, nil
}

func (b *MailBuilder) closeParts() {
	for _, p := range b.parts {
		if c, ok := p.(io.Closer); ok {
			c.Close()
		}
	}
	b.parts = nil
}

// encodeHeaderValue applies RFC 2047 B-encoding to non-ASCII text.
func encodeHeaderValue(s string) string {
	if !utils.ContainsNonASCII(s) {
		return s
	}
	return mime.BEncoding.Encode("UTF-8", s)
}
