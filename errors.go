package cnsmtp

import (
	"errors"
	"fmt"
)

var (
	ErrChannelRead                = errors.New("smtp: channel read failed")
	ErrChannelWrite               = errors.New("smtp: channel write failed")
	ErrUnexpectedDataContinuation = errors.New("smtp: DATA not answered with 354")
	ErrMalformedReply             = errors.New("smtp: malformed reply")
	ErrNotBound                   = errors.New("smtp: session not bound to a channel")
	ErrSessionClosed              = errors.New("smtp: session closed")
	ErrBadSequence                = errors.New("smtp: command out of sequence")
	ErrDataAborted                = errors.New("smtp: message body aborted")
	ErrInvalidAddress             = errors.New("smtp: invalid address")
	ErrNoRecipients               = errors.New("smtp: no recipients specified")
	ErrNoRecipientsAccepted       = errors.New("smtp: no recipient accepted")
)

// ResponseError is a reply that did not have the expected code.
type ResponseError struct {
	Code    SMTPCode
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("SMTP %d: %s", e.Code, e.Message)
}

// ServiceClosing reports whether the server announced it is closing the
// connection (421). No further commands should be sent.
func (e *ResponseError) ServiceClosing() bool {
	return e.Code == CodeServiceUnavailable
}

// IsPermanent returns true if this is a permanent failure (5xx).
func (e *ResponseError) IsPermanent() bool {
	return e.Code >= 500 && e.Code < 600
}

// IsTransient returns true if this is a transient failure (4xx).
func (e *ResponseError) IsTransient() bool {
	return e.Code >= 400 && e.Code < 500
}

// IsServiceClosing reports whether err carries a 421 reply.
func IsServiceClosing(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.ServiceClosing()
}
