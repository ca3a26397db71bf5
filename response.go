package cnsmtp

import (
	"fmt"
	"strings"
)

// SMTPCode represents SMTP reply codes (RFC 5321).
// 2yz: Success, 3yz: Continue, 4yz: Transient failure, 5yz: Permanent failure.
type SMTPCode int

const (
	CodeServiceReady   SMTPCode = 220
	CodeServiceClosing SMTPCode = 221
	CodeOK             SMTPCode = 250

	CodeStartMailInput SMTPCode = 354

	CodeServiceUnavailable SMTPCode = 421
	CodeMailboxUnavailable SMTPCode = 450

	CodeMailboxNotFound   SMTPCode = 550
	CodeTransactionFailed SMTPCode = 554
)

// Response is one complete, possibly multi-line, server reply.
type Response struct {
	// Code is the code of the last line of the reply.
	Code SMTPCode

	// Lines holds the text of every line without code and separator.
	Lines []string
}

// Message joins the reply lines with newlines.
func (r *Response) Message() string {
	return strings.Join(r.Lines, "\n")
}

// Multiline reports whether the reply spanned more than one line.
func (r *Response) Multiline() bool {
	return len(r.Lines) > 1
}

// IsSuccess returns true if the response indicates success (2xx).
func (r *Response) IsSuccess() bool {
	return r.Code >= 200 && r.Code < 300
}

// IsIntermediate returns true if the response is intermediate (3xx).
func (r *Response) IsIntermediate() bool {
	return r.Code >= 300 && r.Code < 400
}

// ServiceClosing reports a 421 reply.
func (r *Response) ServiceClosing() bool {
	return r.Code == CodeServiceUnavailable
}

// Err returns the reply as a *ResponseError.
func (r *Response) Err() error {
	return &ResponseError{Code: r.Code, Message: r.Message()}
}

func (r *Response) String() string {
	return fmt.Sprintf("%d %s", r.Code, r.Message())
}

// parseReplyLine splits a reply line into its code, continuation flag and
// text. A '-' after the code marks a continuation line; anything else, or
// nothing, ends the reply.
func parseReplyLine(line string) (code SMTPCode, more bool, text string, err error) {
	if len(line) < 3 {
		return 0, false, "", fmt.Errorf("%w: line too short: %q", ErrMalformedReply, line)
	}
	for i := 0; i < 3; i++ {
		if line[i] < '0' || line[i] > '9' {
			return 0, false, "", fmt.Errorf("%w: invalid code: %q", ErrMalformedReply, line)
		}
	}
	code = SMTPCode(int(line[0]-'0')*100 + int(line[1]-'0')*10 + int(line[2]-'0'))
	if len(line) == 3 {
		return code, false, "", nil
	}
	return code, line[3] == '-', line[4:], nil
}
