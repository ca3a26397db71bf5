package cnsmtp

import (
	"errors"
	"fmt"
	"strings"

	cnio "github.com/robertabcd/cn-smtp-client/io"
	cnmime "github.com/robertabcd/cn-smtp-client/mime"
)

// Envelope is the SMTP envelope of a message. Addresses are sent verbatim
// and are expected in angle brackets, see NormalizeAddress.
type Envelope struct {
	From string
	To   []string
}

// SendResult contains the result of a mail transaction.
type SendResult struct {
	// Success indicates the overall transaction succeeded.
	Success bool

	// QueueID is the identifier the server reported for the accepted
	// message, if any.
	QueueID string

	// Response is the final server response.
	Response *Response

	// RecipientResults contains per-recipient acceptance status.
	RecipientResults []RecipientResult
}

// Accepted returns the number of accepted recipients.
func (r *SendResult) Accepted() int {
	n := 0
	for _, rr := range r.RecipientResults {
		if rr.Accepted {
			n++
		}
	}
	return n
}

// RecipientResult contains the result for a single recipient.
type RecipientResult struct {
	Address  string
	Accepted bool
	Response *Response

	// Error is set if the recipient was rejected.
	Error error
}

// Send runs one mail transaction on a ready session: MAIL FROM, one RCPT
// TO per recipient, then DATA with msg wrapped at the configured line
// width. A rejected recipient does not stop the others; the message is
// sent if at least one was accepted.
//
// A 421 reply at any point ends the transaction and is returned as a
// *ResponseError, see IsServiceClosing.
func (c *Client) Send(env Envelope, msg *cnmime.Message) (*SendResult, error) {
	if len(env.To) == 0 {
		return nil, ErrNoRecipients
	}

	result := &SendResult{
		RecipientResults: make([]RecipientResult, 0, len(env.To)),
	}

	if err := c.MailFrom(env.From); err != nil {
		return result, fmt.Errorf("MAIL FROM: %w", err)
	}

	for _, rcpt := range env.To {
		rr := c.sendRcptTo(rcpt)
		result.RecipientResults = append(result.RecipientResults, rr)
		if rr.Error == nil || rr.Accepted {
			continue
		}
		if c.ServiceClosing() || !isResponseError(rr.Error) {
			return result, rr.Error
		}
	}

	if result.Accepted() == 0 {
		// The transaction is abandoned either way.
		if err := c.Reset(); err != nil {
			c.logger.Debug("RSET failed", "error", err)
		}
		return result, ErrNoRecipientsAccepted
	}

	err := c.Data(func(lw cnio.LineWriter) error {
		return msg.WriteLines(c.config.LineWidth, lw)
	})
	result.Response = c.last
	if err != nil {
		return result, err
	}

	result.QueueID = extractQueueID(c.Message())
	result.Success = true
	c.logger.Info("message accepted",
		"from", env.From,
		"recipients", result.Accepted(),
		"queue_id", result.QueueID,
	)
	return result, nil
}

// SendMail sends a message built with MailBuilder.
func (c *Client) SendMail(mail *Mail) (*SendResult, error) {
	return c.Send(mail.Envelope, mail.Message)
}

func (c *Client) sendRcptTo(addr string) RecipientResult {
	rr := RecipientResult{Address: addr}
	err := c.RcptTo(addr)
	rr.Response = c.last
	if err != nil {
		rr.Error = err
		c.logger.Warn("recipient rejected", "rcpt", addr, "error", err)
		return rr
	}
	rr.Accepted = true
	return rr
}

func isResponseError(err error) bool {
	var re *ResponseError
	return errors.As(err, &re)
}

// extractQueueID tries to extract a queue identifier from the final reply.
// Common patterns: "queued as ABC123", "id=ABC123", "<ABC123@server>".
func extractQueueID(msg string) string {
	msg = strings.TrimSpace(msg)

	if start := strings.Index(msg, "<"); start != -1 {
		if end := strings.Index(msg[start:], ">"); end != -1 {
			return msg[start : start+end+1]
		}
	}

	lower := strings.ToLower(msg)
	for _, marker := range []string{"queued as ", "id="} {
		if idx := strings.Index(lower, marker); idx != -1 {
			if fields := strings.Fields(msg[idx+len(marker):]); len(fields) > 0 {
				return fields[0]
			}
		}
	}
	return ""
}
