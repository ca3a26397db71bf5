package cnsmtp

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	cnio "github.com/robertabcd/cn-smtp-client/io"
	"github.com/robertabcd/cn-smtp-client/utils"
)

// State is the protocol state of a Client.
type State int

const (
	StateUnbound   State = iota // no channel bound yet
	StateConnected              // channel bound, welcome not read
	StateReady                  // welcome accepted, commands may be sent
	StateData                   // message body being transferred
	StateClosed                 // QUIT sent or channel failed
)

var stateNames = [...]string{"unbound", "connected", "ready", "data", "closed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// BodyFunc streams a message body one line at a time. Lines must not carry
// their terminator; dot-stuffing and CRLF are added by the client.
type BodyFunc func(w cnio.LineWriter) error

// Client is an SMTP session over a bound reader/writer pair.
//
// Every verb is a blocking request/response round trip that succeeds only
// on the expected reply code. A rejected command leaves the session usable;
// a channel failure closes it. A Client is not safe for concurrent use.
type Client struct {
	config *ClientConfig
	logger *slog.Logger

	r      io.Reader
	w      io.Writer
	closer io.Closer
	reader *cnio.LineReader
	writer *bufio.Writer

	msg       *cnio.Buffer
	code      SMTPCode
	multiline bool
	last      *Response
	state     State
}

// NewClient creates a new, unbound SMTP client.
func NewClient(config *ClientConfig) *Client {
	config = config.withDefaults()
	return &Client{
		config: config,
		logger: config.Logger.With("session", utils.GenerateID()),
		msg:    cnio.NewBuffer(0),
		code:   -1,
	}
}

// Bind attaches the session to a reader and a writer. Deadlines from the
// configuration are applied when they support SetReadDeadline or
// SetWriteDeadline.
func (c *Client) Bind(r io.Reader, w io.Writer) {
	c.r = r
	c.w = w
	c.reader = cnio.NewLineReader(r, c.config.MaxReplyLineLength)
	c.writer = bufio.NewWriter(w)
	c.state = StateConnected
}

// BindConn binds the session to a network connection, which is closed when
// the session ends.
func (c *Client) BindConn(conn net.Conn) {
	c.Bind(conn, conn)
	c.closer = conn
}

// State returns the current protocol state.
func (c *Client) State() State { return c.state }

// Code returns the code of the last reply, or -1 before the first one.
func (c *Client) Code() SMTPCode { return c.code }

// Message returns the text of the last reply, lines joined by newlines.
func (c *Client) Message() string { return c.msg.String() }

// Multiline reports whether the last reply spanned several lines.
func (c *Client) Multiline() bool { return c.multiline }

// LastResponse returns the last reply, or nil.
func (c *Client) LastResponse() *Response { return c.last }

// ServiceClosing reports whether the last reply was a 421.
func (c *Client) ServiceClosing() bool { return c.code == CodeServiceUnavailable }

// ReadWelcome reads the server greeting, which must be positive.
func (c *Client) ReadWelcome() error {
	if err := c.check(StateConnected); err != nil {
		return err
	}
	resp, err := c.readResponse()
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return resp.Err()
	}
	c.state = StateReady
	return nil
}

// Helo identifies the client.
func (c *Client) Helo(identity string) error {
	return c.simple("HELO %s", identity)
}

// MailFrom starts a mail transaction. addr is sent verbatim and should be
// angle-bracketed, see NormalizeAddress.
func (c *Client) MailFrom(addr string) error {
	return c.simple("MAIL FROM:%s", addr)
}

// RcptTo adds a recipient. addr is sent verbatim.
func (c *Client) RcptTo(addr string) error {
	return c.simple("RCPT TO:%s", addr)
}

// Reset aborts the current mail transaction with RSET.
func (c *Client) Reset() error {
	return c.simple("RSET")
}

// Data sends DATA, streams the lines produced by body and terminates the
// message. The server must answer DATA with 354 and accept the message
// with a 2xx reply.
//
// If body fails the end-of-data marker is not sent, since the server would
// accept a truncated message, and the session is closed.
func (c *Client) Data(body BodyFunc) error {
	if err := c.check(StateReady); err != nil {
		return err
	}
	if err := c.writeCommand("DATA"); err != nil {
		return err
	}
	resp, err := c.readResponse()
	if err != nil {
		return err
	}
	if resp.Code != CodeStartMailInput {
		return fmt.Errorf("%w: %w", ErrUnexpectedDataContinuation, resp.Err())
	}

	c.state = StateData
	dw := cnio.NewDotWriter(c.writer)
	lw := cnio.LineWriterFunc(func(line []byte) error {
		c.setWriteDeadline()
		if err := dw.WriteLine(line); err != nil {
			return c.fail(ErrChannelWrite, err)
		}
		return nil
	})

	if err := body(lw); err != nil {
		c.abort()
		return fmt.Errorf("%w: %w", ErrDataAborted, err)
	}

	c.setWriteDeadline()
	if err := dw.Close(); err != nil {
		return c.fail(ErrChannelWrite, err)
	}
	if err := c.writer.Flush(); err != nil {
		return c.fail(ErrChannelWrite, err)
	}
	c.logger.Debug("smtp data sent", "lines", dw.Lines())

	resp, err = c.readResponse()
	if err != nil {
		return err
	}
	c.state = StateReady
	if !resp.IsSuccess() {
		return resp.Err()
	}
	return nil
}

// Quit sends QUIT and reads the reply. The session is closed afterwards
// whatever the reply code, and a connection bound with BindConn is closed.
func (c *Client) Quit() error {
	switch c.state {
	case StateUnbound:
		return ErrNotBound
	case StateClosed:
		return ErrSessionClosed
	}
	defer c.abort()

	if err := c.writeCommand("QUIT"); err != nil {
		return err
	}
	_, err := c.readResponse()
	return err
}

// Close closes a connection bound with BindConn without sending QUIT.
func (c *Client) Close() error {
	if c.state == StateUnbound {
		return nil
	}
	c.state = StateClosed
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}

// abort moves the session to StateClosed and releases the connection.
func (c *Client) abort() {
	c.Close()
}

// check verifies the session is in the wanted state.
func (c *Client) check(want State) error {
	switch c.state {
	case want:
		return nil
	case StateUnbound:
		return ErrNotBound
	case StateClosed:
		return ErrSessionClosed
	}
	return fmt.Errorf("%w: %s in state %s", ErrBadSequence, want, c.state)
}

// simple sends a command that expects a positive reply.
func (c *Client) simple(format string, args ...any) error {
	if err := c.check(StateReady); err != nil {
		return err
	}
	if err := c.writeCommand(format, args...); err != nil {
		return err
	}
	resp, err := c.readResponse()
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return resp.Err()
	}
	return nil
}

// fail closes the session after a channel error and wraps it.
func (c *Client) fail(kind, err error) error {
	c.abort()
	return fmt.Errorf("%w: %w", kind, err)
}

func (c *Client) setWriteDeadline() {
	if c.config.WriteTimeout <= 0 {
		return
	}
	if d, ok := c.w.(interface{ SetWriteDeadline(time.Time) error }); ok {
		d.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	}
}

func (c *Client) setReadDeadline() {
	if c.config.ReadTimeout <= 0 {
		return
	}
	if d, ok := c.r.(interface{ SetReadDeadline(time.Time) error }); ok {
		d.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	}
}

// writeCommand sends a command to the server.
func (c *Client) writeCommand(format string, args ...any) error {
	cmd := fmt.Sprintf(format, args...)
	c.logger.Debug("smtp command", "cmd", cmd)

	c.setWriteDeadline()
	if _, err := c.writer.WriteString(cmd + "\r\n"); err != nil {
		return c.fail(ErrChannelWrite, err)
	}
	if err := c.writer.Flush(); err != nil {
		return c.fail(ErrChannelWrite, err)
	}
	return nil
}

// readResponse reads one complete reply. The code of the last line wins.
func (c *Client) readResponse() (*Response, error) {
	c.msg.Reset()
	resp := &Response{}

	for {
		c.setReadDeadline()
		line, err := c.reader.ReadLine()
		if err != nil {
			return nil, c.fail(ErrChannelRead, err)
		}

		code, more, text, err := parseReplyLine(line)
		if err != nil {
			return nil, c.fail(ErrChannelRead, err)
		}

		if len(resp.Lines) > 0 {
			c.msg.AppendString("\n")
		}
		c.msg.AppendString(text)
		resp.Lines = append(resp.Lines, text)
		resp.Code = code

		if !more {
			break
		}
	}

	c.code = resp.Code
	c.multiline = resp.Multiline()
	c.last = resp
	c.logger.Debug("smtp reply", "code", int(resp.Code), "multiline", c.multiline)
	return resp, nil
}
