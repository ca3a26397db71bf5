package cnsmtp

import (
	"errors"
	"strings"
	"testing"

	cnmime "github.com/robertabcd/cn-smtp-client/mime"
)

func plainMessage(text string) *cnmime.Message {
	msg := cnmime.NewMessage(nil)
	msg.SetHeader("Subject", "test")
	msg.AddPart(cnmime.NewPlainText(text))
	return msg
}

func TestSendWrapsBody(t *testing.T) {
	c, out := readyClient(t,
		"250 sender ok",
		"250 rcpt ok",
		"354 go ahead",
		"250 2.0.0 Ok: queued as 4F2A1C",
	)
	c.config.LineWidth = 20

	env := Envelope{From: "<a@example.com>", To: []string{"<b@example.org>"}}
	result, err := c.Send(env, plainMessage("the quick brown fox jumps over\n.lazy dogs"))
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !result.Success || result.Accepted() != 1 {
		t.Errorf("result = %+v", result)
	}
	if result.QueueID != "4F2A1C" {
		t.Errorf("QueueID = %q, want 4F2A1C", result.QueueID)
	}
	if result.Response == nil || result.Response.Code != CodeOK {
		t.Errorf("Response = %v", result.Response)
	}

	want := "MAIL FROM:<a@example.com>\r\n" +
		"RCPT TO:<b@example.org>\r\n" +
		"DATA\r\n" +
		"Mime-Version: 1.0\r\n" +
		"Subject: test\r\n" +
		"Content-Type:\r\n" +
		"text/plain;\r\n" +
		"charset=US-ASCII\r\n" +
		"Content-Transfer-Enc\r\n" +
		"oding: 7bit\r\n" +
		"\r\n" +
		"the quick brown fox\r\n" +
		"jumps over\r\n" +
		"..lazy dogs\r\n" +
		".\r\n"
	if out.String() != want {
		t.Errorf("transcript =\n%s\nwant\n%s", out.String(), want)
	}
	for _, line := range strings.Split(strings.TrimSuffix(out.String(), "\r\n"), "\r\n") {
		if len(line) > 20 {
			t.Errorf("line %q longer than width", line)
		}
	}
}

func TestSendPartialRecipients(t *testing.T) {
	c, out := readyClient(t,
		"250 ok",
		"550 5.1.1 unknown user",
		"250 ok",
		"450 4.2.1 try later",
		"354 go",
		"250 ok",
	)

	env := Envelope{
		From: "<a@example.com>",
		To:   []string{"<x@example.org>", "<b@example.org>", "<c@example.org>"},
	}
	result, err := c.Send(env, plainMessage("hi"))
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if result.Accepted() != 1 || len(result.RecipientResults) != 3 {
		t.Fatalf("RecipientResults = %+v", result.RecipientResults)
	}

	rejected := result.RecipientResults[0]
	var re *ResponseError
	if rejected.Accepted || !errors.As(rejected.Error, &re) || re.Code != 550 {
		t.Errorf("first recipient = %+v", rejected)
	}
	if rejected.Response == nil || rejected.Response.Code != 550 {
		t.Errorf("first recipient response = %v", rejected.Response)
	}
	if !result.RecipientResults[1].Accepted {
		t.Error("second recipient not accepted")
	}
	if !strings.Contains(out.String(), "DATA\r\n") {
		t.Error("DATA not sent")
	}
}

func TestSendNoRecipientAccepted(t *testing.T) {
	c, out := readyClient(t,
		"250 ok",
		"550 no",
		"250 reset",
	)

	env := Envelope{From: "<a@example.com>", To: []string{"<x@example.org>"}}
	result, err := c.Send(env, plainMessage("hi"))
	if !errors.Is(err, ErrNoRecipientsAccepted) {
		t.Fatalf("Send() error = %v, want ErrNoRecipientsAccepted", err)
	}
	if result == nil || result.Success {
		t.Errorf("result = %+v", result)
	}
	if !strings.HasSuffix(out.String(), "RSET\r\n") || strings.Contains(out.String(), "DATA") {
		t.Errorf("transcript = %q", out.String())
	}
	if c.State() != StateReady {
		t.Errorf("State() = %v, want ready", c.State())
	}
}

func TestSendStopsOnServiceClosing(t *testing.T) {
	c, out := readyClient(t,
		"250 ok",
		"421 4.4.2 closing connection",
	)

	env := Envelope{From: "<a@example.com>", To: []string{"<x@example.org>", "<y@example.org>"}}
	result, err := c.Send(env, plainMessage("hi"))
	if !IsServiceClosing(err) {
		t.Fatalf("Send() error = %v, want 421", err)
	}
	if len(result.RecipientResults) != 1 {
		t.Errorf("RecipientResults = %+v, want one attempt", result.RecipientResults)
	}
	if strings.Contains(out.String(), "<y@example.org>") {
		t.Error("RCPT sent after 421")
	}
}

func TestSendErrors(t *testing.T) {
	c, _ := readyClient(t, "501 bad sender")

	if _, err := c.Send(Envelope{From: "<a@example.com>"}, plainMessage("x")); !errors.Is(err, ErrNoRecipients) {
		t.Errorf("Send() without recipients error = %v", err)
	}

	_, err := c.Send(Envelope{From: "<bad>", To: []string{"<b@example.org>"}}, plainMessage("x"))
	var re *ResponseError
	if !errors.As(err, &re) || re.Code != 501 {
		t.Errorf("Send() error = %v, want 501", err)
	}
}

func TestExtractQueueID(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{msg: "2.0.0 Ok: queued as 4F2A1C", want: "4F2A1C"},
		{msg: "OK id=1abcde-0001", want: "1abcde-0001"},
		{msg: "Ok <20260101.123@mx.example.org>", want: "<20260101.123@mx.example.org>"},
		{msg: "2.0.0 Ok", want: ""},
		{msg: "", want: ""},
	}

	for _, tt := range tests {
		if got := extractQueueID(tt.msg); got != tt.want {
			t.Errorf("extractQueueID(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}
