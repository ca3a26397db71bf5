// Package cnsmtp is a plain SMTP client that composes MIME messages and
// streams them line by line into the DATA phase.
//
// # Session
//
// A Client drives one session over any reader/writer pair. Every verb is a
// blocking round trip:
//
//	client := cnsmtp.NewClient(&cnsmtp.ClientConfig{LocalName: "client.example.com"})
//	client.BindConn(conn)
//	client.ReadWelcome()
//	client.Helo("client.example.com")
//	client.MailFrom("<sender@example.com>")
//	client.RcptTo("<rcpt@example.org>")
//	client.Data(func(w cnio.LineWriter) error {
//	    return msg.WriteLines(76, w)
//	})
//	client.Quit()
//
// A rejected command returns a *ResponseError and leaves the session
// usable. A 421 reply means the server is closing the connection; check it
// with IsServiceClosing or Client.ServiceClosing.
//
// # Mail Builder
//
//	mail, err := cnsmtp.NewMailBuilder().
//	    From("sender@example.com").
//	    To("recipient@example.com").
//	    Subject("Hello").
//	    TextBody("Message content").
//	    AttachFile("report.pdf").
//	    Build()
//	defer mail.Close()
//
// # Dialer
//
// A Dialer resolves the host, connects with fallback across its addresses
// and returns a client that has already sent HELO:
//
//	hosts, _ := cnsmtp.LookupMailHosts(ctx, dns.NewStdResolver(), "example.org")
//	client, err := cnsmtp.NewDialer(hosts[0], 25).DialContext(ctx)
//	result, err := client.SendMail(mail)
package cnsmtp
