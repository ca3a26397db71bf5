// Command cn-smtp-client sends one message, with optional attachments, to
// an SMTP relay or to the mail exchanger of its first recipient.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	cnsmtp "github.com/robertabcd/cn-smtp-client"
	"github.com/robertabcd/cn-smtp-client/dns"
	"github.com/robertabcd/cn-smtp-client/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: opts.slogLevel()}))

	mail, err := buildMail(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer mail.Close()

	hosts, err := mailHosts(ctx, opts, logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	client, err := dial(ctx, opts, hosts, logger)
	if err != nil {
		fmt.Fprintln(stderr, "Unable to connect:", err)
		return 1
	}

	result, err := client.SendMail(mail)
	if err != nil {
		fmt.Fprintln(stderr, "[Error]")
		fmt.Fprintln(stderr, client.Message())
		if !cnsmtp.IsServiceClosing(err) {
			client.Quit()
		}
		client.Close()
		return 1
	}

	for _, rr := range result.RecipientResults {
		if !rr.Accepted {
			fmt.Fprintf(stderr, "recipient %s rejected: %v\n", rr.Address, rr.Error)
		}
	}
	if err := client.Quit(); err != nil {
		logger.Warn("QUIT failed", "error", err)
	}
	fmt.Fprintln(stderr, "message sent")
	fmt.Fprintln(stderr, result.Response.Message())
	return 0
}

func buildMail(opts *options) (*cnsmtp.Mail, error) {
	content := opts.Content
	if opts.ContentFile != "" {
		data, err := os.ReadFile(opts.ContentFile)
		if err != nil {
			return nil, fmt.Errorf("cannot open content file: %w", err)
		}
		content = string(data)
	}

	b := cnsmtp.NewMailBuilder().
		From(opts.From).
		To(opts.To...).
		TextBody(content)
	if len(opts.Cc) > 0 {
		b.Cc(opts.Cc...)
	}
	if opts.Subject != "" {
		b.Subject(opts.Subject)
	}
	for _, path := range opts.Attachments {
		b.AttachFile(path)
	}
	return b.Build()
}

// mailHosts returns the hosts to try in order.
func mailHosts(ctx context.Context, opts *options, logger *slog.Logger) ([]string, error) {
	if opts.Server.Host != "" {
		return []string{opts.Server.Host}, nil
	}

	_, domain, ok := utils.SplitAddress(opts.To[0])
	if !ok {
		return nil, fmt.Errorf("%w: %q", cnsmtp.ErrInvalidAddress, opts.To[0])
	}
	resolver := dns.NewResolver(dns.ResolverConfig{
		Nameservers: opts.Server.Nameservers,
	})
	hosts, err := cnsmtp.LookupMailHosts(ctx, resolver, domain)
	if err != nil {
		return nil, fmt.Errorf("MX lookup for %s: %w", domain, err)
	}
	logger.Info("mail hosts", "domain", domain, "hosts", hosts)
	return hosts, nil
}

// dial connects to the first host that answers.
func dial(ctx context.Context, opts *options, hosts []string, logger *slog.Logger) (*cnsmtp.Client, error) {
	var errs []error
	for _, host := range hosts {
		d := cnsmtp.NewDialer(host, opts.Server.Port)
		d.LocalName = opts.Server.Helo
		d.ConnectTimeout = opts.Server.ConnectTimeout
		d.ReadTimeout = opts.Server.ReadTimeout
		d.WriteTimeout = opts.Server.WriteTimeout
		d.LineWidth = opts.LineWidth
		d.Logger = logger

		client, err := d.DialContext(ctx)
		if err == nil {
			return client, nil
		}
		logger.Warn("host failed", "host", host, "error", err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}
