package cnsmtp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/robertabcd/cn-smtp-client/dns"
	"github.com/robertabcd/cn-smtp-client/utils"
)

// DefaultPort is the SMTP relay port.
const DefaultPort = 25

// ErrNoAddresses is returned when a host resolves to no usable address.
var ErrNoAddresses = errors.New("smtp: host has no addresses")

// Dialer provides methods for establishing SMTP sessions.
type Dialer struct {
	Host      string
	Port      int
	LocalName string

	// Resolver looks up the addresses of Host. Default: dns.NewStdResolver().
	Resolver dns.Resolver

	ConnectTimeout     time.Duration
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	MaxReplyLineLength int
	LineWidth          int
	Logger             *slog.Logger
}

// NewDialer creates a new Dialer with sensible defaults.
func NewDialer(host string, port int) *Dialer {
	if port == 0 {
		port = DefaultPort
	}
	return &Dialer{
		Host:           host,
		Port:           port,
		ConnectTimeout: 30 * time.Second,
		ReadTimeout:    5 * time.Minute,
		WriteTimeout:   5 * time.Minute,
	}
}

// Dial establishes a new session.
func (d *Dialer) Dial() (*Client, error) {
	return d.DialContext(context.Background())
}

// DialContext resolves Host, connects to its addresses in turn until one
// accepts, reads the welcome and sends HELO. The returned client is ready
// for a mail transaction.
func (d *Dialer) DialContext(ctx context.Context) (*Client, error) {
	config := (&ClientConfig{
		LocalName:          d.LocalName,
		ConnectTimeout:     d.ConnectTimeout,
		ReadTimeout:        d.ReadTimeout,
		WriteTimeout:       d.WriteTimeout,
		MaxReplyLineLength: d.MaxReplyLineLength,
		LineWidth:          d.LineWidth,
		Logger:             d.Logger,
	}).withDefaults()

	conn, err := d.connect(ctx, config)
	if err != nil {
		return nil, err
	}

	client := NewClient(config)
	client.BindConn(conn)

	if err := client.ReadWelcome(); err != nil {
		client.Close()
		return nil, fmt.Errorf("welcome: %w", err)
	}
	if err := client.Helo(config.LocalName); err != nil {
		client.Close()
		return nil, fmt.Errorf("HELO: %w", err)
	}
	return client, nil
}

// connect tries every address of Host and returns the first connection.
func (d *Dialer) connect(ctx context.Context, config *ClientConfig) (net.Conn, error) {
	resolver := d.Resolver
	if resolver == nil {
		resolver = dns.NewStdResolver()
	}

	ips, err := resolver.LookupIP(ctx, d.Host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", d.Host, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoAddresses, d.Host)
	}

	port := d.Port
	if port == 0 {
		port = DefaultPort
	}
	nd := &net.Dialer{Timeout: config.ConnectTimeout}

	var errs []error
	for _, ip := range ips {
		addr := net.JoinHostPort(ip.String(), strconv.Itoa(port))
		conn, err := nd.DialContext(ctx, "tcp", addr)
		if err != nil {
			config.Logger.Debug("connect failed", "addr", addr, "error", err)
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		remote := addr
		if rip, err := utils.GetIPFromAddr(conn.RemoteAddr()); err == nil {
			remote = rip.String()
		}
		config.Logger.Info("connected", "host", d.Host, "remote_ip", remote, "port", port)
		return conn, nil
	}
	return nil, fmt.Errorf("connect %s: %w", d.Host, errors.Join(errs...))
}

// DialAndSend connects, sends one message and quits.
func (d *Dialer) DialAndSend(ctx context.Context, mail *Mail) (*SendResult, error) {
	client, err := d.DialContext(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Quit()

	return client.SendMail(mail)
}

// LookupMailHosts returns the mail exchangers of domain ordered by
// preference. A domain without MX records is its own mail host.
func LookupMailHosts(ctx context.Context, resolver dns.Resolver, domain string) ([]string, error) {
	records, err := resolver.LookupMX(ctx, domain)
	if err != nil && !dns.IsNotFound(err) {
		return nil, err
	}
	if len(records) == 0 {
		return []string{domain}, nil
	}

	hosts := make([]string, 0, len(records))
	for _, mx := range records {
		if mx.Host == "" || mx.Host == "." {
			continue
		}
		hosts = append(hosts, mx.Host)
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("%w: %s accepts no mail", ErrNoAddresses, domain)
	}
	return hosts, nil
}
