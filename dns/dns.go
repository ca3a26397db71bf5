// Package dns resolves the addresses and mail exchangers a client connects to.
package dns

import (
	"context"
	"errors"
	"net"
	"slices"
	"strings"
)

// Lookup errors.
var (
	ErrDNSNotFound = errors.New("dns: no such record")
	ErrDNSTimeout  = errors.New("dns: query timed out")
	ErrDNSServFail = errors.New("dns: server failure")
	ErrDNSRefused  = errors.New("dns: query refused")
)

// Resolver looks up the records needed to reach a mail server.
type Resolver interface {
	// LookupIP returns the IPv4 and IPv6 addresses of host.
	LookupIP(ctx context.Context, host string) ([]net.IP, error)

	// LookupMX returns the mail exchangers of domain ordered by preference.
	// Host names carry no trailing dot.
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// IsNotFound reports whether err means the name or record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDNSNotFound)
}

// IsTimeout reports whether err is a query timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrDNSTimeout)
}

// IsServFail reports whether err is a server failure.
func IsServFail(err error) bool {
	return errors.Is(err, ErrDNSServFail)
}

// IsTemporary reports whether retrying the lookup later may succeed.
func IsTemporary(err error) bool {
	return IsTimeout(err) || IsServFail(err)
}

// sortMX orders records by preference, keeping the server order for ties,
// and strips the trailing dot from host names.
func sortMX(records []*net.MX) []*net.MX {
	for _, mx := range records {
		mx.Host = strings.TrimSuffix(mx.Host, ".")
	}
	slices.SortStableFunc(records, func(a, b *net.MX) int {
		return int(a.Pref) - int(b.Pref)
	})
	return records
}

// literalIP returns host as an IP when it is an address literal, with or
// without brackets.
func literalIP(host string) net.IP {
	return net.ParseIP(strings.TrimSuffix(strings.TrimPrefix(host, "["), "]"))
}
