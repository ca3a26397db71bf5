package dns

import (
	"context"
	"net"
	"slices"
)

// MockResolver is a Resolver used for testing.
// Set DNS records in the fields, which map FQDNs (with trailing dot) to values.
type MockResolver struct {
	A    map[string][]string
	AAAA map[string][]string
	MX   map[string][]*net.MX

	// Fail contains records that will return a temporary error (SERVFAIL).
	// Format: "type name", e.g. "mx example.com." where type is lowercase.
	Fail []string
}

var _ Resolver = MockResolver{}

// ensureFQDN ensures the name ends with a dot.
func ensureFQDN(name string) string {
	if len(name) == 0 || name[len(name)-1] != '.' {
		return name + "."
	}
	return name
}

func (r MockResolver) failing(qtype, fqdn string) bool {
	return slices.Contains(r.Fail, qtype+" "+fqdn)
}

// LookupIP returns A and AAAA records for the given host.
func (r MockResolver) LookupIP(ctx context.Context, host string) ([]net.IP, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ip := literalIP(host); ip != nil {
		return []net.IP{ip}, nil
	}

	fqdn := ensureFQDN(host)
	if r.failing("a", fqdn) || r.failing("aaaa", fqdn) {
		return nil, ErrDNSServFail
	}

	var ips []net.IP
	for _, s := range append(slices.Clone(r.A[fqdn]), r.AAAA[fqdn]...) {
		if ip := net.ParseIP(s); ip != nil {
			ips = append(ips, ip)
		}
	}
	if len(ips) == 0 {
		return nil, ErrDNSNotFound
	}
	return ips, nil
}

// LookupMX returns MX records for the given domain ordered by preference.
func (r MockResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fqdn := ensureFQDN(domain)
	if r.failing("mx", fqdn) {
		return nil, ErrDNSServFail
	}

	records := r.MX[fqdn]
	if len(records) == 0 {
		return nil, ErrDNSNotFound
	}

	out := make([]*net.MX, len(records))
	for i, mx := range records {
		cp := *mx
		out[i] = &cp
	}
	return sortMX(out), nil
}
