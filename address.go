package cnsmtp

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"

	cnio "github.com/robertabcd/cn-smtp-client/io"
	"github.com/robertabcd/cn-smtp-client/utils"
)

// RFC 5321 section 4.5.3.1 limits.
const (
	maxLocalPartLength = 64
	maxPathLength      = 256
)

// NormalizeAddress turns user input into an SMTP path: surrounding space
// and brackets are trimmed, an internationalized domain is converted to its
// A-label form, and the result is wrapped in angle brackets.
func NormalizeAddress(addr string) (string, error) {
	local, domain, ok := utils.SplitAddress(addr)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	if len(local) > maxLocalPartLength {
		return "", fmt.Errorf("%w: local part too long", ErrInvalidAddress)
	}
	if utils.ContainsNonASCII(local) {
		return "", fmt.Errorf("%w: non-ASCII local part %q", ErrInvalidAddress, local)
	}
	if strings.ContainsAny(addr, "\r\n") || strings.ContainsAny(local+domain, " \t<>") {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}

	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return "", fmt.Errorf("%w: domain %q: %w", ErrInvalidAddress, domain, err)
	}

	path := "<" + local + "@" + ascii + ">"
	if len(path) > maxPathLength {
		return "", fmt.Errorf("%w: address too long", ErrInvalidAddress)
	}
	return path, nil
}

// JoinAddresses joins addresses for a To or Cc header.
func JoinAddresses(addrs []string) string {
	var b cnio.Buffer
	for i, a := range addrs {
		if i > 0 {
			b.AppendString(", ")
		}
		b.AppendString(a)
	}
	return b.String()
}
