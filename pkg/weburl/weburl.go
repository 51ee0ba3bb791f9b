// Package weburl checks that externally supplied links point at a public
// HTTPS host.
package weburl

import (
	"net"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"
)

var (
	ErrNotAbsolute = errors.New("url must be absolute")
	ErrNotHTTPS    = errors.New("url must use https")
	ErrNoPublicTLD = errors.New("url host must end in a public top-level domain")
)

// ValidateHTTPS returns nil when raw is an absolute https URL whose host ends
// in an ICANN-managed top-level domain. IP literals, single-label hosts such as
// "localhost", and bare public suffixes are rejected.
func ValidateHTTPS(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return errors.Wrap(ErrNotAbsolute, err.Error())
	}
	if !u.IsAbs() || u.Host == "" {
		return ErrNotAbsolute
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return ErrNotHTTPS
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" || net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return ErrNoPublicTLD
	}

	// Hosts under privately registered suffixes such as github.io are fine
	// as long as the final label is a real top-level domain.
	tld := host[strings.LastIndex(host, ".")+1:]
	if _, icann := publicsuffix.PublicSuffix(tld); !icann {
		return ErrNoPublicTLD
	}
	if suffix, _ := publicsuffix.PublicSuffix(host); suffix == host {
		return ErrNoPublicTLD
	}
	return nil
}

// IsHTTPS is the boolean form of ValidateHTTPS.
func IsHTTPS(raw string) bool {
	return ValidateHTTPS(raw) == nil
}
