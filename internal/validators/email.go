package validators

import (
	"errors"
	"net"
	"strings"
)

var (
	errMalformedEmail = errors.New("malformed email address")
	errDomainLookup   = errors.New("email domain does not resolve")
)

// CheckEmailDomain verifies that the domain behind an address resolves
// to a mail host. Domains without MX records still pass when a plain
// A/AAAA lookup succeeds.
func CheckEmailDomain(email string) error {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return errMalformedEmail
	}

	domain := strings.ToLower(email[at+1:])

	mx, err := net.LookupMX(domain)
	if err == nil && len(mx) > 0 {
		return nil
	}

	ips, err := net.LookupIP(domain)
	if err == nil && len(ips) > 0 {
		return nil
	}

	return errDomainLookup
}
