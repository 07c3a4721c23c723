// Package validation holds the pure input checks run before a channel
// registration touches any state. All checks are side-effect free and
// order-independent; the registry applies them in the documented precedence
// name, description, fee, address, cover image, contact link.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"

	apperr "github.com/payaction/channel_layer/internal/errors"
)

const (
	// MaxFee is the upper bound for a channel fee, in whole GAS.
	MaxFee = 1000.0

	minDescriptionLen = 10
	maxDescriptionLen = 1000
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9\-_\s]{3,50}$`)

// Name checks the channel display name shape.
func Name(name string) error {
	if !namePattern.MatchString(name) {
		return apperr.InvalidName("channel name must be 3-50 characters of letters, digits, spaces, hyphens or underscores")
	}
	return nil
}

// Description checks the trimmed description length.
func Description(desc string) error {
	n := len(strings.TrimSpace(desc))
	if n < minDescriptionLen || n > maxDescriptionLen {
		return apperr.InvalidDescription(fmt.Sprintf("description must be %d-%d characters", minDescriptionLen, maxDescriptionLen))
	}
	return nil
}

// Fee checks the fee bounds: positive, at most MaxFee GAS.
func Fee(fee float64) error {
	if fee <= 0 || fee > MaxFee {
		return apperr.InvalidFee(fmt.Sprintf("fee must be greater than 0 and at most %.0f", MaxFee))
	}
	return nil
}

// Address checks that addr parses as a Neo N3 address.
func Address(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return apperr.InvalidAddress("address is required")
	}
	if _, err := address.StringToUint160(addr); err != nil {
		return apperr.InvalidAddress("address is not a valid Neo N3 address")
	}
	return nil
}

// URL checks for a well-formed absolute http(s) URL.
func URL(raw string) error {
	if !isHTTPURL(raw) {
		return apperr.InvalidURL("must be an absolute http(s) URL")
	}
	return nil
}

// ContactLink checks the contact URL shape and, when allowedHosts is
// non-empty, restricts the host to the allow list.
func ContactLink(raw string, allowedHosts []string) error {
	if !isHTTPURL(raw) {
		return apperr.InvalidContactLink("contact link must be an absolute http(s) URL")
	}
	if len(allowedHosts) == 0 {
		return nil
	}
	u, _ := url.Parse(strings.TrimSpace(raw))
	host := strings.ToLower(u.Hostname())
	for _, allowed := range allowedHosts {
		if host == strings.ToLower(allowed) {
			return nil
		}
	}
	return apperr.InvalidContactLink("contact link host " + host + " is not allowed")
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
