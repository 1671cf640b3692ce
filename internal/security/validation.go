// Package security provides the boundary for resolving and rendering
// untrusted network resources: URL validation, SSRF blocklists, and
// DNS-rebinding-safe address pinning.
package security

import (
	"fmt"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
)

// MaxURLLength caps accepted URLs; anything longer is rejected outright.
const MaxURLLength = 2048

// BlockedError reports a request rejected by the security boundary. The
// reason is caller-facing: validation failures are always reported, never
// silently treated as "no colours found".
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("blocked: %s", e.Reason)
}

// blockedHostnames are rejected textually before any DNS resolution.
var blockedHostnames = map[string]bool{
	"localhost":                 true,
	"127.0.0.1":                 true,
	"::1":                       true,
	"0.0.0.0":                   true,
	"metadata.google.internal":  true,
	"metadata":                  true,
	"instance-data":             true,
	"169.254.169.254":           true,
}

// ValidatePageURL validates a user-supplied URL for page fetching.
// It rejects URLs that exceed the length cap, fail to parse, use a scheme
// other than http or https, or whose hostname matches the blocklist or
// decodes to a blocked address.
func ValidatePageURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty URL")
	}
	if len(raw) > MaxURLLength {
		return nil, fmt.Errorf("URL exceeds maximum length of %d", MaxURLLength)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q (only http and https allowed)", parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return nil, fmt.Errorf("URL must have a hostname")
	}

	if blockedHostnames[host] || strings.HasSuffix(host, ".localhost") {
		return nil, &BlockedError{Reason: fmt.Sprintf("hostname %q is not allowed", host)}
	}

	// A hostname that is itself an address literal (including decimal and
	// hexadecimal IPv4 encodings and IPv4-mapped IPv6 forms) is checked
	// against the blocked ranges immediately.
	if addr, ok := ParseAddressLiteral(host); ok {
		if reason := blockedAddrReason(addr); reason != "" {
			return nil, &BlockedError{Reason: fmt.Sprintf("address %s %s", host, reason)}
		}
	}

	return parsed, nil
}

// ParseAddressLiteral parses a hostname as an IP address literal. Beyond
// the usual dotted-quad and IPv6 forms it recognises pure-decimal
// (2130706433) and hexadecimal (0x7f000001) IPv4 encodings, which
// attackers use to smuggle loopback past textual blocklists.
func ParseAddressLiteral(host string) (netip.Addr, bool) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Unmap(), true
	}

	// Decimal or hexadecimal single-integer IPv4 encoding.
	base := 10
	digits := host
	if strings.HasPrefix(host, "0x") || strings.HasPrefix(host, "0X") {
		base = 16
		digits = host[2:]
	}
	v, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return netip.Addr{}, false
	}
	return netip.AddrFrom4([4]byte{
		byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
	}), true
}

// cgnat is the carrier-grade NAT range (RFC 6598); some clouds place their
// metadata service inside it (e.g. 100.100.100.200).
var cgnat = netip.MustParsePrefix("100.64.0.0/10")

// blockedAddrReason returns a non-empty reason when the address falls in a
// range that must never be fetched: loopback, private, carrier-grade NAT,
// link-local, unique-local, multicast, or unspecified, for either address
// family.
func blockedAddrReason(addr netip.Addr) string {
	addr = addr.Unmap()

	switch {
	case addr.IsLoopback():
		return "is a loopback address"
	case addr.IsUnspecified():
		return "is the unspecified address"
	case addr.IsPrivate():
		return "is a private address"
	case cgnat.Contains(addr):
		return "is a carrier-grade NAT address"
	case addr.IsLinkLocalUnicast(), addr.IsLinkLocalMulticast():
		return "is a link-local address"
	case addr.IsMulticast():
		return "is a multicast address"
	case addr.Is6() && isUniqueLocal(addr):
		return "is a unique-local address"
	}
	return ""
}

// isUniqueLocal reports whether a v6 address is in fc00::/7.
func isUniqueLocal(addr netip.Addr) bool {
	b := addr.As16()
	return b[0]&0xfe == 0xfc
}
