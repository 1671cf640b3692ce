package security

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"time"
)

// ResolvedTarget is the outcome of validating a URL: the normalised URL,
// the hostname, and one concrete address the later network and render
// operations are pinned against. Pinning prevents a second DNS lookup from
// returning a different, unvalidated address (DNS rebinding).
type ResolvedTarget struct {
	URL      *url.URL
	Hostname string
	IP       netip.Addr
}

// DefaultResolveTimeout bounds each address family's DNS lookup.
const DefaultResolveTimeout = 5 * time.Second

// LookupFunc resolves a hostname for one address family ("ip4" or "ip6").
type LookupFunc func(ctx context.Context, network, host string) ([]netip.Addr, error)

// Resolver validates and pins page URLs. The lookup function is injectable
// so tests can supply canned DNS answers.
type Resolver struct {
	lookup  LookupFunc
	timeout time.Duration
}

// NewResolver creates a Resolver backed by the system DNS resolver.
func NewResolver() *Resolver {
	return &Resolver{
		lookup:  net.DefaultResolver.LookupNetIP,
		timeout: DefaultResolveTimeout,
	}
}

// NewResolverWithLookup creates a Resolver with a custom lookup function.
func NewResolverWithLookup(lookup LookupFunc, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	return &Resolver{lookup: lookup, timeout: timeout}
}

// ResolveAndPin validates the URL, resolves its hostname for both address
// families, rejects any answer in a blocked range, and pins one concrete
// address for the rendering session.
//
// Each family's lookup is bounded by its own timeout and an individual
// family failure is tolerated when the other family resolves. When neither
// resolves the request fails closed as blocked.
func (r *Resolver) ResolveAndPin(ctx context.Context, raw string) (ResolvedTarget, error) {
	parsed, err := ValidatePageURL(raw)
	if err != nil {
		return ResolvedTarget{}, err
	}

	host := parsed.Hostname()

	// Address literals skip DNS entirely; ValidatePageURL already vetted
	// them against the blocked ranges.
	if addr, ok := ParseAddressLiteral(host); ok {
		return ResolvedTarget{URL: parsed, Hostname: host, IP: addr}, nil
	}

	var addrs []netip.Addr
	for _, network := range []string{"ip4", "ip6"} {
		lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
		answers, err := r.lookup(lookupCtx, network, host)
		cancel()
		if err != nil {
			// Tolerated: the other family may still resolve.
			continue
		}
		addrs = append(addrs, answers...)
	}

	if len(addrs) == 0 {
		return ResolvedTarget{}, &BlockedError{
			Reason: fmt.Sprintf("could not resolve host %q", host),
		}
	}

	// Every resolved address must be allowed; a single internal answer
	// blocks the whole request.
	for _, addr := range addrs {
		if reason := blockedAddrReason(addr); reason != "" {
			return ResolvedTarget{}, &BlockedError{
				Reason: fmt.Sprintf("host %q resolves to %s, which %s", host, addr, reason),
			}
		}
	}

	return ResolvedTarget{URL: parsed, Hostname: host, IP: pickPinned(addrs)}, nil
}

// pickPinned chooses the address the session is pinned to, preferring IPv4.
func pickPinned(addrs []netip.Addr) netip.Addr {
	for _, addr := range addrs {
		if addr.Unmap().Is4() {
			return addr.Unmap()
		}
	}
	return addrs[0].Unmap()
}
