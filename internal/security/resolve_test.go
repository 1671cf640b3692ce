package security

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"testing"
	"time"
)

// cannedLookup returns a LookupFunc serving fixed per-family answers.
func cannedLookup(answers map[string][]string) LookupFunc {
	return func(ctx context.Context, network, host string) ([]netip.Addr, error) {
		raw, ok := answers[network]
		if !ok {
			return nil, fmt.Errorf("no answer for %s", network)
		}
		addrs := make([]netip.Addr, len(raw))
		for i, s := range raw {
			addrs[i] = netip.MustParseAddr(s)
		}
		return addrs, nil
	}
}

func TestResolveAndPinPublicHost(t *testing.T) {
	r := NewResolverWithLookup(cannedLookup(map[string][]string{
		"ip4": {"93.184.215.14"},
	}), time.Second)

	target, err := r.ResolveAndPin(context.Background(), "https://example.com/page")
	if err != nil {
		t.Fatalf("ResolveAndPin failed: %v", err)
	}
	if target.Hostname != "example.com" {
		t.Errorf("hostname = %q, want example.com", target.Hostname)
	}
	if target.IP != netip.MustParseAddr("93.184.215.14") {
		t.Errorf("pinned IP = %s, want 93.184.215.14", target.IP)
	}
}

func TestResolveAndPinPrefersIPv4(t *testing.T) {
	r := NewResolverWithLookup(cannedLookup(map[string][]string{
		"ip4": {"93.184.215.14"},
		"ip6": {"2606:2800:21f:cb07:6820:80da:af6b:8b2c"},
	}), time.Second)

	target, err := r.ResolveAndPin(context.Background(), "https://example.com/")
	if err != nil {
		t.Fatalf("ResolveAndPin failed: %v", err)
	}
	if !target.IP.Is4() {
		t.Errorf("pinned IP = %s, want the IPv4 answer", target.IP)
	}
}

func TestResolveAndPinSingleFamilyFailureTolerated(t *testing.T) {
	// Only AAAA resolves; the request proceeds pinned to the v6 answer.
	r := NewResolverWithLookup(cannedLookup(map[string][]string{
		"ip6": {"2001:4860:4860::8888"},
	}), time.Second)

	target, err := r.ResolveAndPin(context.Background(), "https://example.com/")
	if err != nil {
		t.Fatalf("ResolveAndPin failed: %v", err)
	}
	if target.IP != netip.MustParseAddr("2001:4860:4860::8888") {
		t.Errorf("pinned IP = %s, want the IPv6 answer", target.IP)
	}
}

func TestResolveAndPinFailsClosedOnNoAnswers(t *testing.T) {
	r := NewResolverWithLookup(cannedLookup(nil), time.Second)

	_, err := r.ResolveAndPin(context.Background(), "https://unresolvable.invalid/")
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("error = %v, want BlockedError", err)
	}
}

func TestResolveAndPinBlocksInternalAnswer(t *testing.T) {
	// One internal answer poisons the whole set, even alongside a public
	// one. This is the DNS-rebinding guard.
	tests := []struct {
		name    string
		answers map[string][]string
	}{
		{
			name:    "private v4",
			answers: map[string][]string{"ip4": {"10.0.0.5"}},
		},
		{
			name:    "loopback v4",
			answers: map[string][]string{"ip4": {"127.0.0.1"}},
		},
		{
			name:    "public and private mixed",
			answers: map[string][]string{"ip4": {"93.184.215.14", "192.168.1.10"}},
		},
		{
			name:    "unique local v6",
			answers: map[string][]string{"ip6": {"fd00::1"}},
		},
		{
			name:    "v4-mapped loopback in v6 answer",
			answers: map[string][]string{"ip6": {"::ffff:127.0.0.1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolverWithLookup(cannedLookup(tt.answers), time.Second)
			_, err := r.ResolveAndPin(context.Background(), "https://rebind.example/")
			var blocked *BlockedError
			if !errors.As(err, &blocked) {
				t.Fatalf("error = %v, want BlockedError", err)
			}
		})
	}
}

func TestResolveAndPinLiteralSkipsDNS(t *testing.T) {
	// An address-literal host never hits DNS.
	var calls int
	r := NewResolverWithLookup(func(ctx context.Context, network, host string) ([]netip.Addr, error) {
		calls++
		return nil, fmt.Errorf("lookup should not run")
	}, time.Second)

	target, err := r.ResolveAndPin(context.Background(), "http://8.8.8.8/")
	if err != nil {
		t.Fatalf("ResolveAndPin failed: %v", err)
	}
	if calls != 0 {
		t.Errorf("lookup ran %d times for an address literal", calls)
	}
	if target.IP != netip.MustParseAddr("8.8.8.8") {
		t.Errorf("pinned IP = %s, want 8.8.8.8", target.IP)
	}
}

func TestResolveAndPinRejectsInvalidURL(t *testing.T) {
	r := NewResolverWithLookup(cannedLookup(nil), time.Second)

	if _, err := r.ResolveAndPin(context.Background(), "ftp://example.com/"); err == nil {
		t.Error("ResolveAndPin accepted a non-http scheme")
	}
	if _, err := r.ResolveAndPin(context.Background(), "http://localhost/"); err == nil {
		t.Error("ResolveAndPin accepted a blocked hostname")
	}
}
