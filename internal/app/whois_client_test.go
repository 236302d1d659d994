package app

import (
	"context"
	"errors"
	"testing"

	"DomainWatch/domain"

	"github.com/openrdap/rdap"
)

func TestWhoisKVKeepsRegistryFields(t *testing.T) {
	raw := "Domain Name: EXAMPLE.COM\r\n" +
		"Registry Expiry Date: 2025-08-13T04:00:00Z\r\n" +
		"Registrar: Example Registrar, Inc.\r\n"

	kv := whoisKV(raw)

	if kv[KeyRegistryExpiryDate] != "2025-08-13T04:00:00Z" {
		t.Fatalf("unexpected expiry %q", kv[KeyRegistryExpiryDate])
	}
	if _, err := ExtractExpiry(kv); err != nil {
		t.Fatalf("expected parseable expiry: %v", err)
	}
}

func TestWhoisKVParserFallback(t *testing.T) {
	raw := "Domain Name: EXAMPLE.COM\n" +
		"Registrar: Example Registrar, Inc.\n" +
		"Registrar Registration Expiration Date: 2025-05-01T00:00:00Z\n"

	kv := whoisKV(raw)

	if _, ok := kv[KeyPaidTill]; ok {
		t.Fatalf("paid-till must not be invented")
	}
	v, ok := kv[KeyRegistryExpiryDate]
	if !ok || v != "2025-05-01T00:00:00Z" {
		t.Fatalf("expected expiry from whois-parser, got %q (present=%v)", v, ok)
	}
	if kv["registrar"] != "Example Registrar, Inc." {
		t.Fatalf("raw keys must be kept, got %v", kv)
	}
}

func TestWhoisKVParserFailureLeavesNoExpiry(t *testing.T) {
	kv := whoisKV("No match for \"NOPE.COM\".\n")

	if _, ok := kv[KeyRegistryExpiryDate]; ok {
		t.Fatalf("unparseable reply must not produce an expiry, got %v", kv)
	}
	if _, err := ExtractExpiry(kv); domain.KindOf(err) != domain.KindMissingExpiryField {
		t.Fatalf("expected missing field error, got %v", err)
	}
}

type countingWhois struct{ calls int }

func (c *countingWhois) GetWhoisKV(ctx context.Context, domain string) (map[string]string, error) {
	c.calls++
	return map[string]string{KeyPaidTill: "2025-01-01T00:00:00Z"}, nil
}

func TestRDAPClientDoesNotFallBackWhenCanceled(t *testing.T) {
	fallback := &countingWhois{}
	client := &RDAPWhoisClient{Fallback: fallback}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetWhoisKV(ctx, "example.com")

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback must not run after cancellation")
	}
}

func TestDefaultWhoisClientCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (DefaultWhoisClient{}).GetWhoisKV(ctx, "example.com"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type fakeRDAP struct {
	d     *rdap.Domain
	err   error
	calls int
}

func (f *fakeRDAP) QueryDomain(domain string) (*rdap.Domain, error) {
	f.calls++
	return f.d, f.err
}

func TestRDAPKVExpiration(t *testing.T) {
	d := &rdap.Domain{
		LDHName: "EXAMPLE.COM",
		Events: []rdap.Event{
			{Action: "registration", Date: "1995-08-14T04:00:00Z"},
			{Action: "expiration", Date: "2025-08-13T04:00:00Z"},
		},
	}

	kv, err := rdapKV(d)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kv[KeyRegistryExpiryDate] != "2025-08-13T04:00:00Z" || kv["domain"] != "example.com" {
		t.Fatalf("unexpected kv %v", kv)
	}
}

func TestRDAPKVNoExpiration(t *testing.T) {
	d := &rdap.Domain{LDHName: "example.com", Events: []rdap.Event{{Action: "last changed", Date: "2024-01-01T00:00:00Z"}}}
	if _, err := rdapKV(d); !errors.Is(err, ErrRDAPNoExpiration) {
		t.Fatalf("expected ErrRDAPNoExpiration, got %v", err)
	}
}

func TestRDAPClientUsesRDAPResult(t *testing.T) {
	fallback := &countingWhois{}
	query := &fakeRDAP{d: &rdap.Domain{LDHName: "example.com", Events: []rdap.Event{{Action: "expiration", Date: "2026-02-01T00:00:00Z"}}}}
	client := &RDAPWhoisClient{Client: query, Fallback: fallback}

	kv, err := client.GetWhoisKV(context.Background(), "example.com")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kv[KeyRegistryExpiryDate] != "2026-02-01T00:00:00Z" {
		t.Fatalf("unexpected kv %v", kv)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback must not run when RDAP has the expiry")
	}
}

func TestRDAPClientFallsBack(t *testing.T) {
	cases := []struct {
		name  string
		query *fakeRDAP
	}{
		{"no expiration event", &fakeRDAP{d: &rdap.Domain{LDHName: "example.com"}}},
		{"rdap failure", &fakeRDAP{err: errors.New("no RDAP server")}},
	}
	for _, tc := range cases {
		fallback := &countingWhois{}
		client := &RDAPWhoisClient{Client: tc.query, Fallback: fallback}

		kv, err := client.GetWhoisKV(context.Background(), "example.com")

		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if fallback.calls != 1 || tc.query.calls != 1 {
			t.Fatalf("%s: expected one rdap query and one fallback, got %d and %d", tc.name, tc.query.calls, fallback.calls)
		}
		if kv[KeyPaidTill] != "2025-01-01T00:00:00Z" {
			t.Fatalf("%s: expected fallback result, got %v", tc.name, kv)
		}
	}
}

func TestRDAPClientWithoutFallback(t *testing.T) {
	client := &RDAPWhoisClient{Client: &fakeRDAP{d: &rdap.Domain{LDHName: "example.com"}}}
	if _, err := client.GetWhoisKV(context.Background(), "example.com"); !errors.Is(err, ErrRDAPNoExpiration) {
		t.Fatalf("expected ErrRDAPNoExpiration, got %v", err)
	}
}
