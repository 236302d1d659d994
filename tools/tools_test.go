package tools

import (
	"testing"
	"time"
)

func TestParseWhoisKVLowercasesKeysAndKeepsFirst(t *testing.T) {
	raw := "% TCI whois service\r\n" +
		"domain:        EXAMPLE.RU\r\n" +
		"paid-till:     2025-01-01T00:00:00Z\r\n" +
		"Registry Expiry Date: 2026-02-03T04:05:06Z\n" +
		"Registry Expiry Date: 2030-01-01T00:00:00Z\n" +
		">>> Last update of WHOIS database: 2024-01-01T00:00:00Z <<<\n" +
		"no colon here\n"

	kv := ParseWhoisKV(raw)

	if kv["domain"] != "EXAMPLE.RU" {
		t.Fatalf("unexpected domain: %q", kv["domain"])
	}
	if kv["paid-till"] != "2025-01-01T00:00:00Z" {
		t.Fatalf("unexpected paid-till: %q", kv["paid-till"])
	}
	if kv["registry expiry date"] != "2026-02-03T04:05:06Z" {
		t.Fatalf("expected first occurrence, got %q", kv["registry expiry date"])
	}
	if _, ok := kv[">>> last update of whois database"]; ok {
		t.Fatalf("banner line must be skipped")
	}
}

func TestNormalizeExpiry(t *testing.T) {
	cases := map[string]string{
		"2025-01-01":                "2025-01-01T00:00:00Z",
		"2025-01-01 10:20:30":       "2025-01-01T10:20:30Z",
		"02-Jan-2025":               "2025-01-02T00:00:00Z",
		"2025-01-01T03:00:00+03:00": "2025-01-01T00:00:00Z",
	}
	for in, want := range cases {
		got, ok := NormalizeExpiry(in)
		if !ok {
			t.Fatalf("NormalizeExpiry(%q) failed", in)
		}
		if got != want {
			t.Errorf("NormalizeExpiry(%q) = %q, want %q", in, got, want)
		}
	}
	if _, ok := NormalizeExpiry("not a date"); ok {
		t.Fatalf("expected failure for garbage input")
	}
}

func TestDaysBetweenTruncatesTowardZero(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if d := DaysBetween(now, now.Add(36*time.Hour)); d != 1 {
		t.Fatalf("expected 1, got %d", d)
	}
	if d := DaysBetween(now, now.Add(-36*time.Hour)); d != -1 {
		t.Fatalf("expected -1, got %d", d)
	}
	if d := DaysBetween(now, now.Add(-10*24*time.Hour)); d != -10 {
		t.Fatalf("expected -10, got %d", d)
	}
}
