package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"DomainWatch/tools"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/openrdap/rdap"
)

// WHOIS 结果里识别的到期字段，按优先级排列。
const (
	KeyPaidTill           = "paid-till"
	KeyRegistryExpiryDate = "registry expiry date"
)

var expiryKeys = []string{KeyPaidTill, KeyRegistryExpiryDate}

// WhoisGateway 返回域名的 WHOIS 属性，key 为小写。
type WhoisGateway interface {
	GetWhoisKV(ctx context.Context, domain string) (map[string]string, error)
}

var ErrRDAPNoExpiration = errors.New("rdap: no expiration event")

// DefaultWhoisClient 走 43 端口的 WHOIS。
type DefaultWhoisClient struct {
	Timeout time.Duration
}

func (c DefaultWhoisClient) GetWhoisKV(ctx context.Context, domain string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type result struct {
		raw string
		err error
	}

	ch := make(chan result, 1)

	go func() {
		client := whois.NewClient()
		if c.Timeout > 0 {
			client.SetTimeout(c.Timeout)
		}
		raw, err := client.Whois(domain)
		ch <- result{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("whois %s: %w", domain, res.err)
		}
		return whoisKV(res.raw), nil
	}
}

// whoisKV 逐行解析；两个到期字段都没有时再交给 whois-parser 兜底。
func whoisKV(raw string) map[string]string {
	kv := tools.ParseWhoisKV(raw)
	if hasExpiryKey(kv) {
		return kv
	}
	parsed, err := whoisparser.Parse(raw)
	if err != nil || parsed.Domain == nil {
		return kv
	}
	if expiry, ok := tools.NormalizeExpiry(parsed.Domain.ExpirationDate); ok {
		kv[KeyRegistryExpiryDate] = expiry
	}
	return kv
}

func hasExpiryKey(kv map[string]string) bool {
	for _, k := range expiryKeys {
		if _, ok := kv[k]; ok {
			return true
		}
	}
	return false
}

// RDAPQuerier 由 *rdap.Client 实现。
type RDAPQuerier interface {
	QueryDomain(domain string) (*rdap.Domain, error)
}

// RDAPWhoisClient 优先查 RDAP，失败或没有 expiration 事件时回落到 Fallback。
type RDAPWhoisClient struct {
	Client   RDAPQuerier
	Fallback WhoisGateway
}

func (c *RDAPWhoisClient) GetWhoisKV(ctx context.Context, domain string) (map[string]string, error) {
	kv, err := c.queryRDAP(ctx, domain)
	if err == nil {
		return kv, nil
	}
	if ctx.Err() != nil || c.Fallback == nil {
		return nil, err
	}
	return c.Fallback.GetWhoisKV(ctx, domain)
}

func (c *RDAPWhoisClient) queryRDAP(ctx context.Context, domain string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var client RDAPQuerier = &rdap.Client{}
	if c.Client != nil {
		client = c.Client
	}

	type result struct {
		d   *rdap.Domain
		err error
	}
	ch := make(chan result, 1)
	go func() {
		d, err := client.QueryDomain(domain)
		ch <- result{d: d, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.err != nil {
		return nil, fmt.Errorf("rdap %s: %w", domain, res.err)
	}

	return rdapKV(res.d)
}

// rdapKV 把 expiration 事件放到 registry expiry date 下，和 WHOIS 结果同形。
func rdapKV(d *rdap.Domain) (map[string]string, error) {
	if d == nil {
		return nil, ErrRDAPNoExpiration
	}
	for _, event := range d.Events {
		if strings.EqualFold(event.Action, "expiration") {
			return map[string]string{
				"domain":              strings.ToLower(d.LDHName),
				KeyRegistryExpiryDate: event.Date,
			}, nil
		}
	}
	return nil, ErrRDAPNoExpiration
}
