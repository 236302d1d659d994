package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"DomainWatch/cache"
	"DomainWatch/domain"
)

type ResultKind int

const (
	ResultExpiryDate ResultKind = iota
	ResultDisabled
)

// CheckResult 是单个域名成功检查的结果：到期时间或已禁用。
type CheckResult struct {
	Kind   ResultKind
	Expiry time.Time
}

func ExpiryDate(t time.Time) CheckResult { return CheckResult{Kind: ResultExpiryDate, Expiry: t} }

func Disabled() CheckResult { return CheckResult{Kind: ResultDisabled} }

func (r CheckResult) String() string {
	if r.Kind == ResultDisabled {
		return "Disabled"
	}
	return r.Expiry.UTC().Format(cache.TimeLayout)
}

// DomainCheck 一条域名记录及其检查结果；Err 非空时 Result 无意义。
type DomainCheck struct {
	Record domain.DomainRecord
	Result CheckResult
	Err    error
}

// CheckAccountResult 一个客户本次运行的结果，按域名索引，保留客户文件中的顺序。
type CheckAccountResult struct {
	checks map[string]DomainCheck
	order  []string
}

func NewCheckAccountResult() *CheckAccountResult {
	return &CheckAccountResult{checks: make(map[string]DomainCheck)}
}

// Add 同名域名后写覆盖先写。
func (r *CheckAccountResult) Add(c DomainCheck) {
	if _, exists := r.checks[c.Record.Domain]; !exists {
		r.order = append(r.order, c.Record.Domain)
	}
	r.checks[c.Record.Domain] = c
}

func (r *CheckAccountResult) Get(name string) (DomainCheck, bool) {
	c, ok := r.checks[name]
	return c, ok
}

func (r *CheckAccountResult) Len() int { return len(r.order) }

// Checks 按插入顺序返回。
func (r *CheckAccountResult) Checks() []DomainCheck {
	out := make([]DomainCheck, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.checks[name])
	}
	return out
}

// AccountChecker 先查缓存再查 WHOIS，一次运行内独占 Cache。
type AccountChecker struct {
	Whois        WhoisGateway
	Cache        *cache.ExpiryCache
	Logger       *slog.Logger
	Metrics      *Metrics
	RateLimit    time.Duration
	QueryTimeout time.Duration

	lastLookup time.Time
}

func (c *AccountChecker) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// CheckAccount 禁用的客户返回空结果；单个域名失败不影响其他域名。
func (c *AccountChecker) CheckAccount(ctx context.Context, customer domain.Customer) *CheckAccountResult {
	res := NewCheckAccountResult()
	if customer.Disabled {
		return res
	}
	log := c.logger().With("account", customer.Name)
	for _, record := range customer.Domains {
		result, err := c.checkDomain(ctx, log, record)
		res.Add(DomainCheck{Record: record, Result: result, Err: err})
	}
	return res
}

// CheckDomain 检查单个域名。
func (c *AccountChecker) CheckDomain(ctx context.Context, record domain.DomainRecord) (CheckResult, error) {
	return c.checkDomain(ctx, c.logger(), record)
}

func (c *AccountChecker) checkDomain(ctx context.Context, log *slog.Logger, record domain.DomainRecord) (CheckResult, error) {
	log = log.With("domain", record.Domain)
	if record.Disabled {
		log.Debug("domain disabled, skip check")
		return Disabled(), nil
	}
	if c.Cache == nil {
		return CheckResult{}, ErrMissingDependencies
	}

	if expiry, ok := c.Cache.Get(record.Domain); ok {
		log.Debug("expiry read from cache", "expiry", expiry.Format(cache.TimeLayout))
		c.Metrics.cacheHit()
		return ExpiryDate(expiry), nil
	}
	if c.Whois == nil {
		return CheckResult{}, ErrMissingDependencies
	}

	if err := c.waitRateLimit(ctx); err != nil {
		c.Metrics.lookup(domain.KindLookupFailure.String())
		return CheckResult{}, domain.NewError(domain.KindLookupFailure, record.Domain, err)
	}

	log.Info("querying whois for expiry date")
	lookupCtx := ctx
	cancel := func() {}
	if c.QueryTimeout > 0 {
		lookupCtx, cancel = context.WithTimeout(ctx, c.QueryTimeout)
	}
	kv, err := c.Whois.GetWhoisKV(lookupCtx, record.Domain)
	cancel()
	c.lastLookup = time.Now()

	if err != nil {
		log.Error("whois lookup failed", "err", err)
		c.Metrics.lookup(domain.KindLookupFailure.String())
		return CheckResult{}, domain.NewError(domain.KindLookupFailure, record.Domain, err)
	}

	expiry, err := ExtractExpiry(kv)
	if err != nil {
		log.Error("expiry date not extracted", "err", err)
		c.Metrics.lookup(domain.KindOf(err).String())
		var de *domain.Error
		if errors.As(err, &de) {
			de.Domain = record.Domain
		}
		return CheckResult{}, err
	}

	c.Cache.Put(record.Domain, expiry)
	c.Metrics.lookup("ok")
	log.Debug("expiry date", "expiry", expiry.Format(cache.TimeLayout))
	return ExpiryDate(expiry), nil
}

func (c *AccountChecker) waitRateLimit(ctx context.Context) error {
	if c.RateLimit <= 0 || c.lastLookup.IsZero() {
		return ctx.Err()
	}
	wait := c.RateLimit - time.Since(c.lastLookup)
	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ExtractExpiry 按 paid-till、registry expiry date 的顺序取第一个存在的字段并解析。
func ExtractExpiry(kv map[string]string) (time.Time, error) {
	for _, key := range expiryKeys {
		value, ok := kv[key]
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, domain.NewError(domain.KindDateParseFailure, "", fmt.Errorf("parse %s %q: %w", key, value, err))
		}
		return t.UTC(), nil
	}
	return time.Time{}, domain.NewError(domain.KindMissingExpiryField, "", domain.ErrMissingExpiryField)
}
