package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"DomainWatch/cache"
	"DomainWatch/config"
	"DomainWatch/domain"
)

// App 一次完整运行：加载缓存、检查所有客户、发送报告、保存缓存。
type App struct {
	Config   *config.Config
	Repo     domain.Repository
	Whois    WhoisGateway
	Notifier *NotifierService
	Metrics  *Metrics
	Logger   *slog.Logger
	// Now 默认 time.Now().UTC()，测试中可替换。
	Now func() time.Time
}

// Run 任何客户或域名级别的失败都不会中断运行；只有配置、客户文件和状态文件读写错误会返回。
func (a *App) Run(ctx context.Context) error {
	if a.Config == nil || a.Repo == nil || a.Whois == nil || a.Notifier == nil {
		return ErrMissingDependencies
	}
	log := a.Logger
	if log == nil {
		log = slog.Default()
	}
	now := time.Now().UTC()
	if a.Now != nil {
		now = a.Now()
	}

	expiryCache, err := a.loadState(log, now)
	if err != nil {
		return err
	}

	customers, err := a.Repo.LoadCustomers()
	if err != nil {
		log.Error("load customers failed", "file", a.Config.CustomersFile, "err", err)
		return err
	}
	log.Debug("customers loaded", "count", len(customers))

	checker := &AccountChecker{
		Whois:        a.Whois,
		Cache:        expiryCache,
		Logger:       log,
		Metrics:      a.Metrics,
		RateLimit:    a.Config.WhoisRateLimit,
		QueryTimeout: a.Config.WhoisTimeout,
	}

	for _, customer := range customers {
		clog := log.With("customer", customer.Name)
		if customer.Disabled {
			clog.Info("account disabled, skip check")
			continue
		}
		res := checker.CheckAccount(ctx, customer)
		if !IsNeedSend(a.Config, customer, res, now) {
			clog.Debug("no need to send report")
			continue
		}
		clog.Debug("need to send report")
		if err := a.Notifier.Notify(ctx, customer, res); err != nil {
			clog.Error("notify failed", "err", err)
		}
	}

	if a.Config.StateFile != "" {
		if err := a.Repo.SaveExpiryCache(expiryCache); err != nil {
			log.Error("save state failed", "err", err)
			return err
		}
		log.Info("state saved", "domains-count", expiryCache.Len())
	}

	if url := a.Config.Metrics.PushgatewayURL; url != "" {
		if err := a.Metrics.Push(ctx, url); err != nil {
			log.Warn("push metrics failed", "url", url, "err", err)
		}
	}
	return nil
}

// loadState 格式错误按空缓存处理，其他读错误返回给调用方。
func (a *App) loadState(log *slog.Logger, now time.Time) (*cache.ExpiryCache, error) {
	if a.Config.StateFile == "" {
		log.Debug("state file path is empty, state not loaded")
		return cache.New(), nil
	}
	log = log.With("file", a.Config.StateFile)
	c, err := a.Repo.LoadExpiryCache()
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindCacheFormat:
			log.Error("state file is broken, starting with empty cache", "err", err)
			return cache.New(), nil
		default:
			log.Error("state file error, remove it to reset the cache", "err", err)
			return nil, fmt.Errorf("load state: %w", err)
		}
	}
	evicted := c.Clean(now, a.Config.NoCacheDaysBeforeExpire)
	a.Metrics.evicted(evicted)
	log.Info("cache loaded", "domains-count", c.Len(), "evicted", evicted)
	return c, nil
}
