package app

import (
	"time"

	"DomainWatch/config"
	"DomainWatch/domain"
	"DomainWatch/tools"
)

// NeedAttention 有任何错误，或有域名在 ExpireSoonDays 天内（含已过期）到期。
func NeedAttention(cfg *config.Config, res *CheckAccountResult, now time.Time) bool {
	for _, c := range res.Checks() {
		if c.Err != nil {
			return true
		}
		if c.Result.Kind == ResultExpiryDate && tools.DaysBetween(now, c.Result.Expiry) <= int64(cfg.ExpireSoonDays) {
			return true
		}
	}
	return false
}

// IsNeedSend 决定本次是否给该客户发报告。
// OKReportDay: 0 每次都发，1..7 对应周一..周日发送例行报告；紧急情况随时发送。
func IsNeedSend(cfg *config.Config, customer domain.Customer, res *CheckAccountResult, now time.Time) bool {
	if customer.AllDomainsDisabled() {
		return false
	}
	if cfg.OKReportDay == 0 {
		return true
	}
	if NeedAttention(cfg, res, now) {
		return true
	}
	return cfg.OKReportDay-1 == weekdayFromMonday(now)
}

// weekdayFromMonday 按 UTC 计算，周一为 0。
func weekdayFromMonday(t time.Time) int {
	return (int(t.UTC().Weekday()) + 6) % 7
}
