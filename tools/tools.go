package tools

import (
	"strings"
	"time"
)

// 注册局返回的常见到期日期格式，按优先级尝试。
var expiryLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"02-Jan-2006",
	"02.01.2006",
	"Jan 02, 2006",
	"January 2 2006",
	"January 02 2006",
}

// ParseWhoisKV 把 WHOIS 原文按 "key: value" 拆成 map。
// key 统一小写，只保留第一次出现的值。
func ParseWhoisKV(raw string) map[string]string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	out := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%") || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ">>>") {
			continue
		}
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		if key == "" || value == "" {
			continue
		}
		if _, exists := out[key]; exists {
			continue
		}
		out[key] = value
	}
	return out
}

// NormalizeExpiry 尝试用已知格式解析日期，成功时返回 RFC3339 字符串。
func NormalizeExpiry(value string) (string, bool) {
	cleaned := strings.Join(strings.Fields(strings.Trim(strings.TrimSpace(value), ":")), " ")
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.UTC().Format(time.RFC3339), true
		}
	}
	return "", false
}

// DaysBetween 返回 to - from 的整天数，向零截断（-1.5 天记为 -1）。
func DaysBetween(from, to time.Time) int64 {
	return int64(to.Sub(from) / (24 * time.Hour))
}
