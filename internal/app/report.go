package app

import (
	"slices"
	"strconv"
	"strings"

	"github.com/scylladb/termtables"
)

// CompareChecks 定义报表顺序，越紧急越靠前：
// 错误 < 到期时间（按时间升序） < 已禁用（按域名升序）。错误之间视为相等。
func CompareChecks(a, b DomainCheck) int {
	switch {
	case a.Err != nil && b.Err != nil:
		return 0
	case a.Err != nil:
		return -1
	case b.Err != nil:
		return 1
	}
	if a.Result.Kind != b.Result.Kind {
		if a.Result.Kind == ResultExpiryDate {
			return -1
		}
		return 1
	}
	if a.Result.Kind == ResultDisabled {
		return strings.Compare(a.Record.Domain, b.Record.Domain)
	}
	return a.Result.Expiry.Compare(b.Result.Expiry)
}

// SortedChecks 稳定排序，错误之间保持客户文件中的顺序。
func SortedChecks(res *CheckAccountResult) []DomainCheck {
	checks := res.Checks()
	slices.SortStableFunc(checks, CompareChecks)
	return checks
}

// ExpiredColumn 报表中 Expired 列的内容。
func (c DomainCheck) ExpiredColumn() string {
	if c.Err != nil {
		return c.Err.Error()
	}
	return c.Result.String()
}

// CreateAccountReport 渲染一个客户的域名表。
func CreateAccountReport(res *CheckAccountResult) string {
	tbl := termtables.CreateTable()
	tbl.AddHeaders("Domain", "Account", "Expired", "Autorenew")
	for _, c := range SortedChecks(res) {
		tbl.AddRow(
			c.Record.Domain,
			c.Record.Account,
			c.ExpiredColumn(),
			strconv.FormatBool(c.Record.Autorenew))
	}
	return tbl.Render()
}
