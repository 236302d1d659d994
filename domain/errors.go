package domain

import (
	"errors"
	"fmt"
)

// ErrorKind 是封闭的错误分类，调用方可以穷举分支。
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindLookupFailure
	KindDateParseFailure
	KindMissingExpiryField
	KindCacheIO
	KindCacheFormat
)

func (k ErrorKind) String() string {
	switch k {
	case KindLookupFailure:
		return "lookup_failure"
	case KindDateParseFailure:
		return "date_parse_failure"
	case KindMissingExpiryField:
		return "missing_expiry_field"
	case KindCacheIO:
		return "cache_io_failure"
	case KindCacheFormat:
		return "cache_format_failure"
	default:
		return "unknown"
	}
}

// ErrMissingExpiryField WHOIS 结果里既没有 paid-till 也没有 registry expiry date。
var ErrMissingExpiryField = errors.New("can't find whois field")

// Error 带分类和域名的错误。Error() 只输出原因，报表里直接展示。
type Error struct {
	Kind   ErrorKind
	Domain string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind ErrorKind, domain string, err error) *Error {
	return &Error{Kind: kind, Domain: domain, Err: err}
}

// Errorf 方便仓库层包装底层错误。
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf 返回错误链上第一个 *Error 的分类。
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
