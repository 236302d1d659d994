package domain

import "DomainWatch/cache"

// Repository 统一管理客户列表和到期缓存的持久化。
type Repository interface {
	// LoadCustomers 读取客户及其域名列表。
	LoadCustomers() ([]Customer, error)
	// LoadExpiryCache 读取到期缓存；格式错误返回 KindCacheFormat，其他读错误返回 KindCacheIO。
	LoadExpiryCache() (*cache.ExpiryCache, error)
	// SaveExpiryCache 覆盖写回整个缓存。
	SaveExpiryCache(c *cache.ExpiryCache) error
}
