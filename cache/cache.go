package cache

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"DomainWatch/tools"

	"gopkg.in/yaml.v3"
)

// TimeLayout 是缓存文件和报表共用的时间格式。
const TimeLayout = time.RFC3339Nano

// ExpiryCache 保存 domain -> 到期时间，一次运行内由 AccountChecker 独占。
type ExpiryCache struct {
	mu      sync.RWMutex
	expires map[string]time.Time
}

// fileFormat 是状态文件的结构：domains_expire: {domain: "2025-01-01T00:00:00Z"}
type fileFormat struct {
	DomainsExpire map[string]string `yaml:"domains_expire"`
}

func New() *ExpiryCache {
	return &ExpiryCache{expires: make(map[string]time.Time)}
}

func (c *ExpiryCache) Get(domain string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.expires[domain]
	return t, ok
}

// Put 覆盖已有记录。
func (c *ExpiryCache) Put(domain string, expiry time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expires[domain] = expiry.UTC()
}

func (c *ExpiryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.expires)
}

// Domains 返回按名称排序的全部 key。
func (c *ExpiryCache) Domains() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.expires))
	for d := range c.expires {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Clean 删除 (expiry - now) 的整天数 <= thresholdDays 的记录，返回删除数量。
// 负的阈值只淘汰已经过期的记录。
func (c *ExpiryCache) Clean(now time.Time, thresholdDays int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for d, expiry := range c.expires {
		if tools.DaysBetween(now, expiry) <= thresholdDays {
			delete(c.expires, d)
			removed++
		}
	}
	return removed
}

func (c *ExpiryCache) MarshalYAML() (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := fileFormat{DomainsExpire: make(map[string]string, len(c.expires))}
	for d, t := range c.expires {
		out.DomainsExpire[d] = t.UTC().Format(TimeLayout)
	}
	return out, nil
}

// UnmarshalYAML 任何一条时间解析失败都会让整个加载失败，不接受部分缓存。
func (c *ExpiryCache) UnmarshalYAML(value *yaml.Node) error {
	var raw fileFormat
	if err := value.Decode(&raw); err != nil {
		return err
	}
	expires := make(map[string]time.Time, len(raw.DomainsExpire))
	for d, s := range raw.DomainsExpire {
		t, err := time.Parse(TimeLayout, s)
		if err != nil {
			return fmt.Errorf("domain %s: %w", d, err)
		}
		expires[d] = t.UTC()
	}
	c.mu.Lock()
	c.expires = expires
	c.mu.Unlock()
	return nil
}

// Load 从 reader 读取整个缓存；空输入得到空缓存。
func Load(r io.Reader) (*ExpiryCache, error) {
	c := New()
	if err := yaml.NewDecoder(r).Decode(c); err != nil && err != io.EOF {
		return nil, err
	}
	return c, nil
}

// Save 覆盖写出整个缓存。
func (c *ExpiryCache) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
