package domain

import (
	"fmt"
	"os"
	"strings"

	"DomainWatch/cache"

	"gopkg.in/yaml.v3"
)

// FileRepository 基于 YAML 文件的仓库实现。
type FileRepository struct {
	customersPath string
	stateFile     string
}

// NewFileRepository stateFile 为空时不读写缓存。
func NewFileRepository(customersPath, stateFile string) *FileRepository {
	return &FileRepository{customersPath: customersPath, stateFile: stateFile}
}

// LoadCustomers 读取 customers 文件，域名前后空白会被去掉。
func (r *FileRepository) LoadCustomers() ([]Customer, error) {
	data, err := os.ReadFile(r.customersPath)
	if err != nil {
		return nil, fmt.Errorf("read customers file %s: %w", r.customersPath, err)
	}
	var customers []Customer
	if err := yaml.Unmarshal(data, &customers); err != nil {
		return nil, fmt.Errorf("parse customers file %s: %w", r.customersPath, err)
	}
	for i := range customers {
		for j := range customers[i].Domains {
			customers[i].Domains[j].Domain = strings.TrimSpace(customers[i].Domains[j].Domain)
		}
	}
	return customers, nil
}

// LoadExpiryCache 文件不存在时返回空缓存。
func (r *FileRepository) LoadExpiryCache() (*cache.ExpiryCache, error) {
	if r.stateFile == "" {
		return cache.New(), nil
	}
	file, err := os.Open(r.stateFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cache.New(), nil
		}
		return nil, Errorf(KindCacheIO, "open state file %s: %w", r.stateFile, err)
	}
	defer file.Close()

	c, err := cache.Load(file)
	if err != nil {
		return nil, Errorf(KindCacheFormat, "parse state file %s: %w", r.stateFile, err)
	}
	return c, nil
}

// SaveExpiryCache 覆盖写状态文件。
func (r *FileRepository) SaveExpiryCache(c *cache.ExpiryCache) error {
	if r.stateFile == "" {
		return nil
	}
	file, err := os.Create(r.stateFile)
	if err != nil {
		return Errorf(KindCacheIO, "create state file %s: %w", r.stateFile, err)
	}
	defer file.Close()

	if err := c.Save(file); err != nil {
		return Errorf(KindCacheIO, "write state file %s: %w", r.stateFile, err)
	}
	if err := file.Close(); err != nil {
		return Errorf(KindCacheIO, "close state file %s: %w", r.stateFile, err)
	}
	return nil
}

// StateFile 返回缓存文件路径，可能为空。
func (r *FileRepository) StateFile() string {
	return r.stateFile
}
