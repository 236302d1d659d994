package domain

// Customer 是一个客户账户及其需要跟踪的域名。
type Customer struct {
	Name     string         `yaml:"name"`
	Disabled bool           `yaml:"disabled"`
	Emails   []string       `yaml:"emails"`
	Domains  []DomainRecord `yaml:"domains"`
}

// DomainRecord 是客户名下的一条域名记录，Domain 同时是缓存的 key。
type DomainRecord struct {
	Domain    string `yaml:"domain"`
	Account   string `yaml:"account"`
	Autorenew bool   `yaml:"autorenew"`
	Disabled  bool   `yaml:"disabled"`
}

// AllDomainsDisabled 没有域名时也返回 true。
func (c Customer) AllDomainsDisabled() bool {
	for _, d := range c.Domains {
		if !d.Disabled {
			return false
		}
	}
	return true
}

// CustomersExample 是 customers 文件的示例。
const CustomersExample = `# customers.yaml
- name: acme
  emails:
    - admin@acme.example
    - off:accounting@acme.example
  domains:
    - domain: acme.com
      account: registrar-main
      autorenew: true
    - domain: acme.ru
      account: registrar-ru
    - domain: old-acme.net
      disabled: true
- name: archived
  disabled: true
  emails: []
  domains:
    - domain: archived.org
`
