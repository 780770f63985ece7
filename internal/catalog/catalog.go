// internal/catalog/catalog.go
//
// Package catalog 定義靜態商品目錄：各電信網路的數據方案 (bundle)
// 以及外幣匯率表 (FX rate table)。預設值內建，亦可由 YAML 檔覆寫。
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Bundle 為單一數據方案。
type Bundle struct {
	ID    string          `yaml:"id" json:"id"`
	Name  string          `yaml:"name" json:"name"`
	Price decimal.Decimal `yaml:"price" json:"price"`
	Data  string          `yaml:"data" json:"data"`
}

// Rate 為外幣對本地貨幣 (NGN) 的匯率與手續費百分比。
type Rate struct {
	Rate       decimal.Decimal `yaml:"rate" json:"rate"`
	FeePercent decimal.Decimal `yaml:"fee_percent" json:"fee_percent"`
}

// Catalog 聚合方案目錄與匯率表；建立後視為唯讀。
type Catalog struct {
	Bundles map[string][]Bundle `yaml:"bundles"`
	FX      map[string]Rate     `yaml:"fx"`
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Default 回傳內建目錄。
func Default() *Catalog {
	return &Catalog{
		Bundles: map[string][]Bundle{
			"MTN": {
				{ID: "mtn-100", Name: "50MB - 1 Day", Price: d("100"), Data: "50MB"},
				{ID: "mtn-500", Name: "500MB - 7 Days", Price: d("500"), Data: "500MB"},
				{ID: "mtn-1500", Name: "2GB - 30 Days", Price: d("1500"), Data: "2GB"},
			},
			"Airtel": {
				{ID: "air-100", Name: "100MB - 1 Day", Price: d("120"), Data: "100MB"},
				{ID: "air-600", Name: "600MB - 7 Days", Price: d("600"), Data: "600MB"},
			},
			"Glo": {
				{ID: "glo-200", Name: "200MB - 3 Days", Price: d("200"), Data: "200MB"},
			},
			"9Mobile": {
				{ID: "9-300", Name: "300MB - 7 Days", Price: d("300"), Data: "300MB"},
			},
		},
		FX: map[string]Rate{
			"USD": {Rate: d("1500"), FeePercent: d("1.2")},
			"EUR": {Rate: d("1650"), FeePercent: d("1.3")},
			"GBP": {Rate: d("1900"), FeePercent: d("1.4")},
		},
	}
}

// Load 讀取 YAML 目錄檔；path 為空時回傳 Default()。
// 檔案中未提供的區段沿用預設值。
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var file Catalog
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(file.Bundles) > 0 {
		c.Bundles = file.Bundles
	}
	if len(file.FX) > 0 {
		c.FX = make(map[string]Rate, len(file.FX))
		for code, r := range file.FX {
			c.FX[strings.ToUpper(code)] = r
		}
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) validate() error {
	for network, list := range c.Bundles {
		for _, b := range list {
			if b.ID == "" {
				return fmt.Errorf("network %s: bundle without id", network)
			}
			if !b.Price.IsPositive() {
				return fmt.Errorf("network %s: bundle %s has non-positive price", network, b.ID)
			}
		}
	}
	for code, r := range c.FX {
		if !r.Rate.IsPositive() || r.FeePercent.IsNegative() {
			return fmt.Errorf("currency %s: invalid rate", code)
		}
	}
	return nil
}

// Bundle 依網路名稱與方案 ID 查找；找不到回傳 false。
func (c *Catalog) Bundle(network, id string) (Bundle, bool) {
	for _, b := range c.Bundles[network] {
		if b.ID == id {
			return b, true
		}
	}
	return Bundle{}, false
}

// Rate 依幣別代碼查找匯率（不分大小寫）。
func (c *Catalog) Rate(currency string) (Rate, bool) {
	r, ok := c.FX[strings.ToUpper(strings.TrimSpace(currency))]
	return r, ok
}

// BundlesCopy 回傳方案目錄的深拷貝，呼叫端修改不影響內部狀態。
func (c *Catalog) BundlesCopy() map[string][]Bundle {
	out := make(map[string][]Bundle, len(c.Bundles))
	for k, v := range c.Bundles {
		out[k] = append([]Bundle(nil), v...)
	}
	return out
}

// RatesCopy 回傳匯率表拷貝。
func (c *Catalog) RatesCopy() map[string]Rate {
	out := make(map[string]Rate, len(c.FX))
	for k, v := range c.FX {
		out[k] = v
	}
	return out
}

// Networks 回傳排序後的網路名稱。
func (c *Catalog) Networks() []string {
	out := make([]string, 0, len(c.Bundles))
	for k := range c.Bundles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Currencies 回傳排序後的幣別代碼。
func (c *Catalog) Currencies() []string {
	out := make([]string, 0, len(c.FX))
	for k := range c.FX {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
