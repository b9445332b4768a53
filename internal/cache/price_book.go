package cache

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// PriceBook 按代币符号保存 USD 价格，供收益计算取快照使用
type PriceBook struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

func NewPriceBook() *PriceBook {
	return &PriceBook{
		prices: make(map[string]decimal.Decimal),
	}
}

// 符号统一大写，"ray" 与 "RAY" 视为同一代币
func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func (pb *PriceBook) Set(symbol string, price decimal.Decimal) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.prices[normalize(symbol)] = price
}

// UpdateFrom 批量覆盖，空符号和负价格跳过
func (pb *PriceBook) UpdateFrom(prices map[string]decimal.Decimal) int {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	n := 0
	for symbol, price := range prices {
		key := normalize(symbol)
		if key == "" || price.IsNegative() {
			continue
		}
		pb.prices[key] = price
		n++
	}
	return n
}

func (pb *PriceBook) Get(symbol string) (decimal.Decimal, bool) {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	price, ok := pb.prices[normalize(symbol)]
	return price, ok
}

func (pb *PriceBook) Len() int {
	pb.mu.RLock()
	defer pb.mu.RUnlock()
	return len(pb.prices)
}

// Snapshot 返回副本，调用方可以在无锁情况下跨 goroutine 读取
func (pb *PriceBook) Snapshot() map[string]decimal.Decimal {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	out := make(map[string]decimal.Decimal, len(pb.prices))
	for symbol, price := range pb.prices {
		out[symbol] = price
	}
	return out
}

// priceFile 价格文件格式:
//
//	prices:
//	  RAY: "1.25"
//	  USDC: "1"
type priceFile struct {
	Prices map[string]string `yaml:"prices"`
}

// LoadFile 从 YAML 价格文件加载，返回成功写入的数量
func (pb *PriceBook) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read price file %s: %w", path, err)
	}
	return pb.LoadYAML(data)
}

func (pb *PriceBook) LoadYAML(data []byte) (int, error) {
	var file priceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse price file: %w", err)
	}

	parsed := make(map[string]decimal.Decimal, len(file.Prices))
	for symbol, raw := range file.Prices {
		price, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return 0, fmt.Errorf("invalid price for %s: %q", symbol, raw)
		}
		parsed[symbol] = price
	}
	return pb.UpdateFrom(parsed), nil
}
