package cache

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"ray-liquidity-sol/internal/logic/yield"
	"ray-liquidity-sol/internal/types"
)

// pairStatFile 交易对统计文件格式:
//
//	pairs:
//	  - lp_mint: <base58>
//	    liquidity: "1500000"
//	    fee_apy: "3.2"
type pairStatFile struct {
	Pairs []struct {
		LpMint    types.Pubkey `yaml:"lp_mint"`
		Liquidity string       `yaml:"liquidity"`
		FeeAPY    string       `yaml:"fee_apy"`
	} `yaml:"pairs"`
}

// LoadPairStats 读取交易对统计，按 LP mint 索引。path 为空时返回空 map
func LoadPairStats(path string) (map[types.Pubkey]yield.PairStat, error) {
	if path == "" {
		return map[types.Pubkey]yield.PairStat{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pair stats %s: %w", path, err)
	}
	return ParsePairStats(data)
}

func ParsePairStats(data []byte) (map[types.Pubkey]yield.PairStat, error) {
	var file pairStatFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse pair stats: %w", err)
	}

	stats := make(map[types.Pubkey]yield.PairStat, len(file.Pairs))
	for _, p := range file.Pairs {
		liq, err := parseOptional(p.Liquidity)
		if err != nil {
			return nil, fmt.Errorf("pair %s liquidity: %w", p.LpMint, err)
		}
		fee, err := parseOptional(p.FeeAPY)
		if err != nil {
			return nil, fmt.Errorf("pair %s fee_apy: %w", p.LpMint, err)
		}
		stats[p.LpMint] = yield.PairStat{Liquidity: liq, FeeAPY: fee}
	}
	return stats, nil
}

func parseOptional(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
