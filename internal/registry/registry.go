// Package registry 提供只读的池 / farm 目录，构建后不可变，可被并发请求共享。
package registry

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/types"
)

// Registry 只读查询接口
type Registry interface {
	PoolByNameVersion(name string, version int) (*Pool, bool)
	PoolByLpMint(mint types.Pubkey) (*Pool, bool)
	FarmByNameVersion(name string, version int) (*Farm, bool)
	DefaultFarm() (*Farm, bool)
	Farms() []*Farm
	Search(q SearchQuery) (*SearchResult, error)
}

// SearchQuery 三个条件可任意组合，但不能同时给出
type SearchQuery struct {
	FromName   string
	FromLp     string
	FromReward string
}

type SearchResult struct {
	FromName   []*Farm
	FromLp     []*Farm
	FromLpCoin *TokenInfo // farm 中找不到时回退到 LP 代币表
	FromReward []*Farm
}

// StaticRegistry 基于 Catalog 的不可变实现
type StaticRegistry struct {
	pools       []*Pool
	farms       []*Farm
	lpTokens    map[string]*TokenInfo
	poolsByKey  map[string]*Pool
	poolsByLp   map[types.Pubkey]*Pool
	farmsByKey  map[string]*Farm
	defaultFarm *Farm
}

var _ Registry = (*StaticRegistry)(nil)

// LoadFile 从 yaml 文件加载注册表
func LoadFile(path string) (*StaticRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return New(c)
}

// New 校验并索引目录，调用方之后对 Catalog 的修改不会影响注册表
func New(c Catalog) (*StaticRegistry, error) {
	r := &StaticRegistry{
		lpTokens:   make(map[string]*TokenInfo, len(c.LpTokens)),
		poolsByKey: make(map[string]*Pool, len(c.Pools)),
		poolsByLp:  make(map[types.Pubkey]*Pool, len(c.Pools)),
		farmsByKey: make(map[string]*Farm, len(c.Farms)),
	}

	for i := range c.Pools {
		p := c.Pools[i]
		if p.Version < 1 || p.Version > 5 {
			return nil, xerr.Validation("pool %s: version %d out of range 1..5", p.Name, p.Version)
		}
		if _, dup := r.poolsByKey[p.Key()]; dup {
			return nil, xerr.Validation("duplicate pool %s", p.Key())
		}
		if other, dup := r.poolsByLp[p.Lp.Mint]; dup {
			return nil, xerr.Validation("duplicate lp mint %s: pools %s, %s", p.Lp.Mint, other.Key(), p.Key())
		}
		r.pools = append(r.pools, &p)
		r.poolsByKey[p.Key()] = &p
		r.poolsByLp[p.Lp.Mint] = &p
	}

	for i := range c.Farms {
		f := c.Farms[i]
		if f.RewardB != nil {
			rb := *f.RewardB
			f.RewardB = &rb
		}
		if f.Fusion && (f.RewardB == nil || f.PoolRewardTokenAccountB.IsZero()) {
			return nil, xerr.Validation("fusion farm %s requires reward_b and pool_reward_token_account_b", f.Key())
		}
		if _, dup := r.farmsByKey[f.Key()]; dup {
			return nil, xerr.Validation("duplicate farm %s", f.Key())
		}
		if f.Default {
			if r.defaultFarm != nil {
				return nil, xerr.Validation("multiple default farms: %s, %s", r.defaultFarm.Key(), f.Key())
			}
			r.defaultFarm = &f
		}
		r.farms = append(r.farms, &f)
		r.farmsByKey[f.Key()] = &f
	}

	for i := range c.LpTokens {
		t := c.LpTokens[i]
		name := t.Name
		if name == "" {
			name = t.Symbol
		}
		r.lpTokens[name] = &t
	}
	return r, nil
}

func (r *StaticRegistry) PoolByNameVersion(name string, version int) (*Pool, bool) {
	p, ok := r.poolsByKey[poolKey(name, version)]
	return p, ok
}

func (r *StaticRegistry) PoolByLpMint(mint types.Pubkey) (*Pool, bool) {
	p, ok := r.poolsByLp[mint]
	return p, ok
}

func (r *StaticRegistry) FarmByNameVersion(name string, version int) (*Farm, bool) {
	f, ok := r.farmsByKey[poolKey(name, version)]
	return f, ok
}

func (r *StaticRegistry) DefaultFarm() (*Farm, bool) {
	return r.defaultFarm, r.defaultFarm != nil
}

// Pools 返回切片副本，元素指针指向只读数据
func (r *StaticRegistry) Pools() []*Pool {
	out := make([]*Pool, len(r.pools))
	copy(out, r.pools)
	return out
}

// Farms 返回切片副本，元素指针指向只读数据
func (r *StaticRegistry) Farms() []*Farm {
	out := make([]*Farm, len(r.farms))
	copy(out, r.farms)
	return out
}

func (r *StaticRegistry) Search(q SearchQuery) (*SearchResult, error) {
	if q.FromName != "" && q.FromLp != "" && q.FromReward != "" {
		return nil, xerr.Validation("search accepts fromName, fromLp or fromReward, not all three at once")
	}

	res := &SearchResult{}
	if q.FromName != "" {
		res.FromName = r.filterFarms(func(f *Farm) bool { return f.Name == q.FromName })
	}
	if q.FromLp != "" {
		res.FromLp = r.filterFarms(func(f *Farm) bool { return f.Lp.Name == q.FromLp })
		if len(res.FromLp) == 0 {
			res.FromLpCoin = r.lpTokens[q.FromLp]
		}
	}
	if q.FromReward != "" {
		symbol := strings.ToUpper(q.FromReward)
		res.FromReward = r.filterFarms(func(f *Farm) bool { return f.Reward.Symbol == symbol })
	}
	return res, nil
}

func (r *StaticRegistry) filterFarms(match func(*Farm) bool) []*Farm {
	var out []*Farm
	for _, f := range r.farms {
		if match(f) {
			out = append(out, f)
		}
	}
	return out
}
