package service

import (
	"context"
	"time"

	"ray-liquidity-sol/internal/chain"
	"ray-liquidity-sol/internal/logic/amount"
	"ray-liquidity-sol/internal/logic/liquidity"
	"ray-liquidity-sol/internal/logic/yield"
	"ray-liquidity-sol/internal/pkg/logger"
	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/registry"
	"ray-liquidity-sol/internal/types"
)

// 每个 farm 读取 2 个账户：farm 状态账户与 LP vault
const accountsPerFarm = 2

// FarmStateLoader 一次批量读取全部 farm 及其池子的链上数据
type FarmStateLoader struct {
	reg     registry.Registry
	fetcher chain.AccountFetcher
}

func NewFarmStateLoader(reg registry.Registry, fetcher chain.AccountFetcher) *FarmStateLoader {
	return &FarmStateLoader{reg: reg, fetcher: fetcher}
}

// Load 返回与 reg.Farms() 顺序一致的状态，单个 farm 的解析错误写入 FarmState.Err。
// 只有整批请求失败时才返回 error
func (l *FarmStateLoader) Load(ctx context.Context) ([]yield.FarmState, error) {
	farms := l.reg.Farms()
	if len(farms) == 0 {
		return nil, nil
	}

	// 多个 farm 可能共用同一个池子，池子账户只请求一次
	pools := make([]*registry.Pool, 0, len(farms))
	poolIndex := make(map[types.Pubkey]int, len(farms))
	farmPool := make([]int, len(farms))
	for i, farm := range farms {
		farmPool[i] = -1
		pool, ok := l.reg.PoolByLpMint(farm.Lp.Mint)
		if !ok {
			continue
		}
		idx, seen := poolIndex[pool.AmmID]
		if !seen {
			idx = len(pools)
			poolIndex[pool.AmmID] = idx
			pools = append(pools, pool)
		}
		farmPool[i] = idx
	}

	addrs := make([]types.Pubkey, 0, len(farms)*accountsPerFarm+len(pools)*3)
	for _, farm := range farms {
		addrs = append(addrs, farm.PoolID, farm.PoolLpTokenAccount)
	}
	poolBase := len(addrs)
	for _, pool := range pools {
		addrs = append(addrs, liquidity.SnapshotAccounts(pool)...)
	}

	start := time.Now()
	infos, err := l.fetcher.GetMultipleAccounts(ctx, addrs)
	if err != nil {
		return nil, xerr.Rpc(err, "load %d farms", len(farms))
	}
	if len(infos) != len(addrs) {
		return nil, xerr.Rpc(nil, "返回账户数与请求不一致: got=%d want=%d", len(infos), len(addrs))
	}
	logger.Infof("[FarmStateLoader] 拉取完成, farms: %d, pools: %d, 账户数: %d, 耗时: %v",
		len(farms), len(pools), len(addrs), time.Since(start))

	snapshots := make([]*liquidity.PoolSnapshot, len(pools))
	snapshotErrs := make([]error, len(pools))
	for i, pool := range pools {
		off := poolBase + i*3
		snapshots[i], snapshotErrs[i] = liquidity.DecodeSnapshot(pool, infos[off:off+3])
	}

	states := make([]yield.FarmState, len(farms))
	for i, farm := range farms {
		state := yield.FarmState{Farm: farm, Account: infos[i*accountsPerFarm]}
		if idx := farmPool[i]; idx >= 0 {
			if snapshotErrs[idx] != nil {
				state.Err = snapshotErrs[idx]
				states[i] = state
				continue
			}
			state.Snapshot = snapshots[idx]
		}

		deposited, err := decodeDeposited(farm, infos[i*accountsPerFarm+1])
		if err != nil {
			state.Err = err
		}
		state.Deposited = deposited
		states[i] = state
	}
	return states, nil
}

func decodeDeposited(farm *registry.Farm, info *chain.AccountInfo) (amount.TokenAmount, error) {
	if info == nil {
		return amount.TokenAmount{}, xerr.New(xerr.KindDecode, "farm %s: lp vault %s not found", farm.Key(), farm.PoolLpTokenAccount)
	}
	vault, err := chain.DecodeTokenAccount(info)
	if err != nil {
		return amount.TokenAmount{}, err
	}
	return amount.FromRaw(vault.Amount, farm.Lp.Decimals), nil
}
