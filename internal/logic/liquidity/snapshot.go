package liquidity

import (
	"context"

	"ray-liquidity-sol/internal/chain"
	"ray-liquidity-sol/internal/logic/amount"
	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/registry"
	"ray-liquidity-sol/internal/types"
)

// PoolSnapshot 池子在某一时刻的余额快照，每次请求重新拉取
type PoolSnapshot struct {
	Pool        *registry.Pool
	CoinBalance amount.TokenAmount // coin vault 余额
	PcBalance   amount.TokenAmount // pc vault 余额
	LpSupply    amount.TokenAmount // LP mint 总供应量
}

// SnapshotAccounts 单个池子快照需要的 3 个账户：coin vault / pc vault / lp mint
func SnapshotAccounts(pool *registry.Pool) []types.Pubkey {
	return []types.Pubkey{pool.PoolCoinTokenAccount, pool.PoolPcTokenAccount, pool.Lp.Mint}
}

// FetchSnapshot 单个池子的快照
func FetchSnapshot(ctx context.Context, f chain.AccountFetcher, pool *registry.Pool) (*PoolSnapshot, error) {
	infos, err := f.GetMultipleAccounts(ctx, SnapshotAccounts(pool))
	if err != nil {
		return nil, xerr.Rpc(err, "fetch pool %s", pool.Key())
	}
	return DecodeSnapshot(pool, infos)
}

// FetchSnapshots 一次批量读取多个池子的快照，结果与 pools 顺序一致。
// 单个池子解析失败只影响对应位置：snapshots[i] 为 nil，errs[i] 为原因
func FetchSnapshots(ctx context.Context, f chain.AccountFetcher, pools []*registry.Pool) ([]*PoolSnapshot, []error, error) {
	addrs := make([]types.Pubkey, 0, len(pools)*3)
	for _, pool := range pools {
		addrs = append(addrs, SnapshotAccounts(pool)...)
	}
	infos, err := f.GetMultipleAccounts(ctx, addrs)
	if err != nil {
		return nil, nil, xerr.Rpc(err, "fetch %d pools", len(pools))
	}
	if len(infos) != len(addrs) {
		return nil, nil, xerr.Rpc(nil, "fetch %d pools: want %d accounts, got %d", len(pools), len(addrs), len(infos))
	}

	snapshots := make([]*PoolSnapshot, len(pools))
	errs := make([]error, len(pools))
	for i, pool := range pools {
		snapshots[i], errs[i] = DecodeSnapshot(pool, infos[i*3:i*3+3])
	}
	return snapshots, errs, nil
}

// DecodeSnapshot infos 依次为 coin vault / pc vault / lp mint
func DecodeSnapshot(pool *registry.Pool, infos []*chain.AccountInfo) (*PoolSnapshot, error) {
	if len(infos) != 3 {
		return nil, xerr.New(xerr.KindDecode, "pool %s: want 3 accounts, got %d", pool.Key(), len(infos))
	}
	for i, name := range []string{"coin vault", "pc vault", "lp mint"} {
		if infos[i] == nil {
			return nil, xerr.New(xerr.KindDecode, "pool %s: %s %s not found", pool.Key(), name, SnapshotAccounts(pool)[i])
		}
	}

	coin, err := chain.DecodeTokenAccount(infos[0])
	if err != nil {
		return nil, err
	}
	pc, err := chain.DecodeTokenAccount(infos[1])
	if err != nil {
		return nil, err
	}
	mint, err := chain.DecodeMint(infos[2])
	if err != nil {
		return nil, err
	}
	return &PoolSnapshot{
		Pool:        pool,
		CoinBalance: amount.FromRaw(coin.Amount, pool.Coin.Decimals),
		PcBalance:   amount.FromRaw(pc.Amount, pool.Pc.Decimals),
		LpSupply:    amount.FromRaw(mint.Supply, pool.Lp.Decimals),
	}, nil
}
