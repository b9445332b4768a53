package stake

import (
	"context"

	"ray-liquidity-sol/internal/chain"
	"ray-liquidity-sol/internal/layout"
	"ray-liquidity-sol/internal/logic/raydium"
	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/registry"
	"ray-liquidity-sol/internal/types"
)

// FindStakerInfo 查找 owner 在 farm 下的质押记录，不存在返回 (nil, nil)
func FindStakerInfo(ctx context.Context, f chain.AccountFetcher, farm *registry.Farm, owner types.Pubkey) (*layout.StakerInfo, error) {
	family := raydium.FamilyOf(farm.Version)
	filters := []chain.MemcmpFilter{
		{Offset: layout.StakerPoolIDOffset, Bytes: farm.PoolID[:]},
		{Offset: layout.StakerOwnerOffset, Bytes: owner[:]},
	}
	infos, err := f.FindProgramAccounts(ctx, farm.ProgramID, layout.StakerInfoSpan(family), filters)
	if err != nil {
		return nil, xerr.Rpc(err, "find stake record of %s in farm %s", owner, farm.Key())
	}
	if len(infos) == 0 {
		return nil, nil
	}
	// 正常只会有一条；多条时取存款最多的一条
	var best *layout.StakerInfo
	for _, info := range infos {
		staker, err := layout.DecodeStakerInfo(info.Address, info.Owner, info.Data)
		if err != nil {
			return nil, err
		}
		if best == nil || staker.DepositBalance > best.DepositBalance {
			best = staker
		}
	}
	return best, nil
}

// LookupAccount 查询任意 stake 程序账户，按所属程序与长度解码为 farm 状态或用户质押记录
func LookupAccount(ctx context.Context, f chain.AccountFetcher, address types.Pubkey) (*layout.DecodedAccount, error) {
	info, err := chain.GetAccount(ctx, f, address)
	if err != nil {
		return nil, xerr.Rpc(err, "get account %s", address)
	}
	if info == nil {
		return nil, xerr.Validation("account %s not found", address)
	}
	return layout.DecodeAny(info.Address, info.Owner, info.Data)
}
