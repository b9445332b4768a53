// Package liquidity 组装 AMM 加 / 移除流动性交易。
//
// 所有余额与校验在生成任何指令之前完成，失败时不会返回计划。
// 交易内指令顺序固定为：包装 SOL -> 创建账户 -> 流动性指令 -> 关闭包装账户。
package liquidity

import (
	"context"
	"math"

	sdktypes "github.com/blocto/solana-go-sdk/types"

	"ray-liquidity-sol/internal/chain"
	"ray-liquidity-sol/internal/consts"
	"ray-liquidity-sol/internal/logic/amount"
	"ray-liquidity-sol/internal/logic/raydium"
	"ray-liquidity-sol/internal/logic/txplan"
	"ray-liquidity-sol/internal/pkg/logger"
	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/registry"
	"ray-liquidity-sol/internal/types"
)

type Planner struct {
	reg     registry.Registry
	fetcher chain.AccountFetcher
}

func NewPlanner(reg registry.Registry, fetcher chain.AccountFetcher) *Planner {
	return &Planner{reg: reg, fetcher: fetcher}
}

type AddLiquidityRequest struct {
	PoolName    string
	PoolVersion int
	Owner       sdktypes.Account
	FromAmount  string // coin 数量（人类可读），与 ToAmount 二选一
	ToAmount    string // pc 数量（人类可读）
}

type RemoveLiquidityRequest struct {
	PoolName    string
	PoolVersion int
	Owner       sdktypes.Account
	LpAmount    string
}

// Quote 只计算配对数量，不构建交易
func (p *Planner) Quote(ctx context.Context, poolName string, poolVersion int, from, to string) (*Quotation, error) {
	if (from == "") == (to == "") {
		return nil, xerr.Validation("exactly one of fromAmount / toAmount is required")
	}
	pool, err := p.lookupPool(poolName, poolVersion)
	if err != nil {
		return nil, err
	}
	snap, err := FetchSnapshot(ctx, p.fetcher, pool)
	if err != nil {
		return nil, err
	}
	return PairAmount(snap, from, to)
}

// PlanAddLiquidity 构建加流动性交易
func (p *Planner) PlanAddLiquidity(ctx context.Context, req AddLiquidityRequest) (*txplan.Plan, *Quotation, error) {
	q, err := p.Quote(ctx, req.PoolName, req.PoolVersion, req.FromAmount, req.ToAmount)
	if err != nil {
		return nil, nil, err
	}
	pool, _ := p.reg.PoolByNameVersion(req.PoolName, req.PoolVersion)
	owner := types.PubkeyFromCommon(req.Owner.PublicKey)

	accs, err := p.resolveAccounts(ctx, owner, pool.Coin, pool.Pc, pool.Lp)
	if err != nil {
		return nil, nil, err
	}
	coinAcc, pcAcc, lpAcc := accs[0], accs[1], accs[2]

	var rent uint64
	if coinAcc.native || pcAcc.native {
		if rent, err = p.tokenAccountRent(ctx); err != nil {
			return nil, nil, err
		}
	}

	// 两侧都要花费，任一侧不足直接失败
	coinRaw, err := coinAcc.ensureSpend(q.CoinAmount, rent)
	if err != nil {
		return nil, nil, err
	}
	pcRaw, err := pcAcc.ensureSpend(q.PcAmount, rent)
	if err != nil {
		return nil, nil, err
	}

	b := txplan.NewBuilder(req.Owner)
	userCoin := coinAcc.source(b, rent+coinRaw+consts.WrapOverProvisionLamports)
	userPc := pcAcc.source(b, rent+pcRaw+consts.WrapOverProvisionLamports)
	userLp := lpAcc.destination(b)

	ix, err := raydium.FamilyOf(pool.Version).AddLiquidity(raydium.AddLiquidityParams{
		Pool:                 pool,
		UserCoinTokenAccount: userCoin,
		UserPcTokenAccount:   userPc,
		UserLpTokenAccount:   userLp,
		Owner:                owner,
		MaxCoinAmount:        coinRaw,
		MaxPcAmount:          pcRaw,
		FixedSide:            q.FixedSide,
	})
	if err != nil {
		return nil, nil, err
	}
	b.AddMain(ix)

	plan, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	logger.Infof("[Liquidity] add liquidity planned: pool=%s, coin=%s, pc=%s, rate=%s, instructions=%d",
		pool.Key(), q.CoinAmount, q.PcAmount, q.Rate, plan.Len())
	return plan, q, nil
}

// PlanRemoveLiquidity 构建移除流动性交易；原生 SOL 一侧使用临时包装账户接收并在末尾关闭
func (p *Planner) PlanRemoveLiquidity(ctx context.Context, req RemoveLiquidityRequest) (*txplan.Plan, error) {
	pool, err := p.lookupPool(req.PoolName, req.PoolVersion)
	if err != nil {
		return nil, err
	}
	lpAmount, err := parsePositive(req.LpAmount, pool.Lp.Decimals)
	if err != nil {
		return nil, err
	}
	lpRaw, err := lpAmount.RawUint64()
	if err != nil {
		return nil, err
	}
	owner := types.PubkeyFromCommon(req.Owner.PublicKey)

	accs, err := p.resolveAccounts(ctx, owner, pool.Coin, pool.Pc, pool.Lp)
	if err != nil {
		return nil, err
	}
	coinAcc, pcAcc, lpAcc := accs[0], accs[1], accs[2]
	if err := lpAcc.ensure(lpAmount); err != nil {
		return nil, err
	}

	var rent uint64
	if coinAcc.native || pcAcc.native {
		if rent, err = p.tokenAccountRent(ctx); err != nil {
			return nil, err
		}
	}
	// 原生 SOL 接收侧的临时包装账户由钱包支付免租金额
	for _, acc := range []*userAccount{coinAcc, pcAcc} {
		if acc.native {
			if err := acc.ensure(amount.FromRaw(rent, acc.token.Decimals)); err != nil {
				return nil, err
			}
		}
	}

	b := txplan.NewBuilder(req.Owner)
	userCoin := coinAcc.receiver(b, rent)
	userPc := pcAcc.receiver(b, rent)

	ix, err := raydium.FamilyOf(pool.Version).RemoveLiquidity(raydium.RemoveLiquidityParams{
		Pool:                 pool,
		UserLpTokenAccount:   lpAcc.ata.Address,
		UserCoinTokenAccount: userCoin,
		UserPcTokenAccount:   userPc,
		Owner:                owner,
		Amount:               lpRaw,
	})
	if err != nil {
		return nil, err
	}
	b.AddMain(ix)

	plan, err := b.Build()
	if err != nil {
		return nil, err
	}
	logger.Infof("[Liquidity] remove liquidity planned: pool=%s, lp=%s, instructions=%d", pool.Key(), lpAmount, plan.Len())
	return plan, nil
}

func (p *Planner) lookupPool(name string, version int) (*registry.Pool, error) {
	if name == "" {
		return nil, xerr.Validation("pool name is required")
	}
	pool, ok := p.reg.PoolByNameVersion(name, version)
	if !ok {
		return nil, xerr.PoolNotFound("pool %s v%d", name, version)
	}
	return pool, nil
}

func (p *Planner) tokenAccountRent(ctx context.Context) (uint64, error) {
	rent, err := p.fetcher.GetMinimumBalanceForRentExemption(ctx, chain.TokenAccountSize)
	if err != nil {
		return 0, xerr.Rpc(err, "get rent exemption")
	}
	return rent, nil
}

// userAccount owner 在某个代币上的账户状态：原生 SOL 记录钱包 lamports，SPL 记录关联账户
type userAccount struct {
	token    registry.TokenInfo
	native   bool
	lamports uint64
	ata      *chain.OwnerTokenAccount
}

// resolveAccounts SPL 代币一次批量查询，原生 SOL 查询钱包余额
func (p *Planner) resolveAccounts(ctx context.Context, owner types.Pubkey, tokens ...registry.TokenInfo) ([]*userAccount, error) {
	out := make([]*userAccount, len(tokens))
	var (
		mints     []types.Pubkey
		splIdx    []int
		hasNative bool
	)
	for i, t := range tokens {
		out[i] = &userAccount{token: t, native: consts.IsNativeMint(t.Mint)}
		if out[i].native {
			hasNative = true
			continue
		}
		mints = append(mints, t.Mint)
		splIdx = append(splIdx, i)
	}

	if len(mints) > 0 {
		atas, err := chain.ResolveOwnerTokenAccounts(ctx, p.fetcher, owner, mints)
		if err != nil {
			return nil, err
		}
		for j, i := range splIdx {
			out[i].ata = atas[j]
		}
	}
	if hasNative {
		lamports, err := p.fetcher.GetBalance(ctx, owner)
		if err != nil {
			return nil, xerr.Rpc(err, "get balance of %s", owner)
		}
		for _, acc := range out {
			if acc.native {
				acc.lamports = lamports
			}
		}
	}
	return out, nil
}

func (a *userAccount) balance() amount.TokenAmount {
	if a.native {
		return amount.FromRaw(a.lamports, a.token.Decimals)
	}
	return amount.FromRaw(a.ata.Amount, a.token.Decimals)
}

// ensure 余额不足时返回 InsufficientBalanceError
func (a *userAccount) ensure(required amount.TokenAmount) error {
	existing := a.balance()
	if existing.Cmp(required) < 0 {
		return &xerr.InsufficientBalanceError{
			Mint:     a.token.Mint,
			Existing: existing.Human(),
			Required: required.Human(),
		}
	}
	return nil
}

// ensureSpend 校验花费一侧余额并返回原始数量。
// 原生 SOL 要覆盖包装账户实际转入的 rent + amount + WrapOverProvisionLamports
func (a *userAccount) ensureSpend(required amount.TokenAmount, rent uint64) (uint64, error) {
	raw, err := required.RawUint64()
	if err != nil {
		return 0, err
	}
	if !a.native {
		return raw, a.ensure(required)
	}
	extra := rent + consts.WrapOverProvisionLamports
	if raw > math.MaxUint64-extra {
		return 0, xerr.Arithmetic("wrap lamports overflow: amount=%d, rent=%d", raw, rent)
	}
	return raw, a.ensure(amount.FromRaw(raw+extra, a.token.Decimals))
}

// source 花费一侧：原生 SOL 新建预存 lamports 的包装账户，SPL 使用关联账户
func (a *userAccount) source(b *txplan.Builder, wrapLamports uint64) types.Pubkey {
	if a.native {
		return b.WrapNative(wrapLamports)
	}
	return a.destination(b)
}

// receiver 接收一侧：原生 SOL 新建仅含免租金额的包装账户
func (a *userAccount) receiver(b *txplan.Builder, rent uint64) types.Pubkey {
	if a.native {
		return b.WrapNative(rent)
	}
	return a.destination(b)
}

// destination 关联账户不存在时加入创建指令
func (a *userAccount) destination(b *txplan.Builder) types.Pubkey {
	if !a.ata.Exists {
		b.CreateATA(a.token.Mint, a.ata.Address)
	}
	return a.ata.Address
}
