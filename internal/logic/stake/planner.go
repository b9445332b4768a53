// Package stake 组装 farm 质押 / 领取奖励 / 解除质押交易。
package stake

import (
	"context"

	sdktypes "github.com/blocto/solana-go-sdk/types"

	"ray-liquidity-sol/internal/chain"
	"ray-liquidity-sol/internal/layout"
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

// Request FarmName / FarmVersion 仅 Fusion 需要；harvest 忽略 Amount
type Request struct {
	Action      Action
	Family      ProgramFamily
	FarmName    string
	FarmVersion int
	Owner       sdktypes.Account
	Amount      string
}

// PlanStakeAction 构建 stake / harvest / unStake 交易。
// 首次质押时一并创建用户质押记录账户
func (p *Planner) PlanStakeAction(ctx context.Context, req Request) (*txplan.Plan, error) {
	farm, err := p.resolveFarm(req)
	if err != nil {
		return nil, err
	}
	family := raydium.FamilyOf(farm.Version)
	if family == raydium.FamilyV4 && farm.RewardB == nil {
		return nil, xerr.Validation("farm %s has no second reward token", farm.Key())
	}

	var stakeAmount amount.TokenAmount
	switch req.Action {
	case ActionHarvest:
		stakeAmount = amount.FromRaw(0, farm.Lp.Decimals)
	case ActionStake, ActionUnstake:
		stakeAmount, err = amount.ParseHuman(req.Amount, farm.Lp.Decimals)
		if err != nil {
			return nil, err
		}
		if stakeAmount.IsZero() {
			return nil, xerr.Validation("%s amount must be positive", req.Action)
		}
	default:
		return nil, xerr.Validation("unknown stake action %d", int(req.Action))
	}
	raw, err := stakeAmount.RawUint64()
	if err != nil {
		return nil, err
	}

	owner := types.PubkeyFromCommon(req.Owner.PublicKey)
	mints := []types.Pubkey{farm.Lp.Mint, farm.Reward.Mint}
	if family == raydium.FamilyV4 {
		mints = append(mints, farm.RewardB.Mint)
	}
	accs, err := chain.ResolveOwnerTokenAccounts(ctx, p.fetcher, owner, mints)
	if err != nil {
		return nil, err
	}
	lpAcc := accs[0]

	ledger, err := FindStakerInfo(ctx, p.fetcher, farm, owner)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case ActionStake:
		if lpAcc.Amount < raw {
			return nil, insufficient(farm.Lp, lpAcc.Amount, stakeAmount)
		}
	case ActionHarvest, ActionUnstake:
		if ledger == nil {
			return nil, xerr.Validation("owner %s has no stake record in farm %s", owner, farm.Key())
		}
		if ledger.DepositBalance < raw {
			return nil, insufficient(farm.Lp, ledger.DepositBalance, stakeAmount)
		}
	}

	b := txplan.NewBuilder(req.Owner)
	for i, acc := range accs {
		if !acc.Exists {
			b.CreateATA(mints[i], acc.Address)
		}
	}

	var userInfo types.Pubkey
	if ledger != nil {
		userInfo = ledger.Address
	} else {
		span := layout.StakerInfoSpan(family)
		rent, err := p.fetcher.GetMinimumBalanceForRentExemption(ctx, span)
		if err != nil {
			return nil, xerr.Rpc(err, "get rent exemption")
		}
		userInfo = b.CreateProgramAccount(farm.ProgramID, span, rent)
	}

	params := raydium.StakeParams{
		Farm:                   farm,
		UserInfoAccount:        userInfo,
		Owner:                  owner,
		UserLpTokenAccount:     lpAcc.Address,
		UserRewardTokenAccount: accs[1].Address,
		Amount:                 raw,
	}
	if family == raydium.FamilyV4 {
		params.UserRewardTokenAccountB = accs[2].Address
	}

	var ix sdktypes.Instruction
	if req.Action == ActionUnstake {
		ix, err = family.Withdraw(params)
	} else {
		ix, err = family.Deposit(params)
	}
	if err != nil {
		return nil, err
	}
	b.AddMain(ix)

	plan, err := b.Build()
	if err != nil {
		return nil, err
	}
	logger.Infof("[Stake] %s planned: farm=%s, family=%s, amount=%s, new_record=%t, instructions=%d",
		req.Action, farm.Key(), family, stakeAmount, ledger == nil, plan.Len())
	return plan, nil
}

func (p *Planner) resolveFarm(req Request) (*registry.Farm, error) {
	switch req.Family {
	case SingleAsset:
		farm, ok := p.reg.DefaultFarm()
		if !ok {
			return nil, xerr.PoolNotFound("no default farm configured")
		}
		return farm, nil
	case Fusion:
		if req.FarmName == "" {
			return nil, xerr.Validation("farm name is required")
		}
		farm, ok := p.reg.FarmByNameVersion(req.FarmName, req.FarmVersion)
		if !ok {
			return nil, xerr.PoolNotFound("farm %s v%d", req.FarmName, req.FarmVersion)
		}
		if !farm.Fusion {
			return nil, xerr.Validation("farm %s is not a fusion farm", farm.Key())
		}
		return farm, nil
	default:
		return nil, xerr.Validation("unknown program family %d", int(req.Family))
	}
}

func insufficient(token registry.TokenInfo, existing uint64, required amount.TokenAmount) error {
	return &xerr.InsufficientBalanceError{
		Mint:     token.Mint,
		Existing: amount.FromRaw(existing, token.Decimals).Human(),
		Required: required.Human(),
	}
}
