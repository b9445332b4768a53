package yield

import (
	"github.com/shopspring/decimal"

	"ray-liquidity-sol/internal/consts"
	"ray-liquidity-sol/internal/layout"
	"ray-liquidity-sol/internal/logic/amount"
	"ray-liquidity-sol/internal/logic/liquidity"
	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/registry"
	"ray-liquidity-sol/internal/types"
)

var (
	blocksPerYear = decimal.NewFromInt(consts.BlocksPerDay * consts.DaysPerYear)
	hundred       = decimal.NewFromInt(100)
)

const aprPlaces = 2

type decodedFarm struct {
	farm      *registry.Farm
	info      *layout.StakeAccountInfo
	snapshot  *liquidity.PoolSnapshot
	deposited amount.TokenAmount
}

type joinedFarm struct {
	decodedFarm
	pool         *registry.Pool
	rewardPrice  decimal.Decimal
	rewardBPrice decimal.NullDecimal
	refPrice     decimal.Decimal
	pairStat     *PairStat
}

type derivedFarm struct {
	joinedFarm
	rewardPerBlock      decimal.Decimal
	rewardBPerBlock     decimal.Decimal
	rewardValuePerYear  decimal.Decimal
	rewardBValuePerYear decimal.Decimal
	liquidityValue      decimal.Decimal
	apr                 decimal.Decimal
	aprB                decimal.Decimal
}

func decode(s FarmState) (*decodedFarm, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Account == nil {
		return nil, xerr.New(xerr.KindDecode, "farm account %s not found", s.Farm.PoolID)
	}
	info, err := layout.DecodeStakeAccount(s.Account.Address, s.Account.Owner, s.Account.Data)
	if err != nil {
		return nil, err
	}
	return &decodedFarm{farm: s.Farm, info: info, snapshot: s.Snapshot, deposited: s.Deposited}, nil
}

// join 关联池子、价格与外部统计。
// 两侧流动性使用同一个参考价格：双奖励 farm 取 rewardB 的价格，否则取 reward 的价格
func join(d *decodedFarm, prices map[string]decimal.Decimal, stats map[types.Pubkey]PairStat) (*joinedFarm, error) {
	farm := d.farm
	if d.snapshot == nil {
		return nil, xerr.PoolNotFound("no liquidity pool for lp %s of farm %s", farm.Lp.Mint, farm.Key())
	}

	j := &joinedFarm{decodedFarm: *d, pool: d.snapshot.Pool}

	var err error
	if j.rewardPrice, err = lookupPrice(prices, farm.Reward.Symbol); err != nil {
		return nil, err
	}
	j.refPrice = j.rewardPrice
	if farm.Fusion {
		priceB, err := lookupPrice(prices, farm.RewardB.Symbol)
		if err != nil {
			return nil, err
		}
		j.rewardBPrice = decimal.NewNullDecimal(priceB)
		j.refPrice = priceB
	}

	if stat, ok := stats[farm.Lp.Mint]; ok {
		j.pairStat = &stat
	}
	return j, nil
}

func lookupPrice(prices map[string]decimal.Decimal, symbol string) (decimal.Decimal, error) {
	p, ok := prices[symbol]
	if !ok {
		return decimal.Zero, xerr.Validation("no price for %s", symbol)
	}
	return p, nil
}

func derive(j *joinedFarm) (*derivedFarm, error) {
	farm, info, snap := j.farm, j.info, j.snapshot
	if snap.LpSupply.IsZero() {
		return nil, xerr.Arithmetic("lp total supply of pool %s is zero", j.pool.Key())
	}

	d := &derivedFarm{joinedFarm: *j}
	d.rewardPerBlock = amount.FromRaw(info.RewardPerBlock, farm.Reward.Decimals).Human()
	d.rewardValuePerYear = d.rewardPerBlock.Mul(blocksPerYear).Mul(j.rewardPrice)
	if farm.Fusion {
		d.rewardBPerBlock = amount.FromRaw(info.RewardPerBlockB, farm.RewardB.Decimals).Human()
		d.rewardBValuePerYear = d.rewardBPerBlock.Mul(blocksPerYear).Mul(j.rewardBPrice.Decimal)
	}

	total := snap.CoinBalance.Human().Mul(j.refPrice).Add(snap.PcBalance.Human().Mul(j.refPrice))
	d.liquidityValue = total.Div(snap.LpSupply.Human()).Mul(j.deposited.Human())

	d.apr = apr(d.rewardValuePerYear, d.liquidityValue)
	if farm.Fusion {
		d.aprB = apr(d.rewardBValuePerYear, d.liquidityValue)
	}
	return d, nil
}

// apr 流动性价值为 0 时记为 0
func apr(valuePerYear, liquidityValue decimal.Decimal) decimal.Decimal {
	if liquidityValue.IsZero() {
		return decimal.Zero
	}
	return valuePerYear.Div(liquidityValue).Mul(hundred).Round(aprPlaces)
}

func classify(d *derivedFarm) PoolYieldRecord {
	farm := d.farm
	rec := PoolYieldRecord{
		FarmID:              farm.PoolID,
		Name:                farm.Name,
		FarmVersion:         farm.Version,
		PoolVersion:         d.pool.Version,
		Fusion:              farm.Fusion,
		RewardSymbol:        farm.Reward.Symbol,
		RewardPrice:         d.rewardPrice,
		RewardBPrice:        d.rewardBPrice,
		RewardPerBlock:      d.rewardPerBlock,
		RewardBPerBlock:     d.rewardBPerBlock,
		RewardValuePerYear:  d.rewardValuePerYear,
		RewardBValuePerYear: d.rewardBValuePerYear,
		LiquidityValue:      d.liquidityValue,
		APR:                 d.apr,
		APRB:                d.aprB,
		APRTotal:            d.apr.Add(d.aprB),
		DualYield:           !d.aprB.IsZero(),
		Status:              StatusActive,
	}
	if farm.RewardB != nil {
		rec.RewardBSymbol = farm.RewardB.Symbol
	}
	if d.pairStat != nil {
		rec.FeeAPY = decimal.NewNullDecimal(d.pairStat.FeeAPY)
		rec.TVL = decimal.NewNullDecimal(d.pairStat.Liquidity)
	}
	rec.FinalAPR = rec.FeeAPY.Decimal.Add(rec.APR).Add(rec.APRB)

	if d.rewardValuePerYear.IsZero() && d.rewardBValuePerYear.IsZero() {
		rec.Status = StatusEnded
	}
	return rec
}
