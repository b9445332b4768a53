package liquidity

import (
	"github.com/shopspring/decimal"

	"ray-liquidity-sol/internal/logic/amount"
	"ray-liquidity-sol/internal/logic/raydium"
	"ray-liquidity-sol/internal/pkg/xerr"
)

// Quotation 加流动性时两侧数量的配对结果
type Quotation struct {
	CoinAmount amount.TokenAmount
	PcAmount   amount.TokenAmount
	Rate       decimal.Decimal // 用于推导另一侧数量的汇率，已按 pc 精度取整
	FixedSide  raydium.FixedSide
}

// PairAmount 根据池子当前汇率由一侧数量推导另一侧，from / to 必须且只能提供一个。
//   - from（coin 数量）：rate = pc/coin，to = from × rate，固定侧为 pc
//   - to（pc 数量）：rate = coin/pc，from = to × rate，固定侧为 coin
//
// 汇率按 pc 精度取整
func PairAmount(s *PoolSnapshot, from, to string) (*Quotation, error) {
	if (from == "") == (to == "") {
		return nil, xerr.Validation("exactly one of fromAmount / toAmount is required")
	}
	pool := s.Pool
	coinReserve, pcReserve := s.CoinBalance.Human(), s.PcBalance.Human()
	if coinReserve.IsZero() || pcReserve.IsZero() {
		return nil, xerr.Arithmetic("pool %s has an empty reserve: coin=%s pc=%s", pool.Key(), s.CoinBalance, s.PcBalance)
	}
	places := int32(pool.Pc.Decimals)

	if from != "" {
		coinAmount, err := parsePositive(from, pool.Coin.Decimals)
		if err != nil {
			return nil, err
		}
		rate := pcReserve.Div(coinReserve).Round(places)
		return &Quotation{
			CoinAmount: coinAmount,
			PcAmount:   amount.FromHuman(coinAmount.Human().Mul(rate), pool.Pc.Decimals),
			Rate:       rate,
			FixedSide:  raydium.FixedSidePc,
		}, nil
	}

	pcAmount, err := parsePositive(to, pool.Pc.Decimals)
	if err != nil {
		return nil, err
	}
	rate := coinReserve.Div(pcReserve).Round(places)
	return &Quotation{
		CoinAmount: amount.FromHuman(pcAmount.Human().Mul(rate), pool.Coin.Decimals),
		PcAmount:   pcAmount,
		Rate:       rate,
		FixedSide:  raydium.FixedSideCoin,
	}, nil
}

func parsePositive(s string, decimals uint8) (amount.TokenAmount, error) {
	a, err := amount.ParseHuman(s, decimals)
	if err != nil {
		return amount.TokenAmount{}, err
	}
	if a.IsZero() {
		return amount.TokenAmount{}, xerr.Validation("amount %q must be positive", s)
	}
	return a, nil
}
