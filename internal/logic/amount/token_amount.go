// Package amount 提供链上原始整数数量（wei）与人类可读数量（ether）之间的转换。
package amount

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"ray-liquidity-sol/internal/pkg/xerr"
)

// TokenAmount 原始整数数量 + 精度。值类型，创建后不变。
type TokenAmount struct {
	raw      decimal.Decimal // 始终为非负整数
	decimals uint8
}

func FromRaw(raw uint64, decimals uint8) TokenAmount {
	return TokenAmount{raw: decimal.NewFromUint64(raw), decimals: decimals}
}

func FromRawBig(raw *big.Int, decimals uint8) TokenAmount {
	return TokenAmount{raw: decimal.NewFromBigInt(raw, 0), decimals: decimals}
}

// FromHuman raw = round(human × 10^decimals)，四舍五入（远离 0）
func FromHuman(human decimal.Decimal, decimals uint8) TokenAmount {
	return TokenAmount{raw: human.Shift(int32(decimals)).Round(0), decimals: decimals}
}

// ParseHuman 解析用户输入的人类可读数量，拒绝负数与非法字符串
func ParseHuman(s string, decimals uint8) (TokenAmount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return TokenAmount{}, xerr.Validation("invalid amount %q: %v", s, err)
	}
	if d.IsNegative() {
		return TokenAmount{}, xerr.Validation("negative amount %q", s)
	}
	return FromHuman(d, decimals), nil
}

func (a TokenAmount) Decimals() uint8 {
	return a.decimals
}

// Human raw / 10^decimals，精确
func (a TokenAmount) Human() decimal.Decimal {
	return a.raw.Shift(-int32(a.decimals))
}

func (a TokenAmount) Raw() *big.Int {
	return a.raw.BigInt()
}

// RawUint64 指令参数为 u64，超出范围视为算术错误
func (a TokenAmount) RawUint64() (uint64, error) {
	b := a.raw.BigInt()
	if !b.IsUint64() {
		return 0, xerr.Arithmetic("amount %s overflows u64", a.raw.String())
	}
	return b.Uint64(), nil
}

func (a TokenAmount) IsZero() bool {
	return a.raw.IsZero()
}

// Cmp 按人类可读值比较，允许精度不同
func (a TokenAmount) Cmp(b TokenAmount) int {
	return a.Human().Cmp(b.Human())
}

func (a TokenAmount) String() string {
	return a.Human().StringFixed(int32(a.decimals))
}

func (a TokenAmount) GoString() string {
	return fmt.Sprintf("TokenAmount{raw:%s, decimals:%d}", a.raw.String(), a.decimals)
}
