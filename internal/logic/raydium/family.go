// Package raydium 编码 Raydium AMM 与 farm 程序的指令。
//
// 所有版本分支都经由 Family：池版本 4、5 属于 V4 族，其余属于 V3 族。
package raydium

import (
	"fmt"

	"ray-liquidity-sol/internal/consts"
	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/types"
)

// Family 指令 / 布局族
type Family int

const (
	FamilyV3 Family = 3
	FamilyV4 Family = 4
)

func (f Family) String() string {
	return fmt.Sprintf("V%d", int(f))
}

// FamilyOf 版本 {4,5} -> V4，其余 -> V3
func FamilyOf(version int) Family {
	switch version {
	case 4, 5:
		return FamilyV4
	default:
		return FamilyV3
	}
}

// FamilyOfStakeProgram 按 farm 程序地址选择族，未知程序返回 UnknownLayout
func FamilyOfStakeProgram(program types.Pubkey) (Family, error) {
	switch program {
	case consts.RaydiumStakeV3Program:
		return FamilyV3, nil
	case consts.RaydiumStakeV4Program, consts.RaydiumStakeV5Program:
		return FamilyV4, nil
	default:
		return 0, xerr.New(xerr.KindUnknownLayout, "owner %s is not a known stake program", program)
	}
}
