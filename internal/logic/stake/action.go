package stake

import (
	"strings"

	"ray-liquidity-sol/internal/pkg/xerr"
)

// Action farm 操作类型
type Action int

const (
	ActionStake Action = iota + 1
	ActionHarvest
	ActionUnstake
)

func (a Action) String() string {
	switch a {
	case ActionStake:
		return "stake"
	case ActionHarvest:
		return "harvest"
	case ActionUnstake:
		return "unStake"
	default:
		return "unknown"
	}
}

// ProgramFamily 单币 RAY 质押或 LP 双奖励 farm
type ProgramFamily int

const (
	SingleAsset ProgramFamily = iota + 1
	Fusion
)

func (f ProgramFamily) String() string {
	switch f {
	case SingleAsset:
		return "ray"
	case Fusion:
		return "pool"
	default:
		return "unknown"
	}
}

// ParseProgramFamily 接受 ray / pool（与 singleAsset / fusion 同义）
func ParseProgramFamily(s string) (ProgramFamily, error) {
	switch strings.ToLower(s) {
	case "ray", "singleasset", "single":
		return SingleAsset, nil
	case "pool", "fusion":
		return Fusion, nil
	default:
		return 0, xerr.Validation("unknown program family %q", s)
	}
}
