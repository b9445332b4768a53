package consts

import "ray-liquidity-sol/internal/types"

// StakeProgramVersion 根据 farm 程序地址返回版本号（3/4/5），未知返回 0
func StakeProgramVersion(program types.Pubkey) int {
	switch program {
	case RaydiumStakeV3Program:
		return 3
	case RaydiumStakeV4Program:
		return 4
	case RaydiumStakeV5Program:
		return 5
	default:
		return 0
	}
}

// StakeProgramByVersion 是 StakeProgramVersion 的逆映射
func StakeProgramByVersion(version int) (types.Pubkey, bool) {
	switch version {
	case 3:
		return RaydiumStakeV3Program, true
	case 4:
		return RaydiumStakeV4Program, true
	case 5:
		return RaydiumStakeV5Program, true
	default:
		return types.Pubkey{}, false
	}
}
