package layout

import (
	"ray-liquidity-sol/internal/logic/raydium"
	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/types"
)

// 用户质押记录中 poolId / owner 的偏移，用于 getProgramAccounts memcmp 过滤
const (
	StakerPoolIDOffset = 8
	StakerOwnerOffset  = 40
)

// UserStakeInfoV3 V3 程序的用户质押记录
type UserStakeInfoV3 struct {
	State          uint64       // [0:8]
	PoolID         types.Pubkey // [8:40]
	StakerOwner    types.Pubkey // [40:72]
	DepositBalance uint64       // [72:80]
	RewardDebt     uint64       // [80:88]
}

// UserStakeInfoV4 V4 / V5 程序的用户质押记录，多一个 B 奖励负债
type UserStakeInfoV4 struct {
	State          uint64       // [0:8]
	PoolID         types.Pubkey // [8:40]
	StakerOwner    types.Pubkey // [40:72]
	DepositBalance uint64       // [72:80]
	RewardDebt     uint64       // [80:88]
	RewardDebtB    uint64       // [88:96]
}

// StakerInfo 与版本无关的用户质押记录
type StakerInfo struct {
	Address        types.Pubkey
	ProgramID      types.Pubkey
	Family         raydium.Family
	PoolID         types.Pubkey
	Owner          types.Pubkey
	DepositBalance uint64
	RewardDebt     uint64
	RewardDebtB    uint64
}

// StakerInfoSpan 用户质押记录账户大小，创建账户与过滤时使用
func StakerInfoSpan(f raydium.Family) uint64 {
	if f == raydium.FamilyV4 {
		return UserStakeInfoV4Span
	}
	return UserStakeInfoV3Span
}

func DecodeStakerInfo(address, owner types.Pubkey, data []byte) (*StakerInfo, error) {
	family, err := raydium.FamilyOfStakeProgram(owner)
	if err != nil {
		return nil, err
	}
	info := &StakerInfo{Address: address, ProgramID: owner, Family: family}

	switch family {
	case raydium.FamilyV3:
		var raw UserStakeInfoV3
		if err := decodeExact(&raw, data, UserStakeInfoV3Span, "UserStakeInfoV3"); err != nil {
			return nil, err
		}
		info.PoolID = raw.PoolID
		info.Owner = raw.StakerOwner
		info.DepositBalance = raw.DepositBalance
		info.RewardDebt = raw.RewardDebt
	default:
		var raw UserStakeInfoV4
		if err := decodeExact(&raw, data, UserStakeInfoV4Span, "UserStakeInfoV4"); err != nil {
			return nil, err
		}
		info.PoolID = raw.PoolID
		info.Owner = raw.StakerOwner
		info.DepositBalance = raw.DepositBalance
		info.RewardDebt = raw.RewardDebt
		info.RewardDebtB = raw.RewardDebtB
	}
	return info, nil
}

func EncodeUserStakeInfoV3(v UserStakeInfoV3) ([]byte, error) {
	return encode(v, UserStakeInfoV3Span)
}

func EncodeUserStakeInfoV4(v UserStakeInfoV4) ([]byte, error) {
	return encode(v, UserStakeInfoV4Span)
}

// AccountKind DecodeAny 的识别结果
type AccountKind int

const (
	AccountKindFarm AccountKind = iota + 1
	AccountKindStaker
)

// DecodedAccount 任意 stake 程序账户的解码结果，Farm 与 Staker 只有一个非空
type DecodedAccount struct {
	Kind   AccountKind
	Farm   *StakeAccountInfo
	Staker *StakerInfo
}

// DecodeAny 按 owner 选布局族，再按数据长度区分 farm 状态与用户记录
func DecodeAny(address, owner types.Pubkey, data []byte) (*DecodedAccount, error) {
	family, err := raydium.FamilyOfStakeProgram(owner)
	if err != nil {
		return nil, err
	}

	farmSpan, stakerSpan := StakeInfoV3Span, UserStakeInfoV3Span
	if family == raydium.FamilyV4 {
		farmSpan, stakerSpan = StakeInfoV4Span, UserStakeInfoV4Span
	}

	switch len(data) {
	case farmSpan:
		farm, err := DecodeStakeAccount(address, owner, data)
		if err != nil {
			return nil, err
		}
		return &DecodedAccount{Kind: AccountKindFarm, Farm: farm}, nil
	case stakerSpan:
		staker, err := DecodeStakerInfo(address, owner, data)
		if err != nil {
			return nil, err
		}
		return &DecodedAccount{Kind: AccountKindStaker, Staker: staker}, nil
	default:
		return nil, xerr.New(xerr.KindDecode, "account %s: unexpected %s data size %d", address, family, len(data))
	}
}
