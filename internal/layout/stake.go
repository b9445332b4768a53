// Package layout 解码 Raydium farm（stake）程序的账户数据。
//
// 布局按所属程序区分：
//   - V3 stake 程序: StakeInfoV3 (200 bytes)，UserStakeInfoV3 (88 bytes)
//   - V4 / V5 stake 程序: StakeInfoV4 (224 bytes)，UserStakeInfoV4 (96 bytes)
//
// 布局一旦部署即视为不可变，链上结构变化需要新增布局而不是修改现有结构。
package layout

import (
	"fmt"

	"github.com/near/borsh-go"
	"lukechampine.com/uint128"

	"ray-liquidity-sol/internal/consts"
	"ray-liquidity-sol/internal/logic/raydium"
	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/types"
)

const (
	StakeInfoV3Span     = 200
	StakeInfoV4Span     = 224
	UserStakeInfoV3Span = 88
	UserStakeInfoV4Span = 96
)

// StakeInfoV3 对应 V3 stake 程序的 farm 状态账户
type StakeInfoV3 struct {
	State                  uint64          // [0:8]
	Nonce                  uint64          // [8:16]
	PoolLpTokenAccount     types.Pubkey    // [16:48]
	PoolRewardTokenAccount types.Pubkey    // [48:80]
	Owner                  types.Pubkey    // [80:112]
	FeeOwner               types.Pubkey    // [112:144]
	FeeY                   uint64          // [144:152]
	FeeX                   uint64          // [152:160]
	TotalReward            uint64          // [160:168]
	RewardPerShareNet      uint128.Uint128 // [168:184]
	LastBlock              uint64          // [184:192]
	RewardPerBlock         uint64          // [192:200]
}

// StakeInfoV4 对应 V4 / V5 stake 程序的 farm 状态账户（双奖励）
type StakeInfoV4 struct {
	State                   uint64          // [0:8]
	Nonce                   uint64          // [8:16]
	PoolLpTokenAccount      types.Pubkey    // [16:48]
	PoolRewardTokenAccount  types.Pubkey    // [48:80]
	TotalReward             uint64          // [80:88]
	PerShare                uint128.Uint128 // [88:104]
	PerBlock                uint64          // [104:112]
	Option                  uint8           // [112]
	PoolRewardTokenAccountB types.Pubkey    // [113:145]
	Padding                 [7]byte         // [145:152]
	TotalRewardB            uint64          // [152:160]
	PerShareB               uint128.Uint128 // [160:176]
	PerBlockB               uint64          // [176:184]
	LastBlock               uint64          // [184:192]
	Owner                   types.Pubkey    // [192:224]
}

// StakeAccountInfo 与版本无关的 farm 状态快照，每次解码都重新构造
type StakeAccountInfo struct {
	Address        types.Pubkey
	ProgramID      types.Pubkey
	ProgramVersion int // 3 / 4 / 5
	Family         raydium.Family

	PoolLpTokenAccount      types.Pubkey
	PoolRewardTokenAccount  types.Pubkey
	PoolRewardTokenAccountB types.Pubkey // 仅 V4 族

	RewardPerBlock  uint64 // 原始单位
	RewardPerBlockB uint64 // 仅 V4 族
	TotalReward     uint64
	TotalRewardB    uint64
	PerShare        uint128.Uint128
	PerShareB       uint128.Uint128
	LastBlock       uint64
	Owner           types.Pubkey
}

// DecodeStakeAccount 按 owner 选择布局解码 farm 状态账户
func DecodeStakeAccount(address, owner types.Pubkey, data []byte) (*StakeAccountInfo, error) {
	family, err := raydium.FamilyOfStakeProgram(owner)
	if err != nil {
		return nil, err
	}

	info := &StakeAccountInfo{
		Address:        address,
		ProgramID:      owner,
		ProgramVersion: consts.StakeProgramVersion(owner),
		Family:         family,
	}

	switch family {
	case raydium.FamilyV3:
		var raw StakeInfoV3
		if err := decodeExact(&raw, data, StakeInfoV3Span, "StakeInfoV3"); err != nil {
			return nil, err
		}
		info.PoolLpTokenAccount = raw.PoolLpTokenAccount
		info.PoolRewardTokenAccount = raw.PoolRewardTokenAccount
		info.RewardPerBlock = raw.RewardPerBlock
		info.TotalReward = raw.TotalReward
		info.PerShare = raw.RewardPerShareNet
		info.LastBlock = raw.LastBlock
		info.Owner = raw.Owner
	default:
		var raw StakeInfoV4
		if err := decodeExact(&raw, data, StakeInfoV4Span, "StakeInfoV4"); err != nil {
			return nil, err
		}
		info.PoolLpTokenAccount = raw.PoolLpTokenAccount
		info.PoolRewardTokenAccount = raw.PoolRewardTokenAccount
		info.PoolRewardTokenAccountB = raw.PoolRewardTokenAccountB
		info.RewardPerBlock = raw.PerBlock
		info.RewardPerBlockB = raw.PerBlockB
		info.TotalReward = raw.TotalReward
		info.TotalRewardB = raw.TotalRewardB
		info.PerShare = raw.PerShare
		info.PerShareB = raw.PerShareB
		info.LastBlock = raw.LastBlock
		info.Owner = raw.Owner
	}
	return info, nil
}

// DecodeStakeInfoV3 / DecodeStakeInfoV4 直接解码原始布局，不做 owner 校验
func DecodeStakeInfoV3(data []byte) (StakeInfoV3, error) {
	var raw StakeInfoV3
	err := decodeExact(&raw, data, StakeInfoV3Span, "StakeInfoV3")
	return raw, err
}

func DecodeStakeInfoV4(data []byte) (StakeInfoV4, error) {
	var raw StakeInfoV4
	err := decodeExact(&raw, data, StakeInfoV4Span, "StakeInfoV4")
	return raw, err
}

func EncodeStakeInfoV3(v StakeInfoV3) ([]byte, error) {
	return encode(v, StakeInfoV3Span)
}

func EncodeStakeInfoV4(v StakeInfoV4) ([]byte, error) {
	return encode(v, StakeInfoV4Span)
}

// decodeExact 长度不足直接拒绝；borsh 解码 panic 统一转为 DecodeError
func decodeExact(dst any, data []byte, span int, name string) (err error) {
	if len(data) < span {
		return xerr.New(xerr.KindDecode, "%s: data too short: got %d, want %d", name, len(data), span)
	}
	defer func() {
		if r := recover(); r != nil {
			err = xerr.New(xerr.KindDecode, "%s: borsh panic: %v", name, r)
		}
	}()
	if err := borsh.Deserialize(dst, data[:span]); err != nil {
		return xerr.Decode(err, "%s: borsh deserialize", name)
	}
	return nil
}

func encode(v any, span int) ([]byte, error) {
	data, err := borsh.Serialize(v)
	if err != nil {
		return nil, fmt.Errorf("borsh serialize %T: %w", v, err)
	}
	if len(data) != span {
		return nil, fmt.Errorf("borsh serialize %T: unexpected size %d, want %d", v, len(data), span)
	}
	return data, nil
}
