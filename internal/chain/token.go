package chain

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"

	"ray-liquidity-sol/internal/consts"
	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/types"
)

const (
	TokenAccountSize = 165
	MintAccountSize  = 82
)

// TokenAccount SPL token 账户的关键字段
type TokenAccount struct {
	Address types.Pubkey
	Mint    types.Pubkey
	Owner   types.Pubkey
	Amount  uint64
}

// MintAccount SPL mint 账户的关键字段
type MintAccount struct {
	Address  types.Pubkey
	Supply   uint64
	Decimals uint8
}

// DecodeTokenAccount 解析 SPL token 账户
func DecodeTokenAccount(info *AccountInfo) (*TokenAccount, error) {
	if info == nil {
		return nil, xerr.New(xerr.KindDecode, "token account is nil")
	}
	if info.Owner != consts.TokenProgram {
		return nil, xerr.New(xerr.KindDecode, "account %s is owned by %s, not the token program", info.Address, info.Owner)
	}
	data := info.Data
	if len(data) < TokenAccountSize {
		return nil, xerr.New(xerr.KindDecode, "token account %s: data too short: %d", info.Address, len(data))
	}
	// [0:32]   -> mint
	// [32:64]  -> owner
	// [64:72]  -> amount (u64)
	// [108]    -> state (1 = initialized)
	if data[108] == 0 {
		return nil, xerr.New(xerr.KindDecode, "token account %s is not initialized", info.Address)
	}
	return &TokenAccount{
		Address: info.Address,
		Mint:    types.Pubkey(data[0:32]),
		Owner:   types.Pubkey(data[32:64]),
		Amount:  binary.LittleEndian.Uint64(data[64:72]),
	}, nil
}

// DecodeMint 解析 SPL mint 账户
func DecodeMint(info *AccountInfo) (*MintAccount, error) {
	if info == nil {
		return nil, xerr.New(xerr.KindDecode, "mint account is nil")
	}
	if info.Owner != consts.TokenProgram {
		return nil, xerr.New(xerr.KindDecode, "mint %s is owned by %s, not the token program", info.Address, info.Owner)
	}
	data := info.Data
	if len(data) < MintAccountSize {
		return nil, xerr.New(xerr.KindDecode, "mint %s: data too short: %d", info.Address, len(data))
	}
	// [0:4]   -> mintAuthority option
	// [4:36]  -> mintAuthority
	// [36:44] -> supply (u64)
	// [44]    -> decimals
	// [45]    -> isInitialized
	if data[45] == 0 {
		return nil, xerr.New(xerr.KindDecode, "mint %s is not initialized", info.Address)
	}
	return &MintAccount{
		Address:  info.Address,
		Supply:   binary.LittleEndian.Uint64(data[36:44]),
		Decimals: data[44],
	}, nil
}

// EncodeTokenAccount 生成已初始化的 SPL token 账户数据
func EncodeTokenAccount(mint, owner types.Pubkey, amount uint64) []byte {
	data := make([]byte, TokenAccountSize)
	copy(data[0:32], mint[:])
	copy(data[32:64], owner[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1
	return data
}

// EncodeMint 生成已初始化的 SPL mint 数据
func EncodeMint(supply uint64, decimals uint8) []byte {
	data := make([]byte, MintAccountSize)
	binary.LittleEndian.PutUint64(data[36:44], supply)
	data[44] = decimals
	data[45] = 1
	return data
}

// AssociatedTokenAddress 计算 owner + mint 的关联 token 账户地址
func AssociatedTokenAddress(owner, mint types.Pubkey) (types.Pubkey, error) {
	ata, _, err := common.FindAssociatedTokenAddress(owner.ToCommon(), mint.ToCommon())
	if err != nil {
		return types.Pubkey{}, fmt.Errorf("find associated token address owner=%s mint=%s: %w", owner, mint, err)
	}
	return types.PubkeyFromCommon(ata), nil
}

// OwnerTokenAccount owner 在某 mint 下的关联账户状态
type OwnerTokenAccount struct {
	Address types.Pubkey
	Exists  bool
	Amount  uint64
}

// ResolveOwnerTokenAccount 查询 owner 的关联 token 账户；不存在时 Exists=false
func ResolveOwnerTokenAccount(ctx context.Context, f AccountFetcher, owner, mint types.Pubkey) (*OwnerTokenAccount, error) {
	accs, err := ResolveOwnerTokenAccounts(ctx, f, owner, []types.Pubkey{mint})
	if err != nil {
		return nil, err
	}
	return accs[0], nil
}

// ResolveOwnerTokenAccounts 一次批量查询 owner 在多个 mint 下的关联 token 账户，结果与 mints 顺序一致
func ResolveOwnerTokenAccounts(ctx context.Context, f AccountFetcher, owner types.Pubkey, mints []types.Pubkey) ([]*OwnerTokenAccount, error) {
	addrs := make([]types.Pubkey, len(mints))
	for i, mint := range mints {
		ata, err := AssociatedTokenAddress(owner, mint)
		if err != nil {
			return nil, err
		}
		addrs[i] = ata
	}

	infos, err := f.GetMultipleAccounts(ctx, addrs)
	if err != nil {
		return nil, xerr.Rpc(err, "get token accounts of %s", owner)
	}
	if len(infos) != len(addrs) {
		return nil, xerr.Rpc(nil, "get token accounts of %s: want %d results, got %d", owner, len(addrs), len(infos))
	}

	out := make([]*OwnerTokenAccount, len(addrs))
	for i, info := range infos {
		ata := addrs[i]
		if info == nil {
			out[i] = &OwnerTokenAccount{Address: ata}
			continue
		}
		acc, err := DecodeTokenAccount(info)
		if err != nil {
			return nil, err
		}
		if acc.Mint != mints[i] || acc.Owner != owner {
			return nil, xerr.New(xerr.KindDecode, "token account %s does not match owner=%s mint=%s", ata, owner, mints[i])
		}
		out[i] = &OwnerTokenAccount{Address: ata, Exists: true, Amount: acc.Amount}
	}
	return out, nil
}
