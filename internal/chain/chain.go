// Package chain 定义构建交易与统计收益所需的链上访问能力。
// 业务代码只依赖这里的接口，RPC 实现集中在 rpc_client.go。
package chain

import (
	"context"

	sdktypes "github.com/blocto/solana-go-sdk/types"

	"ray-liquidity-sol/internal/types"
)

// AccountInfo 链上账户快照
type AccountInfo struct {
	Address  types.Pubkey
	Owner    types.Pubkey
	Lamports uint64
	Data     []byte
}

// MemcmpFilter getProgramAccounts 的 memcmp 过滤条件
type MemcmpFilter struct {
	Offset uint64
	Bytes  []byte
}

// AccountFetcher 只读账户查询
type AccountFetcher interface {
	// GetMultipleAccounts 返回与 addrs 等长的结果，不存在的账户为 nil
	GetMultipleAccounts(ctx context.Context, addrs []types.Pubkey) ([]*AccountInfo, error)
	GetBalance(ctx context.Context, addr types.Pubkey) (uint64, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
	FindProgramAccounts(ctx context.Context, program types.Pubkey, dataSize uint64, filters []MemcmpFilter) ([]*AccountInfo, error)
}

// SignatureStatus 交易确认状态
type SignatureStatus struct {
	Slot      uint64
	Confirmed bool // confirmed 或 finalized
	Err       any  // 链上执行错误，nil 表示成功
}

// ConfirmedTransaction 已确认交易的摘要
type ConfirmedTransaction struct {
	Signature string
	Slot      uint64
	BlockTime int64
	Fee       uint64
	Err       any
}

// TxClient 交易提交能力
type TxClient interface {
	GetLatestBlockhash(ctx context.Context) (string, error)
	SendTransaction(ctx context.Context, tx sdktypes.Transaction) (string, error)
	// GetSignatureStatus 未查到时返回 (nil, nil)
	GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error)
	GetTransaction(ctx context.Context, signature string) (*ConfirmedTransaction, error)
}

// GetAccount 单账户便捷查询，不存在返回 (nil, nil)
func GetAccount(ctx context.Context, f AccountFetcher, addr types.Pubkey) (*AccountInfo, error) {
	infos, err := f.GetMultipleAccounts(ctx, []types.Pubkey{addr})
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, nil
	}
	return infos[0], nil
}
