// Package chaintest 提供内存版的链上访问实现，供单元测试使用。
package chaintest

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	sdktypes "github.com/blocto/solana-go-sdk/types"

	"ray-liquidity-sol/internal/chain"
	"ray-liquidity-sol/internal/consts"
	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/types"
)

// Blockhash 合法的 base58 32 字节 blockhash
const Blockhash = "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R"

// Chain 内存链，同时实现 AccountFetcher 与 TxClient
type Chain struct {
	mu       sync.Mutex
	accounts map[types.Pubkey]*chain.AccountInfo

	MultiCalls int   // GetMultipleAccounts 调用次数
	FetchErr   error // 非空时所有查询返回该错误

	// 交易侧
	SendErrs       []error // 依次弹出，作为 SendTransaction 的返回错误
	Sent           []sdktypes.Transaction
	SendAttempts   int
	PendingPolls   int  // 签名状态在确认前返回 nil 的次数
	NeverConfirm   bool // 始终未确认
	ExecutionError any  // 非空时确认结果携带链上错误
	statusPolls    int
}

var (
	_ chain.AccountFetcher = (*Chain)(nil)
	_ chain.TxClient       = (*Chain)(nil)
)

func New() *Chain {
	return &Chain{accounts: make(map[types.Pubkey]*chain.AccountInfo)}
}

// Rent 与主网一致的免租金额：(128 + size) * 6960
func Rent(size uint64) uint64 {
	return (128 + size) * 6960
}

func (c *Chain) SetAccount(addr, owner types.Pubkey, lamports uint64, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[addr] = &chain.AccountInfo{Address: addr, Owner: owner, Lamports: lamports, Data: data}
}

func (c *Chain) Delete(addr types.Pubkey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.accounts, addr)
}

// SetWallet 设置钱包 lamports
func (c *Chain) SetWallet(owner types.Pubkey, lamports uint64) {
	c.SetAccount(owner, consts.SystemProgram, lamports, nil)
}

func (c *Chain) SetTokenAccount(addr, mint, owner types.Pubkey, amount uint64) {
	c.SetAccount(addr, consts.TokenProgram, Rent(chain.TokenAccountSize), chain.EncodeTokenAccount(mint, owner, amount))
}

// SetATA 设置 owner 的关联 token 账户并返回其地址
func (c *Chain) SetATA(owner, mint types.Pubkey, amount uint64) types.Pubkey {
	ata, err := chain.AssociatedTokenAddress(owner, mint)
	if err != nil {
		panic(err)
	}
	c.SetTokenAccount(ata, mint, owner, amount)
	return ata
}

func (c *Chain) SetMint(addr types.Pubkey, supply uint64, decimals uint8) {
	c.SetAccount(addr, consts.TokenProgram, Rent(chain.MintAccountSize), chain.EncodeMint(supply, decimals))
}

func (c *Chain) GetMultipleAccounts(_ context.Context, addrs []types.Pubkey) ([]*chain.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MultiCalls++
	if c.FetchErr != nil {
		return nil, c.FetchErr
	}
	out := make([]*chain.AccountInfo, len(addrs))
	for i, a := range addrs {
		if info, ok := c.accounts[a]; ok {
			cp := *info
			out[i] = &cp
		}
	}
	return out, nil
}

func (c *Chain) GetBalance(_ context.Context, addr types.Pubkey) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FetchErr != nil {
		return 0, c.FetchErr
	}
	if info, ok := c.accounts[addr]; ok {
		return info.Lamports, nil
	}
	return 0, nil
}

func (c *Chain) GetMinimumBalanceForRentExemption(_ context.Context, size uint64) (uint64, error) {
	return Rent(size), nil
}

func (c *Chain) FindProgramAccounts(_ context.Context, program types.Pubkey, dataSize uint64, filters []chain.MemcmpFilter) ([]*chain.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FetchErr != nil {
		return nil, c.FetchErr
	}
	var out []*chain.AccountInfo
	for _, info := range c.accounts {
		if info.Owner != program {
			continue
		}
		if dataSize > 0 && uint64(len(info.Data)) != dataSize {
			continue
		}
		if !matchAll(info.Data, filters) {
			continue
		}
		cp := *info
		out = append(out, &cp)
	}
	return out, nil
}

func matchAll(data []byte, filters []chain.MemcmpFilter) bool {
	for _, f := range filters {
		end := f.Offset + uint64(len(f.Bytes))
		if end > uint64(len(data)) || !bytes.Equal(data[f.Offset:end], f.Bytes) {
			return false
		}
	}
	return true
}

func (c *Chain) GetLatestBlockhash(context.Context) (string, error) {
	return Blockhash, nil
}

func (c *Chain) SendTransaction(_ context.Context, tx sdktypes.Transaction) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SendAttempts++
	if len(c.SendErrs) > 0 {
		err := c.SendErrs[0]
		c.SendErrs = c.SendErrs[1:]
		if err != nil {
			return "", err
		}
	}
	c.Sent = append(c.Sent, tx)
	return fmt.Sprintf("sig-%d", len(c.Sent)), nil
}

func (c *Chain) GetSignatureStatus(_ context.Context, signature string) (*chain.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusPolls++
	if c.NeverConfirm || c.statusPolls <= c.PendingPolls {
		return nil, nil
	}
	return &chain.SignatureStatus{Slot: 100, Confirmed: true, Err: c.ExecutionError}, nil
}

func (c *Chain) GetTransaction(_ context.Context, signature string) (*chain.ConfirmedTransaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Sent) == 0 {
		return nil, xerr.Rpc(nil, "transaction %s not found", signature)
	}
	return &chain.ConfirmedTransaction{Signature: signature, Slot: 100, Fee: 5000, Err: c.ExecutionError}, nil
}
