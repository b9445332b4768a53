// Package txplan 组装有序指令与签名者集合。
//
// Builder 独占持有正在构建的计划；Build 之后 Builder 失效，
// 得到的 Plan 只读，访问器返回副本。
package txplan

import (
	"errors"
	"fmt"

	sdktypes "github.com/blocto/solana-go-sdk/types"

	"ray-liquidity-sol/internal/types"
)

// Plan 不可变的交易计划
type Plan struct {
	feePayer     types.Pubkey
	instructions []sdktypes.Instruction
	signers      []sdktypes.Account
	wrapped      []types.Pubkey
}

func (p *Plan) FeePayer() types.Pubkey {
	return p.feePayer
}

func (p *Plan) Len() int {
	return len(p.instructions)
}

// Instructions 返回深拷贝，调用方修改不会影响计划
func (p *Plan) Instructions() []sdktypes.Instruction {
	out := make([]sdktypes.Instruction, len(p.instructions))
	for i, ix := range p.instructions {
		out[i] = cloneInstruction(ix)
	}
	return out
}

func (p *Plan) Signers() []sdktypes.Account {
	out := make([]sdktypes.Account, len(p.signers))
	copy(out, p.signers)
	return out
}

// SignerKeys 签名者公钥，第一个为 fee payer
func (p *Plan) SignerKeys() []types.Pubkey {
	out := make([]types.Pubkey, 0, len(p.signers))
	for _, s := range p.signers {
		out = append(out, types.PubkeyFromCommon(s.PublicKey))
	}
	return out
}

// WrappedAccounts 计划中创建并在末尾关闭的临时 WSOL 账户
func (p *Plan) WrappedAccounts() []types.Pubkey {
	out := make([]types.Pubkey, len(p.wrapped))
	copy(out, p.wrapped)
	return out
}

// Transaction 以给定 blockhash 生成已签名交易
func (p *Plan) Transaction(recentBlockhash string) (sdktypes.Transaction, error) {
	if _, err := types.HashFromBase58(recentBlockhash); err != nil {
		return sdktypes.Transaction{}, fmt.Errorf("invalid recent blockhash: %w", err)
	}
	if len(p.instructions) == 0 {
		return sdktypes.Transaction{}, errors.New("empty transaction plan")
	}
	tx, err := sdktypes.NewTransaction(sdktypes.NewTransactionParam{
		Message: sdktypes.NewMessage(sdktypes.NewMessageParam{
			FeePayer:        p.feePayer.ToCommon(),
			RecentBlockhash: recentBlockhash,
			Instructions:    p.Instructions(),
		}),
		Signers: p.Signers(),
	})
	if err != nil {
		return sdktypes.Transaction{}, fmt.Errorf("sign transaction: %w", err)
	}
	return tx, nil
}

func cloneInstruction(ix sdktypes.Instruction) sdktypes.Instruction {
	accounts := make([]sdktypes.AccountMeta, len(ix.Accounts))
	copy(accounts, ix.Accounts)
	data := make([]byte, len(ix.Data))
	copy(data, ix.Data)
	return sdktypes.Instruction{ProgramID: ix.ProgramID, Accounts: accounts, Data: data}
}
