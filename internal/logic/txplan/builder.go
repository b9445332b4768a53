package txplan

import (
	"errors"

	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	sdktypes "github.com/blocto/solana-go-sdk/types"

	"ray-liquidity-sol/internal/chain"
	"ray-liquidity-sol/internal/consts"
	"ray-liquidity-sol/internal/types"
)

var ErrBuilderConsumed = errors.New("txplan: builder already built")

// Builder 按阶段收集指令，Build 时按 wrap -> provision -> main -> cleanup 顺序拼接
type Builder struct {
	owner     sdktypes.Account
	wrap      []sdktypes.Instruction
	provision []sdktypes.Instruction
	main      []sdktypes.Instruction
	cleanup   []sdktypes.Instruction
	signers   []sdktypes.Account
	wrapped   []types.Pubkey
	atas      map[types.Pubkey]struct{}
	built     bool
}

// NewBuilder owner 同时作为 fee payer 与第一个签名者
func NewBuilder(owner sdktypes.Account) *Builder {
	return &Builder{owner: owner}
}

func (b *Builder) Owner() types.Pubkey {
	return types.PubkeyFromCommon(b.owner.PublicKey)
}

func (b *Builder) AddProvision(ixs ...sdktypes.Instruction) {
	b.provision = append(b.provision, ixs...)
}

func (b *Builder) AddMain(ixs ...sdktypes.Instruction) {
	b.main = append(b.main, ixs...)
}

func (b *Builder) AddCleanup(ixs ...sdktypes.Instruction) {
	b.cleanup = append(b.cleanup, ixs...)
}

func (b *Builder) AddSigner(acc sdktypes.Account) {
	b.signers = append(b.signers, acc)
}

// WrapNative 新建临时 WSOL 账户并存入 lamports（需已包含免租金额），
// 交易末尾关闭该账户，剩余 lamports 退回 owner
func (b *Builder) WrapNative(lamports uint64) types.Pubkey {
	acc := sdktypes.NewAccount()
	owner := b.owner.PublicKey

	b.wrap = append(b.wrap,
		system.CreateAccount(system.CreateAccountParam{
			From:     owner,
			New:      acc.PublicKey,
			Owner:    consts.TokenProgram.ToCommon(),
			Lamports: lamports,
			Space:    chain.TokenAccountSize,
		}),
		token.InitializeAccount(token.InitializeAccountParam{
			Account: acc.PublicKey,
			Mint:    consts.WSOLMint.ToCommon(),
			Owner:   owner,
		}),
	)
	b.cleanup = append(b.cleanup, token.CloseAccount(token.CloseAccountParam{
		Account: acc.PublicKey,
		To:      owner,
		Auth:    owner,
	}))
	b.signers = append(b.signers, acc)

	addr := types.PubkeyFromCommon(acc.PublicKey)
	b.wrapped = append(b.wrapped, addr)
	return addr
}

// CreateATA 为 owner 创建关联 token 账户，同一地址只创建一次
func (b *Builder) CreateATA(mint, ata types.Pubkey) {
	if _, ok := b.atas[ata]; ok {
		return
	}
	if b.atas == nil {
		b.atas = make(map[types.Pubkey]struct{})
	}
	b.atas[ata] = struct{}{}

	owner := b.owner.PublicKey
	b.provision = append(b.provision, associated_token_account.Create(associated_token_account.CreateParam{
		Funder:                 owner,
		Owner:                  owner,
		Mint:                   mint.ToCommon(),
		AssociatedTokenAccount: ata.ToCommon(),
	}))
}

// CreateProgramAccount 新建由 program 持有的数据账户（如 farm 用户记录）
func (b *Builder) CreateProgramAccount(program types.Pubkey, space, lamports uint64) types.Pubkey {
	acc := sdktypes.NewAccount()
	b.provision = append(b.provision, system.CreateAccount(system.CreateAccountParam{
		From:     b.owner.PublicKey,
		New:      acc.PublicKey,
		Owner:    program.ToCommon(),
		Lamports: lamports,
		Space:    space,
	}))
	b.signers = append(b.signers, acc)
	return types.PubkeyFromCommon(acc.PublicKey)
}

// Build 生成不可变计划，之后 Builder 不可再用
func (b *Builder) Build() (*Plan, error) {
	if b.built {
		return nil, ErrBuilderConsumed
	}
	if len(b.main) == 0 {
		return nil, errors.New("txplan: no main instruction")
	}
	b.built = true

	total := len(b.wrap) + len(b.provision) + len(b.main) + len(b.cleanup)
	instructions := make([]sdktypes.Instruction, 0, total)
	for _, stage := range [][]sdktypes.Instruction{b.wrap, b.provision, b.main, b.cleanup} {
		for _, ix := range stage {
			instructions = append(instructions, cloneInstruction(ix))
		}
	}

	signers := make([]sdktypes.Account, 0, len(b.signers)+1)
	signers = append(signers, b.owner)
	signers = append(signers, b.signers...)

	wrapped := make([]types.Pubkey, len(b.wrapped))
	copy(wrapped, b.wrapped)

	plan := &Plan{
		feePayer:     b.Owner(),
		instructions: instructions,
		signers:      signers,
		wrapped:      wrapped,
	}
	b.wrap, b.provision, b.main, b.cleanup, b.signers, b.wrapped = nil, nil, nil, nil, nil, nil
	return plan, nil
}
