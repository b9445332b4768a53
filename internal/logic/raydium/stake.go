package raydium

import (
	"fmt"

	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"

	"ray-liquidity-sol/internal/consts"
	"ray-liquidity-sol/internal/registry"
	"ray-liquidity-sol/internal/types"
)

const (
	instructionDeposit  uint8 = 1
	instructionWithdraw uint8 = 2
)

type stakeData struct {
	Instruction uint8
	Amount      uint64
}

// StakeParams farm 存入 / 取出 / 领取奖励的指令参数
type StakeParams struct {
	Farm                    *registry.Farm
	UserInfoAccount         types.Pubkey
	Owner                   types.Pubkey
	UserLpTokenAccount      types.Pubkey
	UserRewardTokenAccount  types.Pubkey
	UserRewardTokenAccountB types.Pubkey // 仅 V4 族
	Amount                  uint64
}

// Deposit 存入 LP；amount 为 0 时等同于领取奖励
func (f Family) Deposit(p StakeParams) (sdktypes.Instruction, error) {
	return f.stakeInstruction(instructionDeposit, p)
}

// Withdraw 取出 LP，同时结算奖励
func (f Family) Withdraw(p StakeParams) (sdktypes.Instruction, error) {
	return f.stakeInstruction(instructionWithdraw, p)
}

// stakeInstruction 账户顺序:
//
//	#0  - Farm Pool Id (w)
//	#1  - Farm Pool Authority
//	#2  - User Stake Info (w)
//	#3  - User Owner (signer)
//	#4  - User LP Token Account (w)
//	#5  - Pool LP Token Account (w)
//	#6  - User Reward Token Account (w)
//	#7  - Pool Reward Token Account (w)
//	#8  - Sysvar Clock
//	#9  - Token Program
//	#10 - User Reward B Token Account (w)，仅 V4 族
//	#11 - Pool Reward B Token Account (w)，仅 V4 族
func (f Family) stakeInstruction(instruction uint8, p StakeParams) (sdktypes.Instruction, error) {
	data, err := borsh.Serialize(stakeData{Instruction: instruction, Amount: p.Amount})
	if err != nil {
		return sdktypes.Instruction{}, fmt.Errorf("serialize stake data: %w", err)
	}

	farm := p.Farm
	accounts := []sdktypes.AccountMeta{
		writable(farm.PoolID),
		readonly(farm.PoolAuthority),
		writable(p.UserInfoAccount),
		signer(p.Owner),
		writable(p.UserLpTokenAccount),
		writable(farm.PoolLpTokenAccount),
		writable(p.UserRewardTokenAccount),
		writable(farm.PoolRewardTokenAccount),
		readonly(consts.SysvarClock),
		readonly(consts.TokenProgram),
	}
	if f == FamilyV4 {
		accounts = append(accounts,
			writable(p.UserRewardTokenAccountB),
			writable(farm.PoolRewardTokenAccountB),
		)
	}

	return sdktypes.Instruction{
		ProgramID: farm.ProgramID.ToCommon(),
		Accounts:  accounts,
		Data:      data,
	}, nil
}
