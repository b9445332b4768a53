package raydium

import (
	"fmt"

	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"

	"ray-liquidity-sol/internal/consts"
	"ray-liquidity-sol/internal/registry"
	"ray-liquidity-sol/internal/types"
)

// 指令标识
const (
	instructionAddLiquidity    uint8 = 3
	instructionRemoveLiquidity uint8 = 4
)

// FixedSide 加流动性时以哪一侧数量为准（另一侧为上限）
type FixedSide uint64

const (
	FixedSideCoin FixedSide = 0
	FixedSidePc   FixedSide = 1
)

type addLiquidityData struct {
	Instruction   uint8
	MaxCoinAmount uint64
	MaxPcAmount   uint64
	FixedFromCoin uint64
}

type removeLiquidityData struct {
	Instruction uint8
	Amount      uint64
}

// AddLiquidityParams 加流动性指令参数，地址均已解析完成
type AddLiquidityParams struct {
	Pool                 *registry.Pool
	UserCoinTokenAccount types.Pubkey
	UserPcTokenAccount   types.Pubkey
	UserLpTokenAccount   types.Pubkey
	Owner                types.Pubkey
	MaxCoinAmount        uint64
	MaxPcAmount          uint64
	FixedSide            FixedSide
}

// RemoveLiquidityParams 移除流动性指令参数
type RemoveLiquidityParams struct {
	Pool                 *registry.Pool
	UserLpTokenAccount   types.Pubkey
	UserCoinTokenAccount types.Pubkey
	UserPcTokenAccount   types.Pubkey
	Owner                types.Pubkey
	Amount               uint64
}

// AddLiquidity 编码加流动性指令，账户顺序:
//
//	#0  - Token Program
//	#1  - Amm (w)
//	#2  - Amm Authority
//	#3  - Amm Open Orders
//	#4  - Amm Quantities (V3) / Amm Target Orders (V4) (w)
//	#5  - LP Mint (w)
//	#6  - Pool Coin Vault (w)
//	#7  - Pool Pc Vault (w)
//	#8  - Serum Market
//	#9  - User Coin Token Account (w)
//	#10 - User Pc Token Account (w)
//	#11 - User LP Token Account (w)
//	#12 - User Owner (signer)
func (f Family) AddLiquidity(p AddLiquidityParams) (sdktypes.Instruction, error) {
	data, err := borsh.Serialize(addLiquidityData{
		Instruction:   instructionAddLiquidity,
		MaxCoinAmount: p.MaxCoinAmount,
		MaxPcAmount:   p.MaxPcAmount,
		FixedFromCoin: uint64(p.FixedSide),
	})
	if err != nil {
		return sdktypes.Instruction{}, fmt.Errorf("serialize add liquidity data: %w", err)
	}

	pool := p.Pool
	return sdktypes.Instruction{
		ProgramID: pool.ProgramID.ToCommon(),
		Accounts: []sdktypes.AccountMeta{
			readonly(consts.TokenProgram),
			writable(pool.AmmID),
			readonly(pool.AmmAuthority),
			readonly(pool.AmmOpenOrders),
			writable(f.orderStateAccount(pool)),
			writable(pool.Lp.Mint),
			writable(pool.PoolCoinTokenAccount),
			writable(pool.PoolPcTokenAccount),
			readonly(pool.SerumMarket),
			writable(p.UserCoinTokenAccount),
			writable(p.UserPcTokenAccount),
			writable(p.UserLpTokenAccount),
			signer(p.Owner),
		},
		Data: data,
	}, nil
}

// RemoveLiquidity 编码移除流动性指令，账户顺序:
//
//	#0  - Token Program
//	#1  - Amm (w)
//	#2  - Amm Authority
//	#3  - Amm Open Orders (w)
//	#4  - Amm Quantities (V3) / Amm Target Orders (V4) (w)
//	#5  - LP Mint (w)
//	#6  - Pool Coin Vault (w)
//	#7  - Pool Pc Vault (w)
//	#8  - Pool Withdraw Queue (w)
//	#9  - Pool Temp LP Token Account (w)
//	#10 - Serum Program
//	#11 - Serum Market (w)
//	#12 - Serum Coin Vault (w)
//	#13 - Serum Pc Vault (w)
//	#14 - Serum Vault Signer
//	#15 - User LP Token Account (w)
//	#16 - User Coin Token Account (w)
//	#17 - User Pc Token Account (w)
//	#18 - User Owner (signer)
func (f Family) RemoveLiquidity(p RemoveLiquidityParams) (sdktypes.Instruction, error) {
	data, err := borsh.Serialize(removeLiquidityData{
		Instruction: instructionRemoveLiquidity,
		Amount:      p.Amount,
	})
	if err != nil {
		return sdktypes.Instruction{}, fmt.Errorf("serialize remove liquidity data: %w", err)
	}

	pool := p.Pool
	return sdktypes.Instruction{
		ProgramID: pool.ProgramID.ToCommon(),
		Accounts: []sdktypes.AccountMeta{
			readonly(consts.TokenProgram),
			writable(pool.AmmID),
			readonly(pool.AmmAuthority),
			writable(pool.AmmOpenOrders),
			writable(f.orderStateAccount(pool)),
			writable(pool.Lp.Mint),
			writable(pool.PoolCoinTokenAccount),
			writable(pool.PoolPcTokenAccount),
			writable(pool.PoolWithdrawQueue),
			writable(pool.PoolTempLpTokenAccount),
			readonly(pool.SerumProgramID),
			writable(pool.SerumMarket),
			writable(pool.SerumCoinVaultAccount),
			writable(pool.SerumPcVaultAccount),
			readonly(pool.SerumVaultSigner),
			writable(p.UserLpTokenAccount),
			writable(p.UserCoinTokenAccount),
			writable(p.UserPcTokenAccount),
			signer(p.Owner),
		},
		Data: data,
	}, nil
}

// orderStateAccount V3 使用 quantities 账户，V4 使用 target orders 账户
func (f Family) orderStateAccount(pool *registry.Pool) types.Pubkey {
	if f == FamilyV4 {
		return pool.AmmTargetOrders
	}
	return pool.AmmQuantities
}

func readonly(p types.Pubkey) sdktypes.AccountMeta {
	return sdktypes.AccountMeta{PubKey: p.ToCommon()}
}

func writable(p types.Pubkey) sdktypes.AccountMeta {
	return sdktypes.AccountMeta{PubKey: p.ToCommon(), IsWritable: true}
}

func signer(p types.Pubkey) sdktypes.AccountMeta {
	return sdktypes.AccountMeta{PubKey: p.ToCommon(), IsSigner: true}
}
