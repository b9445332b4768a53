package registry

import (
	"fmt"

	"ray-liquidity-sol/internal/types"
)

// TokenInfo 代币描述
type TokenInfo struct {
	Symbol   string       `yaml:"symbol"`         // 代币符号，如 RAY
	Name     string       `yaml:"name,omitempty"` // LP 代币的交易对名称，如 RAY-USDC
	Mint     types.Pubkey `yaml:"mint"`           // mint 地址，原生 SOL 使用全 0 地址
	Decimals uint8        `yaml:"decimals"`       // 精度
}

// Pool AMM 池静态描述（不含余额快照）
type Pool struct {
	Name    string    `yaml:"name"`    // 交易对名称，如 RAY-USDC
	Version int       `yaml:"version"` // AMM 版本 1..5
	Coin    TokenInfo `yaml:"coin"`
	Pc      TokenInfo `yaml:"pc"`
	Lp      TokenInfo `yaml:"lp"`

	ProgramID              types.Pubkey `yaml:"program_id"`
	AmmID                  types.Pubkey `yaml:"amm_id"`
	AmmAuthority           types.Pubkey `yaml:"amm_authority"`
	AmmOpenOrders          types.Pubkey `yaml:"amm_open_orders"`
	AmmTargetOrders        types.Pubkey `yaml:"amm_target_orders"` // V4 族使用
	AmmQuantities          types.Pubkey `yaml:"amm_quantities"`    // V3 族使用
	PoolCoinTokenAccount   types.Pubkey `yaml:"pool_coin_token_account"`
	PoolPcTokenAccount     types.Pubkey `yaml:"pool_pc_token_account"`
	PoolWithdrawQueue      types.Pubkey `yaml:"pool_withdraw_queue"`
	PoolTempLpTokenAccount types.Pubkey `yaml:"pool_temp_lp_token_account"`

	SerumProgramID        types.Pubkey `yaml:"serum_program_id"`
	SerumMarket           types.Pubkey `yaml:"serum_market"`
	SerumCoinVaultAccount types.Pubkey `yaml:"serum_coin_vault_account"`
	SerumPcVaultAccount   types.Pubkey `yaml:"serum_pc_vault_account"`
	SerumVaultSigner      types.Pubkey `yaml:"serum_vault_signer"`
}

func (p *Pool) Key() string {
	return poolKey(p.Name, p.Version)
}

// Farm 质押/挖矿池静态描述
type Farm struct {
	Name    string     `yaml:"name"`    // 名称，通常与 LP 交易对同名
	Version int        `yaml:"version"` // farm 程序版本 3 / 4 / 5
	Lp      TokenInfo  `yaml:"lp"`      // 质押的 LP（单币质押时为该代币）
	Reward  TokenInfo  `yaml:"reward"`
	RewardB *TokenInfo `yaml:"reward_b,omitempty"` // 双奖励 farm 的第二奖励
	Fusion  bool       `yaml:"fusion"`             // true 表示双奖励
	Default bool       `yaml:"default"`            // 单币 RAY 质押的默认 farm

	ProgramID               types.Pubkey `yaml:"program_id"`
	PoolID                  types.Pubkey `yaml:"pool_id"`
	PoolAuthority           types.Pubkey `yaml:"pool_authority"`
	PoolLpTokenAccount      types.Pubkey `yaml:"pool_lp_token_account"`
	PoolRewardTokenAccount  types.Pubkey `yaml:"pool_reward_token_account"`
	PoolRewardTokenAccountB types.Pubkey `yaml:"pool_reward_token_account_b,omitempty"`
}

func (f *Farm) Key() string {
	return poolKey(f.Name, f.Version)
}

func poolKey(name string, version int) string {
	return fmt.Sprintf("%s#%d", name, version)
}

// Catalog 注册表文件结构
type Catalog struct {
	Pools    []Pool      `yaml:"pools"`
	Farms    []Farm      `yaml:"farms"`
	LpTokens []TokenInfo `yaml:"lp_tokens"`
}
