// Package registrytest 提供测试用的确定性注册表数据。
package registrytest

import (
	"crypto/sha256"

	"ray-liquidity-sol/internal/consts"
	"ray-liquidity-sol/internal/registry"
	"ray-liquidity-sol/internal/types"
)

// Key 由名称派生确定性的测试地址
func Key(name string) types.Pubkey {
	return types.Pubkey(sha256.Sum256([]byte(name)))
}

var (
	RAY  = registry.TokenInfo{Symbol: "RAY", Mint: Key("mint:RAY"), Decimals: 6}
	USDC = registry.TokenInfo{Symbol: "USDC", Mint: Key("mint:USDC"), Decimals: 6}
	SOL  = registry.TokenInfo{Symbol: "SOL", Mint: consts.NativeSOLMint, Decimals: 9}
	SRM  = registry.TokenInfo{Symbol: "SRM", Mint: Key("mint:SRM"), Decimals: 6}
)

func lp(name string, decimals uint8) registry.TokenInfo {
	return registry.TokenInfo{Symbol: name, Name: name, Mint: Key("lp:" + name), Decimals: decimals}
}

// Pool 构造一个字段齐全的测试池
func Pool(name string, version int, coin, pc registry.TokenInfo) registry.Pool {
	program := consts.RaydiumLiquidityV4Program
	if version < 4 {
		program = consts.RaydiumLiquidityV3Program
	}
	k := func(field string) types.Pubkey { return Key(name + ":" + field) }
	return registry.Pool{
		Name:                   name,
		Version:                version,
		Coin:                   coin,
		Pc:                     pc,
		Lp:                     lp(name, coin.Decimals),
		ProgramID:              program,
		AmmID:                  k("amm"),
		AmmAuthority:           k("authority"),
		AmmOpenOrders:          k("open_orders"),
		AmmTargetOrders:        k("target_orders"),
		AmmQuantities:          k("quantities"),
		PoolCoinTokenAccount:   k("coin_vault"),
		PoolPcTokenAccount:     k("pc_vault"),
		PoolWithdrawQueue:      k("withdraw_queue"),
		PoolTempLpTokenAccount: k("temp_lp"),
		SerumProgramID:         consts.SerumDexV3Program,
		SerumMarket:            k("market"),
		SerumCoinVaultAccount:  k("market_coin_vault"),
		SerumPcVaultAccount:    k("market_pc_vault"),
		SerumVaultSigner:       k("vault_signer"),
	}
}

// Farm 构造测试 farm；rewardB 非空时为双奖励 farm
func Farm(name string, version int, lpToken, reward registry.TokenInfo, rewardB *registry.TokenInfo) registry.Farm {
	program, _ := consts.StakeProgramByVersion(version)
	k := func(field string) types.Pubkey { return Key(name + ":farm:" + field) }
	f := registry.Farm{
		Name:                   name,
		Version:                version,
		Lp:                     lpToken,
		Reward:                 reward,
		ProgramID:              program,
		PoolID:                 k("id"),
		PoolAuthority:          k("authority"),
		PoolLpTokenAccount:     k("lp_vault"),
		PoolRewardTokenAccount: k("reward_vault"),
	}
	if rewardB != nil {
		rb := *rewardB
		f.RewardB = &rb
		f.Fusion = true
		f.PoolRewardTokenAccountB = k("reward_vault_b")
	}
	return f
}

// Catalog 包含：
//   - RAY-USDC v4 池 + fusion farm v5（奖励 RAY / USDC）
//   - RAY-SOL v4 池（原生 SOL 作为 pc）+ 单奖励 farm v3
//   - RAY-SRM v3 池 + 单奖励 farm v3
//   - RAY 单币质押默认 farm v3
func Catalog() registry.Catalog {
	rayUsdc := Pool("RAY-USDC", 4, RAY, USDC)
	raySol := Pool("RAY-SOL", 4, RAY, SOL)
	raySrm := Pool("RAY-SRM", 3, RAY, SRM)

	usdc := USDC
	fusion := Farm("RAY-USDC", 5, rayUsdc.Lp, RAY, &usdc)
	solFarm := Farm("RAY-SOL", 3, raySol.Lp, RAY, nil)
	srmFarm := Farm("RAY-SRM", 3, raySrm.Lp, RAY, nil)
	single := Farm("RAY", 3, RAY, RAY, nil)
	single.Default = true

	return registry.Catalog{
		Pools:    []registry.Pool{rayUsdc, raySol, raySrm},
		Farms:    []registry.Farm{fusion, solFarm, srmFarm, single},
		LpTokens: []registry.TokenInfo{rayUsdc.Lp, raySol.Lp, raySrm.Lp, lp("OXY-RAY", 6)},
	}
}

// Registry 以 Catalog 构建注册表，失败直接 panic
func Registry() *registry.StaticRegistry {
	r, err := registry.New(Catalog())
	if err != nil {
		panic(err)
	}
	return r
}
