package consts

import "ray-liquidity-sol/internal/types"

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	//  Programs
	SystemProgramStr          = "11111111111111111111111111111111"
	TokenProgramStr           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgramStr = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	SysvarClockStr            = "SysvarC1ock11111111111111111111111111111111"
	SysvarRentStr             = "SysvarRent111111111111111111111111111111111"

	// 原生资产的包装 mint
	WSOLMintStr = "So11111111111111111111111111111111111111112"

	// Raydium AMM
	RaydiumLiquidityV2ProgramStr = "RVKd61ztZW9GUwhRbbLoYVRE5Xf1B2tVscKqwZqXgEr"
	RaydiumLiquidityV3ProgramStr = "27haf8L6oxUeXrHrgEgsexjSY5hbVUWEmvv9Nyxg8vQv"
	RaydiumLiquidityV4ProgramStr = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"

	// Raydium Farm / Staking
	RaydiumStakeV3ProgramStr = "EhhTKczWMGQt46ynNeRX1WfeagwwJd7ufHvCDjRxjo5Q"
	RaydiumStakeV4ProgramStr = "CBuCnLe26faBpcBP2fktp4rp8abpcAnTWft6ZrP5Q4T"
	RaydiumStakeV5ProgramStr = "9KEPoZmtHUrBbhWN1v1KWLMkkvwY6WLtAVUCPRtRjP4z"

	// Serum DEX v3
	SerumDexV3ProgramStr = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
)

var (
	// 特殊语义地址
	NativeSOLMint = types.Pubkey{} // 原生 SOL（非 SPL），注册表中以全 0 表示

	// Programs
	SystemProgram          = types.PubkeyFromBase58(SystemProgramStr)
	TokenProgram           = types.PubkeyFromBase58(TokenProgramStr)
	AssociatedTokenProgram = types.PubkeyFromBase58(AssociatedTokenProgramStr)
	SysvarClock            = types.PubkeyFromBase58(SysvarClockStr)
	SysvarRent             = types.PubkeyFromBase58(SysvarRentStr)

	WSOLMint = types.PubkeyFromBase58(WSOLMintStr)

	RaydiumLiquidityV2Program = types.PubkeyFromBase58(RaydiumLiquidityV2ProgramStr)
	RaydiumLiquidityV3Program = types.PubkeyFromBase58(RaydiumLiquidityV3ProgramStr)
	RaydiumLiquidityV4Program = types.PubkeyFromBase58(RaydiumLiquidityV4ProgramStr)

	RaydiumStakeV3Program = types.PubkeyFromBase58(RaydiumStakeV3ProgramStr)
	RaydiumStakeV4Program = types.PubkeyFromBase58(RaydiumStakeV4ProgramStr)
	RaydiumStakeV5Program = types.PubkeyFromBase58(RaydiumStakeV5ProgramStr)

	SerumDexV3Program = types.PubkeyFromBase58(SerumDexV3ProgramStr)
)

// IsNativeMint 判断 mint 是否代表原生 SOL（全 0 或 WSOL mint）
func IsNativeMint(mint types.Pubkey) bool {
	return mint == NativeSOLMint || mint == WSOLMint
}
