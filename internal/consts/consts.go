package consts

import "runtime"

// CpuCount 表示逻辑 CPU 核心数，用于控制并发任务调度上限
var CpuCount = runtime.NumCPU()

const (
	SOLDecimals = 9

	// 收益年化常量：出块约 2 块/秒
	BlocksPerDay = 2 * 60 * 60 * 24
	DaysPerYear  = 365

	// WrapOverProvisionLamports 包装 SOL 账户在指令金额之外额外预存的 lamports（0.01 SOL）
	WrapOverProvisionLamports uint64 = 1e7

	// MaxMultipleAccounts getMultipleAccounts 单次请求的最大账户数
	MaxMultipleAccounts = 100
)
