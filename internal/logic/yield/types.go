// Package yield 根据 farm 链上状态、池子余额与价格计算年化收益。
//
// 每个 farm 依次经过 decode -> join -> derive -> classify 四个阶段，
// 每个阶段产出新的结构体，不修改上一阶段的结果。单条失败只记录在
// Report.Failures 中，不影响其他 farm。
package yield

import (
	"github.com/shopspring/decimal"

	"ray-liquidity-sol/internal/chain"
	"ray-liquidity-sol/internal/logic/amount"
	"ray-liquidity-sol/internal/logic/liquidity"
	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/registry"
	"ray-liquidity-sol/internal/types"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// FarmState 一个 farm 的原始链上数据，由批量拉取得到
type FarmState struct {
	Farm      *registry.Farm
	Account   *chain.AccountInfo      // farm 状态账户，nil 表示链上不存在
	Snapshot  *liquidity.PoolSnapshot // 注册表中没有对应池子时为 nil
	Deposited amount.TokenAmount      // farm LP vault 中的 LP 数量
	Err       error                   // 拉取阶段的失败
}

// PairStat 交易对的外部统计数据，按 LP mint 索引
type PairStat struct {
	Liquidity decimal.Decimal // TVL（USD）
	FeeAPY    decimal.Decimal // 手续费年化（百分比）
}

// PoolYieldRecord 单个 farm 的收益结果，每次请求重新计算
type PoolYieldRecord struct {
	FarmID      types.Pubkey `json:"farmId"`
	Name        string       `json:"name"`
	FarmVersion int          `json:"farmVersion"`
	PoolVersion int          `json:"poolVersion"`
	Fusion      bool         `json:"fusion"`

	RewardSymbol  string              `json:"rewardSymbol"`
	RewardBSymbol string              `json:"rewardBSymbol,omitempty"`
	RewardPrice   decimal.Decimal     `json:"rewardPrice"`
	RewardBPrice  decimal.NullDecimal `json:"rewardBPrice"`

	RewardPerBlock      decimal.Decimal `json:"rewardPerBlock"`
	RewardBPerBlock     decimal.Decimal `json:"rewardBPerBlock"`
	RewardValuePerYear  decimal.Decimal `json:"rewardValuePerYear"`
	RewardBValuePerYear decimal.Decimal `json:"rewardBValuePerYear"`
	LiquidityValue      decimal.Decimal `json:"liquidityValue"`

	APR      decimal.Decimal     `json:"apr"`
	APRB     decimal.Decimal     `json:"aprB"`
	APRTotal decimal.Decimal     `json:"aprTotal"`
	FeeAPY   decimal.NullDecimal `json:"feeApy"`
	TVL      decimal.NullDecimal `json:"tvl"`
	FinalAPR decimal.Decimal     `json:"finalApr"`

	DualYield bool   `json:"dualYield"`
	Status    Status `json:"status"`
}

// Failure 单个 farm 的计算失败
type Failure struct {
	FarmID types.Pubkey `json:"farmId"`
	Name   string       `json:"name"`
	Kind   string       `json:"kind"`
	Err    error        `json:"-"`
	Detail string       `json:"detail"`
}

func newFailure(farm *registry.Farm, err error) Failure {
	return Failure{
		FarmID: farm.PoolID,
		Name:   farm.Key(),
		Kind:   xerr.KindOf(err).String(),
		Err:    err,
		Detail: err.Error(),
	}
}

// Report 一次计算的结果
type Report struct {
	Active   []PoolYieldRecord `json:"active"`
	Ended    []PoolYieldRecord `json:"ended"`
	Failures []Failure         `json:"failures"`
}

// Records 全部成功记录，active 在前
func (r *Report) Records() []PoolYieldRecord {
	out := make([]PoolYieldRecord, 0, len(r.Active)+len(r.Ended))
	out = append(out, r.Active...)
	return append(out, r.Ended...)
}
