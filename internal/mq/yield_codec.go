package mq

import (
	"fmt"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"

	"ray-liquidity-sol/internal/logic/yield"
	"ray-liquidity-sol/internal/pkg/utils"
)

// 事件类型，写在消息的前 4 字节
const (
	EventTypeYieldRecord uint32 = 1
)

// EncodeYieldRecord 收益记录编码为 structpb.Struct，数值统一使用十进制字符串避免精度丢失
func EncodeYieldRecord(rec *yield.PoolYieldRecord) ([]byte, error) {
	fields := map[string]any{
		"farmId":              rec.FarmID.String(),
		"name":                rec.Name,
		"farmVersion":         rec.FarmVersion,
		"poolVersion":         rec.PoolVersion,
		"fusion":              rec.Fusion,
		"rewardSymbol":        rec.RewardSymbol,
		"rewardPrice":         rec.RewardPrice.String(),
		"rewardPerBlock":      rec.RewardPerBlock.String(),
		"rewardValuePerYear":  rec.RewardValuePerYear.String(),
		"rewardBPerBlock":     rec.RewardBPerBlock.String(),
		"rewardBValuePerYear": rec.RewardBValuePerYear.String(),
		"liquidityValue":      rec.LiquidityValue.String(),
		"apr":                 rec.APR.String(),
		"aprB":                rec.APRB.String(),
		"aprTotal":            rec.APRTotal.String(),
		"feeApy":              nullString(rec.FeeAPY),
		"tvl":                 nullString(rec.TVL),
		"finalApr":            rec.FinalAPR.String(),
		"dualYield":           rec.DualYield,
		"status":              string(rec.Status),
	}
	if rec.RewardBSymbol != "" {
		fields["rewardBSymbol"] = rec.RewardBSymbol
		fields["rewardBPrice"] = nullString(rec.RewardBPrice)
	}

	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build yield record struct: %w", err)
	}
	return utils.EncodeEvent(EventTypeYieldRecord, msg)
}

// DecodeYieldRecord 消费端使用，返回原始字段
func DecodeYieldRecord(data []byte) (*structpb.Struct, error) {
	msg := &structpb.Struct{}
	eventType, err := utils.DecodeEvent(data, msg)
	if err != nil {
		return nil, err
	}
	if eventType != EventTypeYieldRecord {
		return nil, fmt.Errorf("unexpected event type %d", eventType)
	}
	return msg, nil
}

func nullString(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}
