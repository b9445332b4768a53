package yield

import (
	"time"

	"github.com/shopspring/decimal"

	"ray-liquidity-sol/internal/pkg/logger"
	"ray-liquidity-sol/internal/pkg/utils"
	"ray-liquidity-sol/internal/registry"
	"ray-liquidity-sol/internal/types"
)

// Input 一次计算的全部输入，调用方传入的 map 在计算期间不得修改
type Input struct {
	States    []FarmState
	Prices    map[string]decimal.Decimal // 按代币符号
	PairStats map[types.Pubkey]PairStat  // 按 LP mint，可为空
}

type Engine struct {
	workers int
}

func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = 1
	}
	return &Engine{workers: workers}
}

type outcome struct {
	farm   *registry.Farm
	record PoolYieldRecord
	err    error
}

// Compute 对每个 farm 并发计算，结果顺序与输入一致
func (e *Engine) Compute(in Input) *Report {
	start := time.Now()
	outcomes := utils.ParallelMap(in.States, e.workers, func(s FarmState) outcome {
		rec, err := computeOne(s, in.Prices, in.PairStats)
		return outcome{farm: s.Farm, record: rec, err: err}
	})

	report := &Report{
		Active:   make([]PoolYieldRecord, 0, len(outcomes)),
		Ended:    make([]PoolYieldRecord, 0),
		Failures: make([]Failure, 0),
	}
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			logger.Warnf("[YieldEngine] farm %s 计算失败: %v", o.farm.Key(), o.err)
			report.Failures = append(report.Failures, newFailure(o.farm, o.err))
		case o.record.Status == StatusEnded:
			report.Ended = append(report.Ended, o.record)
		default:
			report.Active = append(report.Active, o.record)
		}
	}
	logger.Infof("[YieldEngine] 计算完成: farms=%d, active=%d, ended=%d, failures=%d, 耗时=%v",
		len(in.States), len(report.Active), len(report.Ended), len(report.Failures), time.Since(start))
	return report
}

func computeOne(s FarmState, prices map[string]decimal.Decimal, stats map[types.Pubkey]PairStat) (PoolYieldRecord, error) {
	decoded, err := decode(s)
	if err != nil {
		return PoolYieldRecord{}, err
	}
	joined, err := join(decoded, prices, stats)
	if err != nil {
		return PoolYieldRecord{}, err
	}
	derived, err := derive(joined)
	if err != nil {
		return PoolYieldRecord{}, err
	}
	return classify(derived), nil
}
