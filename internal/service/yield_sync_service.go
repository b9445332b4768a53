package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"ray-liquidity-sol/internal/cache"
	"ray-liquidity-sol/internal/logic/yield"
	"ray-liquidity-sol/internal/pkg/logger"
	"ray-liquidity-sol/internal/types"
)

// RecordPublisher 收益记录的下游，Kafka 实现见 mq.YieldPublisher
type RecordPublisher interface {
	Publish(ctx context.Context, records []yield.PoolYieldRecord) error
}

// ReportCache 报告缓存，Redis 实现见 store.RedisReportStore
type ReportCache interface {
	SaveReport(ctx context.Context, report *yield.Report, computedAt time.Time) error
}

type YieldSyncOption struct {
	Interval      time.Duration
	FetchTimeout  time.Duration
	PriceFile     string // 非空时每轮重新加载
	PairStatsFile string
}

// YieldSyncService 周期性计算全部 farm 的收益并分发
type YieldSyncService struct {
	loader    *FarmStateLoader
	engine    *yield.Engine
	prices    *cache.PriceBook
	publisher RecordPublisher // 可为 nil
	cache     ReportCache     // 可为 nil
	opt       YieldSyncOption

	latest   atomic.Pointer[yield.Report]
	stopChan chan struct{}
	ctx      context.Context
	cancel   func(err error)
}

func NewYieldSyncService(
	loader *FarmStateLoader,
	engine *yield.Engine,
	prices *cache.PriceBook,
	publisher RecordPublisher,
	reportCache ReportCache,
	opt YieldSyncOption,
) *YieldSyncService {
	if opt.Interval <= 0 {
		opt.Interval = time.Minute
	}
	if opt.FetchTimeout <= 0 {
		opt.FetchTimeout = 20 * time.Second
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	return &YieldSyncService{
		loader:    loader,
		engine:    engine,
		prices:    prices,
		publisher: publisher,
		cache:     reportCache,
		opt:       opt,
		stopChan:  make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *YieldSyncService) Start() {
	if err := s.update(); err != nil {
		logger.Warnf("[YieldSyncService] 首次计算失败: %v", err)
	}
	s.scheduleNext()
	<-s.stopChan
}

func (s *YieldSyncService) scheduleNext() {
	time.AfterFunc(s.opt.Interval, func() {
		select {
		case <-s.ctx.Done():
			return
		default:
		}
		if err := s.update(); err != nil {
			logger.Warnf("[YieldSyncService] 周期性计算失败: %v", err)
		}
		// 如果没有被 Stop，就继续调度
		select {
		case <-s.ctx.Done():
			return
		default:
			s.scheduleNext()
		}
	})
}

func (s *YieldSyncService) Stop() {
	s.cancel(errors.New("YieldSyncService stop"))
	select {
	case <-s.stopChan:
		// 已关闭，无需重复关闭
	default:
		close(s.stopChan)
	}
}

// Latest 最近一次成功计算的报告，尚未计算时为 nil
func (s *YieldSyncService) Latest() *yield.Report {
	return s.latest.Load()
}

func (s *YieldSyncService) update() (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[YieldSyncService] update panic: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("update panic: %v", r)
		}
	}()

	report, err := s.RunOnce(s.ctx)
	if err != nil {
		return err
	}
	return s.dispatch(s.ctx, report)
}

// RunOnce 拉取链上数据并计算一次，不做分发
func (s *YieldSyncService) RunOnce(ctx context.Context) (*yield.Report, error) {
	s.reloadPrices()
	stats, err := cache.LoadPairStats(s.opt.PairStatsFile)
	if err != nil {
		// 统计数据缺失只影响 TVL / 手续费年化
		logger.Warnf("[YieldSyncService] 加载交易对统计失败: %v", err)
		stats = nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.opt.FetchTimeout)
	defer cancel()
	states, err := s.loader.Load(fetchCtx)
	if err != nil {
		return nil, err
	}

	report := s.engine.Compute(yield.Input{
		States:    states,
		Prices:    s.prices.Snapshot(),
		PairStats: statsOrEmpty(stats),
	})
	s.latest.Store(report)
	logger.Infof("[YieldSyncService] 计算完成: active=%d, ended=%d, failures=%d",
		len(report.Active), len(report.Ended), len(report.Failures))
	return report, nil
}

func (s *YieldSyncService) reloadPrices() {
	if s.opt.PriceFile == "" {
		return
	}
	n, err := s.prices.LoadFile(s.opt.PriceFile)
	if err != nil {
		logger.Warnf("[YieldSyncService] 重新加载价格失败，沿用上一轮价格: %v", err)
		return
	}
	logger.Debugf("[YieldSyncService] 价格已更新: %d 个代币", n)
}

// dispatch Kafka 与 Redis 互不影响，两者的错误合并返回
func (s *YieldSyncService) dispatch(ctx context.Context, report *yield.Report) error {
	var errs []error
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, report.Records()); err != nil {
			errs = append(errs, fmt.Errorf("publish: %w", err))
		}
	}
	if s.cache != nil {
		if err := s.cache.SaveReport(ctx, report, time.Now()); err != nil {
			errs = append(errs, fmt.Errorf("cache: %w", err))
		}
	}
	return errors.Join(errs...)
}

func statsOrEmpty(stats map[types.Pubkey]yield.PairStat) map[types.Pubkey]yield.PairStat {
	if stats == nil {
		return map[types.Pubkey]yield.PairStat{}
	}
	return stats
}
