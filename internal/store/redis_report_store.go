package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/jsonx"

	"ray-liquidity-sol/internal/logic/yield"
	"ray-liquidity-sol/internal/types"
)

// Redis key 前缀
const (
	defaultPrefix = "ray:yield"
	reportSuffix  = "report:latest"
	recordSuffix  = "record"
)

const defaultTTL = 10 * time.Minute

// CachedReport 带计算时间的报告
type CachedReport struct {
	ComputedAt int64         `json:"computedAt"`
	Report     *yield.Report `json:"report"`
}

// RedisReportStore 缓存最近一次收益报告，过期后由下一轮计算覆盖
type RedisReportStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisReportStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisReportStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisReportStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisReportStore) reportKey() string {
	return fmt.Sprintf("%s:%s", s.prefix, reportSuffix)
}

func (s *RedisReportStore) recordKey() string {
	return fmt.Sprintf("%s:%s", s.prefix, recordSuffix)
}

// SaveReport 在同一事务中写入整份报告与按 farm 索引的单条记录
func (s *RedisReportStore) SaveReport(ctx context.Context, report *yield.Report, computedAt time.Time) error {
	payload, err := jsonx.Marshal(CachedReport{ComputedAt: computedAt.Unix(), Report: report})
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	records := report.Records()
	fields := make(map[string]any, len(records))
	for i := range records {
		data, err := jsonx.Marshal(records[i])
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", records[i].FarmID, err)
		}
		fields[records[i].FarmID.String()] = data
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.reportKey(), payload, s.ttl)
		pipe.Del(ctx, s.recordKey())
		if len(fields) > 0 {
			pipe.HSet(ctx, s.recordKey(), fields)
			pipe.Expire(ctx, s.recordKey(), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save report error: %w", err)
	}
	return nil
}

// LoadReport 读取最近一次报告，不存在或已过期时返回 nil
func (s *RedisReportStore) LoadReport(ctx context.Context) (*CachedReport, error) {
	data, err := s.rdb.Get(ctx, s.reportKey()).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	var cached CachedReport
	if err := jsonx.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &cached, nil
}

// LoadRecord 按 farm id 读取单条记录
func (s *RedisReportStore) LoadRecord(ctx context.Context, farmID types.Pubkey) (*yield.PoolYieldRecord, error) {
	data, err := s.rdb.HGet(ctx, s.recordKey(), farmID.String()).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("redis hget error: %w", err)
	}

	var rec yield.PoolYieldRecord
	if err := jsonx.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}
