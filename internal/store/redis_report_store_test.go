package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ray-liquidity-sol/internal/logic/yield"
	"ray-liquidity-sol/internal/registry/registrytest"
)

func testClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestStoreDefaults(t *testing.T) {
	s := NewRedisReportStore(nil, "", 0)
	assert.Equal(t, "ray:yield:report:latest", s.reportKey())
	assert.Equal(t, "ray:yield:record", s.recordKey())
	assert.Equal(t, defaultTTL, s.ttl)
}

func TestSaveAndLoadReport(t *testing.T) {
	rdb := testClient(t)
	ctx := context.Background()
	s := NewRedisReportStore(rdb, "test:"+t.Name(), time.Minute)

	active := yield.PoolYieldRecord{
		FarmID:      registrytest.Key("farm:RAY-USDC"),
		Name:        "RAY-USDC",
		FarmVersion: 3,
		APR:         decimal.RequireFromString("12.5"),
		TVL:         decimal.NewNullDecimal(decimal.NewFromInt(5000)),
		Status:      yield.StatusActive,
	}
	report := &yield.Report{
		Active:   []yield.PoolYieldRecord{active},
		Ended:    []yield.PoolYieldRecord{},
		Failures: []yield.Failure{{Name: "RAY-SRM", Kind: "PoolNotFound", Detail: "missing"}},
	}
	now := time.Unix(1700000000, 0)
	require.NoError(t, s.SaveReport(ctx, report, now))

	cached, err := s.LoadReport(ctx)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, now.Unix(), cached.ComputedAt)
	require.Len(t, cached.Report.Active, 1)
	assert.True(t, cached.Report.Active[0].APR.Equal(active.APR))
	assert.Equal(t, "PoolNotFound", cached.Report.Failures[0].Kind)

	rec, err := s.LoadRecord(ctx, active.FarmID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "RAY-USDC", rec.Name)
	assert.True(t, rec.TVL.Valid)

	missing, err := s.LoadRecord(ctx, registrytest.Key("farm:none"))
	require.NoError(t, err)
	assert.Nil(t, missing)

	ttl, err := rdb.TTL(ctx, s.reportKey()).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Minute)

	_ = rdb.Del(ctx, s.reportKey(), s.recordKey()).Err()
}

func TestLoadReportMissing(t *testing.T) {
	rdb := testClient(t)
	s := NewRedisReportStore(rdb, "test:empty:"+t.Name(), time.Minute)
	cached, err := s.LoadReport(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cached)
}
