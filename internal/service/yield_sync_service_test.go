package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ray-liquidity-sol/internal/cache"
	"ray-liquidity-sol/internal/chain/chaintest"
	"ray-liquidity-sol/internal/consts"
	"ray-liquidity-sol/internal/layout"
	"ray-liquidity-sol/internal/logic/yield"
	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/registry"
	"ray-liquidity-sol/internal/registry/registrytest"
)

const unit = 1_000_000

type env struct {
	reg   *registry.StaticRegistry
	chain *chaintest.Chain
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return &env{reg: registrytest.Registry(), chain: chaintest.New()}
}

func (e *env) farm(name string, version int) *registry.Farm {
	farm, ok := e.reg.FarmByNameVersion(name, version)
	if !ok {
		panic("unknown farm " + name)
	}
	return farm
}

func (e *env) setFarmV3(t *testing.T, farm *registry.Farm, perBlock, deposited uint64) {
	data, err := layout.EncodeStakeInfoV3(layout.StakeInfoV3{State: 1, PoolLpTokenAccount: farm.PoolLpTokenAccount, RewardPerBlock: perBlock})
	require.NoError(t, err)
	e.chain.SetAccount(farm.PoolID, farm.ProgramID, chaintest.Rent(uint64(len(data))), data)
	e.chain.SetTokenAccount(farm.PoolLpTokenAccount, farm.Lp.Mint, farm.PoolAuthority, deposited)
}

func (e *env) setFarmV4(t *testing.T, farm *registry.Farm, perBlock, perBlockB, deposited uint64) {
	data, err := layout.EncodeStakeInfoV4(layout.StakeInfoV4{State: 1, PoolLpTokenAccount: farm.PoolLpTokenAccount, PerBlock: perBlock, PerBlockB: perBlockB})
	require.NoError(t, err)
	e.chain.SetAccount(farm.PoolID, farm.ProgramID, chaintest.Rent(uint64(len(data))), data)
	e.chain.SetTokenAccount(farm.PoolLpTokenAccount, farm.Lp.Mint, farm.PoolAuthority, deposited)
}

func (e *env) setPool(name string, version int, coin, pc, lpSupply uint64) {
	pool, ok := e.reg.PoolByNameVersion(name, version)
	if !ok {
		panic("unknown pool " + name)
	}
	pcMint := pool.Pc.Mint
	if consts.IsNativeMint(pcMint) {
		pcMint = consts.WSOLMint
	}
	e.chain.SetTokenAccount(pool.PoolCoinTokenAccount, pool.Coin.Mint, pool.AmmAuthority, coin)
	e.chain.SetTokenAccount(pool.PoolPcTokenAccount, pcMint, pool.AmmAuthority, pc)
	e.chain.SetMint(pool.Lp.Mint, lpSupply, pool.Lp.Decimals)
}

// 布置四个 farm：RAY-USDC 完整，RAY-SOL 缺 farm 账户，RAY-SRM 缺 LP mint，RAY 单币无池子
func (e *env) seed(t *testing.T) {
	e.setFarmV4(t, e.farm("RAY-USDC", 5), 1*unit, unit/2, 10*unit)
	e.setPool("RAY-USDC", 4, 1000*unit, 2000*unit, 100*unit)

	e.setPool("RAY-SOL", 4, 1000*unit, 1000*1_000_000_000, 100*unit)
	sol := e.farm("RAY-SOL", 3)
	e.chain.SetTokenAccount(sol.PoolLpTokenAccount, sol.Lp.Mint, sol.PoolAuthority, unit)

	e.setFarmV3(t, e.farm("RAY-SRM", 3), unit, unit)
	e.setPool("RAY-SRM", 3, 1000*unit, 1000*unit, 100*unit)
	pool, _ := e.reg.PoolByNameVersion("RAY-SRM", 3)
	e.chain.Delete(pool.Lp.Mint)

	e.setFarmV3(t, e.farm("RAY", 3), unit, 5*unit)
}

func TestFarmStateLoaderSingleBatch(t *testing.T) {
	e := newEnv(t)
	e.seed(t)

	states, err := NewFarmStateLoader(e.reg, e.chain).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 4)
	assert.Equal(t, 1, e.chain.MultiCalls)

	fusion := states[0]
	require.NoError(t, fusion.Err)
	require.NotNil(t, fusion.Account)
	require.NotNil(t, fusion.Snapshot)
	assert.Equal(t, "2000", fusion.Snapshot.PcBalance.Human().String())
	assert.Equal(t, "10", fusion.Deposited.Human().String())

	sol := states[1]
	assert.NoError(t, sol.Err)
	assert.Nil(t, sol.Account)
	assert.NotNil(t, sol.Snapshot)

	srm := states[2]
	assert.Equal(t, xerr.KindDecode, xerr.KindOf(srm.Err))

	single := states[3]
	assert.NoError(t, single.Err)
	assert.Nil(t, single.Snapshot)
	assert.Equal(t, "5", single.Deposited.Human().String())
}

func TestFarmStateLoaderMissingVault(t *testing.T) {
	e := newEnv(t)
	e.seed(t)
	fusion := e.farm("RAY-USDC", 5)
	e.chain.Delete(fusion.PoolLpTokenAccount)

	states, err := NewFarmStateLoader(e.reg, e.chain).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, xerr.KindDecode, xerr.KindOf(states[0].Err))
}

func TestFarmStateLoaderRpcFailure(t *testing.T) {
	e := newEnv(t)
	e.chain.FetchErr = errors.New("node down")

	_, err := NewFarmStateLoader(e.reg, e.chain).Load(context.Background())
	assert.True(t, errors.Is(err, xerr.ErrRpc))
}

type fakePublisher struct {
	records []yield.PoolYieldRecord
	err     error
}

func (p *fakePublisher) Publish(_ context.Context, records []yield.PoolYieldRecord) error {
	p.records = append(p.records, records...)
	return p.err
}

type fakeCache struct {
	reports []*yield.Report
}

func (c *fakeCache) SaveReport(_ context.Context, report *yield.Report, _ time.Time) error {
	c.reports = append(c.reports, report)
	return nil
}

func newService(e *env, prices *cache.PriceBook, pub RecordPublisher, rc ReportCache, opt YieldSyncOption) *YieldSyncService {
	return NewYieldSyncService(NewFarmStateLoader(e.reg, e.chain), yield.NewEngine(2), prices, pub, rc, opt)
}

func defaultPrices() *cache.PriceBook {
	pb := cache.NewPriceBook()
	pb.UpdateFrom(map[string]decimal.Decimal{
		"RAY":  decimal.NewFromInt(2),
		"USDC": decimal.NewFromInt(1),
	})
	return pb
}

func TestYieldSyncUpdateDispatches(t *testing.T) {
	e := newEnv(t)
	e.seed(t)
	pub := &fakePublisher{}
	rc := &fakeCache{}
	s := newService(e, defaultPrices(), pub, rc, YieldSyncOption{})
	defer s.Stop()

	require.NoError(t, s.update())

	report := s.Latest()
	require.NotNil(t, report)
	require.Len(t, report.Active, 1)
	assert.Equal(t, "RAY-USDC", report.Active[0].Name)
	assert.True(t, report.Active[0].APR.Equal(decimal.NewFromInt(42048000)))

	kinds := make([]string, 0, len(report.Failures))
	for _, f := range report.Failures {
		kinds = append(kinds, f.Kind)
	}
	assert.Equal(t, []string{"DecodeError", "DecodeError", "PoolNotFound"}, kinds)

	require.Len(t, pub.records, 1)
	require.Len(t, rc.reports, 1)
	assert.Same(t, report, rc.reports[0])
}

func TestYieldSyncPublishErrorStillCaches(t *testing.T) {
	e := newEnv(t)
	e.seed(t)
	pub := &fakePublisher{err: errors.New("broker unavailable")}
	rc := &fakeCache{}
	s := newService(e, defaultPrices(), pub, rc, YieldSyncOption{})
	defer s.Stop()

	err := s.update()
	assert.ErrorContains(t, err, "broker unavailable")
	assert.Len(t, rc.reports, 1)
}

func TestYieldSyncReloadsPriceFile(t *testing.T) {
	e := newEnv(t)
	e.seed(t)
	path := filepath.Join(t.TempDir(), "prices.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prices:\n  RAY: \"4\"\n  USDC: \"1\"\n"), 0o644))

	prices := cache.NewPriceBook()
	s := newService(e, prices, nil, nil, YieldSyncOption{PriceFile: path})
	defer s.Stop()

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Active, 1)
	assert.True(t, report.Active[0].RewardPrice.Equal(decimal.NewFromInt(4)))

	// 价格文件损坏时沿用上一轮价格
	require.NoError(t, os.WriteFile(path, []byte("prices: ["), 0o644))
	report, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Active[0].RewardPrice.Equal(decimal.NewFromInt(4)))
}

func TestYieldSyncStartStop(t *testing.T) {
	e := newEnv(t)
	e.seed(t)
	s := newService(e, defaultPrices(), nil, nil, YieldSyncOption{Interval: 10 * time.Millisecond})

	done := make(chan struct{})
	go func() {
		s.Start()
		close(done)
	}()
	require.Eventually(t, func() bool { return s.Latest() != nil }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
}
