package stake

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ray-liquidity-sol/internal/chain/chaintest"
	"ray-liquidity-sol/internal/consts"
	"ray-liquidity-sol/internal/layout"
	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/registry"
	"ray-liquidity-sol/internal/registry/registrytest"
	"ray-liquidity-sol/internal/types"
)

const unit = 1_000_000

type testEnv struct {
	chain   *chaintest.Chain
	reg     *registry.StaticRegistry
	planner *Planner
	owner   sdktypes.Account
	key     types.Pubkey
}

func newTestEnv() *testEnv {
	c := chaintest.New()
	reg := registrytest.Registry()
	owner := sdktypes.NewAccount()
	return &testEnv{
		chain:   c,
		reg:     reg,
		planner: NewPlanner(reg, c),
		owner:   owner,
		key:     types.PubkeyFromCommon(owner.PublicKey),
	}
}

func (e *testEnv) farm(name string, version int) *registry.Farm {
	f, ok := e.reg.FarmByNameVersion(name, version)
	if !ok {
		panic("unknown farm " + name)
	}
	return f
}

// setLedger 写入 owner 在 farm 下的质押记录
func (e *testEnv) setLedger(farm *registry.Farm, owner types.Pubkey, deposit uint64) types.Pubkey {
	addr := registrytest.Key("ledger:" + farm.Key() + owner.String())
	var (
		data []byte
		err  error
	)
	if farm.Version >= 4 {
		data, err = layout.EncodeUserStakeInfoV4(layout.UserStakeInfoV4{State: 1, PoolID: farm.PoolID, StakerOwner: owner, DepositBalance: deposit})
	} else {
		data, err = layout.EncodeUserStakeInfoV3(layout.UserStakeInfoV3{State: 1, PoolID: farm.PoolID, StakerOwner: owner, DepositBalance: deposit})
	}
	if err != nil {
		panic(err)
	}
	e.chain.SetAccount(addr, farm.ProgramID, chaintest.Rent(uint64(len(data))), data)
	return addr
}

func amountOf(ix sdktypes.Instruction) uint64 {
	return binary.LittleEndian.Uint64(ix.Data[1:9])
}

func TestStakeSingleAssetCreatesRecord(t *testing.T) {
	e := newTestEnv()
	farm := e.farm("RAY", 3)
	userRay := e.chain.SetATA(e.key, farm.Lp.Mint, 100*unit)

	plan, err := e.planner.PlanStakeAction(context.Background(), Request{
		Action: ActionStake, Family: SingleAsset, Owner: e.owner, Amount: "10",
	})
	require.NoError(t, err)

	ixs := plan.Instructions()
	require.Len(t, ixs, 2)

	create := ixs[0]
	assert.Equal(t, consts.SystemProgram, types.PubkeyFromCommon(create.ProgramID))
	record := types.PubkeyFromCommon(create.Accounts[1].PubKey)
	// lamports [4:12] / space [12:20] / owner [20:52]
	assert.Equal(t, chaintest.Rent(layout.UserStakeInfoV3Span), binary.LittleEndian.Uint64(create.Data[4:12]))
	assert.Equal(t, uint64(layout.UserStakeInfoV3Span), binary.LittleEndian.Uint64(create.Data[12:20]))
	assert.Equal(t, farm.ProgramID[:], create.Data[20:52])
	assert.Contains(t, plan.SignerKeys(), record)

	deposit := ixs[1]
	assert.Equal(t, farm.ProgramID, types.PubkeyFromCommon(deposit.ProgramID))
	assert.Equal(t, byte(1), deposit.Data[0])
	assert.Equal(t, uint64(10*unit), amountOf(deposit))
	require.Len(t, deposit.Accounts, 10)
	assert.Equal(t, record, types.PubkeyFromCommon(deposit.Accounts[2].PubKey))
	assert.Equal(t, userRay, types.PubkeyFromCommon(deposit.Accounts[4].PubKey))
	// 单币质押的奖励账户与质押账户相同
	assert.Equal(t, userRay, types.PubkeyFromCommon(deposit.Accounts[6].PubKey))
}

func TestStakeFusionUsesExistingRecord(t *testing.T) {
	e := newTestEnv()
	farm := e.farm("RAY-USDC", 5)
	e.chain.SetATA(e.key, farm.Lp.Mint, 10*unit)
	userUsdc := e.chain.SetATA(e.key, registrytest.USDC.Mint, 0)
	ledger := e.setLedger(farm, e.key, 5*unit)

	plan, err := e.planner.PlanStakeAction(context.Background(), Request{
		Action: ActionStake, Family: Fusion, FarmName: "RAY-USDC", FarmVersion: 5, Owner: e.owner, Amount: "1",
	})
	require.NoError(t, err)

	ixs := plan.Instructions()
	// RAY 奖励账户不存在 -> 创建
	require.Len(t, ixs, 2)
	assert.Equal(t, consts.AssociatedTokenProgram, types.PubkeyFromCommon(ixs[0].ProgramID))

	deposit := ixs[1]
	require.Len(t, deposit.Accounts, 12)
	assert.Equal(t, ledger, types.PubkeyFromCommon(deposit.Accounts[2].PubKey))
	assert.Equal(t, userUsdc, types.PubkeyFromCommon(deposit.Accounts[10].PubKey))
	assert.Equal(t, farm.PoolRewardTokenAccountB, types.PubkeyFromCommon(deposit.Accounts[11].PubKey))
	assert.Len(t, plan.SignerKeys(), 1)
}

func TestHarvestForcesZeroAmount(t *testing.T) {
	e := newTestEnv()
	farm := e.farm("RAY", 3)
	e.chain.SetATA(e.key, farm.Lp.Mint, 0)
	e.setLedger(farm, e.key, 5*unit)

	plan, err := e.planner.PlanStakeAction(context.Background(), Request{
		Action: ActionHarvest, Family: SingleAsset, Owner: e.owner, Amount: "3",
	})
	require.NoError(t, err)
	require.Equal(t, 1, plan.Len())
	ix := plan.Instructions()[0]
	assert.Equal(t, byte(1), ix.Data[0])
	assert.Equal(t, uint64(0), amountOf(ix))
}

func TestUnstake(t *testing.T) {
	e := newTestEnv()
	farm := e.farm("RAY-SOL", 3)
	e.chain.SetATA(e.key, farm.Lp.Mint, 0)
	e.chain.SetATA(e.key, farm.Reward.Mint, 0)
	e.setLedger(farm, e.key, 5*unit)
	ctx := context.Background()

	req := Request{Action: ActionUnstake, Family: Fusion, FarmName: "RAY-SOL", FarmVersion: 3, Owner: e.owner, Amount: "2"}
	_, err := e.planner.PlanStakeAction(ctx, req)
	// RAY-SOL v3 不是双奖励 farm
	assert.ErrorIs(t, err, xerr.ErrValidation)

	// 改用单奖励 farm 的默认 RAY
	rayFarm := e.farm("RAY", 3)
	e.setLedger(rayFarm, e.key, 5*unit)
	plan, err := e.planner.PlanStakeAction(ctx, Request{Action: ActionUnstake, Family: SingleAsset, Owner: e.owner, Amount: "2"})
	require.NoError(t, err)
	ix := plan.Instructions()[plan.Len()-1]
	assert.Equal(t, byte(2), ix.Data[0])
	assert.Equal(t, uint64(2*unit), amountOf(ix))

	_, err = e.planner.PlanStakeAction(ctx, Request{Action: ActionUnstake, Family: SingleAsset, Owner: e.owner, Amount: "6"})
	var ib *xerr.InsufficientBalanceError
	require.True(t, errors.As(err, &ib))
	assert.True(t, ib.Existing.Equal(decimal.NewFromInt(5)))
	assert.True(t, ib.Required.Equal(decimal.NewFromInt(6)))
}

func TestHarvestAndUnstakeRequireRecord(t *testing.T) {
	e := newTestEnv()
	farm := e.farm("RAY", 3)
	e.chain.SetATA(e.key, farm.Lp.Mint, 100*unit)
	// 其他人的记录不应被匹配
	e.setLedger(farm, registrytest.Key("someone-else"), 5*unit)
	ctx := context.Background()

	plan, err := e.planner.PlanStakeAction(ctx, Request{Action: ActionHarvest, Family: SingleAsset, Owner: e.owner})
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, xerr.ErrValidation)

	_, err = e.planner.PlanStakeAction(ctx, Request{Action: ActionUnstake, Family: SingleAsset, Owner: e.owner, Amount: "1"})
	assert.ErrorIs(t, err, xerr.ErrValidation)
}

func TestStakeValidation(t *testing.T) {
	e := newTestEnv()
	farm := e.farm("RAY", 3)
	e.chain.SetATA(e.key, farm.Lp.Mint, 5*unit)
	ctx := context.Background()

	_, err := e.planner.PlanStakeAction(ctx, Request{Action: ActionStake, Family: SingleAsset, Owner: e.owner, Amount: "10"})
	assert.ErrorIs(t, err, xerr.ErrInsufficientBalance)

	_, err = e.planner.PlanStakeAction(ctx, Request{Action: ActionStake, Family: SingleAsset, Owner: e.owner, Amount: "0"})
	assert.ErrorIs(t, err, xerr.ErrValidation)

	_, err = e.planner.PlanStakeAction(ctx, Request{Action: ActionStake, Family: SingleAsset, Owner: e.owner, Amount: "abc"})
	assert.ErrorIs(t, err, xerr.ErrValidation)

	_, err = e.planner.PlanStakeAction(ctx, Request{Action: ActionStake, Family: Fusion, Owner: e.owner, Amount: "1"})
	assert.ErrorIs(t, err, xerr.ErrValidation)

	_, err = e.planner.PlanStakeAction(ctx, Request{Action: ActionStake, Family: Fusion, FarmName: "NOPE", FarmVersion: 5, Owner: e.owner, Amount: "1"})
	assert.ErrorIs(t, err, xerr.ErrPoolNotFound)

	_, err = e.planner.PlanStakeAction(ctx, Request{Action: Action(9), Family: SingleAsset, Owner: e.owner, Amount: "1"})
	assert.ErrorIs(t, err, xerr.ErrValidation)
}

func TestParseProgramFamily(t *testing.T) {
	f, err := ParseProgramFamily("ray")
	require.NoError(t, err)
	assert.Equal(t, SingleAsset, f)
	f, err = ParseProgramFamily("POOL")
	require.NoError(t, err)
	assert.Equal(t, Fusion, f)
	_, err = ParseProgramFamily("lp")
	assert.ErrorIs(t, err, xerr.ErrValidation)
}

func TestLookupAccount(t *testing.T) {
	e := newTestEnv()
	farm := e.farm("RAY", 3)
	ctx := context.Background()

	data, err := layout.EncodeStakeInfoV3(layout.StakeInfoV3{State: 1, RewardPerBlock: 7})
	require.NoError(t, err)
	e.chain.SetAccount(farm.PoolID, farm.ProgramID, 0, data)

	got, err := LookupAccount(ctx, e.chain, farm.PoolID)
	require.NoError(t, err)
	assert.Equal(t, layout.AccountKindFarm, got.Kind)
	assert.Equal(t, uint64(7), got.Farm.RewardPerBlock)

	ledger := e.setLedger(farm, e.key, 3)
	got, err = LookupAccount(ctx, e.chain, ledger)
	require.NoError(t, err)
	assert.Equal(t, layout.AccountKindStaker, got.Kind)
	assert.Equal(t, e.key, got.Staker.Owner)

	_, err = LookupAccount(ctx, e.chain, registrytest.Key("missing"))
	assert.ErrorIs(t, err, xerr.ErrValidation)

	e.chain.SetAccount(registrytest.Key("foreign"), consts.SystemProgram, 0, data)
	_, err = LookupAccount(ctx, e.chain, registrytest.Key("foreign"))
	assert.ErrorIs(t, err, xerr.ErrUnknownLayout)
}
