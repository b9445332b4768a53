package txplan

import (
	"testing"

	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ray-liquidity-sol/internal/chain/chaintest"
	"ray-liquidity-sol/internal/consts"
	"ray-liquidity-sol/internal/types"
)

// SPL token CloseAccount 指令标识
const closeAccountTag = 9

func memo(owner sdktypes.Account, tag byte) sdktypes.Instruction {
	return sdktypes.Instruction{
		ProgramID: consts.SystemProgram.ToCommon(),
		Accounts:  []sdktypes.AccountMeta{{PubKey: owner.PublicKey, IsSigner: true, IsWritable: true}},
		Data:      []byte{tag},
	}
}

func TestBuildOrdersStages(t *testing.T) {
	owner := sdktypes.NewAccount()
	b := NewBuilder(owner)

	b.AddMain(memo(owner, 0xAA))
	b.AddCleanup(memo(owner, 0xCC))
	mint := types.Pubkey{1}
	b.CreateATA(mint, types.Pubkey{2})
	wrapped := b.WrapNative(5_000_000)

	plan, err := b.Build()
	require.NoError(t, err)

	ixs := plan.Instructions()
	// wrap(create + init) -> provision(ata) -> main -> cleanup(手动 + close)
	require.Len(t, ixs, 6)
	assert.Equal(t, consts.SystemProgram, types.PubkeyFromCommon(ixs[0].ProgramID))
	assert.Equal(t, consts.TokenProgram, types.PubkeyFromCommon(ixs[1].ProgramID))
	assert.Equal(t, consts.AssociatedTokenProgram, types.PubkeyFromCommon(ixs[2].ProgramID))
	assert.Equal(t, []byte{0xAA}, ixs[3].Data)
	assert.Equal(t, []byte{0xCC}, ixs[4].Data)

	last := ixs[5]
	assert.Equal(t, consts.TokenProgram, types.PubkeyFromCommon(last.ProgramID))
	assert.Equal(t, byte(closeAccountTag), last.Data[0])
	assert.Equal(t, wrapped, types.PubkeyFromCommon(last.Accounts[0].PubKey))
	assert.Equal(t, types.PubkeyFromCommon(owner.PublicKey), types.PubkeyFromCommon(last.Accounts[1].PubKey))

	assert.Equal(t, []types.Pubkey{wrapped}, plan.WrappedAccounts())
	keys := plan.SignerKeys()
	require.Len(t, keys, 2)
	assert.Equal(t, plan.FeePayer(), keys[0])
	assert.Equal(t, wrapped, keys[1])
}

func TestBuildIsOneShot(t *testing.T) {
	owner := sdktypes.NewAccount()
	b := NewBuilder(owner)
	b.AddMain(memo(owner, 1))

	_, err := b.Build()
	require.NoError(t, err)
	_, err = b.Build()
	assert.ErrorIs(t, err, ErrBuilderConsumed)
}

func TestBuildRequiresMainInstruction(t *testing.T) {
	b := NewBuilder(sdktypes.NewAccount())
	b.WrapNative(1)
	_, err := b.Build()
	assert.Error(t, err)
}

func TestPlanAccessorsReturnCopies(t *testing.T) {
	owner := sdktypes.NewAccount()
	b := NewBuilder(owner)
	b.AddMain(memo(owner, 7))
	plan, err := b.Build()
	require.NoError(t, err)

	ixs := plan.Instructions()
	ixs[0].Data[0] = 99
	ixs[0].Accounts[0].IsSigner = false

	again := plan.Instructions()
	assert.Equal(t, byte(7), again[0].Data[0])
	assert.True(t, again[0].Accounts[0].IsSigner)
}

func TestPlanTransaction(t *testing.T) {
	owner := sdktypes.NewAccount()
	b := NewBuilder(owner)
	b.AddMain(memo(owner, 7))
	plan, err := b.Build()
	require.NoError(t, err)

	_, err = plan.Transaction("not-a-hash")
	assert.Error(t, err)

	tx, err := plan.Transaction(chaintest.Blockhash)
	require.NoError(t, err)
	assert.Len(t, tx.Signatures, 1)
}

func TestCreateATAOncePerAddress(t *testing.T) {
	owner := sdktypes.NewAccount()
	b := NewBuilder(owner)
	mint, ata := types.Pubkey{1}, types.Pubkey{2}
	b.CreateATA(mint, ata)
	b.CreateATA(mint, ata)
	b.AddMain(memo(owner, 1))

	plan, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Len())
}
