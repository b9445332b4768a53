package mq

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"ray-liquidity-sol/internal/logic/yield"
	"ray-liquidity-sol/internal/pkg/utils"
	"ray-liquidity-sol/internal/registry/registrytest"
)

func sampleRecord(name string) yield.PoolYieldRecord {
	return yield.PoolYieldRecord{
		FarmID:        registrytest.Key("farm:" + name),
		Name:          name,
		FarmVersion:   5,
		PoolVersion:   4,
		Fusion:        true,
		RewardSymbol:  "RAY",
		RewardBSymbol: "USDC",
		RewardPrice:   decimal.RequireFromString("2.5"),
		RewardBPrice:  decimal.NewNullDecimal(decimal.NewFromInt(1)),
		APR:           decimal.RequireFromString("12.34"),
		APRB:          decimal.RequireFromString("1.10"),
		APRTotal:      decimal.RequireFromString("13.44"),
		FinalAPR:      decimal.RequireFromString("13.44"),
		DualYield:     true,
		Status:        yield.StatusActive,
	}
}

func TestEncodeYieldRecord(t *testing.T) {
	rec := sampleRecord("RAY-USDC")
	data, err := EncodeYieldRecord(&rec)
	require.NoError(t, err)

	msg, err := DecodeYieldRecord(data)
	require.NoError(t, err)
	fields := msg.GetFields()
	assert.Equal(t, rec.FarmID.String(), fields["farmId"].GetStringValue())
	assert.Equal(t, "12.34", fields["apr"].GetStringValue())
	assert.Equal(t, "USDC", fields["rewardBSymbol"].GetStringValue())
	assert.Equal(t, "1", fields["rewardBPrice"].GetStringValue())
	assert.Equal(t, float64(5), fields["farmVersion"].GetNumberValue())
	assert.True(t, fields["dualYield"].GetBoolValue())
	assert.Equal(t, "active", fields["status"].GetStringValue())
	// 未提供的外部统计编码为 null
	_, isNull := fields["tvl"].GetKind().(*structpb.Value_NullValue)
	assert.True(t, isNull)
}

func TestDecodeYieldRecordRejectsOtherEvents(t *testing.T) {
	rec := sampleRecord("RAY-USDC")
	data, err := EncodeYieldRecord(&rec)
	require.NoError(t, err)
	data[0] = 9

	_, err = DecodeYieldRecord(data)
	assert.Error(t, err)
}

func TestBuildYieldJobsPartitionsByFarm(t *testing.T) {
	records := []yield.PoolYieldRecord{sampleRecord("A"), sampleRecord("B"), sampleRecord("A")}
	jobs, err := BuildYieldJobs("yield", 16, records)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	for i, job := range jobs {
		id := records[i].FarmID
		assert.Equal(t, "yield", job.Topic)
		assert.Equal(t, id[:], job.Key)
		assert.Equal(t, int32(utils.PartitionHashBytes(id[:], 16)), job.Partition)
	}
	assert.Equal(t, jobs[0].Partition, jobs[2].Partition)
}
