package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"ray-liquidity-sol/internal/logic/yield"
	"ray-liquidity-sol/internal/pkg/logger"
	"ray-liquidity-sol/internal/pkg/utils"
)

// YieldPublisher 将收益记录按 farm 分区写入 Kafka，同一 farm 始终落在同一分区
type YieldPublisher struct {
	producer   *kafka.Producer
	topic      string
	partitions int
	timeout    time.Duration
}

func NewYieldPublisher(producer *kafka.Producer, topic string, partitions int, perMessageTimeout time.Duration) *YieldPublisher {
	if partitions <= 0 {
		partitions = 1
	}
	if perMessageTimeout <= 0 {
		perMessageTimeout = 5 * time.Second
	}
	return &YieldPublisher{
		producer:   producer,
		topic:      topic,
		partitions: partitions,
		timeout:    perMessageTimeout,
	}
}

// BuildYieldJobs 编码记录并计算分区
func BuildYieldJobs(topic string, partitions int, records []yield.PoolYieldRecord) ([]*KafkaJob, error) {
	jobs := make([]*KafkaJob, 0, len(records))
	for i := range records {
		rec := &records[i]
		value, err := EncodeYieldRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("encode farm %s: %w", rec.FarmID, err)
		}
		jobs = append(jobs, &KafkaJob{
			Topic:     topic,
			Partition: int32(utils.PartitionHashBytes(rec.FarmID[:], uint32(partitions))),
			Key:       rec.FarmID[:],
			Value:     value,
		})
	}
	return jobs, nil
}

// Publish 发送全部记录，部分失败时返回错误但已成功的消息不回滚
func (p *YieldPublisher) Publish(ctx context.Context, records []yield.PoolYieldRecord) error {
	if len(records) == 0 {
		return nil
	}
	jobs, err := BuildYieldJobs(p.topic, p.partitions, records)
	if err != nil {
		return err
	}

	start := time.Now()
	ok, failed := SendKafkaJobs(ctx, p.producer, jobs, p.timeout)
	logger.Infof("[YieldPublisher] 发送完成: topic=%s, ok=%d, failed=%d, 耗时=%v", p.topic, len(ok), len(failed), time.Since(start))
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d yield records failed, first: %w", len(failed), len(jobs), failed[0].Err)
	}
	return nil
}
