package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"ray-liquidity-sol/internal/pkg/logger"
	"ray-liquidity-sol/internal/pkg/utils"
)

const (
	defaultBatchSize = 32 * 1024
	defaultLingerMs  = 5
	defaultClientID  = "ray-yield"

	adminTimeout = 10 * time.Second
)

// TopicSpec 需要确保存在的 topic
type TopicSpec struct {
	Topic      string
	Partitions int
}

type KafkaProducerOption struct {
	Brokers   string // 多个用英文逗号分隔
	BatchSize int    // 字节
	LingerMs  int
	ClientID  string // client.id 前缀，实际值追加本机 IP

	// 为空时使用 PLAINTEXT
	SecurityProtocol string // SASL_SSL / SASL_PLAINTEXT / SSL
	SaslMechanism    string // PLAIN / SCRAM-SHA-256 / SCRAM-SHA-512
	SaslUsername     string
	SaslPassword     string

	Topics []TopicSpec
}

// NewKafkaProducer 确保 topic 存在后创建幂等生产者
func NewKafkaProducer(cfg KafkaProducerOption) (*kafka.Producer, error) {
	if err := ensureTopics(cfg); err != nil {
		return nil, err
	}
	producer, err := kafka.NewProducer(producerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	return producer, nil
}

// ensureTopics 创建缺失的 topic，多 broker 时副本数为 2
func ensureTopics(cfg KafkaProducerOption) error {
	adminConf := &kafka.ConfigMap{"bootstrap.servers": cfg.Brokers}
	applySecurity(adminConf, cfg)
	adminClient, err := kafka.NewAdminClient(adminConf)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	meta, err := adminClient.GetMetadata(nil, true, int(adminTimeout/time.Millisecond))
	if err != nil {
		return fmt.Errorf("failed to get metadata: %w", err)
	}

	replicationFactor := 1
	if len(meta.Brokers) > 1 {
		replicationFactor = 2
	}

	var missing []kafka.TopicSpecification
	for _, spec := range cfg.Topics {
		if spec.Topic == "" {
			continue
		}
		if _, exists := meta.Topics[spec.Topic]; exists {
			continue
		}
		missing = append(missing, kafka.TopicSpecification{
			Topic:             spec.Topic,
			NumPartitions:     max(spec.Partitions, 1),
			ReplicationFactor: replicationFactor,
		})
	}
	if len(missing) == 0 {
		return nil
	}

	logger.Infof("[mq] 创建 topic: %d 个, brokers=%d, replication=%d", len(missing), len(meta.Brokers), replicationFactor)
	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()
	results, err := adminClient.CreateTopics(ctx, missing)
	if err != nil {
		return fmt.Errorf("failed to create topics: %w", err)
	}
	for _, result := range results {
		// 并发启动时其他实例可能已创建
		if code := result.Error.Code(); code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %w", result.Topic, result.Error)
		}
	}
	return nil
}

func producerConfig(cfg KafkaProducerOption) *kafka.ConfigMap {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	lingerMs := cfg.LingerMs
	if lingerMs < 0 {
		lingerMs = defaultLingerMs
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = defaultClientID
	}
	localIP, _ := utils.GetLocalIP()
	if localIP == "" {
		localIP = "unknown"
	}

	conf := &kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"client.id":         fmt.Sprintf("%s-%s", clientID, localIP),

		// 幂等写入，同一 farm 的记录在分区内保持顺序
		"acks":                                  "all",
		"enable.idempotence":                    true,
		"max.in.flight.requests.per.connection": 5,

		"delivery.timeout.ms": 30000,
		"request.timeout.ms":  30000,
		"retries":             5,
		"retry.backoff.ms":    100,

		"batch.size":        batchSize,
		"linger.ms":         lingerMs,
		"compression.type":  "none",
		"message.max.bytes": 2 * 1024 * 1024,
	}
	applySecurity(conf, cfg)
	return conf
}

func applySecurity(conf *kafka.ConfigMap, cfg KafkaProducerOption) {
	if cfg.SecurityProtocol == "" {
		return
	}
	_ = conf.SetKey("security.protocol", cfg.SecurityProtocol)
	if cfg.SaslMechanism != "" {
		_ = conf.SetKey("sasl.mechanisms", cfg.SaslMechanism)
		_ = conf.SetKey("sasl.username", cfg.SaslUsername)
		_ = conf.SetKey("sasl.password", cfg.SaslPassword)
	}
}
