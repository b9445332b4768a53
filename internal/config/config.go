package config

import (
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/conf"

	"ray-liquidity-sol/internal/logic/submit"
	"ray-liquidity-sol/internal/mq"
	"ray-liquidity-sol/internal/pkg/logger"
)

type LogConfig struct {
	Format   string `json:"format,default=console,options=console|json"`      // 日志格式
	LogDir   string `json:"log_dir,optional"`                                 // 日志目录，为空时只输出到 stdout
	Level    string `json:"level,default=info,options=debug|info|warn|error"` // 日志级别
	Compress bool   `json:"compress,optional"`                                // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// RpcConfig Solana RPC 节点配置
type RpcConfig struct {
	Endpoint  string `json:"endpoint"`                            // 例如 https://api.mainnet-beta.solana.com
	TimeoutMs int    `json:"timeout_ms,default=10000,range=[1:]"` // 单次 RPC 调用超时（毫秒）
}

func (c *RpcConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// KafkaProducerConfig 表示 Kafka 生产者相关配置
type KafkaProducerConfig struct {
	Brokers       string `json:"brokers,optional"`                        // Kafka broker 地址，多个用英文逗号分隔；为空时不发布
	BatchSize     int    `json:"batch_size,optional,range=[0:]"`          // 批处理大小（单位字节）
	LingerMs      int    `json:"linger_ms,optional,range=[0:]"`           // 批处理最大延迟（毫秒）
	ClientID      string `json:"client_id,optional"`                      // client.id 前缀
	SendTimeoutMs int    `json:"send_timeout_ms,default=5000,range=[1:]"` // 单条消息发送并等待 ack 的超时时间

	SecurityProtocol string `json:"security_protocol,optional"` // 生产环境建议 SASL_SSL
	SaslMechanism    string `json:"sasl_mechanism,optional"`
	SaslUsername     string `json:"sasl_username,optional"`
	SaslPassword     string `json:"sasl_password,optional"`

	Topics struct {
		Yield string `json:"yield,optional"` // 收益记录 topic
	} `json:"topics"`

	Partitions struct {
		Yield int `json:"yield,default=1,range=[1:]"` // yield topic 的分区数
	} `json:"partitions"`
}

func (c *KafkaProducerConfig) ToKafkaOption() mq.KafkaProducerOption {
	return mq.KafkaProducerOption{
		Brokers:   c.Brokers,
		BatchSize: c.BatchSize,
		LingerMs:  c.LingerMs,
		ClientID:  c.ClientID,

		SecurityProtocol: c.SecurityProtocol,
		SaslMechanism:    c.SaslMechanism,
		SaslUsername:     c.SaslUsername,
		SaslPassword:     c.SaslPassword,

		Topics: []mq.TopicSpec{
			{Topic: c.Topics.Yield, Partitions: c.Partitions.Yield},
		},
	}
}

func (c *KafkaProducerConfig) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutMs) * time.Millisecond
}

// RedisConfig 报告缓存配置，Addr 为空时不启用缓存
type RedisConfig struct {
	Addr     string `json:"addr,optional"`
	Password string `json:"password,optional"`
	DB       int    `json:"db,optional,range=[0:]"`
	Prefix   string `json:"prefix,optional"`                // key 前缀
	TTLSec   int    `json:"ttl_sec,default=600,range=[1:]"` // 报告过期时间（秒）
}

func (c *RedisConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// YieldConfig 收益计算服务配置
type YieldConfig struct {
	IntervalSec    int    `json:"interval_sec,default=60,range=[1:]"`        // 计算周期（秒）
	Workers        int    `json:"workers,default=4,range=[1:]"`              // 并发计算的 worker 数
	FetchTimeoutMs int    `json:"fetch_timeout_ms,default=20000,range=[1:]"` // 一轮链上数据拉取的总超时
	RegistryFile   string `json:"registry_file"`                             // 池子与 farm 注册表
	PriceFile      string `json:"price_file,optional"`                       // 代币价格文件，每轮重新加载
	PairStatsFile  string `json:"pair_stats_file,optional"`                  // 交易对统计（TVL / 手续费年化）
}

func (c *YieldConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSec) * time.Second
}

func (c *YieldConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMs) * time.Millisecond
}

// SubmitConfig 交易提交配置
type SubmitConfig struct {
	MaxRetries        int `json:"max_retries,default=0,range=[0:]"`          // 发送失败的重试次数，0 表示不重试
	BaseDelayMs       int `json:"base_delay_ms,optional,range=[0:]"`         // 指数退避的初始间隔
	PollIntervalMs    int `json:"poll_interval_ms,default=500,range=[1:]"`   // 查询确认状态的间隔
	ConfirmTimeoutSec int `json:"confirm_timeout_sec,default=60,range=[1:]"` // 等待确认的总时限
}

func (c *SubmitConfig) ToSubmitOptions() submit.Options {
	return submit.Options{
		Retry: submit.RetryPolicy{
			MaxRetries: c.MaxRetries,
			BaseDelay:  time.Duration(c.BaseDelayMs) * time.Millisecond,
		},
		PollInterval:   time.Duration(c.PollIntervalMs) * time.Millisecond,
		ConfirmTimeout: time.Duration(c.ConfirmTimeoutSec) * time.Second,
	}
}

// Config 是主配置结构体，yieldd 与 raycli 共用
type Config struct {
	LogConf           LogConfig           `json:"logger"`         // 日志配置
	RpcConf           RpcConfig           `json:"rpc"`            // RPC 配置
	KafkaProducerConf KafkaProducerConfig `json:"kafka_producer"` // Kafka 生产者配置
	RedisConf         RedisConfig         `json:"redis"`          // Redis 配置
	YieldConf         YieldConfig         `json:"yield"`          // 收益计算配置
	SubmitConf        SubmitConfig        `json:"submit"`         // 交易提交配置
}

// Load 读取 YAML 配置；默认值、取值范围与必填项由 go-zero 按 json tag 处理
func Load(path string, c *Config) error {
	if err := conf.Load(path, c); err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	return nil
}

// MustLoad 加载失败直接退出
func MustLoad(path string, c *Config) {
	conf.MustLoad(path, c)
}
