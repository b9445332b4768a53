package svc

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/redis/go-redis/v9"

	"ray-liquidity-sol/internal/cache"
	"ray-liquidity-sol/internal/chain"
	"ray-liquidity-sol/internal/config"
	"ray-liquidity-sol/internal/logic/liquidity"
	"ray-liquidity-sol/internal/logic/stake"
	"ray-liquidity-sol/internal/logic/submit"
	"ray-liquidity-sol/internal/logic/yield"
	"ray-liquidity-sol/internal/mq"
	"ray-liquidity-sol/internal/pkg/logger"
	"ray-liquidity-sol/internal/registry"
	"ray-liquidity-sol/internal/store"
)

// ServiceContext 包含 yieldd 与 raycli 共用的资源
type ServiceContext struct {
	Config    config.Config
	Registry  *registry.StaticRegistry
	Rpc       *chain.RpcClient
	Prices    *cache.PriceBook
	Engine    *yield.Engine
	Liquidity *liquidity.Planner
	Stake     *stake.Planner
	Submitter *submit.RpcSubmitter

	// 以下由 InitOutputs 创建，未配置时为 nil
	Producer    *kafka.Producer
	Publisher   *mq.YieldPublisher
	Redis       *redis.Client
	ReportStore *store.RedisReportStore
}

// NewServiceContext 创建基础资源：注册表、RPC、价格表与各业务组件
func NewServiceContext(c config.Config) (*ServiceContext, error) {
	// 1. 注册表
	reg, err := registry.LoadFile(c.YieldConf.RegistryFile)
	if err != nil {
		logger.Errorf("注册表加载失败: %v", err)
		return nil, err
	}

	// 2. RPC 客户端
	rpc, err := chain.NewRpcClient(c.RpcConf.Endpoint, c.RpcConf.Timeout())
	if err != nil {
		logger.Errorf("RPC 客户端初始化失败: %v", err)
		return nil, err
	}

	// 3. 价格表，文件缺失时留空，由收益计算报告缺价
	prices := cache.NewPriceBook()
	if c.YieldConf.PriceFile != "" {
		if n, err := prices.LoadFile(c.YieldConf.PriceFile); err != nil {
			logger.Warnf("价格文件加载失败: %v", err)
		} else {
			logger.Infof("价格文件加载完成: %d 个代币", n)
		}
	}

	ctx := &ServiceContext{
		Config:    c,
		Registry:  reg,
		Rpc:       rpc,
		Prices:    prices,
		Engine:    yield.NewEngine(c.YieldConf.Workers),
		Liquidity: liquidity.NewPlanner(reg, rpc),
		Stake:     stake.NewPlanner(reg, rpc),
		Submitter: submit.NewRpcSubmitter(rpc, c.SubmitConf.ToSubmitOptions()),
	}
	logger.Infof("服务上下文初始化完成: pools=%d, farms=%d", len(reg.Pools()), len(reg.Farms()))
	return ctx, nil
}

// InitOutputs 创建 Kafka 生产者与 Redis 缓存，只有 yieldd 需要
func (ctx *ServiceContext) InitOutputs() error {
	c := ctx.Config

	// 1. Kafka 生产者
	if c.KafkaProducerConf.Brokers != "" {
		producer, err := mq.NewKafkaProducer(c.KafkaProducerConf.ToKafkaOption())
		if err != nil {
			logger.Errorf("Kafka producer 初始化失败: %v", err)
			return err
		}
		ctx.Producer = producer
		ctx.Publisher = mq.NewYieldPublisher(producer, c.KafkaProducerConf.Topics.Yield,
			c.KafkaProducerConf.Partitions.Yield, c.KafkaProducerConf.SendTimeout())
	} else {
		logger.Warnf("未配置 Kafka brokers，收益记录不会发布")
	}

	// 2. Redis 报告缓存
	if c.RedisConf.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.RedisConf.Addr,
			Password: c.RedisConf.Password,
			DB:       c.RedisConf.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			ctx.closeProducer()
			return fmt.Errorf("redis ping %s: %w", c.RedisConf.Addr, err)
		}
		ctx.Redis = rdb
		ctx.ReportStore = store.NewRedisReportStore(rdb, c.RedisConf.Prefix, c.RedisConf.TTL())
	} else {
		logger.Warnf("未配置 Redis，收益报告不会缓存")
	}
	return nil
}

func (ctx *ServiceContext) closeProducer() {
	if ctx.Producer != nil {
		ctx.Producer.Flush(5000)
		ctx.Producer.Close()
		ctx.Producer = nil
	}
}

// Close 关闭服务上下文中的资源
func (ctx *ServiceContext) Close() {
	ctx.closeProducer()
	if ctx.Redis != nil {
		_ = ctx.Redis.Close()
	}
}
