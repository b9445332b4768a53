package main

import (
	"flag"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	zerosvc "github.com/zeromicro/go-zero/core/service"

	"ray-liquidity-sol/internal/config"
	"ray-liquidity-sol/internal/pkg/logger"
	"ray-liquidity-sol/internal/service"
	"ray-liquidity-sol/internal/svc"
)

var configFile = flag.String("f", "etc/config.yaml", "the config file")

func main() {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
		}
		logger.Sync()
	}()

	flag.Parse()

	var c config.Config
	config.MustLoad(*configFile, &c)
	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		panic(err)
	}

	serviceContext, err := svc.NewServiceContext(c)
	if err != nil {
		panic(err)
	}
	if err := serviceContext.InitOutputs(); err != nil {
		panic(err)
	}
	defer serviceContext.Close()

	var publisher service.RecordPublisher
	if serviceContext.Publisher != nil {
		publisher = serviceContext.Publisher
	}
	var reportCache service.ReportCache
	if serviceContext.ReportStore != nil {
		reportCache = serviceContext.ReportStore
	}

	yieldService := service.NewYieldSyncService(
		service.NewFarmStateLoader(serviceContext.Registry, serviceContext.Rpc),
		serviceContext.Engine,
		serviceContext.Prices,
		publisher,
		reportCache,
		service.YieldSyncOption{
			Interval:      c.YieldConf.Interval(),
			FetchTimeout:  c.YieldConf.FetchTimeout(),
			PriceFile:     c.YieldConf.PriceFile,
			PairStatsFile: c.YieldConf.PairStatsFile,
		},
	)

	sg := zerosvc.NewServiceGroup()
	sg.Add(yieldService)

	logger.Infof("Starting yield sync service, interval=%v", c.YieldConf.Interval())

	// 启动服务
	go sg.Start()

	// 等待退出信号
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Infof("Shutting down services...")
	sg.Stop()
}
