package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/jsonx"

	"ray-liquidity-sol/internal/config"
	"ray-liquidity-sol/internal/pkg/logger"
	"ray-liquidity-sol/internal/svc"
)

// app 单次命令需要的资源
type app struct {
	sc     *svc.ServiceContext
	ctx    context.Context
	stop   context.CancelFunc
	dryRun bool
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var c config.Config
	if err := config.Load(cfgFile, &c); err != nil {
		return nil, err
	}
	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		return nil, err
	}

	sc, err := svc.NewServiceContext(c)
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return &app{sc: sc, ctx: ctx, stop: stop, dryRun: dryRun}, nil
}

func (a *app) Close() {
	a.stop()
	a.sc.Close()
	logger.Sync()
}

// loadSigner 读取 solana-keygen 生成的 JSON 数组格式私钥
func loadSigner(cmd *cobra.Command) (sdktypes.Account, error) {
	path, _ := cmd.Flags().GetString("keypair")
	if path == "" {
		return sdktypes.Account{}, fmt.Errorf("--keypair is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return sdktypes.Account{}, fmt.Errorf("read keypair: %w", err)
	}
	return parseKeypair(data)
}

func parseKeypair(data []byte) (sdktypes.Account, error) {
	var ints []int
	if err := jsonx.Unmarshal(data, &ints); err != nil {
		return sdktypes.Account{}, fmt.Errorf("parse keypair: %w", err)
	}
	if len(ints) != 64 {
		return sdktypes.Account{}, fmt.Errorf("keypair must contain 64 bytes, got %d", len(ints))
	}
	key := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return sdktypes.Account{}, fmt.Errorf("keypair byte %d out of range: %d", i, v)
		}
		key[i] = byte(v)
	}
	return sdktypes.AccountFromBytes(key)
}
