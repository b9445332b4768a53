package main

import (
	"github.com/spf13/cobra"

	"ray-liquidity-sol/internal/service"
)

func newYieldCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "yield",
		Short: "Compute APR for every registered farm once",
		RunE:  runYield,
	}
}

func runYield(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	c := a.sc.Config.YieldConf
	s := service.NewYieldSyncService(
		service.NewFarmStateLoader(a.sc.Registry, a.sc.Rpc),
		a.sc.Engine,
		a.sc.Prices,
		nil,
		nil,
		service.YieldSyncOption{
			FetchTimeout:  c.FetchTimeout(),
			PriceFile:     c.PriceFile,
			PairStatsFile: c.PairStatsFile,
		},
	)
	defer s.Stop()

	report, err := s.RunOnce(a.ctx)
	if err != nil {
		return err
	}
	return printYAML(cmd.OutOrStdout(), viewYield(report))
}
