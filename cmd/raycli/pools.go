package main

import (
	"github.com/spf13/cobra"

	"ray-liquidity-sol/internal/logic/stake"
	"ray-liquidity-sol/internal/registry"
	"ray-liquidity-sol/internal/types"
)

func newPoolsCmd() *cobra.Command {
	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "Query the pool and farm registry",
	}

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search farms by name, LP name or reward symbol",
		RunE:  runPoolsSearch,
	}
	searchCmd.Flags().String("name", "", "farm name, e.g. RAY-USDC")
	searchCmd.Flags().String("lp", "", "LP pair name")
	searchCmd.Flags().String("reward", "", "reward token symbol")

	poolsCmd.AddCommand(searchCmd)
	return poolsCmd
}

func runPoolsSearch(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var q registry.SearchQuery
	q.FromName, _ = cmd.Flags().GetString("name")
	q.FromLp, _ = cmd.Flags().GetString("lp")
	q.FromReward, _ = cmd.Flags().GetString("reward")

	res, err := a.sc.Registry.Search(q)
	if err != nil {
		return err
	}
	return printYAML(cmd.OutOrStdout(), viewSearch(res))
}

func newStakeAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stake-account <address>",
		Short: "Decode a farm state or staker ledger account",
		Args:  cobra.ExactArgs(1),
		RunE:  runStakeAccount,
	}
}

func runStakeAccount(cmd *cobra.Command, args []string) error {
	address, err := types.TryPubkeyFromBase58(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	decoded, err := stake.LookupAccount(a.ctx, a.sc.Rpc, address)
	if err != nil {
		return err
	}
	return printYAML(cmd.OutOrStdout(), viewStakeAccount(decoded))
}
