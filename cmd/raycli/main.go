package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "raycli",
		Short:        "Raydium liquidity, farm and yield operator tool",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "etc/config.yaml", "config file path")
	root.PersistentFlags().String("keypair", "", "signer keypair JSON file (solana-keygen format)")
	root.PersistentFlags().Bool("dry-run", false, "print the transaction plan without submitting")

	root.AddCommand(newPoolsCmd())
	root.AddCommand(newStakeAccountCmd())
	root.AddCommand(newQuoteCmd())
	root.AddCommand(newAddLiquidityCmd())
	root.AddCommand(newRemoveLiquidityCmd())
	root.AddCommand(newStakeActionCmd("stake", "Stake LP or RAY into a farm", true))
	root.AddCommand(newStakeActionCmd("harvest", "Harvest farm rewards", false))
	root.AddCommand(newStakeActionCmd("unstake", "Withdraw staked LP or RAY", true))
	root.AddCommand(newYieldCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
