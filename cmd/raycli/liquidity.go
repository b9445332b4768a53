package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ray-liquidity-sol/internal/logic/liquidity"
	"ray-liquidity-sol/internal/logic/txplan"
	"ray-liquidity-sol/internal/pkg/logger"
)

func addPoolFlags(cmd *cobra.Command) {
	cmd.Flags().String("pool", "", "pool name, e.g. RAY-USDC")
	cmd.Flags().Int("version", 4, "AMM version")
	_ = cmd.MarkFlagRequired("pool")
}

func addPairFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "coin amount (human units)")
	cmd.Flags().String("to", "", "pc amount (human units)")
	cmd.MarkFlagsMutuallyExclusive("from", "to")
	cmd.MarkFlagsOneRequired("from", "to")
}

func poolFlags(cmd *cobra.Command) (string, int) {
	name, _ := cmd.Flags().GetString("pool")
	version, _ := cmd.Flags().GetInt("version")
	return name, version
}

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Compute the paired amount for adding liquidity",
		RunE:  runQuote,
	}
	addPoolFlags(cmd)
	addPairFlags(cmd)
	return cmd
}

func runQuote(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	name, version := poolFlags(cmd)
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	q, err := a.sc.Liquidity.Quote(a.ctx, name, version, from, to)
	if err != nil {
		return err
	}
	return printYAML(cmd.OutOrStdout(), viewQuote(q))
}

func newAddLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-liquidity",
		Short: "Deposit both sides of a pool and receive LP tokens",
		RunE:  runAddLiquidity,
	}
	addPoolFlags(cmd)
	addPairFlags(cmd)
	return cmd
}

func runAddLiquidity(cmd *cobra.Command, _ []string) error {
	signer, err := loadSigner(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	name, version := poolFlags(cmd)
	req := liquidity.AddLiquidityRequest{PoolName: name, PoolVersion: version, Owner: signer}
	req.FromAmount, _ = cmd.Flags().GetString("from")
	req.ToAmount, _ = cmd.Flags().GetString("to")

	plan, q, err := a.sc.Liquidity.PlanAddLiquidity(a.ctx, req)
	if err != nil {
		return err
	}
	if err := printYAML(cmd.OutOrStdout(), viewQuote(q)); err != nil {
		return err
	}
	return a.execute(cmd, plan)
}

func newRemoveLiquidityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-liquidity",
		Short: "Burn LP tokens and withdraw both sides",
		RunE:  runRemoveLiquidity,
	}
	addPoolFlags(cmd)
	cmd.Flags().String("amount", "", "LP amount (human units)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func runRemoveLiquidity(cmd *cobra.Command, _ []string) error {
	signer, err := loadSigner(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	name, version := poolFlags(cmd)
	lpAmount, _ := cmd.Flags().GetString("amount")
	plan, err := a.sc.Liquidity.PlanRemoveLiquidity(a.ctx, liquidity.RemoveLiquidityRequest{
		PoolName:    name,
		PoolVersion: version,
		Owner:       signer,
		LpAmount:    lpAmount,
	})
	if err != nil {
		return err
	}
	return a.execute(cmd, plan)
}

// execute dry-run 时只打印计划，否则提交并等待确认
func (a *app) execute(cmd *cobra.Command, plan *txplan.Plan) error {
	if a.dryRun {
		return printYAML(cmd.OutOrStdout(), viewPlan(plan))
	}

	logger.Infof("[raycli] 提交交易: 指令数=%d, fee payer=%s", plan.Len(), plan.FeePayer())
	res, err := a.sc.Submitter.Submit(a.ctx, plan)
	if res != nil {
		if perr := printYAML(cmd.OutOrStdout(), viewResult(res)); perr != nil {
			return perr
		}
	}
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}
