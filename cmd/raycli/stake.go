package main

import (
	"github.com/spf13/cobra"

	"ray-liquidity-sol/internal/logic/stake"
)

var stakeActions = map[string]stake.Action{
	"stake":   stake.ActionStake,
	"harvest": stake.ActionHarvest,
	"unstake": stake.ActionUnstake,
}

func newStakeActionCmd(use, short string, withAmount bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE:  runStakeAction,
	}
	cmd.Flags().String("family", "ray", "program family: ray (single-asset RAY) or pool (fusion farm)")
	cmd.Flags().String("farm", "", "farm name, required for --family pool")
	cmd.Flags().Int("farm-version", 5, "farm program version")
	if withAmount {
		cmd.Flags().String("amount", "", "amount (human units)")
		_ = cmd.MarkFlagRequired("amount")
	}
	return cmd
}

func runStakeAction(cmd *cobra.Command, _ []string) error {
	familyName, _ := cmd.Flags().GetString("family")
	family, err := stake.ParseProgramFamily(familyName)
	if err != nil {
		return err
	}
	signer, err := loadSigner(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	req := stake.Request{
		Action: stakeActions[cmd.Name()],
		Family: family,
		Owner:  signer,
	}
	req.FarmName, _ = cmd.Flags().GetString("farm")
	req.FarmVersion, _ = cmd.Flags().GetInt("farm-version")
	if cmd.Flags().Lookup("amount") != nil {
		req.Amount, _ = cmd.Flags().GetString("amount")
	}

	plan, err := a.sc.Stake.PlanStakeAction(a.ctx, req)
	if err != nil {
		return err
	}
	return a.execute(cmd, plan)
}
