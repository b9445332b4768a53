package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"ray-liquidity-sol/internal/layout"
	"ray-liquidity-sol/internal/logic/liquidity"
	"ray-liquidity-sol/internal/logic/raydium"
	"ray-liquidity-sol/internal/logic/submit"
	"ray-liquidity-sol/internal/logic/txplan"
	"ray-liquidity-sol/internal/logic/yield"
	"ray-liquidity-sol/internal/registry"
	"ray-liquidity-sol/internal/types"
)

// 命令输出统一转换为只含字符串与数字的视图，再以 YAML 打印

type instructionView struct {
	Program  string `yaml:"program"`
	Accounts int    `yaml:"accounts"`
	Data     string `yaml:"data"`
}

type planView struct {
	FeePayer     string            `yaml:"feePayer"`
	Signers      []string          `yaml:"signers"`
	Wrapped      []string          `yaml:"wrappedAccounts,omitempty"`
	Instructions []instructionView `yaml:"instructions"`
}

func viewPlan(p *txplan.Plan) planView {
	v := planView{
		FeePayer: p.FeePayer().String(),
		Signers:  types.PubkeysToBase58(p.SignerKeys()),
		Wrapped:  types.PubkeysToBase58(p.WrappedAccounts()),
	}
	for _, ix := range p.Instructions() {
		v.Instructions = append(v.Instructions, instructionView{
			Program:  ix.ProgramID.ToBase58(),
			Accounts: len(ix.Accounts),
			Data:     hex.EncodeToString(ix.Data),
		})
	}
	return v
}

type resultView struct {
	Signature string `yaml:"signature"`
	Slot      uint64 `yaml:"slot,omitempty"`
	Fee       uint64 `yaml:"fee,omitempty"`
	Error     string `yaml:"error,omitempty"`
}

func viewResult(r *submit.Result) resultView {
	v := resultView{Signature: r.Signature}
	if r.Confirmed != nil {
		v.Slot = r.Confirmed.Slot
		v.Fee = r.Confirmed.Fee
		if r.Confirmed.Err != nil {
			v.Error = fmt.Sprint(r.Confirmed.Err)
		}
	}
	return v
}

type quoteView struct {
	CoinAmount string `yaml:"coinAmount"`
	PcAmount   string `yaml:"pcAmount"`
	Rate       string `yaml:"rate"`
	FixedSide  string `yaml:"fixedSide"`
}

func viewQuote(q *liquidity.Quotation) quoteView {
	side := "coin"
	if q.FixedSide == raydium.FixedSidePc {
		side = "pc"
	}
	return quoteView{
		CoinAmount: q.CoinAmount.String(),
		PcAmount:   q.PcAmount.String(),
		Rate:       q.Rate.String(),
		FixedSide:  side,
	}
}

type farmView struct {
	Name    string `yaml:"name"`
	Version int    `yaml:"version"`
	FarmID  string `yaml:"farmId"`
	Lp      string `yaml:"lp"`
	Reward  string `yaml:"reward"`
	RewardB string `yaml:"rewardB,omitempty"`
	Fusion  bool   `yaml:"fusion"`
}

func viewFarms(farms []*registry.Farm) []farmView {
	out := make([]farmView, 0, len(farms))
	for _, f := range farms {
		v := farmView{
			Name:    f.Name,
			Version: f.Version,
			FarmID:  f.PoolID.String(),
			Lp:      f.Lp.Symbol,
			Reward:  f.Reward.Symbol,
			Fusion:  f.Fusion,
		}
		if f.RewardB != nil {
			v.RewardB = f.RewardB.Symbol
		}
		out = append(out, v)
	}
	return out
}

type searchView struct {
	FromName   []farmView `yaml:"fromName,omitempty"`
	FromLp     []farmView `yaml:"fromLp,omitempty"`
	FromLpCoin string     `yaml:"fromLpCoin,omitempty"`
	FromReward []farmView `yaml:"fromReward,omitempty"`
}

func viewSearch(r *registry.SearchResult) searchView {
	v := searchView{
		FromName:   viewFarms(r.FromName),
		FromLp:     viewFarms(r.FromLp),
		FromReward: viewFarms(r.FromReward),
	}
	if r.FromLpCoin != nil {
		v.FromLpCoin = r.FromLpCoin.Mint.String()
	}
	return v
}

type stakeAccountView struct {
	Kind           string `yaml:"kind"`
	Address        string `yaml:"address"`
	Program        string `yaml:"program"`
	Family         string `yaml:"family"`
	PoolID         string `yaml:"poolId,omitempty"`
	Owner          string `yaml:"owner,omitempty"`
	DepositBalance uint64 `yaml:"depositBalance,omitempty"`
	RewardDebt     uint64 `yaml:"rewardDebt,omitempty"`
	RewardDebtB    uint64 `yaml:"rewardDebtB,omitempty"`
	LpVault        string `yaml:"lpVault,omitempty"`
	RewardPerBlock uint64 `yaml:"rewardPerBlock,omitempty"`
	RewardPerBlkB  uint64 `yaml:"rewardPerBlockB,omitempty"`
	PerShare       string `yaml:"perShare,omitempty"`
	PerShareB      string `yaml:"perShareB,omitempty"`
	LastBlock      uint64 `yaml:"lastBlock,omitempty"`
}

func viewStakeAccount(d *layout.DecodedAccount) stakeAccountView {
	if d.Kind == layout.AccountKindStaker {
		s := d.Staker
		return stakeAccountView{
			Kind:           "staker",
			Address:        s.Address.String(),
			Program:        s.ProgramID.String(),
			Family:         s.Family.String(),
			PoolID:         s.PoolID.String(),
			Owner:          s.Owner.String(),
			DepositBalance: s.DepositBalance,
			RewardDebt:     s.RewardDebt,
			RewardDebtB:    s.RewardDebtB,
		}
	}
	f := d.Farm
	var perShareB string
	if f.Family == raydium.FamilyV4 {
		perShareB = f.PerShareB.Big().String()
	}
	return stakeAccountView{
		Kind:           "farm",
		Address:        f.Address.String(),
		Program:        f.ProgramID.String(),
		Family:         f.Family.String(),
		Owner:          f.Owner.String(),
		LpVault:        f.PoolLpTokenAccount.String(),
		RewardPerBlock: f.RewardPerBlock,
		RewardPerBlkB:  f.RewardPerBlockB,
		PerShare:       f.PerShare.Big().String(),
		PerShareB:      perShareB,
		LastBlock:      f.LastBlock,
	}
}

type yieldRecordView struct {
	Name     string `yaml:"name"`
	Version  int    `yaml:"version"`
	Reward   string `yaml:"reward"`
	APR      string `yaml:"apr"`
	APRB     string `yaml:"aprB,omitempty"`
	FeeAPY   string `yaml:"feeApy,omitempty"`
	FinalAPR string `yaml:"finalApr"`
	TVL      string `yaml:"tvl,omitempty"`
	Status   string `yaml:"status"`
}

type yieldFailureView struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Detail string `yaml:"detail"`
}

type yieldView struct {
	Active   []yieldRecordView  `yaml:"active"`
	Ended    []yieldRecordView  `yaml:"ended,omitempty"`
	Failures []yieldFailureView `yaml:"failures,omitempty"`
}

func viewYield(r *yield.Report) yieldView {
	records := func(in []yield.PoolYieldRecord) []yieldRecordView {
		out := make([]yieldRecordView, 0, len(in))
		for _, rec := range in {
			v := yieldRecordView{
				Name:     rec.Name,
				Version:  rec.FarmVersion,
				Reward:   rec.RewardSymbol,
				APR:      rec.APR.String(),
				FinalAPR: rec.FinalAPR.String(),
				Status:   string(rec.Status),
			}
			if rec.DualYield {
				v.Reward += "+" + rec.RewardBSymbol
				v.APRB = rec.APRB.String()
			}
			if rec.FeeAPY.Valid {
				v.FeeAPY = rec.FeeAPY.Decimal.String()
			}
			if rec.TVL.Valid {
				v.TVL = rec.TVL.Decimal.String()
			}
			out = append(out, v)
		}
		return out
	}

	v := yieldView{Active: records(r.Active), Ended: records(r.Ended)}
	for _, f := range r.Failures {
		v.Failures = append(v.Failures, yieldFailureView{Name: f.Name, Kind: f.Kind, Detail: f.Detail})
	}
	return v
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
