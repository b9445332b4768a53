package chain

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"
	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"

	"ray-liquidity-sol/internal/consts"
	"ray-liquidity-sol/internal/pkg/logger"
	"ray-liquidity-sol/internal/pkg/xerr"
	"ray-liquidity-sol/internal/types"
)

// RpcClient 基于 solana-go-sdk 的 AccountFetcher / TxClient 实现
type RpcClient struct {
	client  *client.Client
	timeout time.Duration // 单次 RPC 调用超时
}

var (
	_ AccountFetcher = (*RpcClient)(nil)
	_ TxClient       = (*RpcClient)(nil)
)

func NewRpcClient(endpoint string, timeout time.Duration) (*RpcClient, error) {
	c := client.NewClient(endpoint)
	if c == nil {
		return nil, fmt.Errorf("rpc client init failed: %s", endpoint)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RpcClient{client: c, timeout: timeout}, nil
}

func (r *RpcClient) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// GetMultipleAccounts 按 100 个一批拉取，结果顺序与 addrs 一致
func (r *RpcClient) GetMultipleAccounts(ctx context.Context, addrs []types.Pubkey) ([]*AccountInfo, error) {
	result := make([]*AccountInfo, 0, len(addrs))
	for start := 0; start < len(addrs); start += consts.MaxMultipleAccounts {
		end := min(start+consts.MaxMultipleAccounts, len(addrs))
		batch := addrs[start:end]

		callCtx, cancel := r.callCtx(ctx)
		begin := time.Now()
		infos, err := r.client.GetMultipleAccounts(callCtx, types.PubkeysToBase58(batch))
		cancel()
		if err != nil {
			return nil, xerr.Rpc(err, "GetMultipleAccounts [%d:%d]", start, end)
		}
		if len(infos) != len(batch) {
			return nil, xerr.Rpc(nil, "返回账户数与请求不一致: got=%d want=%d", len(infos), len(batch))
		}
		logger.Debugf("[RpcClient] GetMultipleAccounts 成功, 账户数: %d, 耗时: %v", len(batch), time.Since(begin))

		for i, info := range infos {
			if info.Lamports == 0 && len(info.Data) == 0 {
				result = append(result, nil) // 账户不存在
				continue
			}
			result = append(result, &AccountInfo{
				Address:  batch[i],
				Owner:    types.PubkeyFromCommon(info.Owner),
				Lamports: info.Lamports,
				Data:     info.Data,
			})
		}
	}
	return result, nil
}

func (r *RpcClient) GetBalance(ctx context.Context, addr types.Pubkey) (uint64, error) {
	callCtx, cancel := r.callCtx(ctx)
	defer cancel()
	balance, err := r.client.GetBalance(callCtx, addr.String())
	if err != nil {
		return 0, xerr.Rpc(err, "GetBalance %s", addr)
	}
	return balance, nil
}

func (r *RpcClient) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	callCtx, cancel := r.callCtx(ctx)
	defer cancel()
	lamports, err := r.client.GetMinimumBalanceForRentExemption(callCtx, size)
	if err != nil {
		return 0, xerr.Rpc(err, "GetMinimumBalanceForRentExemption %d", size)
	}
	return lamports, nil
}

// FindProgramAccounts 走 getProgramAccounts，dataSize 为 0 时不加长度过滤
func (r *RpcClient) FindProgramAccounts(ctx context.Context, program types.Pubkey, dataSize uint64, filters []MemcmpFilter) ([]*AccountInfo, error) {
	cfg := rpc.GetProgramAccountsConfig{
		Encoding:   rpc.AccountEncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
		Filters:    make([]rpc.GetProgramAccountsConfigFilter, 0, len(filters)+1),
	}
	if dataSize > 0 {
		cfg.Filters = append(cfg.Filters, rpc.GetProgramAccountsConfigFilter{DataSize: dataSize})
	}
	for _, f := range filters {
		cfg.Filters = append(cfg.Filters, rpc.GetProgramAccountsConfigFilter{
			MemCmp: &rpc.GetProgramAccountsConfigFilterMemCmp{
				Offset: f.Offset,
				Bytes:  base58.Encode(f.Bytes),
			},
		})
	}

	callCtx, cancel := r.callCtx(ctx)
	defer cancel()
	begin := time.Now()
	resp, err := r.client.RpcClient.GetProgramAccountsWithConfig(callCtx, program.String(), cfg)
	if err != nil {
		return nil, xerr.Rpc(err, "GetProgramAccounts %s", program)
	}
	if resp.Error != nil {
		return nil, xerr.Rpc(resp.Error, "GetProgramAccounts %s", program)
	}

	result, err := convertProgramAccounts(resp.Result)
	if err != nil {
		return nil, xerr.Rpc(err, "GetProgramAccounts %s", program)
	}
	logger.Debugf("[RpcClient] GetProgramAccounts 成功, 程序: %s, 账户数: %d, 耗时: %v", program, len(result), time.Since(begin))
	return result, nil
}

func convertProgramAccounts(accounts rpc.GetProgramAccounts) ([]*AccountInfo, error) {
	result := make([]*AccountInfo, 0, len(accounts))
	for _, a := range accounts {
		address, err := types.TryPubkeyFromBase58(a.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("invalid pubkey %q: %w", a.Pubkey, err)
		}
		owner, err := types.TryPubkeyFromBase58(a.Account.Owner)
		if err != nil {
			return nil, fmt.Errorf("account %s: invalid owner %q: %w", a.Pubkey, a.Account.Owner, err)
		}
		data, err := decodeAccountData(a.Account.Data)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", a.Pubkey, err)
		}
		result = append(result, &AccountInfo{
			Address:  address,
			Owner:    owner,
			Lamports: a.Account.Lamports,
			Data:     data,
		})
	}
	return result, nil
}

// decodeAccountData 解析 ["<base64>", "base64"] 形式的账户数据
func decodeAccountData(raw any) ([]byte, error) {
	parts, ok := raw.([]any)
	if !ok || len(parts) != 2 {
		return nil, fmt.Errorf("unexpected account data: %v", raw)
	}
	if enc, _ := parts[1].(string); enc != string(rpc.AccountEncodingBase64) {
		return nil, fmt.Errorf("unexpected account encoding: %v", parts[1])
	}
	encoded, ok := parts[0].(string)
	if !ok {
		return nil, fmt.Errorf("unexpected account data: %v", parts[0])
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	return data, nil
}

func (r *RpcClient) GetLatestBlockhash(ctx context.Context) (string, error) {
	callCtx, cancel := r.callCtx(ctx)
	defer cancel()
	resp, err := r.client.GetLatestBlockhash(callCtx)
	if err != nil {
		return "", xerr.Rpc(err, "GetLatestBlockhash")
	}
	return resp.Blockhash, nil
}

func (r *RpcClient) SendTransaction(ctx context.Context, tx sdktypes.Transaction) (string, error) {
	callCtx, cancel := r.callCtx(ctx)
	defer cancel()
	sig, err := r.client.SendTransaction(callCtx, tx)
	if err != nil {
		return "", xerr.Rpc(err, "SendTransaction")
	}
	return sig, nil
}

func (r *RpcClient) GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error) {
	callCtx, cancel := r.callCtx(ctx)
	defer cancel()
	status, err := r.client.GetSignatureStatus(callCtx, signature)
	if err != nil {
		return nil, xerr.Rpc(err, "GetSignatureStatus %s", signature)
	}
	if status == nil {
		return nil, nil
	}

	confirmed := false
	if status.ConfirmationStatus != nil {
		switch *status.ConfirmationStatus {
		case rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
			confirmed = true
		}
	}
	return &SignatureStatus{Slot: status.Slot, Confirmed: confirmed, Err: status.Err}, nil
}

func (r *RpcClient) GetTransaction(ctx context.Context, signature string) (*ConfirmedTransaction, error) {
	callCtx, cancel := r.callCtx(ctx)
	defer cancel()
	tx, err := r.client.GetTransaction(callCtx, signature)
	if err != nil {
		return nil, xerr.Rpc(err, "GetTransaction %s", signature)
	}
	if tx == nil {
		return nil, xerr.Rpc(nil, "transaction %s not found", signature)
	}

	out := &ConfirmedTransaction{Signature: signature, Slot: tx.Slot}
	if tx.BlockTime != nil {
		out.BlockTime = *tx.BlockTime
	}
	if tx.Meta != nil {
		out.Fee = tx.Meta.Fee
		out.Err = tx.Meta.Err
	}
	return out, nil
}
