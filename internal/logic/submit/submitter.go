// Package submit 签名、发送交易并等待确认。
package submit

import (
	"context"
	"errors"
	"time"

	"ray-liquidity-sol/internal/chain"
	"ray-liquidity-sol/internal/logic/txplan"
	"ray-liquidity-sol/internal/pkg/logger"
	"ray-liquidity-sol/internal/pkg/xerr"
)

// Result 交易签名与确认后的交易摘要
type Result struct {
	Signature string
	Confirmed *chain.ConfirmedTransaction
}

type Submitter interface {
	Submit(ctx context.Context, plan *txplan.Plan) (*Result, error)
}

type Options struct {
	Retry          RetryPolicy
	PollInterval   time.Duration // 查询确认状态的间隔
	ConfirmTimeout time.Duration // 从发送到确认的总时限，0 表示只受调用方 ctx 约束
}

const defaultPollInterval = 500 * time.Millisecond

// RpcSubmitter 通过 TxClient 提交交易
type RpcSubmitter struct {
	client chain.TxClient
	opts   Options
}

var _ Submitter = (*RpcSubmitter)(nil)

func NewRpcSubmitter(client chain.TxClient, opts Options) *RpcSubmitter {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	return &RpcSubmitter{client: client, opts: opts}
}

// Submit 阻塞直到交易确认或 ctx 结束；超时返回 Timeout 类错误。
// 链上执行失败时同时返回 Result 与错误
func (s *RpcSubmitter) Submit(ctx context.Context, plan *txplan.Plan) (*Result, error) {
	if s.opts.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ConfirmTimeout)
		defer cancel()
	}

	blockhash, err := s.client.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, s.wrap(ctx, err, "get latest blockhash")
	}
	tx, err := plan.Transaction(blockhash)
	if err != nil {
		return nil, err
	}

	var signature string
	attempt := 0
	err = withRetry(ctx, s.opts.Retry, isRetryable, func(ctx context.Context) error {
		attempt++
		sig, err := s.client.SendTransaction(ctx, tx)
		if err != nil {
			logger.Warnf("[Submitter] 第 %d 次发送失败: %v", attempt, err)
			return xerr.Rpc(err, "send transaction")
		}
		signature = sig
		return nil
	})
	if err != nil {
		return nil, s.wrap(ctx, err, "send transaction")
	}
	logger.Infof("[Submitter] 交易已发送: sig=%s, attempts=%d, instructions=%d", signature, attempt, plan.Len())

	status, err := s.awaitConfirmation(ctx, signature)
	if err != nil {
		return nil, err
	}

	confirmed, err := s.client.GetTransaction(ctx, signature)
	if err != nil {
		return nil, s.wrap(ctx, err, "get transaction %s", signature)
	}
	res := &Result{Signature: signature, Confirmed: confirmed}
	if status.Err != nil {
		return res, xerr.Rpc(nil, "transaction %s failed on chain: %v", signature, status.Err)
	}
	logger.Infof("[Submitter] 交易已确认: sig=%s, slot=%d", signature, status.Slot)
	return res, nil
}

func (s *RpcSubmitter) awaitConfirmation(ctx context.Context, signature string) (*chain.SignatureStatus, error) {
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()
	for {
		status, err := s.client.GetSignatureStatus(ctx, signature)
		if err != nil {
			return nil, s.wrap(ctx, err, "get signature status %s", signature)
		}
		if status != nil && status.Confirmed {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return nil, xerr.Timeout(ctx.Err(), "transaction %s not confirmed", signature)
		case <-ticker.C:
		}
	}
}

// wrap ctx 已结束的错误归为 Timeout，其余归为 Rpc
func (s *RpcSubmitter) wrap(ctx context.Context, err error, format string, args ...any) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return xerr.Timeout(err, format, args...)
	}
	if xerr.KindOf(err) == xerr.KindRpc {
		return err
	}
	return xerr.Rpc(err, format, args...)
}

func isRetryable(err error) bool {
	return errors.Is(err, xerr.ErrRpc)
}
