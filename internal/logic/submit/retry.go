package submit

import (
	"context"
	"time"
)

// RetryPolicy 发送失败时的重试策略，零值表示不重试。
// 第 n 次重试前等待 BaseDelay × 2^(n-1)
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

const defaultBaseDelay = 100 * time.Millisecond

// withRetry retryable 返回 false 的错误立即返回
func withRetry(ctx context.Context, p RetryPolicy, retryable func(error) bool, fn func(context.Context) error) error {
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	delay := p.BaseDelay
	if delay <= 0 {
		delay = defaultBaseDelay
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || !retryable(err) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
