package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// RetryPolicy は「何回・どのくらい待つか」をまとめた設定。
// Todo の各操作はリトライしない。使うのは起動時の接続確認だけ。
type RetryPolicy struct {
	MaxAttempts int           // 例: 20（合計20回試す）
	BaseBackoff time.Duration // 例: 200ms
	MaxBackoff  time.Duration // 例: 3s
}

// DefaultConnectRetry は DB コンテナの起動待ちを想定したデフォルト。
var DefaultConnectRetry = RetryPolicy{
	MaxAttempts: 20,
	BaseBackoff: 200 * time.Millisecond,
	MaxBackoff:  3 * time.Second,
}

// doWithRetry は、retryable なエラーのみをバックオフ付きで再実行する。
// - ctx の deadline/cancel を尊重して即中断する
// - onRetry は待つ直前に呼ばれる（ログ用、nil 可）
func doWithRetry(ctx context.Context, policy RetryPolicy, fn func() error, onRetry func(attempt int, wait time.Duration, err error)) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.BaseBackoff <= 0 {
		policy.BaseBackoff = 10 * time.Millisecond
	}
	if policy.MaxBackoff <= 0 {
		policy.MaxBackoff = 200 * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		// ctx が終了していれば即返す
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		// retry 対象外なら即返す
		if !isRetryableDBErr(err) {
			return err
		}

		// 最終試行なら返す
		if attempt == policy.MaxAttempts {
			return err
		}

		sleep := backoff(policy.BaseBackoff, policy.MaxBackoff, attempt)
		if onRetry != nil {
			onRetry(attempt, sleep, err)
		}
		if err := sleepWithContext(ctx, sleep); err != nil {
			return err
		}
	}

	return lastErr
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoff は指数バックオフ（ジッタ無し）
// attempt: 1,2,3...
func backoff(base, max time.Duration, attempt int) time.Duration {
	// base * 2^(attempt-1)
	b := base
	for i := 1; i < attempt; i++ {
		b *= 2
		if b >= max {
			return max
		}
	}
	if b > max {
		return max
	}
	return b
}

// isRetryableDBErr は “一時的に起きがちな” DB/ネットワーク系だけ true。
func isRetryableDBErr(err error) bool {
	// ctx 系は retry しない（上位に返す）
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// database/sql が「接続としてはダメ」と判断するケース
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	// 起動直後の MySQL は connection refused を返す
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}

	// 認証エラーなどはリトライしても直らない
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1040, 1205, 1213: // too many connections, lock wait timeout, deadlock
			return true
		default:
			return false
		}
	}

	// 文字列ベースの保険
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return true
	case strings.Contains(msg, "connection reset"):
		return true
	case strings.Contains(msg, "broken pipe"):
		return true
	case strings.Contains(msg, "database is locked"): // sqlite
		return true
	default:
		return false
	}
}
