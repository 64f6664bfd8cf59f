package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"time"
)

// RetryPolicy は起動時の疎通待ちで使うバックオフ設定。
// リクエスト処理の経路では使わない。
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// DefaultStartupRetry はコンテナ起動直後の DB を待てる程度に長め。
var DefaultStartupRetry = RetryPolicy{
	MaxAttempts: 20,
	BaseBackoff: 250 * time.Millisecond,
	MaxBackoff:  3 * time.Second,
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseBackoff <= 0 {
		p.BaseBackoff = 10 * time.Millisecond
	}
	if p.MaxBackoff < p.BaseBackoff {
		p.MaxBackoff = p.BaseBackoff
	}
	return p
}

// Delay は attempt 回目（1 始まり）の失敗後に待つ時間。BaseBackoff から倍々で MaxBackoff まで。
func (p RetryPolicy) Delay(attempt int) time.Duration {
	p = p.normalized()
	d := p.BaseBackoff
	for n := 1; n < attempt && d < p.MaxBackoff; n++ {
		d *= 2
	}
	return min(d, p.MaxBackoff)
}

// Do は fn を一時的なエラーの間だけ繰り返す。fn には試行回数を渡す。
// ctx が終わったらその時点の ctx.Err() を返す。
func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int) error) error {
	p = p.normalized()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(attempt)
		if err == nil || !isTransientDBErr(err) || attempt >= p.MaxAttempts {
			return err
		}

		timer := time.NewTimer(p.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// 接続そのものが使えないことを示すメッセージ（ドライバごとに型が違うので文字列で拾う）
var connectivityMarkers = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"invalid connection",
	"bad connection",
	"failed to connect",
	"database is closed",
	"no such host",
}

// ロック競合など、待てば解消しうるが接続障害ではないもの
var contentionMarkers = []string{
	"deadlock",
	"lock wait timeout",
	"database is locked",
	"timeout",
}

// isConnectivityErr はストレージに到達できない（セッションが張れない・切れた）エラーだけ true。
// リクエスト時の ErrUnavailable 判定に使う。
func isConnectivityErr(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return containsAny(err, connectivityMarkers)
}

// isTransientDBErr は起動時リトライの対象。接続障害に加えてロック競合も含む。
func isTransientDBErr(err error) bool {
	if isConnectivityErr(err) {
		return true
	}
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return containsAny(err, contentionMarkers)
}

func containsAny(err error, markers []string) bool {
	msg := strings.ToLower(err.Error())
	for _, m := range markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
