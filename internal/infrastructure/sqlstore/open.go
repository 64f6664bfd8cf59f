package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // "pgx" ドライバを登録
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite ドライバ
)

// ConnParams は DSN を組み立てるための個別設定。
type ConnParams struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// PoolParams はコネクションプールの上限。0 はドライバ既定のまま。
type PoolParams struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// BuildDSN は dialect ごとの DSN を返す。
// SQLite の場合 Name をファイルパス（または :memory:）として扱う。
func BuildDSN(d Dialect, p ConnParams) string {
	switch d.Name {
	case Postgres.Name:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(p.User, p.Password),
			Host:     net.JoinHostPort(p.Host, p.Port),
			Path:     "/" + p.Name,
			RawQuery: "sslmode=disable",
		}
		return u.String()

	case SQLite.Name:
		if p.Name == "" {
			return "todos.db"
		}
		return p.Name

	default:
		cfg := mysql.NewConfig()
		cfg.User = p.User
		cfg.Passwd = p.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(p.Host, p.Port)
		cfg.DBName = p.Name
		cfg.ParseTime = true
		cfg.Timeout = 5 * time.Second
		cfg.Params = map[string]string{"charset": "utf8mb4"}
		return cfg.FormatDSN()
	}
}

// Open は DB を開き、疎通できるまで（startup 限定で）リトライする。
// リクエスト処理中のリトライはしない。
func Open(ctx context.Context, d Dialect, dsn string, pool PoolParams, policy RetryPolicy, logger *zap.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open(d.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name, err)
	}

	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	err = policy.Do(ctx, func(attempt int) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("failed to ping db",
				zap.String("driver", d.Name),
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", policy.MaxAttempts),
				zap.Error(err),
			)
			return err
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Name, err)
	}

	return db, nil
}
