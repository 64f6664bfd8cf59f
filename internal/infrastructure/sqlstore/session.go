package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SessionManager はリクエスト単位の「スコープ付きセッション」を払い出す。
// セッション = プールから専有した *sql.Conn で、どの経路で抜けても必ず返却する。
type SessionManager struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSessionManager(db *sql.DB, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		db:     db,
		logger: logger,
	}
}

// WithinSession は接続を 1 本確保して fn を実行する（読み取り用）。
func (m *SessionManager) WithinSession(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error {
	conn, err := m.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire session: %w", err)
	}
	defer func() {
		if cErr := conn.Close(); cErr != nil {
			m.logger.Warn("failed to release session", zap.Error(cErr))
		}
	}()

	return fn(ctx, conn)
}

// WithinTx はセッション上でトランザクションを開始し、fn が成功したら commit する。
// fn がエラー（または panic）で抜けたら rollback する。
func (m *SessionManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	return m.WithinSession(ctx, func(ctx context.Context, conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}

		committed := false
		defer func() {
			if committed {
				return
			}
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				m.logger.Error("failed to rollback tx", zap.Error(rbErr))
			}
		}()

		if err := fn(ctx, tx); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		committed = true
		return nil
	})
}

// Ping は 1 セッション確保できるかで疎通を見る。
func (m *SessionManager) Ping(ctx context.Context) error {
	return m.WithinSession(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.PingContext(ctx)
	})
}
