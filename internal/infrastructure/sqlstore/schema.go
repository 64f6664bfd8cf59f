package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema は todos テーブルが無ければ作る。起動時に 1 回だけ呼ぶ想定。
func EnsureSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	if _, err := db.ExecContext(ctx, d.createTable); err != nil {
		return fmt.Errorf("ensure todos table (%s): %w", d.Name, err)
	}
	return nil
}
