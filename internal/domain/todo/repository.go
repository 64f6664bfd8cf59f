package todo

import "context"

// Repository は Todo の保存先（メモリ / RDB）を抽象化する。
// 存在しない ID に対する操作は ErrNotFound を返すこと。
type Repository interface {
	Insert(ctx context.Context, t *Todo) (int64, error)
	SelectAll(ctx context.Context) ([]*Todo, error)
	SelectByID(ctx context.Context, id int64) (*Todo, error)
	ReplaceByID(ctx context.Context, id int64, t *Todo) error
	DeleteByID(ctx context.Context, id int64) error

	// Ping はヘルスチェック用。
	Ping(ctx context.Context) error
}
