package todo_usecase

import (
	"context"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
	"go.uber.org/zap"
)

// ===== エラー定数（Handler側からも使う） =====

var (
	ErrEmptyTitle  = domain_todo.ErrEmptyTitle
	ErrNotFound    = domain_todo.ErrNotFound
	ErrUnavailable = domain_todo.ErrUnavailable
)

// Input は作成・全置換で受け取る Todo の中身（ID 以外）。
type Input struct {
	Title       string
	Description string
	Completed   bool
}

// ===== 外部に公開する Usecase インターフェース =====

type Usecase interface {
	Create(ctx context.Context, in Input) (*domain_todo.Todo, error)
	List(ctx context.Context) ([]*domain_todo.Todo, error)
	Get(ctx context.Context, id int64) (*domain_todo.Todo, error)
	Update(ctx context.Context, id int64, in Input) (*domain_todo.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// ===== 実装 =====

type usecase struct {
	repo   domain_todo.Repository
	logger *zap.Logger
}

func New(repo domain_todo.Repository, logger *zap.Logger) Usecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &usecase{repo: repo, logger: logger}
}

// Create ユースケース
func (u *usecase) Create(ctx context.Context, in Input) (*domain_todo.Todo, error) {
	t, err := domain_todo.NewTodo(in.Title, in.Description, in.Completed)
	if err != nil {
		return nil, err
	}

	id, err := u.repo.Insert(ctx, t)
	if err != nil {
		return nil, err
	}
	t.ID = id

	u.logger.Info("todo created", zap.Int64("id", id))
	return t, nil
}

// List ユースケース（0 件でも nil ではなく空スライス）
func (u *usecase) List(ctx context.Context) ([]*domain_todo.Todo, error) {
	todos, err := u.repo.SelectAll(ctx)
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []*domain_todo.Todo{}
	}
	return todos, nil
}

// Get ユースケース
func (u *usecase) Get(ctx context.Context, id int64) (*domain_todo.Todo, error) {
	// 0 以下の ID に該当する Todo は存在し得ない
	if err := domain_todo.ValidateID(id); err != nil {
		return nil, ErrNotFound
	}
	return u.repo.SelectByID(ctx, id)
}

// Update ユースケース
// 部分更新はしない。リクエストに無いフィールドは既定値で上書きされる。
func (u *usecase) Update(ctx context.Context, id int64, in Input) (*domain_todo.Todo, error) {
	if err := domain_todo.ValidateID(id); err != nil {
		return nil, ErrNotFound
	}

	t, err := domain_todo.NewTodo(in.Title, in.Description, in.Completed)
	if err != nil {
		return nil, err
	}

	if err := u.repo.ReplaceByID(ctx, id, t); err != nil {
		return nil, err
	}
	t.ID = id

	u.logger.Info("todo updated", zap.Int64("id", id))
	return t, nil
}

// Delete ユースケース
func (u *usecase) Delete(ctx context.Context, id int64) error {
	if err := domain_todo.ValidateID(id); err != nil {
		return ErrNotFound
	}

	if err := u.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	u.logger.Info("todo deleted", zap.Int64("id", id))
	return nil
}
