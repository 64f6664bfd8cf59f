package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/hijjiri/todo-api/internal/infrastructure/sqlstore"

var _ domain_todo.Repository = (*TodoRepository)(nil)

// TodoRepository は todos テーブルに対する Repository 実装。
// 1 操作 = 1 セッション（更新系は 1 トランザクション）。
type TodoRepository struct {
	sessions *SessionManager
	dialect  Dialect
	tracer   trace.Tracer
	logger   *zap.Logger
}

func NewTodoRepository(db *sql.DB, d Dialect, logger *zap.Logger) *TodoRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TodoRepository{
		sessions: NewSessionManager(db, logger),
		dialect:  d,
		tracer:   otel.Tracer(tracerName),
		logger:   logger,
	}
}

// Insert は 1 行 INSERT して採番された ID を返す。
func (r *TodoRepository) Insert(ctx context.Context, t *domain_todo.Todo) (id int64, err error) {
	ctx, span := r.startSpan(ctx, "Insert")
	defer func() { endSpan(span, err) }()

	err = r.sessions.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if r.dialect.returningID {
			row := tx.QueryRowContext(ctx,
				r.dialect.rebind("INSERT INTO todos (title, description, completed) VALUES (?, ?, ?) RETURNING id"),
				t.Title, t.Description, t.Completed,
			)
			return row.Scan(&id)
		}

		res, err := tx.ExecContext(ctx,
			r.dialect.rebind("INSERT INTO todos (title, description, completed) VALUES (?, ?, ?)"),
			t.Title, t.Description, t.Completed,
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, r.wrap("insert todo", err)
	}
	return id, nil
}

// SelectAll は ID 昇順で全件返す。0 件なら空スライス。
func (r *TodoRepository) SelectAll(ctx context.Context) (todos []*domain_todo.Todo, err error) {
	ctx, span := r.startSpan(ctx, "SelectAll")
	defer func() { endSpan(span, err) }()

	todos = make([]*domain_todo.Todo, 0)
	err = r.sessions.WithinSession(ctx, func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, "SELECT id, title, description, completed FROM todos ORDER BY id")
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var t domain_todo.Todo
			if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed); err != nil {
				return err
			}
			todos = append(todos, &t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, r.wrap("select todos", err)
	}
	span.SetAttributes(attribute.Int("todo.count", len(todos)))
	return todos, nil
}

func (r *TodoRepository) SelectByID(ctx context.Context, id int64) (t *domain_todo.Todo, err error) {
	ctx, span := r.startSpan(ctx, "SelectByID", attribute.Int64("todo.id", id))
	defer func() { endSpan(span, err) }()

	err = r.sessions.WithinSession(ctx, func(ctx context.Context, conn *sql.Conn) error {
		var got domain_todo.Todo
		row := conn.QueryRowContext(ctx,
			r.dialect.rebind("SELECT id, title, description, completed FROM todos WHERE id = ?"),
			id,
		)
		if err := row.Scan(&got.ID, &got.Title, &got.Description, &got.Completed); err != nil {
			return err
		}
		t = &got
		return nil
	})
	if err != nil {
		return nil, r.wrap("select todo", err)
	}
	return t, nil
}

// ReplaceByID は存在確認してから全カラムを上書きする。
// MySQL の RowsAffected は値が変わらないと 0 になるので、件数では判定しない。
func (r *TodoRepository) ReplaceByID(ctx context.Context, id int64, t *domain_todo.Todo) (err error) {
	ctx, span := r.startSpan(ctx, "ReplaceByID", attribute.Int64("todo.id", id))
	defer func() { endSpan(span, err) }()

	err = r.sessions.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var found int64
		row := tx.QueryRowContext(ctx, r.dialect.rebind("SELECT id FROM todos WHERE id = ?"), id)
		if err := row.Scan(&found); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			r.dialect.rebind("UPDATE todos SET title = ?, description = ?, completed = ? WHERE id = ?"),
			t.Title, t.Description, t.Completed, id,
		)
		return err
	})
	if err != nil {
		return r.wrap("update todo", err)
	}
	return nil
}

func (r *TodoRepository) DeleteByID(ctx context.Context, id int64) (err error) {
	ctx, span := r.startSpan(ctx, "DeleteByID", attribute.Int64("todo.id", id))
	defer func() { endSpan(span, err) }()

	err = r.sessions.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, r.dialect.rebind("DELETE FROM todos WHERE id = ?"), id)
		if err != nil {
			return err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	if err != nil {
		return r.wrap("delete todo", err)
	}
	return nil
}

func (r *TodoRepository) Ping(ctx context.Context) error {
	if err := r.sessions.Ping(ctx); err != nil {
		return r.wrap("ping", err)
	}
	return nil
}

// wrap はドライバのエラーをドメインエラーに寄せる。
// - 行なし → ErrNotFound
// - 接続系 → ErrUnavailable（元エラーも保持）。ロック競合などは含めない
func (r *TodoRepository) wrap(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain_todo.ErrNotFound
	case isConnectivityErr(err):
		return fmt.Errorf("%s: %w: %w", op, domain_todo.ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (r *TodoRepository) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.system", r.dialect.Name))
	return r.tracer.Start(ctx, "sqlstore."+op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, domain_todo.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
