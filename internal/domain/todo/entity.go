package todo

import "errors"

// Todo は Todo 集約のルートエンティティ。
// ID はストレージが採番し、作成後は変わらない。
type Todo struct {
	ID          int64
	Title       string
	Description string
	Completed   bool
}

// ---- ドメインエラー（sentinel error） ----

var (
	// タイトルが空のときに使う共通エラー。
	ErrEmptyTitle = errors.New("todo title must not be empty")

	// ID が 0 以下など不正なときに使う共通エラー。
	ErrInvalidID = errors.New("todo id must be positive")

	// 指定 ID の Todo が存在しない。
	ErrNotFound = errors.New("todo not found")

	// ストレージに到達できない（接続断など）。リトライはしない。
	ErrUnavailable = errors.New("todo storage unavailable")
)

// ---- ファクトリ / バリデーション ----

// NewTodo は「新規作成用」および「全置換用」のコンストラクタ。
// 不変条件（タイトルが空でないこと）をここでチェックする。
func NewTodo(title, description string, completed bool) (*Todo, error) {
	t := &Todo{
		Description: description,
		Completed:   completed,
	}
	if err := t.ChangeTitle(title); err != nil {
		return nil, err
	}
	return t, nil
}

// ChangeTitle はタイトル変更用メソッド。
// 「空文字禁止」のルールをドメイン側に閉じ込める。
func (t *Todo) ChangeTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	t.Title = title
	return nil
}

// Replace は ID 以外の全フィールドを src で上書きする（マージはしない）。
func (t *Todo) Replace(src *Todo) {
	t.Title = src.Title
	t.Description = src.Description
	t.Completed = src.Completed
}

// Clone はストア外へ渡すためのコピーを返す。
func (t *Todo) Clone() *Todo {
	c := *t
	return &c
}

// ValidateID は ID まわりの共通バリデーション。
func ValidateID(id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	return nil
}
