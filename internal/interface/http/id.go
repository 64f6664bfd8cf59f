package httpadapter

import (
	"encoding/json"
	"strconv"

	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
)

// IDStyle は JSON / パス上での ID の表現。
// メモリストアは文字列 ("1")、RDB ストアは整数 (1) で返す。
type IDStyle int

const (
	TextIDs IDStyle = iota
	IntegerIDs
)

// parseID はパスパラメータを ID に変換する。
//   - TextIDs: 採番済みの表記（"1" など）以外はどの Todo も指さないので NotFound
//   - IntegerIDs: 整数でなければ 422
func (s IDStyle) parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)

	if s == TextIDs {
		if err != nil || strconv.FormatInt(id, 10) != raw {
			return 0, domain_todo.ErrNotFound
		}
		return id, nil
	}

	if err != nil {
		return 0, &ValidationError{Fields: []FieldError{{
			Loc:  []string{"path", "todo_id"},
			Msg:  "Input should be a valid integer",
			Type: "int_parsing",
		}}}
	}
	return id, nil
}

func (s IDStyle) render(id int64) todoID {
	return todoID{value: id, text: s == TextIDs}
}

// todoID は IDStyle に従って文字列か数値として JSON に出る。
type todoID struct {
	value int64
	text  bool
}

func (id todoID) MarshalJSON() ([]byte, error) {
	if id.text {
		return json.Marshal(strconv.FormatInt(id.value, 10))
	}
	return []byte(strconv.FormatInt(id.value, 10)), nil
}
