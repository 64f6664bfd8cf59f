package httpadapter

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed todo_item.schema.json
var todoItemSchema string

const todoItemSchemaURL = "todo_item.schema.json"

// FieldError は 422 の detail 1 件分。
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError はリクエストの形が不正なときに境界層で返すエラー。
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(f.Loc, "."), f.Msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// todoRequest は POST / PUT のボディ。completed 省略時は false。未知のキーは無視する。
type todoRequest struct {
	Title       string
	Description string
	Completed   bool
}

type bodyValidator struct {
	schema *jsonschema.Schema
}

func newBodyValidator() (*bodyValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(todoItemSchemaURL, strings.NewReader(todoItemSchema)); err != nil {
		return nil, fmt.Errorf("add todo item schema: %w", err)
	}
	schema, err := compiler.Compile(todoItemSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile todo item schema: %w", err)
	}
	return &bodyValidator{schema: schema}, nil
}

// decode は JSON として読めるか → スキーマに合うか、の順で検証し、
// 検証済みのドキュメントから完全一致するキーだけを取り出す。
// encoding/json の大文字小文字を無視したマッチで未知のキー（"Title" など）が値を上書きしないよう、
// 構造体への再デコードはしない。
func (v *bodyValidator) decode(body []byte) (todoRequest, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return todoRequest{}, &ValidationError{Fields: []FieldError{{
			Loc:  []string{"body"},
			Msg:  "JSON decode error",
			Type: "json_invalid",
		}}}
	}

	if fields := v.validate(doc); len(fields) > 0 {
		return todoRequest{}, &ValidationError{Fields: fields}
	}

	// スキーマ通過後なので型は保証されている。completed は省略時 false。
	obj, _ := doc.(map[string]any)
	var req todoRequest
	req.Title, _ = obj["title"].(string)
	req.Description, _ = obj["description"].(string)
	req.Completed, _ = obj["completed"].(bool)
	return req, nil
}

func (v *bodyValidator) validate(doc any) []FieldError {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []FieldError{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}}
	}

	var out []FieldError
	v.collect(ve, doc, &out)
	return out
}

// collect は原因ツリーの葉だけをフィールド単位のエラーにする。
func (v *bodyValidator) collect(ve *jsonschema.ValidationError, doc any, out *[]FieldError) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			v.collect(cause, doc, out)
		}
		return
	}

	keyword := lastSegment(ve.KeywordLocation)
	if keyword == "required" {
		*out = append(*out, v.missingFields(doc)...)
		return
	}

	*out = append(*out, FieldError{
		Loc:  locFromPointer(ve.InstanceLocation),
		Msg:  ve.Message,
		Type: keyword,
	})
}

// missingFields は required のうちボディに無いものを 1 件ずつ返す。
func (v *bodyValidator) missingFields(doc any) []FieldError {
	obj, _ := doc.(map[string]any)

	var out []FieldError
	for _, name := range v.schema.Required {
		if _, ok := obj[name]; ok {
			continue
		}
		out = append(out, FieldError{
			Loc:  []string{"body", name},
			Msg:  "Field required",
			Type: "missing",
		})
	}
	return out
}

// "/title" → ["body", "title"]
func locFromPointer(ptr string) []string {
	loc := []string{"body"}
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return loc
	}
	return append(loc, strings.Split(ptr, "/")...)
}

func lastSegment(ptr string) string {
	if i := strings.LastIndex(ptr, "/"); i >= 0 {
		return ptr[i+1:]
	}
	return ptr
}
