package httpadapter

import (
	"github.com/gofiber/fiber/v3"
	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
	todo_usecase "github.com/hijjiri/todo-api/internal/usecase/todo"
)

const msgDeleted = "ToDo item deleted successfully"

// todoResponse は StoredToDoItem の JSON 表現。
type todoResponse struct {
	ID          todoID `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type TodoHandler struct {
	uc        todo_usecase.Usecase
	ids       IDStyle
	validator *bodyValidator
}

func NewTodoHandler(uc todo_usecase.Usecase, ids IDStyle) (*TodoHandler, error) {
	v, err := newBodyValidator()
	if err != nil {
		return nil, err
	}
	return &TodoHandler{uc: uc, ids: ids, validator: v}, nil
}

// Register は /todos 配下のルートを登録する（StrictRouting 無効なので末尾スラッシュ有無どちらも可）。
func (h *TodoHandler) Register(r fiber.Router) {
	todos := r.Group("/todos")
	todos.Post("/", h.CreateTodo)
	todos.Get("/", h.ListTodos)
	todos.Get("/:id", h.GetTodo)
	todos.Put("/:id", h.UpdateTodo)
	todos.Delete("/:id", h.DeleteTodo)
}

// --- Create ---
func (h *TodoHandler) CreateTodo(c fiber.Ctx) error {
	req, err := h.validator.decode(c.Body())
	if err != nil {
		return err
	}

	t, err := h.uc.Create(c.Context(), toInput(req))
	if err != nil {
		return err
	}
	return c.JSON(h.toResponse(t))
}

// --- List ---
func (h *TodoHandler) ListTodos(c fiber.Ctx) error {
	list, err := h.uc.List(c.Context())
	if err != nil {
		return err
	}

	resp := make([]todoResponse, 0, len(list))
	for _, t := range list {
		resp = append(resp, h.toResponse(t))
	}
	return c.JSON(resp)
}

// --- Get ---
func (h *TodoHandler) GetTodo(c fiber.Ctx) error {
	id, err := h.ids.parseID(c.Params("id"))
	if err != nil {
		return err
	}

	t, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(h.toResponse(t))
}

// --- Update ---
// パスの ID とボディの両方を検証してから usecase を呼ぶ。
func (h *TodoHandler) UpdateTodo(c fiber.Ctx) error {
	id, err := h.ids.parseID(c.Params("id"))
	if err != nil {
		return err
	}

	req, err := h.validator.decode(c.Body())
	if err != nil {
		return err
	}

	t, err := h.uc.Update(c.Context(), id, toInput(req))
	if err != nil {
		return err
	}
	return c.JSON(h.toResponse(t))
}

// --- Delete ---
func (h *TodoHandler) DeleteTodo(c fiber.Ctx) error {
	id, err := h.ids.parseID(c.Params("id"))
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: msgDeleted})
}

// --- converter ---
func toInput(req todoRequest) todo_usecase.Input {
	return todo_usecase.Input{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	}
}

func (h *TodoHandler) toResponse(t *domain_todo.Todo) todoResponse {
	return todoResponse{
		ID:          h.ids.render(t.ID),
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
	}
}
