package httpadapter

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	todo_usecase "github.com/hijjiri/todo-api/internal/usecase/todo"
	"go.uber.org/zap"
)

// TodoHandler は /todos 配下の REST ハンドラ
type TodoHandler struct {
	uc     todo_usecase.Usecase
	logger *zap.Logger
}

func NewTodoHandler(uc todo_usecase.Usecase, logger *zap.Logger) *TodoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TodoHandler{uc: uc, logger: logger}
}

func (h *TodoHandler) register(r gin.IRoutes) {
	r.POST("/todos", h.Create)
	r.GET("/todos", h.All)
	r.GET("/todos/:id", h.Find)
	r.PATCH("/todos/:id", h.Update)
	r.DELETE("/todos/:id", h.Delete)
}

// POST /todos
func (h *TodoHandler) Create(c *gin.Context) {
	var body CreateTodoRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeBindError(c, err)
		return
	}

	t, err := h.uc.Create(c.Request.Context(), body.Text)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Header("Location", "/todos/"+strconv.FormatInt(t.ID, 10))
	c.JSON(http.StatusCreated, toResponse(t))
}

// GET /todos
func (h *TodoHandler) All(c *gin.Context) {
	list, err := h.uc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(list))
}

// GET /todos/:id
func (h *TodoHandler) Find(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	t, err := h.uc.Find(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(t))
}

// PATCH /todos/:id
func (h *TodoHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var body UpdateTodoRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeBindError(c, err)
		return
	}

	t, err := h.uc.Update(c.Request.Context(), id, body.toDomain())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(t))
}

// DELETE /todos/:id
func (h *TodoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.uc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseID は数値でない id を 400 で弾く。範囲チェックは usecase に任せる。
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}
