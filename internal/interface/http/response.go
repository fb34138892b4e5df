package httpadapter

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
	"github.com/hijjiri/todo-api/internal/logging"
	todo_usecase "github.com/hijjiri/todo-api/internal/usecase/todo"
	"go.uber.org/zap"
)

// ErrorCode はクライアントが機械的に判定するためのコード
type ErrorCode string

const (
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"     // 400
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"       // 404
	ErrCodeUnprocessable ErrorCode = "UNPROCESSABLE"   // 422
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"  // 500
	ErrCodeTimeout       ErrorCode = "REQUEST_TIMEOUT" // 504
)

type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ErrorResponse はエラー時の共通レスポンス
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    ErrorCode     `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code ErrorCode, message string, details []ErrorDetail) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}

// writeError は usecase / repository のエラーを HTTP ステータスに寄せる。
// 想定外のエラーは中身を返さず、ログにだけ残す。
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var nf *domain_todo.NotFoundError

	switch {
	case errors.As(err, &nf):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, nf.Error(), nil)
	case errors.Is(err, todo_usecase.ErrNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "todo not found", nil)
	case errors.Is(err, todo_usecase.ErrEmptyText):
		respondError(c, http.StatusUnprocessableEntity, ErrCodeUnprocessable, "validation failed",
			[]ErrorDetail{{Field: "text", Message: "must not be empty"}})
	case errors.Is(err, todo_usecase.ErrInvalidID):
		respondError(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer", nil)
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("request timeout", append(logging.Fields(c.Request.Context()), zap.Error(err))...)
		respondError(c, http.StatusGatewayTimeout, ErrCodeTimeout, "request timeout", nil)
	default:
		logger.Error("internal error",
			append(logging.Fields(c.Request.Context()),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)...)
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error", nil)
	}
}

// writeBindError は ShouldBindJSON の失敗を 400（壊れた JSON）と 422（検証エラー）に分ける。
func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]ErrorDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, ErrorDetail{
				Field:   strings.ToLower(fe.Field()),
				Message: "failed on '" + fe.Tag() + "'",
			})
		}
		respondError(c, http.StatusUnprocessableEntity, ErrCodeUnprocessable, "validation failed", details)
		return
	}
	respondError(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed JSON body", nil)
}
