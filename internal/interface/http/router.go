// Package httpadapter は Todo の REST API（gin）を提供する。
package httpadapter

import (
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	todo_usecase "github.com/hijjiri/todo-api/internal/usecase/todo"
	"go.uber.org/zap"
)

type Options struct {
	// 0 ならタイムアウトなし
	RequestTimeout time.Duration
	// 空なら CORS ヘッダを付けない
	CORSAllowOrigin string
	// nil なら計測しない
	Metrics *Metrics
}

// NewRouter はミドルウェアとルートを登録した gin.Engine を返す。
// gin のモード（Release / Test）は呼び出し側で決める。
func NewRouter(uc todo_usecase.Usecase, logger *zap.Logger, opts Options) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	doc, err := MarshalOpenAPI()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	// 外側から順に: request id → アクセスログ → panic 回復 → 計測
	r.Use(RequestID())
	r.Use(Logger(logger))
	r.Use(Recovery(logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
	}
	if opts.CORSAllowOrigin != "" {
		r.Use(CORS(opts.CORSAllowOrigin))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(Timeout(opts.RequestTimeout))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello, world!")
	})

	r.GET("/docs", serveSwaggerUI)
	r.GET("/docs/openapi.json", serveOpenAPI(doc))
	r.GET("/openapi.json", serveOpenAPI(doc))

	NewTodoHandler(uc, logger).register(r)

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})

	return r, nil
}

// NewServer は HTTP サーバを組み立てる（Listen は呼び出し側）
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
