// Package httpapi는 자동매매 상태 조회와 제어를 위한 HTTP API를 제공합니다
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/shark/internal/logger"
)

// Server는 gin 기반 HTTP 서버입니다
type Server struct {
	addr   string
	router *gin.Engine
	log    *logrus.Entry
}

// NewServer는 라우트가 등록된 서버를 생성합니다
func NewServer(addr string, r *Router) (*Server, error) {
	if r == nil || r.trader == nil || r.dispatcher == nil {
		return nil, errNoHandler
	}
	if addr == "" {
		addr = ":8080"
	}

	return &Server{addr: addr, router: newEngine(r), log: logger.Component("http")}, nil
}

func newEngine(r *Router) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.Register(engine.Group("/api"))
	return engine
}

func requestLogger() gin.HandlerFunc {
	log := logger.Component("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
			"dur":    time.Since(start),
		}).Debug("HTTP 요청")
	}
}

// Handler는 테스트 등에서 쓸 http.Handler를 반환합니다
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start는 ctx가 취소되거나 에러가 날 때까지 서버를 실행합니다
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.log.Infof("HTTP 서버 시작: %s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
