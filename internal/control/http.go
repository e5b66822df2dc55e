package control

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTP exposes the plane over a small JSON API.
type HTTP struct {
	addr string
	log  *zap.SugaredLogger
}

func NewHTTP(addr string, log *zap.SugaredLogger) *HTTP {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &HTTP{addr: addr, log: log}
}

func (h *HTTP) Name() string { return "http " + h.addr }

// Handler builds the gin router for p.
func (h *HTTP) Handler(p *Plane) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Job search RPA control plane is running!",
			"status":  "healthy",
		})
	})

	r.GET("/control/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, p.State())
	})

	r.POST("/control/:action", func(c *gin.Context) {
		action, err := ParseAction(c.Param("action"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Infof("🌐 HTTP %s from %s", action, c.ClientIP())

		if action == ActionKill {
			// The process exits inside Apply, so answer first.
			c.JSON(http.StatusAccepted, gin.H{"action": action})
			c.Writer.Flush()
			_ = p.Apply(action)
			return
		}
		_ = p.Apply(action)
		c.JSON(http.StatusAccepted, gin.H{"action": action, "state": p.State()})
	})
	return r
}

func (h *HTTP) Listen(ctx context.Context, p *Plane) error {
	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return errors.Wrapf(err, "control api listen on %s", h.addr)
	}
	srv := &http.Server{
		Handler:           h.Handler(p),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	h.log.Infof("🌐 Control API listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		return errors.Wrap(err, "control api")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "control api shutdown")
	}
	<-errCh
	return nil
}
