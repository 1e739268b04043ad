package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/undeconstructed/gamehub/hub"
)

// Server hosts the hub behind its gateways.
type Server interface {
	Run(ctx context.Context) error
}

func NewServer(cfg *Config) Server {
	log := log.With().Str("component", "server").Logger()
	h := hub.NewHub(log, cfg.PollTimeout)
	return &server{
		cfg: cfg,
		hub: h,
		log: log,
	}
}

type server struct {
	cfg *Config
	hub *hub.Hub
	log zerolog.Logger
}

func (s *server) Run(ctx context.Context) error {
	s.log.Info().Msg("server running")
	defer s.log.Info().Msg("server stopping")

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.log.Info().Msgf("api listening on http://%v", ln.Addr())

	hs := &http.Server{
		Handler:     s.router(),
		ReadTimeout: time.Second * 10,
		// no WriteTimeout: long polls and websockets hold their
		// connections open well past any sane value here
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := hs.Serve(ln)
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(sctx)
	})

	return g.Wait()
}

// router builds the gin engine with both gateways mounted under /api.
func (s *server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log), corsAllowAll())

	rh := restHandler{
		hub:     s.hub,
		maxBody: s.cfg.MaxBodyBytes,
		log:     s.log.With().Str("gw", "web").Logger(),
	}
	ch := updatesHandler{
		hub: s.hub,
		log: s.log.With().Str("gw", "ws").Logger(),
	}

	a := r.Group("/api")
	a.POST("/create-game", rh.createGame)
	a.GET("/list-games", rh.listGames)
	a.POST("/:game_id/join-game", rh.joinGame)
	a.GET("/:game_id/get-state", rh.getState)
	a.POST("/:game_id/submit-move", rh.submitMove)
	a.GET("/:game_id/wait-for-update", rh.waitForUpdate)
	a.GET("/:game_id/updates", ch.serveWS)

	return r
}

// requestLogger tags each request with an id and logs it on the way out.
func requestLogger(l zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Header("X-Request-Id", id)
		start := time.Now()
		c.Next()
		l.Info().
			Str("req", id).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

// corsAllowAll mirrors the permissive CORS policy the browser clients expect.
func corsAllowAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
