package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/echemsim/internal/experiment"
	"github.com/san-kum/echemsim/internal/logging"
	"github.com/san-kum/echemsim/internal/storage"
)

type Options struct {
	Log            logrus.FieldLogger
	Store          *storage.Store // optional; enables saving and GET /api/v1/runs
	AllowedOrigins []string
	Release        bool
}

// Server exposes the simulator over HTTP.
type Server struct {
	router   *gin.Engine
	handler  http.Handler
	log      logrus.FieldLogger
	store    *storage.Store
	registry *experiment.Registry
}

func New(opts Options) *Server {
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}
	if opts.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:   gin.New(),
		log:      opts.Log,
		store:    opts.Store,
		registry: experiment.NewRegistry(),
	}
	s.router.Use(Logger(s.log), ErrorHandler(s.log))
	s.routes()
	s.handler = cors.New(CORSOptions(opts.AllowedOrigins)).Handler(s.router)
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.health)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/mechanisms", s.listMechanisms)
		v1.GET("/presets", s.listPresets)
		v1.GET("/runs", s.listRuns)
		v1.POST("/simulate", s.simulate)
	}

	s.router.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, CodeNotFound, "no route for "+c.Request.URL.Path, nil)
	})
}

// Handler is the router wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("server stopped")
	return nil
}
