// Package server exposes the slots of a stash host over http.
package server

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"tespkg.in/stash/pkg/backend"
	"tespkg.in/stash/pkg/logging"
	"tespkg.in/stash/pkg/stash"
	"tespkg.in/stash/pkg/store"
)

type Server struct {
	shutdown chan error

	ginEngine *gin.Engine

	args *Args

	client *stash.Client

	logger *zap.Logger
}

// replaceable set of functions for fault injection
type patchTable struct {
	buildLogger func(options *logging.Options) (*zap.Logger, error)
	openHost    func(dsn, sessionID string, opts ...backend.Option) (store.Host, error)
}

func New(a *Args) (*Server, error) {
	return newServer(a, newPatchTable())
}

func newPatchTable() *patchTable {
	return &patchTable{
		buildLogger: (*logging.Options).Build,
		openHost:    backend.Open,
	}
}

func newServer(a *Args, p *patchTable) (*Server, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	logger, err := p.buildLogger(a.LoggingOptions)
	if err != nil {
		return nil, err
	}

	host, err := p.openHost(a.Dsn, a.SessionID, backend.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	client := stash.New(host, stash.WithLogger(logger.Named("stash")), stash.WithRegisterer(reg))

	// Create gin engine
	ge := gin.Default()
	ge.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"*"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	const metricPath = "/metrics"
	ge.Use(newMeter(reg, "stashd").GinMeterHandler(metricPath, "/healthz"))

	ge.GET(a.SpecPath, gzip.Gzip(gzip.DefaultCompression), func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; charset=utf-8")
		if err := GenerateSpec(c.Writer, a.SpecArgs); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
			return
		}
	})

	// Create APIs handler
	handler := NewHandler(client)
	ge.GET("/entries", handler.GetEntries)
	ge.DELETE("/entries", handler.DeleteEntries)
	ge.GET("/size", handler.GetSize)

	ge.GET("/key/:area/:namespace/:name", handler.GetKey)
	ge.PUT("/key/:area/:namespace/:name", handler.PutKey)
	ge.PATCH("/key/:area/:namespace/:name", handler.PatchKey)
	ge.DELETE("/key/:area/:namespace/:name", handler.DeleteKey)

	ge.GET("/healthz", func(c *gin.Context) {})

	ge.GET(metricPath, gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return &Server{
		ginEngine: ge,
		args:      a,
		client:    client,
		logger:    logger,
	}, nil
}

func (s *Server) Run() {
	s.shutdown = make(chan error)
	go func() {
		s.logger.Info("Listening", zap.String("addr", s.args.ListenAddr))
		err := http.ListenAndServe(s.args.ListenAddr, s.ginEngine)

		s.shutdown <- err
	}()
}

func (s *Server) Wait() error {
	if s.shutdown == nil {
		return fmt.Errorf("server not running")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		s.shutdown <- nil
	}()

	err := <-s.shutdown
	s.shutdown = nil
	return err
}

func (s *Server) Close() {
	s.logger.Info("Close server")

	if s.shutdown != nil {
		_ = s.Wait()
	}

	if err := s.client.Close(); err != nil {
		s.logger.Warn("Close stash client failed", zap.Error(err))
	}
	if err := s.client.Host().Close(); err != nil {
		s.logger.Warn("Close store host failed", zap.Error(err))
	}
	_ = s.logger.Sync()
}

// ServeHTTP lets the server be mounted or driven by tests directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.ginEngine.ServeHTTP(w, r)
}
