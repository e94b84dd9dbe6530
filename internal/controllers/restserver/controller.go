package restserver

import (
	"context"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	stdlog "log"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/oysterdash/internal/lowess"
	"github.com/chrissnell/oysterdash/internal/types"
	"github.com/chrissnell/oysterdash/pkg/config"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// SampleProvider returns the sample set for the current session
type SampleProvider interface {
	Get(ctx context.Context) ([]types.Sample, error)
}

// Controller represents the dashboard HTTP server
type Controller struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	httpCfg  config.HTTPData
	chart    config.ChartData
	trend    lowess.Params
	Server   http.Server
	FS       fs.FS
	index    *htmltemplate.Template
	samples  SampleProvider
	logger   *zap.SugaredLogger
	handlers *Handlers
	serveErr chan error
}

// NewController creates a new dashboard controller
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, samples SampleProvider, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:     ctx,
		wg:      wg,
		httpCfg: cfg.HTTP,
		chart:   cfg.Chart,
		trend: lowess.Params{
			Frac:       cfg.Trend.Frac,
			Iterations: cfg.Trend.Iterations,
		},
		samples:  samples,
		logger:   logger,
		serveErr: make(chan error, 1),
	}

	if err := ctrl.trend.Validate(); err != nil {
		return nil, fmt.Errorf("invalid trend configuration: %w", err)
	}

	// If a listen address was not provided, listen on all interfaces
	if ctrl.httpCfg.ListenAddr == "" {
		logger.Info("http.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		ctrl.httpCfg.ListenAddr = "0.0.0.0"
	}
	if ctrl.httpCfg.Port == 0 {
		logger.Info("http.port not provided; defaulting to 8080")
		ctrl.httpCfg.Port = 8080
	}

	ctrl.FS = GetAssets()

	index, err := htmltemplate.New("index.html.tmpl").ParseFS(ctrl.FS, "index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("error parsing dashboard template: %w", err)
	}
	ctrl.index = index

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.httpCfg.ListenAddr, ctrl.httpCfg.Port)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the HTTP server and stops it when the context ends
func (c *Controller) StartController() error {
	c.logger.Infof("Starting dashboard server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		var err error
		if c.httpCfg.TLSCertPath != "" && c.httpCfg.TLSKeyPath != "" {
			err = c.Server.ListenAndServeTLS(c.httpCfg.TLSCertPath, c.httpCfg.TLSKeyPath)
		} else {
			err = c.Server.ListenAndServe()
		}
		if err != http.ErrServerClosed {
			c.logger.Errorf("dashboard server error: %v", err)
			c.serveErr <- err
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("Shutting down the dashboard server...")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := c.Server.Shutdown(ctx); err != nil {
			c.logger.Warnf("dashboard server shutdown: %v", err)
		}
	}()

	return nil
}

// Err delivers the error that stopped the listener. Nothing is sent after a
// clean shutdown.
func (c *Controller) Err() <-chan error {
	return c.serveErr
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() http.Handler {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware, c.accessLogMiddleware)

	router.HandleFunc("/api/samples", c.handlers.GetSamples).Methods(http.MethodGet)
	router.HandleFunc("/api/trend", c.handlers.GetTrend).Methods(http.MethodGet)
	router.HandleFunc("/api/figure", c.handlers.GetFigure).Methods(http.MethodGet)

	router.HandleFunc("/healthz", c.handlers.GetHealth).Methods(http.MethodGet)
	router.HandleFunc("/", c.handlers.ServeIndex).Methods(http.MethodGet)

	// Static file serving
	static := http.FileServer(http.FS(c.FS))
	router.PathPrefix("/js/").Handler(static)
	router.PathPrefix("/css/").Handler(static)

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(stdLogger(c.logger)),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(handlers.CompressHandler(router))
}

func stdLogger(logger *zap.SugaredLogger) *stdlog.Logger {
	return zap.NewStdLog(logger.Desugar())
}
