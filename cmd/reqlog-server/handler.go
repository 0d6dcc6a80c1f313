package main

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/augustoroman/reqlog"
	"github.com/augustoroman/reqlog/config"
	"github.com/augustoroman/reqlog/metrics"
)

// newHandler builds the server's routes. Request logs go to logFile;
// failures to write them go to logger.
func newHandler(cfg config.Config, logFile io.Writer, logger *zap.Logger) http.Handler {
	finalizer := reqlog.NewDiskLogFinalizer(logFile)
	finalizer.Diagnostic = func(err error) {
		logger.Error("Failed to write to log file", zap.Error(err))
	}

	router := mux.NewRouter()
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		finalizer.Metrics = metrics.New(reg)
		router.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).
			Methods(http.MethodGet)
	}

	stack := reqlog.TheUsual(finalizer)
	router.Handle("/", stack.Then(respondWith(cfg.Server.ResponseMessage))).
		Methods(http.MethodGet)
	router.NotFoundHandler = stack.Then(http.NotFound)
	return router
}

// respondWith returns a handler that always responds with msg.
func respondWith(msg string) func(w http.ResponseWriter) error {
	return func(w http.ResponseWriter) error {
		_, err := io.WriteString(w, msg)
		return err
	}
}
