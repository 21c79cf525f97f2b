// Package function exposes the docqa HTTP API as a Cloud Function.
package function

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/serisow/docqa/config"
	"github.com/serisow/docqa/handlers"
	"github.com/serisow/docqa/logging"
	"github.com/serisow/docqa/pipeline_type"
	"github.com/serisow/docqa/server"
)

func init() {
	functions.HTTP("DocumentQA", newLazyHandler(buildApp).ServeHTTP)
}

// lazyHandler builds the wrapped handler on the first request. A failed build
// is not retried.
type lazyHandler struct {
	build func(ctx context.Context) (http.Handler, error)

	once    sync.Once
	handler http.Handler
	initErr error
}

func newLazyHandler(build func(ctx context.Context) (http.Handler, error)) *lazyHandler {
	return &lazyHandler{build: build}
}

func (l *lazyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.once.Do(func() {
		l.handler, l.initErr = l.build(context.Background())
	})
	if l.initErr != nil {
		log.Printf("CRITICAL: docqa initialization failed: %v", l.initErr)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(pipeline_type.ErrorResponse{
			Error:     "Service initialization failed",
			ErrorCode: handlers.CodeInternal,
		})
		return
	}
	l.handler.ServeHTTP(w, r)
}

// buildApp wires the same stack as the standalone server. Logs go to stdout,
// which the platform collects.
func buildApp(ctx context.Context) (http.Handler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, _, err := logging.NewLogger(cfg.LogLevel, "")
	if err != nil {
		return nil, err
	}
	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return app.Handler, nil
}
