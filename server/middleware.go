package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/negroni"
)

const RequestIDHeader = "X-Request-ID"

// RequestID echoes the caller's X-Request-ID or assigns a new one.
func RequestID(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
		r.Header.Set(RequestIDHeader, id)
	}
	w.Header().Set(RequestIDHeader, id)
	next(w, r)
}

// CORS allows any origin, method and header.
func CORS(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Add("Vary", "Origin")
	}

	if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		if headers := r.Header.Get("Access-Control-Request-Headers"); headers != "" {
			w.Header().Set("Access-Control-Allow-Headers", headers)
		}
		w.Header().Set("Access-Control-Max-Age", "600")
		w.WriteHeader(http.StatusOK)
		return
	}

	next(w, r)
}

// AccessLogger writes one slog record per request.
type AccessLogger struct {
	logger *slog.Logger
}

func NewAccessLogger(logger *slog.Logger) *AccessLogger {
	return &AccessLogger{logger: logger}
}

func (l *AccessLogger) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	start := time.Now()
	next(w, r)

	res := w.(negroni.ResponseWriter)
	l.logger.Info("Request completed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", res.Status()),
		slog.Int("size", res.Size()),
		slog.Duration("duration", time.Since(start)),
		slog.String("request_id", r.Header.Get(RequestIDHeader)))
}

// jsonPanicFormatter renders recovered panics in the API error shape.
type jsonPanicFormatter struct{}

func (f *jsonPanicFormatter) FormatPanicError(w http.ResponseWriter, r *http.Request, infos *negroni.PanicInformation) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	json.NewEncoder(w).Encode(map[string]string{
		"error":      "Internal server error",
		"detail":     "An unexpected error occurred",
		"error_code": "internal_error",
	})
}
