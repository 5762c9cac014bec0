package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/multicurrency-account/src/internal/adapter/http/middleware"
	"github.com/api-sage/multicurrency-account/src/internal/logger"
)

func requestFields(r *http.Request) logger.Fields {
	fields := logger.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}
	if pesel := r.PathValue("pesel"); pesel != "" {
		fields["pesel"] = pesel
	}
	if id := r.Header.Get(middleware.RequestIDHeader); id != "" {
		fields["requestId"] = id
	}
	return fields
}

func logRequest(r *http.Request, payload any) {
	fields := requestFields(r)
	if payload != nil {
		fields["payload"] = logger.SanitizePayload(payload)
	}
	logger.Info("http request", fields)
}

func logResponse(r *http.Request, status int, payload any, start time.Time) {
	fields := requestFields(r)
	fields["status"] = status
	fields["durationMs"] = time.Since(start).Milliseconds()
	if payload != nil {
		fields["response"] = logger.SanitizePayload(payload)
	}
	logger.Info("http response", fields)
}

func logError(r *http.Request, err error, extra logger.Fields) {
	fields := requestFields(r)
	for k, v := range extra {
		fields[k] = v
	}
	logger.Error("http handler error", err, fields)
}
