package httpapi

import (
	"net/http"

	"github.com/lineupwatch/lineup-tracker/internal/platform/logging"
)

func NewRouter(handler *Handler, logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /v1/monitors", handler.ListMonitors)
	mux.HandleFunc("GET /v1/monitors/{matchID}", handler.GetMonitor)
	mux.HandleFunc("POST /v1/schedule/refresh", handler.RefreshSchedule)
	mux.HandleFunc("GET /v1/squad", handler.GetSquad)
	mux.HandleFunc("POST /v1/squad/reload", handler.ReloadSquad)
	mux.HandleFunc("GET /v1/alerts", handler.ListAlerts)
	mux.HandleFunc("POST /v1/alerts/test", handler.SendTestAlert)
	mux.HandleFunc("POST /v1/export", handler.TriggerExport)

	return RequestTracing(RequestLogging(logger, recoverPanic(logger, mux)))
}
