package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/merchantiq/pricewise-backend/api/responses"
	"github.com/merchantiq/pricewise-backend/pkg/bigquery"
	"github.com/merchantiq/pricewise-backend/pkg/config"
	"github.com/merchantiq/pricewise-backend/pkg/db"
	pkgerrors "github.com/merchantiq/pricewise-backend/pkg/errors"
	"github.com/merchantiq/pricewise-backend/pkg/logger"
	"github.com/merchantiq/pricewise-backend/pkg/redis"
	"github.com/merchantiq/pricewise-backend/pkg/storage/gcs"
)

const readinessTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PriceWise-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the hard dependencies and reports per-component status.
// Object storage and the analytics sink are optional: their failures are
// reported but do not flip readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger, bqP bigquery.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PriceWise-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		components := map[string]string{}
		ready := true

		components["postgres"] = pingStatus(ctx, dbP)
		if components["postgres"] != "ok" {
			ready = false
		}
		components["redis"] = pingStatus(ctx, redisP)
		if components["redis"] != "ok" {
			ready = false
		}
		if gcsP != nil {
			components["gcs"] = pingStatus(ctx, gcsP)
		}
		if bqP != nil {
			components["bigquery"] = pingStatus(ctx, bqP)
		}

		if !ready {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(components)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"status":     "ready",
			"components": components,
		})
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func pingStatus(ctx context.Context, p pinger) string {
	if p == nil {
		return "unconfigured"
	}
	if err := p.Ping(ctx); err != nil {
		return "error"
	}
	return "ok"
}
