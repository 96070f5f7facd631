package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/mknind/backoffice/api/responses"
	"github.com/mknind/backoffice/pkg/config"
	pkgerrors "github.com/mknind/backoffice/pkg/errors"
	"github.com/mknind/backoffice/pkg/logger"
)

const (
	envHeader    = "X-Mkn-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is satisfied by the db, redis and mongo clients.
type Pinger interface {
	Ping(context.Context) error
}

// Dependencies names the pingers checked by readiness. Nil entries are
// reported as "disabled".
type Dependencies map[string]Pinger

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency and fails with 503 if any is down.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		var failed bool
		for name, p := range deps {
			if p == nil {
				checks[name] = "disabled"
				continue
			}
			if err := p.Ping(ctx); err != nil {
				failed = true
				checks[name] = "down"
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{"dependency": name, "error": err.Error()}), "health.dependency_down")
				}
				continue
			}
			checks[name] = "ok"
		}

		if failed {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
