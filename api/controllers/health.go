package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/studiosite/studiosite-backend/api/responses"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/logger"
)

const readyTimeout = 3 * time.Second

// Pinger is any dependency health/ready can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Studiosite-Env", env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency and reports 503 with the failing
// names when any of them is down.
func HealthReady(env string, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Studiosite-Env", env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		var failed []string
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "down"
				failed = append(failed, name)
				if logg != nil {
					logg.Warn(logg.WithFields(r.Context(), map[string]any{"dependency": name, "error": err.Error()}), "health.dependency_down")
				}
				continue
			}
			checks[name] = "up"
		}

		if len(failed) > 0 {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(map[string]any{"checks": checks})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
