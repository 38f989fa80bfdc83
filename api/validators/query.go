package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQueryBool returns nil when key is absent. Only "true" is truthy, matching
// the public query contract of the listing endpoints.
func ParseQueryBool(r *http.Request, key string) *bool {
	raw, ok := r.URL.Query()[key]
	if !ok || len(raw) == 0 || strings.TrimSpace(raw[0]) == "" {
		return nil
	}
	value := strings.EqualFold(strings.TrimSpace(raw[0]), "true")
	return &value
}

func ParseQueryDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a number").WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

// QueryList collects repeated and comma-separated values for key.
func QueryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
