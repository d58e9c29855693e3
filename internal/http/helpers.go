package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ledger/internal/core"
	"ledger/internal/filter"
	"ledger/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError maps the engine's error taxonomy onto status codes:
// validation failures are client errors, a missing record is 404,
// everything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case isValidationError(err):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// errBadParam classifies malformed query parameters as client errors.
var errBadParam = errors.New("invalid query parameter")

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		errBadParam,
		core.ErrInvalidDateRange,
		core.ErrUnsupportedCurrency,
		core.ErrInvalidKind,
		core.ErrInvalidFrequency,
		core.ErrInvalidInterval,
		core.ErrInvalidDayOfMonth,
		core.ErrInvalidAmount,
		core.ErrInvalidDate,
		core.ErrEmptyWorkspace,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// parseScope builds a filter scope from query parameters. Dates arrive
// inclusive on both ends; the half-open conversion stays inside the
// filter package.
func parseScope(query url.Values) (filter.Scope, error) {
	scope := filter.NewScope(strings.TrimSpace(query.Get("workspace")))

	if v := strings.TrimSpace(query.Get("start")); v != "" {
		start, err := core.ParseDate(v)
		if err != nil {
			return filter.Scope{}, err
		}
		scope = scope.From(start)
	}
	if v := strings.TrimSpace(query.Get("end")); v != "" {
		end, err := core.ParseDate(v)
		if err != nil {
			return filter.Scope{}, err
		}
		scope = scope.Through(end)
	}
	if v := strings.TrimSpace(query.Get("currency")); v != "" {
		currency, err := core.ParseCurrency(v)
		if err != nil {
			return filter.Scope{}, err
		}
		scope.Currency = currency
	}

	scope.AccountIDs = splitParam(query.Get("accounts"))
	scope.CategoryIDs = splitParam(query.Get("categories"))
	scope.MerchantIDs = splitParam(query.Get("merchants"))

	if v := query.Get("includeArchived"); v != "" {
		scope.IncludeArchived = v == "true" || v == "1"
	}
	if v := query.Get("includePending"); v != "" {
		scope.IncludePending = v == "true" || v == "1"
	}

	return scope, scope.Validate()
}

func splitParam(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseLimit(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return 0, nil // engine applies its default
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("limit must be a positive integer: %w", errBadParam)
	}
	return limit, nil
}
