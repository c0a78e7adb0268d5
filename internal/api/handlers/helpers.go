package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.\-]{1,10}$`)

// normalizeTicker upper-cases t and reports whether it is a plausible symbol
func normalizeTicker(t string) (string, bool) {
	t = strings.ToUpper(strings.TrimSpace(t))
	return t, tickerPattern.MatchString(t)
}

// queryLimit parses ?limit=, clamping to [1, max]
func queryLimit(r *http.Request, def, max int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	if n > max {
		n = max
	}
	return n, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
