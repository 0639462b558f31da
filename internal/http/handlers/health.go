package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"
)

const healthTimeout = 2 * time.Second

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// Health probes every configured check concurrently. Any failure turns the
// answer into 503 "degraded" with the failing component marked.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(a.Checks))
	for name := range a.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]error, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, p Pinger) {
			defer wg.Done()
			results[i] = p.Ping(ctx)
		}(i, a.Checks[name])
	}
	wg.Wait()

	resp := healthResponse{Status: "ok", Components: make(map[string]string, len(names))}
	for i, name := range names {
		if err := results[i]; err != nil {
			a.Logger.Warn().Err(err).Str("component", name).Msg("health check failed")
			resp.Status = "degraded"
			resp.Components[name] = "unreachable"
			continue
		}
		resp.Components[name] = "ok"
	}
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	a.json(w, status, resp)
}
