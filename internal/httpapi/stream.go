package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/obs"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/session"
)

// Stream handles Server-Sent Events for dashboard refreshes. EventSource
// cannot set headers, so the token arrives as a query parameter here.
func (a *API) Stream(w http.ResponseWriter, r *http.Request) {
	if a.cfg.Stream == nil {
		http.Error(w, "streaming disabled", http.StatusServiceUnavailable)
		return
	}

	token := strings.TrimSpace(r.URL.Query().Get(session.TokenQueryParam))
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "missing token")
		return
	}
	if _, err := a.cfg.Auth.Verify(token); err != nil {
		writeError(w, r, http.StatusUnauthorized, "invalid token")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch := a.cfg.Stream.Subscribe(ctx)
	obs.SetStreamSubscribers(a.cfg.Stream.Subscribers())
	defer func() { obs.SetStreamSubscribers(a.cfg.Stream.Subscribers()) }()

	// Send an initial comment to establish the stream
	_, _ = w.Write([]byte(": stream started\n\n"))
	flusher.Flush()

	for event := range ch {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n\n"))
		flusher.Flush()
	}
}
