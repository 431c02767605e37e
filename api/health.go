package api

import (
	"context"
	"net/http"
	"time"
)

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// ready reports whether the database answers a ping.
func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.PingContext(ctx); err != nil {
		a.Response(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	a.Response(w, http.StatusOK, "ready")
}
