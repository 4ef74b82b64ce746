package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *api) handleOddsSports(w http.ResponseWriter, r *http.Request) {
	out, err := a.oddsSvc.Sports(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, orEmpty(out))
}

// handleOddsEvents relays the provider's event document unchanged.
func (a *api) handleOddsEvents(w http.ResponseWriter, r *http.Request) {
	out, err := a.oddsSvc.Events(r.Context(), chi.URLParam(r, "sport"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
