package httpapi

import (
	"net/http"

	"github.com/tanpawarit/dining-concierge/dining/lex"
)

func (a *api) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *api) dialogHook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	event, err := lex.DecodeEvent(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	resp, err := a.dialog.HandleTurn(r.Context(), event.Turn())
	if err != nil {
		a.logger.Error().Err(err).Str("session_id", event.SessionID).Msg("dialog turn failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, lex.Response(event, resp))
}

func (a *api) invoke(w http.ResponseWriter, r *http.Request) {
	report, err := a.worker.ProcessBatch(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("fulfillment invocation failed")
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, report.BatchResponse())
}
