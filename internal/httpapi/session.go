package httpapi

import (
	"net/http"

	"chatmodeld/pkg/types"
)

// handleReset replaces a model's generation session, dropping accumulated
// conversation state. An empty model resets the server default.
func handleReset(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ResetRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if err := svc.ResetSession(r.Context(), req.Model); err != nil {
			writeManagerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.AckResponse{Model: req.Model, Status: "reset"})
	}
}

func handleUnload(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.UnloadRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if req.Model == "" {
			writeJSONError(w, http.StatusBadRequest, "model is required")
			return
		}
		if err := svc.Unload(req.Model); err != nil {
			writeManagerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.AckResponse{Model: req.Model, Status: "unloaded"})
	}
}

// handleSwitch starts a background model load and acknowledges with an
// operation ID; progress shows up in /status and the event stream.
func handleSwitch(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SwitchRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}
		if req.Model == "" {
			writeJSONError(w, http.StatusBadRequest, "model is required")
			return
		}
		opID, err := svc.Switch(r.Context(), req.Model)
		if err != nil {
			writeManagerError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, types.OpResponse{OpID: opID})
	}
}
