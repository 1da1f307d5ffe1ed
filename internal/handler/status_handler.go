package handler

import (
	"net/http"

	"rwchat/internal/pkg/errs"
	"rwchat/internal/pkg/resp"
)

// HandleStatus reports whether the writer slot is taken and how many readers are connected.
func HandleStatus(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := deps.Coordinator.Snapshot(r.Context())
		if err != nil {
			resp.RespondError(w, r, errs.From(err))
			return
		}

		resp.RespondSuccess(w, r, stats)
	}
}
