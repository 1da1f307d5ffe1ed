/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for rate limiting, decoding
the session token and purpose, upgrading the HTTP connection to WebSocket, registering it with the
coordinator and running the client lifecycle.
*/
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"rwchat/internal/app/chat"
	"rwchat/internal/pkg/errs"
	"rwchat/internal/pkg/limiter"
	"rwchat/internal/pkg/logx"
	"rwchat/internal/pkg/resp"
)

// registerTimeout bounds how long an upgraded connection waits to be queued for registration.
const registerTimeout = 5 * time.Second

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// The role comes from the token; the client only chooses the purpose.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rateLimiter.Allow(r) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", limiter.ClientIP(r))
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		query := r.URL.Query()

		purpose, err := chat.ParsePurpose(query.Get("purpose"))
		if err != nil {
			logx.Warn("WebSocket request rejected: Unknown purpose", "purpose", query.Get("purpose"))
			resp.RespondError(w, r, errs.From(err))
			return
		}

		identity, err := chat.IdentityFromToken(query.Get("token"), deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("WebSocket request rejected: Invalid token")
			resp.RespondError(w, r, errs.From(err))
			return
		}

		logx.Info("Attempting to upgrade connection", "identity_id", identity.ID, "purpose", string(purpose))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), registerTimeout)
		session, err := deps.Coordinator.Register(ctx, identity, purpose)
		cancel()

		if err != nil {
			chat.RejectConnection(conn, err)
			return
		}

		client := chat.NewClient(deps.Coordinator, deps.Profiles, conn, session)

		go client.WritePump()

		logx.Info("WebSocket connection established and client registered",
			"session_id", session.ID,
			"identity_id", identity.ID,
			"state", session.State(),
		)

		client.ReadPump()
	}
}
