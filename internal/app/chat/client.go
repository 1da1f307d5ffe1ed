/*
Package chat contains the core logic for the single-writer chat channel: the writer lock,
the live connection registry, message broadcasting and the profile rename exchange.

This file defines the Client struct, the WebSocket transport of one registered session. It
runs the read and write pumps and funnels the connection's messages and disconnect into
the Coordinator.
*/
package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"rwchat/internal/pkg/errs"
	"rwchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxFrameSize = 16384

	// timeout for the directory call of a profile exchange.
	profileTimeout = 5 * time.Second
)

// Client represents an active WebSocket connection bound to a registered Session.
type Client struct {
	coordinator *Coordinator
	profiles    *ProfileExchange

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// registry entry this transport belongs to.
	session *Session

	// structured logger with session context.
	logger zerolog.Logger
}

// NewClient constructs and returns a new Client instance.
func NewClient(coordinator *Coordinator, profiles *ProfileExchange, wsConn *websocket.Conn, session *Session) *Client {
	clientLogger := logx.Logger().With().
		Str("session_id", session.ID).
		Str("identity_id", session.Identity.ID).
		Str("purpose", string(session.Purpose)).
		Logger()

	return &Client{
		coordinator: coordinator,
		profiles:    profiles,
		conn:        wsConn,
		session:     session,
		logger:      clientLogger,
	}
}

// ReadPump handles reading frames from the WebSocket connection.
// It handles heartbeats (Pong), frame parsing, and unregisters the session when the
// connection closes for any reason.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection closed unexpectedly")
			}
			break
		}

		c.processInboundMessage(messageBytes)
	}
}

// cleanupOnDisconnect funnels the disconnect into the coordinator and closes the socket.
// Unregister returns only after the registry entry is gone and, for the writer, the
// lock has been released.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.coordinator.Unregister(c.session.ID)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInboundMessage decodes one client frame and dispatches it.
func (c *Client) processInboundMessage(messageBytes []byte) {
	var frame InboundFrame
	if err := json.Unmarshal(messageBytes, &frame); err != nil {
		c.logger.Warn().Err(err).
			Int("message_bytes", len(messageBytes)).
			Msg("Protocol error: client sent invalid JSON")
		return
	}

	switch frame.Type {
	case TypeChatMessage:
		if err := c.coordinator.Submit(context.Background(), c.session.ID, frame.Text, frame.TempID); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to submit chat message")
		}

	case TypeProfileUpdate:
		ctx, cancel := context.WithTimeout(context.Background(), profileTimeout)
		c.profiles.HandleRename(ctx, c.session, frame.NewName)
		cancel()

	default:
		c.logger.Warn().Str("msg_type", string(frame.Type)).Msg("Protocol error: unsupported message type")
	}
}

// WritePump writes queued frames from the session's outbound queue to the WebSocket.
// It exits when the queue is closed by the coordinator or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit so ReadPump unblocks.
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	outbound := c.session.Outbound()

	for {
		select {
		case message, ok := <-outbound:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one frame pulled from the outbound queue.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// RejectConnection closes an upgraded connection whose registration failed.
// A writer conflict is reported with the policy-violation close code (1008).
func RejectConnection(conn *websocket.Conn, err error) {
	customErr := errs.From(err)

	closeCode := websocket.CloseInternalServerErr
	switch customErr.Code {
	case errs.ErrWriterConflict:
		closeCode = websocket.ClosePolicyViolation
	case errs.ErrCoordinatorStopped:
		closeCode = websocket.CloseTryAgainLater
	}

	logx.Logger().Warn().
		Int("close_code", closeCode).
		Int("error_code", customErr.Code).
		Msg("Rejecting WebSocket connection.")

	closeMessage := websocket.FormatCloseMessage(closeCode, customErr.Message)

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if writeErr := conn.WriteMessage(websocket.CloseMessage, closeMessage); writeErr != nil {
		logx.Logger().Debug().Err(writeErr).Msg("Failed to send close frame.")
	}

	_ = conn.Close()
}
