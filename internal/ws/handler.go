package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"messaging-service/internal/models"
	"messaging-service/internal/observability"
)

// TokenVerifier validates a bearer token and returns the user id.
type TokenVerifier interface {
	ParseToken(token string) (int, error)
}

// PresenceUpdater is the presence lifecycle consumed by the gateway.
type PresenceUpdater interface {
	SetOnline(ctx context.Context, userID int, online bool) error
}

// UnreadCounter supplies the unread notification count pushed on connect.
type UnreadCounter interface {
	UnreadCount(ctx context.Context, userID int) (int, error)
}

// Handler upgrades connections, tracks presence and routes client frames.
type Handler struct {
	hub        *Hub
	verifier   TokenVerifier
	presence   PresenceUpdater
	unread     UnreadCounter
	graceDelay time.Duration
	log        *zap.SugaredLogger
}

// NewHandler constructs a Handler. graceDelay is how long a disconnect is
// tolerated before the user is marked offline, so brief reconnects do not flap
// the status.
func NewHandler(hub *Hub, verifier TokenVerifier, presence PresenceUpdater, unread UnreadCounter, graceDelay time.Duration, log *zap.SugaredLogger) *Handler {
	return &Handler{hub: hub, verifier: verifier, presence: presence, unread: unread, graceDelay: graceDelay, log: log}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientFrame is what connected clients may send: conversation room control
// and transient typing indicators.
type clientFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	RecipientID    int    `json:"recipient_id,omitempty"`
	IsTyping       bool   `json:"is_typing"`
}

// Handle upgrades the connection and registers the client in its user group.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messaging-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	userID, err := h.verifier.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddUserClient(userID, conn, info)
	observability.IncWSActive("user")
	observability.IncWSEvent("user", "ws_connect")
	_ = observability.PublishEvent(ctx, "ws_events.messaging", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"conn_id":   info.ConnID,
				"user_id":   info.UserID,
				"device_id": info.DeviceID,
				"ip":        info.IP,
			},
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))

	h.onConnect(userID)

	go h.readLoop(userID, conn, info)
}

// onConnect marks the user online and pushes the current unread count.
func (h *Handler) onConnect(userID int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.presence.SetOnline(ctx, userID, true); err != nil {
		h.log.Warnw("set online failed", "user_id", userID, "error", err)
	}
	count, err := h.unread.UnreadCount(ctx, userID)
	if err != nil {
		h.log.Warnw("unread count failed", "user_id", userID, "error", err)
		return
	}
	h.hub.SendToUser(userID, models.Event{Type: EventUnreadCount, Payload: models.UnreadCountPayload{Count: count}})
}

func (h *Handler) readLoop(userID int, conn *websocket.Conn, info ConnInfo) {
	defer func() {
		h.hub.RemoveUserClient(userID, conn)
		observability.DecWSActive("user")
		observability.IncWSEvent("user", "ws_disconnect")
		_ = observability.PublishEvent(context.Background(), "ws_events.messaging", observability.EventEnvelope{
			EventType: "ws_events",
			EventName: "ws_disconnect",
			Payload: map[string]interface{}{
				"ws": map[string]interface{}{
					"conn_id":     info.ConnID,
					"user_id":     info.UserID,
					"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
				},
			},
		}, observability.BuildHeaders(info.RequestID, info.TraceID))
		conn.Close()
		h.scheduleOffline(userID)
		h.log.Infow("ws disconnected", "user_id", userID, "conn_id", info.ConnID,
			"duration_ms", time.Since(info.ConnectedAt).Milliseconds())
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("user", "ws_error")
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		switch frame.Type {
		case "join_conversation":
			if frame.ConversationID != "" {
				h.hub.JoinGroup(ConversationGroup(frame.ConversationID), conn)
			}
		case "leave_conversation":
			if frame.ConversationID != "" {
				h.hub.LeaveGroup(ConversationGroup(frame.ConversationID), conn)
			}
		case "typing":
			if frame.RecipientID != 0 {
				h.hub.SendToUser(frame.RecipientID, models.Event{
					Type: EventUserTyping,
					Payload: models.TypingPayload{
						ConversationID: frame.ConversationID,
						UserID:         userID,
						IsTyping:       frame.IsTyping,
					},
				})
			}
		}
	}
}

// scheduleOffline flips the user offline after the grace delay, unless a new
// connection showed up in the meantime.
func (h *Handler) scheduleOffline(userID int) {
	time.AfterFunc(h.graceDelay, func() {
		if h.hub.HasConnections(userID) {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.presence.SetOnline(ctx, userID, false); err != nil {
			h.log.Warnw("set offline failed", "user_id", userID, "error", err)
		}
	})
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && header[:7] == "Bearer " {
		return header[7:]
	}
	return c.Query("token")
}
