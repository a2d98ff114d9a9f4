package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"messaging-service/internal/models"
	"messaging-service/internal/observability"
)

// Event names delivered through the hub.
const (
	EventNewMessage        = "new_message"
	EventMessageEdited     = "message_edited"
	EventMessageDeleted    = "message_deleted"
	EventMessageRead       = "message_read"
	EventUserTyping        = "user_typing"
	EventNotification      = "notification"
	EventUnreadCount       = "unread_count"
	EventNotificationsList = "notifications_list"
)

// ConversationGroup names the ad-hoc room for one conversation.
func ConversationGroup(conversationID string) string {
	return "conversation:" + conversationID
}

// Hub maintains active websocket connections, addressed either by the owning
// user (every connection joins its user's group) or by arbitrary named groups
// such as conversation rooms. Delivery is fire-and-forget: a failed write
// drops the connection and nothing is retried.
type Hub struct {
	userConns map[int]map[*websocket.Conn]ConnInfo
	groups    map[string]map[*websocket.Conn]bool
	mu        sync.RWMutex
	log       *zap.SugaredLogger
}

// NewHub creates an empty hub.
func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		userConns: make(map[int]map[*websocket.Conn]ConnInfo),
		groups:    make(map[string]map[*websocket.Conn]bool),
		log:       log,
	}
}

// AddUserClient registers a connection under its user's group.
func (h *Hub) AddUserClient(userID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userConns[userID]; !ok {
		h.userConns[userID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.userConns[userID][conn] = info
}

// RemoveUserClient removes a connection and drops it from every named group.
func (h *Hub) RemoveUserClient(userID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.userConns[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.userConns, userID)
		}
	}
	for name, conns := range h.groups {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.groups, name)
		}
	}
}

// HasConnections reports whether the user still has at least one connection.
func (h *Hub) HasConnections(userID int) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userID]) > 0
}

// JoinGroup adds a connection to a named group.
func (h *Hub) JoinGroup(name string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.groups[name]; !ok {
		h.groups[name] = make(map[*websocket.Conn]bool)
	}
	h.groups[name][conn] = true
}

// LeaveGroup removes a connection from a named group.
func (h *Hub) LeaveGroup(name string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.groups[name]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.groups, name)
		}
	}
}

// SendToUser delivers an event to every connection in the user's group.
func (h *Hub) SendToUser(userID int, event models.Event) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.userConns[userID]))
	for conn := range h.userConns[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Errorw("marshal ws event", "event", event.Type, "error", err)
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Warnw("websocket write error", "user_id", userID, "event", event.Type, "error", err)
			conn.Close()
			h.RemoveUserClient(userID, conn)
			observability.IncWSEvent("user", "ws_error")
		}
	}
}

// SendToGroup delivers an event to every connection in a named group.
func (h *Hub) SendToGroup(name string, event models.Event) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.groups[name]))
	for conn := range h.groups[name] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Errorw("marshal ws event", "event", event.Type, "error", err)
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Warnw("websocket write error", "group", name, "event", event.Type, "error", err)
			conn.Close()
			h.LeaveGroup(name, conn)
			observability.IncWSEvent("group", "ws_error")
		}
	}
}
