package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisPubSubChannel = "devlink:events"

// Event types pushed to clients
const (
	EventMessage      = "message"      // new message in a thread
	EventReceipt      = "receipt"      // delivered/read map change
	EventThread       = "thread"       // thread created or updated
	EventPresence     = "presence"     // peer went online/offline
	EventRequest      = "request"      // message request received/resolved
	EventNotification = "notification" // generic notification
	EventChatList     = "chat_list"    // conversation list changed
)

// Event represents a real-time event sent via WebSocket
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// SessionListener observes client connect/disconnect per user. The presence
// tracker hangs off these hooks so the socket lifecycle drives the
// online/offline transitions.
type SessionListener interface {
	OnConnect(userID string)
	OnDisconnect(userID string)
}

// AckHandler processes a client's delivery acknowledgement for a thread
type AckHandler func(threadID, userID string)

// Hub manages WebSocket clients and broadcasts events
type Hub struct {
	// Registered clients grouped by user ID
	clients map[string]map[*Client]bool

	// Register/unregister channels
	register   chan *Client
	unregister chan *Client

	// Broadcast to a specific user
	broadcast chan *targetedEvent

	mu          sync.RWMutex
	redisClient *redis.Client
	sessions    SessionListener
	ackHandler  AckHandler

	// instanceID distinguishes this process's own Redis publications from
	// other instances', so the subscriber does not deliver them twice
	instanceID string

	ctx    context.Context
	cancel context.CancelFunc
}

type targetedEvent struct {
	UserID string
	Event  *Event
}

// NewHub creates a new Hub
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *targetedEvent, 256),
		redisClient: redisClient,
		instanceID:  uuid.New().String(),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetSessionListener installs the connect/disconnect observer. Must be
// called before Run.
func (h *Hub) SetSessionListener(l SessionListener) {
	h.sessions = l
}

// SetAckHandler installs the delivery-ack callback invoked when a client
// acknowledges a thread over its socket. Must be called before Run.
func (h *Hub) SetAckHandler(fn AckHandler) {
	h.ackHandler = fn
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// IsConnected reports whether the user has at least one live client
func (h *Hub) IsConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	// Start Redis subscriber if Redis is available
	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			first := len(h.clients[client.userID]) == 0
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mu.Unlock()
			if first && h.sessions != nil {
				// Listener work (DB and Redis writes, presence fan-out)
				// must not block the dispatch loop, and may itself send
				// back through the hub.
				go h.sessions.OnConnect(client.userID)
			}

		case client := <-h.unregister:
			last := false
			h.mu.Lock()
			if clients, ok := h.clients[client.userID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.userID)
						last = true
					}
				}
			}
			h.mu.Unlock()
			if last && h.sessions != nil {
				go h.sessions.OnDisconnect(client.userID)
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			if clients, ok := h.clients[msg.UserID]; ok {
				data, err := json.Marshal(msg.Event)
				if err == nil {
					for client := range clients {
						select {
						case client.send <- data:
						default:
							close(client.send)
							delete(clients, client)
						}
					}
				}
			}
			h.mu.RUnlock()

		case <-h.ctx.Done():
			return
		}
	}
}

// SendToUser sends an event to a specific user (local + Redis publish)
func (h *Hub) SendToUser(userID string, event *Event) {
	// Local broadcast
	h.broadcast <- &targetedEvent{UserID: userID, Event: event}

	// Publish to Redis for multi-instance support
	if h.redisClient != nil {
		msg := &redisMessage{Origin: h.instanceID, UserID: userID, Event: event}
		data, err := json.Marshal(msg)
		if err == nil {
			h.redisClient.Publish(h.ctx, redisPubSubChannel, data) //nolint:errcheck
		}
	}
}

// SendToUsers fans an event out to several users
func (h *Hub) SendToUsers(userIDs []string, event *Event) {
	for _, id := range userIDs {
		h.SendToUser(id, event)
	}
}

type redisMessage struct {
	Origin string `json:"origin"`
	UserID string `json:"user_id"`
	Event  *Event `json:"event"`
}

// subscribeRedis listens for events published by other instances
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleRedisMessage([]byte(msg.Payload))
		case <-h.ctx.Done():
			return
		}
	}
}

// handleRedisMessage re-broadcasts a pub/sub payload to local clients.
// Payloads this instance published itself were already delivered locally at
// publish time and are skipped.
func (h *Hub) handleRedisMessage(payload []byte) {
	var rm redisMessage
	if err := json.Unmarshal(payload, &rm); err != nil {
		return
	}
	if rm.Origin == h.instanceID {
		return
	}
	// Only local broadcast (don't re-publish to Redis)
	h.broadcast <- &targetedEvent{UserID: rm.UserID, Event: rm.Event}
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.cancel()
}
