package ws

import (
	"encoding/json"
	"sync"
)

// Client is a single staff WebSocket connection scoped to one property.
type Client struct {
	UserID     uint
	Role       string
	PropertyID uint
	Send       chan []byte
	hub        *StaffHub
	mu         sync.Mutex
	closed     bool
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.hub != nil {
		c.hub.unregister(c)
	}
}

// StaffHub fans booking and payment events out to the staff connections
// watching each property. It implements service.StaffBroadcaster.
type StaffHub struct {
	mu         sync.RWMutex
	byProperty map[uint]map[*Client]struct{}
}

func NewStaffHub() *StaffHub {
	return &StaffHub{byProperty: make(map[uint]map[*Client]struct{})}
}

func (h *StaffHub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	if h.byProperty[c.PropertyID] == nil {
		h.byProperty[c.PropertyID] = make(map[*Client]struct{})
	}
	h.byProperty[c.PropertyID][c] = struct{}{}
}

func (h *StaffHub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.byProperty[c.PropertyID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byProperty, c.PropertyID)
		}
	}
}

// BroadcastStaff sends the payload to every staff connection watching the
// property. A slow consumer drops the message rather than stalling the
// broadcast.
func (h *StaffHub) BroadcastStaff(propertyID uint, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	m := h.byProperty[propertyID]
	clients := make([]*Client, 0, len(m))
	for c := range m {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		select {
		case c.Send <- data:
		default:
		}
	}
}

func (h *StaffHub) ClientCount(propertyID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byProperty[propertyID])
}
