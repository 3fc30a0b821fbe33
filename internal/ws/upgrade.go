package ws

import (
	"net/http"
	"strconv"
	"time"

	"kosku/config"
	"kosku/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Authorize decides whether the staff user behind the claims may watch the
// property's event feed. Wired to the booking service's property scoping at
// router setup.
type Authorize func(claims *auth.Claims, propertyID uint) error

// UpgradeStaffWS upgrades GET /ws/properties/:id/bookings. The token travels
// as a query parameter because browsers cannot set headers on WebSocket
// dials.
func UpgradeStaffWS(cfg *config.JWTConfig, hub *StaffHub, authorize Authorize) gin.HandlerFunc {
	return func(c *gin.Context) {
		propertyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || propertyID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, c.Query("token"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if err := authorize(claims, uint(propertyID)); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		client := &Client{
			UserID:     claims.UserID,
			Role:       claims.Role,
			PropertyID: uint(propertyID),
			Send:       make(chan []byte, 256),
		}
		hub.Register(client)
		defer client.Close()
		go writePump(client, conn)
		readPump(conn)
	}
}

// writePump copies messages from client.Send to the connection, pinging to
// keep intermediaries from dropping the idle socket.
func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
