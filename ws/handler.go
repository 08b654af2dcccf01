package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ghazyAlghifari508/genting-apps-sub000/config"
	"github.com/ghazyAlghifari508/genting-apps-sub000/security"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browsers cannot set custom headers on WebSocket dials; origin
		// filtering happens at the proxy in production.
		return true
	},
}

// Handle upgrades a consultation chat subscription. The token travels as a
// query parameter because browsers cannot attach an Authorization header to
// a WebSocket dial.
func Handle(h *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		consultationID := c.Query("consultation_id")
		token := c.Query("token")

		userID, err := security.VerifyAccessToken(token)
		if err != nil {
			c.String(http.StatusUnauthorized, "invalid token")
			return
		}

		if consultationID == "" {
			c.String(http.StatusBadRequest, "consultation_id is required")
			return
		}

		var isParticipant bool
		err = config.DB.QueryRow(`
			SELECT EXISTS(
				SELECT 1 FROM consultations co
				LEFT JOIN doctors d ON d.id = co.doctor_id
				WHERE co.id = $1 AND (co.user_id = $2 OR d.user_id = $2)
			)
		`, consultationID, userID).Scan(&isParticipant)
		if err != nil || !isParticipant {
			c.String(http.StatusForbidden, "not a participant of this consultation")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		room := "consultation:" + consultationID
		client := newClient(h, room, conn)
		h.Join(room, client)
		go client.writePump()
		go client.readPump()
	}
}

// HandleDoctorFeed subscribes a doctor applicant to verification decisions,
// replacing the old fixed-interval polling screen.
func HandleDoctorFeed(h *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")

		userID, err := security.VerifyAccessToken(token)
		if err != nil {
			c.String(http.StatusUnauthorized, "invalid token")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		room := "doctor:" + userID
		client := newClient(h, room, conn)
		h.Join(room, client)
		go client.writePump()
		go client.readPump()
	}
}
