package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/labsync/labsync/models"
)

// Client is one authenticated websocket connection. Admins receive every
// status update; patients and technicians only updates for their own bookings.
type Client struct {
	UserID uuid.UUID
	Role   string
	Conn   *websocket.Conn
}

// StatusUpdate is the event pushed whenever a booking changes status.
type StatusUpdate struct {
	BookingID     uuid.UUID  `json:"booking_id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	TechnicianID  *uuid.UUID `json:"technician_id,omitempty"`
	Status        string     `json:"status"`
	ScheduledDate string     `json:"scheduled_date"`
	ScheduledTime *string    `json:"scheduled_time,omitempty"`
}

var clients = make(map[*websocket.Conn]*Client)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan *StatusUpdate, 64)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s (%s)", client.UserID, client.Role)
			clientsMu.Lock()
			clients[client.Conn] = client
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			clientsMu.Lock()
			delete(clients, client.Conn)
			clientsMu.Unlock()
		case update := <-Broadcast:
			deliver(update)
		}
	}
}

func deliver(update *StatusUpdate) {
	clientsMu.RLock()
	var stale []*websocket.Conn
	for conn, client := range clients {
		if !wantsUpdate(client, update) {
			continue
		}
		if err := conn.WriteJSON(update); err != nil {
			log.Printf("Error sending status update to client %s: %v", client.UserID, err)
			stale = append(stale, conn)
		}
	}
	clientsMu.RUnlock()

	if len(stale) > 0 {
		clientsMu.Lock()
		for _, conn := range stale {
			conn.Close()
			delete(clients, conn)
		}
		clientsMu.Unlock()
	}
}

func wantsUpdate(client *Client, update *StatusUpdate) bool {
	switch client.Role {
	case "admin":
		return true
	case "technician":
		return update.TechnicianID != nil && *update.TechnicianID == client.UserID
	default:
		return update.PatientID == client.UserID
	}
}

// PublishStatus queues a status update for delivery. Non-blocking: if the hub
// is backed up the update is dropped, the feed is advisory only.
func PublishStatus(b *models.LabTestBooking) {
	update := &StatusUpdate{
		BookingID:     b.ID,
		PatientID:     b.BookedBy,
		TechnicianID:  b.TechnicianID,
		Status:        b.Status,
		ScheduledDate: b.ScheduledDate,
		ScheduledTime: b.ScheduledTime,
	}
	select {
	case Broadcast <- update:
	default:
		log.Printf("Status feed full, dropping update for booking %s", b.ID)
	}
}
