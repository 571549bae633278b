package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/MpenduloXulu/TTI-Website/db"
	"github.com/MpenduloXulu/TTI-Website/internal/models"
	"github.com/MpenduloXulu/TTI-Website/internal/normalize"
	"github.com/MpenduloXulu/TTI-Website/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	dashboardClients   = make(map[*websocket.Conn]bool)
	dashboardClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// BroadcastDashboardRefresh tells every connected admin dashboard to refetch.
func BroadcastDashboardRefresh() {
	dashboardClientsMu.RLock()
	if len(dashboardClients) == 0 {
		dashboardClientsMu.RUnlock()
		return
	}

	// Copy the connections so sends happen outside the lock
	clientsCopy := make([]*websocket.Conn, 0, len(dashboardClients))
	for conn := range dashboardClients {
		clientsCopy = append(clientsCopy, conn)
	}
	dashboardClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		err := conn.WriteJSON(map[string]string{
			"type":    "refresh",
			"message": "Application data updated",
		})

		if err != nil {
			log.Printf("Failed to broadcast refresh to client: %v", err)
			dashboardClientsMu.Lock()
			delete(dashboardClients, conn)
			dashboardClientsMu.Unlock()
			conn.Close()
		}
	}
}

// DashboardWebSocket holds an admin's connection open and pushes refresh
// notices whenever applications change.
func DashboardWebSocket(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	dashboardClientsMu.Lock()
	dashboardClients[conn] = true
	dashboardClientsMu.Unlock()

	defer func() {
		dashboardClientsMu.Lock()
		delete(dashboardClients, conn)
		dashboardClientsMu.Unlock()
		conn.Close()

		log.Printf("Dashboard WebSocket connection closed")
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Failed to set write deadline for welcome message: %v", err)
		return
	}

	err = conn.WriteJSON(map[string]string{
		"type":    "connected",
		"message": "WebSocket connection established",
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("Failed to set write deadline for dashboard socket: %v", err)
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Ping failed for dashboard socket: %v", err)
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for dashboard socket: %v", err)
			break
		}

		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Dashboard WebSocket error: %v", err)
			}
			break
		}

		if messageType == websocket.TextMessage {
			log.Printf("Received message from dashboard client: %s", string(message))
		}
	}
}

type DashboardSummary struct {
	TotalApplications  int                   `json:"totalApplications"`
	PendingCount       int                   `json:"pendingCount"`
	ApprovedCount      int                   `json:"approvedCount"`
	DeclinedCount      int                   `json:"declinedCount"`
	TotalAllocated     float64               `json:"totalAllocated"`
	OpportunityCount   int64                 `json:"opportunityCount"`
	RecentApplications []ApplicationResponse `json:"recentApplications"`
}

// AdminDashboard returns the aggregate view backing the admin landing page.
// Counts are computed over canonical statuses so legacy decision shapes land
// in the right bucket.
func AdminDashboard(ctx *gin.Context) {
	var apps []models.Application

	if err := db.DB.Order("submitted_at DESC").Find(&apps).Error; err != nil {
		log.Printf("Failed to load applications for dashboard: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	summary := DashboardSummary{
		TotalApplications:  len(apps),
		RecentApplications: []ApplicationResponse{},
	}

	for i, app := range apps {
		switch normalize.Decision(app.Status, app.AdminDecision) {
		case types.StatusApproved:
			summary.ApprovedCount++
		case types.StatusDeclined:
			summary.DeclinedCount++
		default:
			summary.PendingCount++
		}

		if len(app.FundAllocation) > 0 {
			var allocation types.FundAllocation
			if err := json.Unmarshal(app.FundAllocation, &allocation); err == nil {
				summary.TotalAllocated += allocation.AllocationAmount
			}
		}

		if i < 10 {
			summary.RecentApplications = append(summary.RecentApplications, applicationResponse(app))
		}
	}

	if err := db.DB.Model(&models.FundingOpportunity{}).Count(&summary.OpportunityCount).Error; err != nil {
		log.Printf("Failed to count opportunities for dashboard: %v", err)
	}

	ctx.JSON(http.StatusOK, summary)
}
