package server

import (
	"context"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/zach3141592/TerraHacks2025/internal/analysis"
	"github.com/zach3141592/TerraHacks2025/internal/database"
	"github.com/zach3141592/TerraHacks2025/internal/ml"
	"github.com/zach3141592/TerraHacks2025/internal/models"
	"github.com/zach3141592/TerraHacks2025/internal/scans"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, this should be more restrictive
	},
}

type Server struct {
	repo    *scans.Repository
	model   ml.Model
	clients sync.Map
	debug   bool
}

func New(repo *scans.Repository, model ml.Model, debug bool) *Server {
	if debug {
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		log.Println("Debug logging enabled")
	}
	return &Server{
		repo:  repo,
		model: model,
		debug: debug,
	}
}

func (s *Server) Start(port, staticDir string) error {
	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Setup HTTP routes
	http.HandleFunc("/ws", s.handleWebSocket)
	http.HandleFunc("/health", s.handleHealth)

	// Serve static files
	fs := http.FileServer(http.Dir(staticDir))
	http.Handle("/", fs)

	// Start server
	go func() {
		log.Printf("Starting server on port %s\n", port)
		if err := http.ListenAndServe(":"+port, nil); err != nil {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down server...")
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}
	defer conn.Close()

	// Store client connection
	clientID := uuid.New().String()
	s.clients.Store(clientID, conn)
	defer s.clients.Delete(clientID)

	for {
		var msg struct {
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			log.Println("Error reading message:", err)
			break
		}

		s.handleWebSocketMessage(conn, msg.Type, msg.Data)
	}
}

func (s *Server) handleWebSocketMessage(conn *websocket.Conn, messageType string, data map[string]any) {
	switch messageType {
	case "scan":
		s.handleScan(conn, data)
	case "reset":
		s.handleReset(conn)
	case "get_history":
		s.handleGetHistory(conn, data)
	case "get_scan":
		s.handleGetScan(conn, data)
	case "delete_scan":
		s.handleDeleteScan(conn, data)
	case "clear_history":
		s.handleClearHistory(conn)
	case "get_conditions":
		s.sendMessage(conn, "conditions", models.Conditions)
	default:
		s.sendError(conn, "Unknown message type")
	}
}

// handleScan runs one capture cycle: decode the photo, call the model,
// parse the reply and persist the result. The generation token taken
// before the model call makes a result arriving after a reset detectable.
func (s *Server) handleScan(conn *websocket.Conn, data map[string]any) {
	conditionType, ok := data["condition"].(string)
	if !ok || conditionType == "" {
		s.sendError(conn, "Please select a condition type before analyzing.")
		return
	}

	photoData, ok := data["image"].(string)
	if !ok {
		s.sendError(conn, "Invalid image data")
		return
	}

	imageData, err := decodeDataURI(photoData)
	if err != nil {
		log.Printf("Error decoding image: %v", err)
		s.sendError(conn, "Invalid image format")
		return
	}

	ctx := context.Background()
	token := s.repo.Generation()

	text, err := s.model.AnalyzeImage(ctx, imageData, conditionType)
	if err != nil {
		log.Printf("Error analyzing image: %v", err)
		s.sendError(conn, "Analysis failed. Please check your internet connection and try again.")
		return
	}

	sections := analysis.ParseResponse(text)

	scan, err := s.repo.SaveAnalysis(ctx, token, conditionType, photoData, sections)
	if errors.Is(err, scans.ErrStaleResult) {
		log.Printf("Discarding stale analysis result for condition %s", conditionType)
		return
	}
	if err != nil {
		log.Printf("Error completing analysis: %v", err)
		s.sendError(conn, "Failed to process analysis")
		return
	}

	s.sendMessage(conn, "analysis_result", map[string]any{
		"scan":   scan,
		"stages": analysis.ExtractStages(scan.Timeline),
	})
}

func (s *Server) handleReset(conn *websocket.Conn) {
	s.repo.Reset()
	s.sendMessage(conn, "reset_done", nil)
}

func (s *Server) handleGetHistory(conn *websocket.Conn, data map[string]any) {
	limit := 10
	if l, ok := data["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	ctx := context.Background()
	items := s.repo.RecentScans(ctx, limit)

	s.sendMessage(conn, "history", map[string]any{
		"items": items,
		"count": s.repo.Count(ctx),
	})
}

func (s *Server) handleGetScan(conn *websocket.Conn, data map[string]any) {
	id, ok := data["id"].(float64)
	if !ok {
		s.sendError(conn, "Missing scan id")
		return
	}

	scan, err := s.repo.ScanByID(context.Background(), int64(id))
	if errors.Is(err, database.ErrNotFound) {
		s.sendError(conn, "Scan not found")
		return
	}
	if err != nil {
		log.Printf("Error retrieving scan: %v", err)
		s.sendError(conn, "Failed to retrieve scan")
		return
	}

	s.sendMessage(conn, "scan_detail", map[string]any{
		"scan":   scan,
		"stages": analysis.ExtractStages(scan.Timeline),
	})
}

func (s *Server) handleDeleteScan(conn *websocket.Conn, data map[string]any) {
	id, ok := data["id"].(float64)
	if !ok {
		s.sendError(conn, "Missing scan id")
		return
	}

	if err := s.repo.DeleteScan(context.Background(), int64(id)); err != nil {
		log.Printf("Error deleting scan: %v", err)
		s.sendError(conn, "Failed to delete scan")
		return
	}
	s.sendMessage(conn, "scan_deleted", map[string]any{"id": int64(id)})
}

func (s *Server) handleClearHistory(conn *websocket.Conn) {
	if err := s.repo.ClearHistory(context.Background()); err != nil {
		log.Printf("Error clearing history: %v", err)
		s.sendError(conn, "Failed to clear history")
		return
	}
	s.sendMessage(conn, "history_cleared", nil)
}

// decodeDataURI extracts the base64 payload of a data URI. The prefix up
// to the first comma is fixed metadata and never inspected.
func decodeDataURI(uri string) ([]byte, error) {
	payload := uri
	if idx := strings.Index(uri, ","); idx >= 0 {
		payload = uri[idx+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}

func (s *Server) sendMessage(conn *websocket.Conn, messageType string, data any) {
	msg := map[string]any{
		"type": messageType,
		"data": data,
	}

	if s.debug {
		log.Printf("Sending message to client - Type: %s", messageType)
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Println("Error sending message:", err)
	}
}

func (s *Server) sendError(conn *websocket.Conn, message string) {
	msg := map[string]any{
		"type":    "error",
		"message": message,
	}

	if err := conn.WriteJSON(msg); err != nil {
		log.Println("Error sending error message:", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
