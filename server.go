package main

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	qrcode "github.com/skip2/go-qrcode"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SetupRoutes configures HTTP routes
func SetupRoutes(hub *Hub, clientDir string) *http.ServeMux {
	mux := http.NewServeMux()

	if clientDir != "" {
		fs := http.FileServer(http.Dir(clientDir))
		mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-cache")
			fs.ServeHTTP(w, r)
		}))
	}

	// WebSocket endpoint. A non-empty display name is required before any
	// protocol messages are exchanged; its absence rejects the connection.
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			http.Error(w, "display name required", http.StatusBadRequest)
			return
		}
		if len(name) > maxNameLen {
			name = name[:maxNameLen]
		}
		binary := r.URL.Query().Get("bin") == "1"

		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			Log.Warnf("upgrade error: %v", err)
			return
		}

		hub.TrackConnect(ip)

		client := NewClient(hub, conn, ip, name, binary)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()

		client.SendJSON(WelcomeMsg{Type: MsgWelcome, YourID: client.playerID, YourName: client.name})
	})

	// Join QR: encodes the join URL for an existing room code as a PNG.
	mux.HandleFunc("/qr", func(w http.ResponseWriter, r *http.Request) {
		code := strings.ToUpper(r.URL.Query().Get("room"))
		if code == "" || hub.rooms.GetRoom(code) == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		joinURL := "http://" + r.Host + "/?room=" + code
		png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "qr encode failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	// Room metrics for monitoring and tick-time debugging.
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		code := strings.ToUpper(r.URL.Query().Get("room"))
		room := hub.rooms.GetRoom(code)
		if room == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		payload := map[string]interface{}{
			"room":    code,
			"players": room.PlayerCount(),
			"metrics": room.Metrics().Snapshot(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	return mux
}
