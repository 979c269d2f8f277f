// Wordbox Categories Game
//
// A host starts timed rounds; each player fills in one answer per
// category (a city, a country, an animal, ...) starting with the
// round's random letter before the clock runs out. Answers are scored
// by uniqueness: an answer nobody else gave is worth more than one
// shared with other players, and totals accumulate across rounds.
//
// Features:
// - WebSockets per room code: /path/:gameid and /path/:gameid/ws
// - Rooms created on demand via /path, with 6-char collision-checked codes
// - First player to join becomes host; host starts and advances rounds
// - Deterministic host handoff (earliest remaining joiner) on disconnect
// - Players identified by cookie (playerID), so reconnects keep identity
// - Rounds auto-close on deadline or as soon as everyone has submitted
// - Per-second countdown broadcast while a round runs
// - Rooms destroyed the moment their last player leaves
// - Idle rooms reaped after a configurable timeout
// - In-browser QR button to share the current room, backed by go-qrcode

package main

import (
	_ "embed"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

//go:embed wordgame/index.html
var indexHTML []byte

func getIndexHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(w, r)

		_, _ = w.Write(indexHTML)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "wordbox_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// serveWSForRooms connects a client to the room named by :gameid.
// Unknown codes get a room_not_found reply on the socket, so the
// client sees the same taxonomy as every other failure.
func serveWSForRooms(cfg *Config, rm *roomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := ps.ByName("gameid")
		if code == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		room, ok := rm.get(code)
		if !ok {
			_ = conn.WriteJSON(newErrorMessage(errRoomNotFound))
			_ = conn.Close()
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 8),
			playerID: playerID,
		}

		if !room.enqueueRegister(client) {
			_ = conn.WriteJSON(newErrorMessage(errRoomNotFound))
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(room)
	}
}

func (c *Client) readPump(r *Room) {
	defer func() {
		r.enqueueUnregister(c)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		in := inbound{client: c, msg: msg}

		switch msg.Type {
		case "join":
			if !r.enqueue(r.joins, in) {
				return
			}
		case "start_round":
			if !r.enqueue(r.starts, in) {
				return
			}
		case "submit_answers":
			if !r.enqueue(r.submits, in) {
				return
			}
		case "advance":
			if !r.enqueue(r.advances, in) {
				return
			}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current room URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID := ps.ByName("gameid")
	if gameID == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:gameid/qr; strip trailing "/qr" to get the room URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// redirectNewGame handles GET /path by creating a fresh room (random
// collision-checked code) and redirecting to /path/:gameid. An
// optional ?lang= query picks the round-letter alphabet.
func redirectNewGame(cfg *Config, path string, rm *roomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		room := rm.create(r.URL.Query().Get("lang"))
		logf(cfg, "GAMES: Created game %s/%s", path, room.code)
		http.Redirect(w, r, path+"/"+room.code, http.StatusTemporaryRedirect)
	}
}

// registerWordGame sets up routes so that:
//   - $path                  → creates a room and redirects to it
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that room
//   - $path/:gameid/qr       → PNG QR code for that room URL
func registerWordGame(cfg *Config, path string, mux *httprouter.Router) *roomManager {
	rm := newRoomManager(cfg)

	// Root path → redirect to a fresh room
	mux.GET(path, redirectNewGame(cfg, path, rm))

	// Per-room client view (HTML)
	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg))

	// Per-room websocket
	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForRooms(cfg, rm))

	// Per-room QR code
	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler)

	return rm
}
