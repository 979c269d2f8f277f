/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
	"sync"
	"time"
)

// Room codes skip visually ambiguous characters (I, L, O, 0, 1).
const (
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// roomManager owns the table of live rooms, keyed by code. The mutex
// guards only the table; room internals belong to each room's own
// goroutine.
type roomManager struct {
	mu          sync.Mutex
	rooms       map[string]*Room
	cfg         *Config
	idleTimeout time.Duration
}

func newRoomManager(cfg *Config) *roomManager {
	rm := &roomManager{
		rooms:       make(map[string]*Room),
		cfg:         cfg,
		idleTimeout: cfg.sessionTimeout,
	}
	if rm.idleTimeout > 0 {
		go rm.reaperLoop()
	}

	return rm
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// create allocates a room under a fresh code and starts its event
// loop. Codes regenerate until they miss every live room.
func (rm *roomManager) create(language string) *Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	var code string
	for {
		code = newRoomCode()
		if _, exists := rm.rooms[code]; !exists {
			break
		}
	}

	room := newRoom(rm.cfg, rm, code, language)
	rm.rooms[code] = room
	go room.run()

	return room
}

// get looks a room up by code, ignoring case and surrounding
// whitespace. A missing room is an ordinary outcome, not an error.
func (rm *roomManager) get(code string) (*Room, bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, ok := rm.rooms[normalizeCode(code)]

	return room, ok
}

// remove frees a code for immediate reuse. The room's own goroutine
// has already cancelled its timer by the time it calls here.
func (rm *roomManager) remove(code string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	delete(rm.rooms, normalizeCode(code))
}

func (rm *roomManager) count() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	return len(rm.rooms)
}

func newRoomCode() string {
	out := make([]byte, codeLength)
	for i := range out {
		out[i] = codeAlphabet[randomIndex(len(codeAlphabet))]
	}

	return string(out)
}

// reaperLoop periodically shuts down rooms that have been idle longer
// than idleTimeout. Each room tears itself down and calls remove.
func (rm *roomManager) reaperLoop() {
	ticker := time.NewTicker(rm.idleTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-rm.idleTimeout)

		rm.mu.Lock()
		stale := make([]*Room, 0)
		for _, room := range rm.rooms {
			if room.idleSince().Before(cutoff) {
				stale = append(stale, room)
			}
		}
		rm.mu.Unlock()

		for _, room := range stale {
			select {
			case room.quit <- struct{}{}:
			case <-room.done:
			}
		}
	}
}
