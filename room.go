/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

type roomPhase int

const (
	phaseLobby roomPhase = iota
	phasePlaying
	phaseReview
)

func (p roomPhase) String() string {
	switch p {
	case phasePlaying:
		return "playing"
	case phaseReview:
		return "review"
	default:
		return "lobby"
	}
}

const maxNameLength = 24

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type inbound struct {
	client *Client
	msg    ClientMessage
}

// Room holds one game session. All fields below the channel block are
// owned by the run goroutine; nothing outside it touches them, so the
// state machine runs lock-free. Every accepted event is applied to
// completion before the next one is read.
type Room struct {
	cfg     *Config
	manager *roomManager

	code       string
	language   string
	categories []string

	phase    roomPhase
	hostID   string
	round    int
	letter   string
	duration time.Duration
	deadline time.Time // zero unless playing

	order       []string            // player ids in join order; host succession follows it
	players     map[string]string   // player id -> display name
	submissions map[string][]string // player id -> per-category answers, current round only
	totals      map[string]int      // player id -> accumulated points

	clients map[*Client]bool

	// At most one countdown may be live; arming bumps the generation
	// so a stale fire is always recognizable.
	timer    *time.Timer
	timerGen uint64

	lastActive atomic.Int64 // unix nanos, read by the reaper

	register   chan *Client
	unreg      chan *Client
	joins      chan inbound
	starts     chan inbound
	submits    chan inbound
	advances   chan inbound
	timerFires chan uint64
	quit       chan struct{}
	done       chan struct{}
}

func newRoom(cfg *Config, manager *roomManager, code, language string) *Room {
	if _, ok := alphabets[language]; !ok {
		language = cfg.language
	}

	r := &Room{
		cfg:         cfg,
		manager:     manager,
		code:        code,
		language:    language,
		categories:  append([]string(nil), cfg.categories...),
		phase:       phaseLobby,
		players:     make(map[string]string),
		submissions: make(map[string][]string),
		totals:      make(map[string]int),
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unreg:       make(chan *Client),
		joins:       make(chan inbound),
		starts:      make(chan inbound),
		submits:     make(chan inbound),
		advances:    make(chan inbound),
		timerFires:  make(chan uint64, 1),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	r.touch()

	return r
}

func (r *Room) run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case c := <-r.register:
			r.handleRegister(c)

		case c := <-r.unreg:
			if r.handleUnregister(c) {
				r.teardown()
				return
			}

		case in := <-r.joins:
			r.handleJoin(in.client, in.msg)

		case in := <-r.starts:
			r.handleStart(in.client, in.msg.Duration)

		case in := <-r.submits:
			r.handleSubmit(in.client, in.msg.Answers)

		case in := <-r.advances:
			r.handleAdvance(in.client)

		case gen := <-r.timerFires:
			r.handleTimerFire(gen)

		case <-ticker.C:
			r.handleTick()

		case <-r.quit:
			r.teardown()
			return
		}
	}
}

func (r *Room) touch() {
	r.lastActive.Store(time.Now().UnixNano())
}

func (r *Room) idleSince() time.Time {
	return time.Unix(0, r.lastActive.Load())
}

// enqueue feeds an event to the run goroutine, giving up if the room
// has been torn down so pumps never block on a dead room.
func (r *Room) enqueue(ch chan inbound, in inbound) bool {
	select {
	case ch <- in:
		return true
	case <-r.done:
		return false
	}
}

func (r *Room) enqueueRegister(c *Client) bool {
	select {
	case r.register <- c:
		return true
	case <-r.done:
		return false
	}
}

func (r *Room) enqueueUnregister(c *Client) {
	select {
	case r.unreg <- c:
	case <-r.done:
	}
}

func (r *Room) handleRegister(c *Client) {
	r.touch()

	r.clients[c] = true

	r.sendTo(c, r.stateMessage())

	// A reconnecting player gets their in-flight answers back.
	if answers, ok := r.submissions[c.playerID]; ok {
		r.sendTo(c, OwnSubmissionMessage{
			Type:    "own_submission",
			Answers: append([]string(nil), answers...),
		})
	}
}

// handleUnregister drops the connection and, once no other connection
// shares its player id, removes the player. Reports whether the room
// emptied out.
func (r *Room) handleUnregister(c *Client) bool {
	r.touch()

	if _, ok := r.clients[c]; ok {
		delete(r.clients, c)
		close(c.send)
	}

	if c.playerID == "" {
		return false
	}

	for other := range r.clients {
		if other.playerID == c.playerID {
			return false
		}
	}

	return r.handleLeave(c.playerID)
}

func (r *Room) handleJoin(c *Client, msg ClientMessage) {
	r.touch()

	name := sanitizeName(msg.Name)
	if name == "" || c.playerID == "" {
		r.sendError(c, fmt.Errorf("%w: a display name is required", errInvalidInput))
		return
	}

	if _, ok := r.players[c.playerID]; !ok {
		r.order = append(r.order, c.playerID)
		if r.hostID == "" {
			r.hostID = c.playerID
		}
		if _, ok := r.totals[c.playerID]; !ok {
			r.totals[c.playerID] = 0
		}
		logf(r.cfg, "GAMES: Player %q joined %s", name, r.code)
	}
	r.players[c.playerID] = name

	if answers, ok := r.submissions[c.playerID]; ok {
		r.sendTo(c, OwnSubmissionMessage{
			Type:    "own_submission",
			Answers: append([]string(nil), answers...),
		})
	}

	r.broadcast(r.stateMessage())
}

// handleLeave removes a player, reassigns the host if needed, and
// reports whether this was the last player. Destruction of an emptied
// room happens synchronously in the same event.
func (r *Room) handleLeave(playerID string) bool {
	name, ok := r.players[playerID]
	if !ok {
		return false
	}

	delete(r.players, playerID)
	delete(r.submissions, playerID)
	if !r.cfg.retainScores {
		delete(r.totals, playerID)
	}

	dst := r.order[:0]
	for _, id := range r.order {
		if id != playerID {
			dst = append(dst, id)
		}
	}
	r.order = dst

	logf(r.cfg, "GAMES: Player %q left %s", name, r.code)

	if len(r.players) == 0 {
		return true
	}

	// The earliest-joined remaining player inherits the room.
	if r.hostID == playerID {
		r.hostID = r.order[0]
		logf(r.cfg, "GAMES: Player %q now hosts %s", r.players[r.hostID], r.code)
	}

	if r.phase == phasePlaying && r.allSubmitted() {
		r.closeRound()
		return false
	}

	r.broadcast(r.stateMessage())

	return false
}

func (r *Room) handleStart(c *Client, seconds int) {
	r.touch()

	if c.playerID == "" || c.playerID != r.hostID {
		r.sendError(c, errNotHost)
		return
	}

	if r.phase != phaseLobby {
		r.sendError(c, fmt.Errorf("%w: the room is in %s", errNotPlaying, r.phase))
		return
	}

	duration := r.cfg.roundDuration
	if seconds > 0 {
		duration = clampDuration(time.Duration(seconds) * time.Second)
	}

	r.submissions = make(map[string][]string, len(r.players))
	r.round++
	r.letter = randomLetter(r.language)
	r.duration = duration
	r.deadline = time.Now().Add(duration)
	r.armTimer(duration)
	r.phase = phasePlaying

	logf(r.cfg, "GAMES: Round %d of %s started, letter %s, %s on the clock", r.round, r.code, r.letter, duration)

	r.broadcast(r.stateMessage())
}

func (r *Room) handleSubmit(c *Client, answers []string) {
	r.touch()

	if r.phase != phasePlaying {
		r.sendError(c, errNotPlaying)
		return
	}

	if _, ok := r.players[c.playerID]; !ok {
		r.sendError(c, fmt.Errorf("%w: join the room first", errNotPlaying))
		return
	}

	// Malformed or missing answers become empty strings rather than
	// rejecting the whole submission.
	submission := make([]string, len(r.categories))
	for i := range submission {
		if i < len(answers) {
			submission[i] = strings.TrimSpace(answers[i])
		}
	}

	// Resubmitting replaces the previous set outright.
	r.submissions[c.playerID] = submission

	if r.cfg.liveAnswers {
		r.broadcast(r.liveAnswersMessage())
	}

	if r.allSubmitted() {
		r.closeRound()
		return
	}

	r.broadcast(r.stateMessage())
}

func (r *Room) handleAdvance(c *Client) {
	r.touch()

	if c.playerID == "" || c.playerID != r.hostID {
		r.sendError(c, errNotHost)
		return
	}

	if r.phase != phaseReview {
		r.sendError(c, fmt.Errorf("%w: the room is in %s", errNotPlaying, r.phase))
		return
	}

	r.phase = phaseLobby

	r.broadcast(r.stateMessage())
}

func (r *Room) handleTimerFire(gen uint64) {
	if gen != r.timerGen {
		return
	}

	r.closeRound()
}

func (r *Room) handleTick() {
	if r.phase != phasePlaying {
		return
	}

	remaining := int(time.Until(r.deadline).Round(time.Second) / time.Second)
	if remaining < 0 {
		remaining = 0
	}

	r.broadcast(CountdownMessage{
		Type:      "countdown",
		Remaining: remaining,
	})
}

func (r *Room) allSubmitted() bool {
	if len(r.players) == 0 {
		return false
	}

	for id := range r.players {
		if _, ok := r.submissions[id]; !ok {
			return false
		}
	}

	return true
}

// closeRound ends the running round exactly once, whether the timer
// fired or every player submitted early. Redundant calls are no-ops.
func (r *Room) closeRound() {
	if r.phase != phasePlaying {
		return
	}

	r.stopTimer()
	r.phase = phaseReview
	r.deadline = time.Time{}

	score := scoreRound(r.categories, r.submissions, r.cfg.scorePolicy())

	for id := range r.players {
		r.totals[id] += score.points[id]
	}

	logf(r.cfg, "GAMES: Round %d of %s closed with %d of %d submissions", r.round, r.code, len(r.submissions), len(r.players))

	r.broadcast(r.scoresMessage(score))
	r.broadcast(r.stateMessage())
}

// armTimer schedules the round to close after d. Any previous timer
// is cancelled first; at most one is ever live per room.
func (r *Room) armTimer(d time.Duration) {
	r.stopTimer()

	r.timerGen++
	gen := r.timerGen

	r.timer = time.AfterFunc(d, func() {
		select {
		case r.timerFires <- gen:
		case <-r.done:
		}
	})
}

// stopTimer cancels the armed countdown and invalidates its
// generation, so a fire already in flight lands as a no-op.
func (r *Room) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.timerGen++
}

func (r *Room) timerArmed() bool {
	return r.timer != nil
}

// teardown releases everything the room owns. Only the run goroutine
// calls it, exactly once, as its final act.
func (r *Room) teardown() {
	r.stopTimer()
	close(r.done)

	for c := range r.clients {
		close(c.send)
		delete(r.clients, c)
	}

	if r.manager != nil {
		r.manager.remove(r.code)
	}

	logf(r.cfg, "GAMES: Closed room %s", r.code)
}

func (r *Room) stateMessage() RoomStateMessage {
	players := make([]PlayerState, 0, len(r.order))
	for _, id := range r.order {
		players = append(players, PlayerState{
			ID:    id,
			Name:  r.players[id],
			Total: r.totals[id],
		})
	}

	submitted := make([]string, 0, len(r.submissions))
	for _, id := range r.order {
		if _, ok := r.submissions[id]; ok {
			submitted = append(submitted, id)
		}
	}

	msg := RoomStateMessage{
		Type:       "room_state",
		Code:       r.code,
		HostID:     r.hostID,
		Phase:      r.phase.String(),
		Round:      r.round,
		Letter:     r.letter,
		Duration:   int(r.duration / time.Second),
		Categories: r.categories,
		Players:    players,
		Submitted:  submitted,
	}
	if !r.deadline.IsZero() {
		msg.Deadline = r.deadline.UTC().Format(time.RFC3339)
	}

	return msg
}

func (r *Room) scoresMessage(score roundScore) ScoresUpdateMessage {
	results := make([]PlayerResult, 0, len(r.order))

	for _, id := range r.order {
		result := PlayerResult{
			ID:          id,
			Name:        r.players[id],
			RoundPoints: score.points[id],
			Total:       r.totals[id],
		}

		if answers, ok := r.submissions[id]; ok {
			result.Answers = make([]CategoryResult, len(r.categories))
			for i, category := range r.categories {
				result.Answers[i] = CategoryResult{
					Category: category,
					Answer:   answers[i],
					Points:   score.byCategory[id][i],
				}
			}
		}

		results = append(results, result)
	}

	return ScoresUpdateMessage{
		Type:    "scores_update",
		Round:   r.round,
		Letter:  r.letter,
		Results: results,
	}
}

func (r *Room) liveAnswersMessage() LiveAnswersMessage {
	answers := make(map[string][]string, len(r.submissions))
	for id, submission := range r.submissions {
		answers[id] = append([]string(nil), submission...)
	}

	return LiveAnswersMessage{
		Type:    "live_answers",
		Answers: answers,
	}
}

func (r *Room) broadcast(msg any) {
	for client := range r.clients {
		select {
		case client.send <- msg:
		default:
			delete(r.clients, client)
			close(client.send)
		}
	}
}

func (r *Room) sendTo(c *Client, msg any) {
	if _, ok := r.clients[c]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(r.clients, c)
		close(c.send)
	}
}

func (r *Room) sendError(c *Client, err error) {
	r.sendTo(c, newErrorMessage(err))
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)

	runes := []rune(name)
	if len(runes) > maxNameLength {
		name = strings.TrimSpace(string(runes[:maxNameLength]))
	}

	return name
}
