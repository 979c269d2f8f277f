/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

// Messages coming from clients
type ClientMessage struct {
	Type     string   `json:"type"`               // "join", "start_round", "submit_answers", "advance"
	Name     string   `json:"name,omitempty"`     // join
	Duration int      `json:"duration,omitempty"` // start_round, in seconds
	Answers  []string `json:"answers,omitempty"`  // submit_answers, one per category
}

// PlayerState is one row of the public player list, in join order.
type PlayerState struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// RoomStateMessage is the public snapshot broadcast after every
// accepted state change. It never carries raw answers, only which
// players have already submitted this round.
type RoomStateMessage struct {
	Type       string        `json:"type"` // "room_state"
	Code       string        `json:"code"`
	HostID     string        `json:"host_id"`
	Phase      string        `json:"phase"` // "lobby", "playing", "review"
	Round      int           `json:"round"`
	Letter     string        `json:"letter,omitempty"`
	Duration   int           `json:"duration"`           // seconds
	Deadline   string        `json:"deadline,omitempty"` // RFC3339, only while playing
	Categories []string      `json:"categories"`
	Players    []PlayerState `json:"players"`
	Submitted  []string      `json:"submitted,omitempty"` // player ids
}

// CategoryResult is one player's revealed answer for one category.
type CategoryResult struct {
	Category string `json:"category"`
	Answer   string `json:"answer"`
	Points   int    `json:"points"`
}

// PlayerResult is one player's scoring line in a scores_update.
type PlayerResult struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	RoundPoints int              `json:"round_points"`
	Total       int              `json:"total"`
	Answers     []CategoryResult `json:"answers,omitempty"`
}

// ScoresUpdateMessage is broadcast once per round, at close.
type ScoresUpdateMessage struct {
	Type    string         `json:"type"` // "scores_update"
	Round   int            `json:"round"`
	Letter  string         `json:"letter"`
	Results []PlayerResult `json:"results"`
}

// CountdownMessage is broadcast each second while a round is running.
type CountdownMessage struct {
	Type      string `json:"type"` // "countdown"
	Remaining int    `json:"remaining"`
}

// OwnSubmissionMessage is sent to a single client so a reconnecting
// player sees their own in-flight answers without a refresh.
type OwnSubmissionMessage struct {
	Type    string   `json:"type"` // "own_submission"
	Answers []string `json:"answers"`
}

// LiveAnswersMessage carries raw mid-round answers. Only broadcast
// when --live-answers is set; clients that rely on answer privacy
// never see this type.
type LiveAnswersMessage struct {
	Type    string              `json:"type"` // "live_answers"
	Answers map[string][]string `json:"answers"`
}

// ErrorMessage reports an expected failure to the offending client only.
type ErrorMessage struct {
	Type    string `json:"type"`    // "error"
	Code    string `json:"code"`    // "room_not_found", "not_host", "not_playing", "invalid_input"
	Message string `json:"message"` // user-facing text
}

func newErrorMessage(err error) ErrorMessage {
	return ErrorMessage{
		Type:    "error",
		Code:    errorCode(err),
		Message: err.Error(),
	}
}
