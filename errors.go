/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Expected game outcomes. These are reported to the requesting client
// only, and never tear anything down.
var (
	errRoomNotFound = errors.New("room not found")
	errNotHost      = errors.New("only the host may do that")
	errNotPlaying   = errors.New("no round is accepting answers")
	errInvalidInput = errors.New("invalid input")
)

// errorCode maps a game outcome to the wire code sent to clients.
func errorCode(err error) string {
	switch {
	case errors.Is(err, errRoomNotFound):
		return "room_not_found"
	case errors.Is(err, errNotHost):
		return "not_host"
	case errors.Is(err, errNotPlaying):
		return "not_playing"
	default:
		return "invalid_input"
	}
}

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(getFavicon())
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
