// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package watcher keeps one persistent push-feed connection alive.
//
// A [Watcher] dials an endpoint, arms a connect timeout, and once the
// connection is open arms a message watchdog that every well-formed message
// resets. A connection that drops after delivering at least one well-formed
// message is re-dialed immediately; every other failure is counted and delayed
// by [Backoff]. Each connection attempt carries a generation number and events
// produced by any other generation are discarded, so a slow or superseded
// connection can never feed the consumer.
//
// The transport is abstracted by [Dialer] and [Conn]; [WebsocketDialer] is the
// production implementation on top of gorilla/websocket.
package watcher

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mock/watcher_mock.go -package=mock

// Conn is a message-oriented connection. *websocket.Conn satisfies it.
//
// ReadMessage is called from a single reader goroutine; WriteMessage and
// Close are called from the watcher loop.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer opens a Conn to url. Dial must honour ctx cancellation.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Handler consumes one text message. Returning nil marks the message as
// well-formed; any error drops that message without closing the connection.
type Handler func(ctx context.Context, msg []byte) error
