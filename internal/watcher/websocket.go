// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-ledger-sync/models"
	"github.com/gorilla/websocket"
)

// maxMessageSize bounds a single pushed message.
const maxMessageSize = 4 << 20

// WebsocketDialer opens gorilla/websocket connections.
type WebsocketDialer struct {
	dialer *websocket.Dialer
	header http.Header
}

// NewWebsocketDialer returns a dialer that sends header with every handshake.
// The handshake itself is bounded by the watcher's connect timeout through
// the dial context.
func NewWebsocketDialer(header http.Header) *WebsocketDialer {
	return &WebsocketDialer{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: DefaultConnectTimeout,
			ReadBufferSize:   32 << 10,
		},
		header: header,
	}
}

// Dial implements [Dialer].
func (d *WebsocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, url, d.header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDial, err)
	}

	conn.SetReadLimit(maxMessageSize)

	return conn, nil
}

// SubscribeRequest builds the JSON-RPC request sent right after opening a
// single-account feed, e.g.
//
//	{"jsonrpc":"2.0","id":1,"method":"accountSubscribe","params":["<addr>",{"encoding":"jsonParsed"}]}
func SubscribeRequest(method, topic, encoding string) ([]byte, error) {
	req := models.RPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  []any{topic, models.RPCEncoding{Encoding: encoding}},
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error encoding subscribe request: %w", err)
	}

	return payload, nil
}
