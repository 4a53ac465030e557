// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly.
//
// Every request whose context carries a trace id sends it in
// [TraceIDHeader], so server logs of one client operation share an id.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates and returns a new HTTPClient instance with its own
// connection pool.
func NewHTTPClient() *HTTPClient {
	client := resty.New()
	client.OnBeforeRequest(propagateTraceID)
	return &HTTPClient{Client: client}
}

func propagateTraceID(_ *resty.Client, r *resty.Request) error {
	if id, ok := GetTraceIDFromContext(r.Context()); ok {
		r.SetHeader(TraceIDHeader, id)
	}
	return nil
}
