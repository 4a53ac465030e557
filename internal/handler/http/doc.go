// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the HTTP transport of the record server.
//
// It exposes the encrypted record protocol under /storage, the server version
// and Prometheus metrics. Request tracing, access logging, request metrics and
// response compression are handled by middleware before requests reach the
// service layer.
package http
