// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	type record struct {
		Seq   int64   `json:"seq"`
		Value *string `json:"value"`
	}
	value := "a<b>&c"

	tests := []struct {
		name     string
		data     any
		status   int
		wantBody string
	}{
		{name: "struct", data: record{Seq: 2, Value: &value}, status: http.StatusOK, wantBody: `{"seq":2,"value":"a<b>&c"}` + "\n"},
		{name: "null value", data: record{Seq: 0}, status: http.StatusOK, wantBody: `{"seq":0,"value":null}` + "\n"},
		{name: "nil", data: nil, status: http.StatusOK, wantBody: "null\n"},
		{name: "custom status", data: map[string]string{"error": "nope"}, status: http.StatusConflict, wantBody: `{"error":"nope"}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			n, err := WriteJSON(w, tt.data, tt.status)

			require.NoError(t, err)
			assert.Equal(t, len(tt.wantBody), n)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
		})
	}
}

func TestWriteJSON_InvalidData(t *testing.T) {
	w := httptest.NewRecorder()

	// channels cannot be marshaled to JSON
	_, err := WriteJSON(w, make(chan int), http.StatusOK)

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
