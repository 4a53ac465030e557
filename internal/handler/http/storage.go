// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-ledger-sync/internal/app"
	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/utils"
	"github.com/MKhiriev/go-ledger-sync/models"
)

// maxBodySize bounds request bodies. Records are small documents.
const maxBodySize = 1 << 20

func (h *Handler) readRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.ReadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.readRecord").Msg("invalid JSON was passed")
		http.Error(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.services.StorageService.Read(r.Context(), req)
	if err != nil {
		writeError(w, r, "*Handler.readRecord", err)
		return
	}

	if _, err := utils.WriteJSON(w, resp, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.readRecord").Msg("failed to write response")
	}
}

func (h *Handler) writeRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.WriteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.writeRecord").Msg("invalid JSON was passed")
		http.Error(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.services.StorageService.Write(r.Context(), req)
	if err != nil {
		writeError(w, r, "*Handler.writeRecord", err)
		return
	}

	if _, err := utils.WriteJSON(w, resp, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.writeRecord").Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, fn string, err error) {
	status := statusFromError(err)

	event := logger.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.FromRequest(r).Error()
	}
	event.Err(err).Str("func", fn).Int("status", status).Msg("request failed")

	// internal details stay in the log
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = app.MsgInternalServerError
	}
	http.Error(w, msg, status)
}
