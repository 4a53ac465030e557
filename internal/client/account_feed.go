// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/validators"
	"github.com/MKhiriev/go-ledger-sync/internal/watcher"
	"github.com/MKhiriev/go-ledger-sync/models"
)

// JSON-RPC names of the single-account feed.
const (
	accountSubscribeMethod   = "accountSubscribe"
	accountSubscribeEncoding = "jsonParsed"
)

// newAccountFeed builds a watcher on the single-account push feed for
// address. Every notification schedules a refresh of that account.
func newAccountFeed(endpoint, address string, dialer watcher.Dialer, accounts *accountSync, v validators.Validator, log *logger.Logger, opts ...watcher.Option) (*watcher.Watcher, error) {
	subscribe, err := watcher.SubscribeRequest(accountSubscribeMethod, address, accountSubscribeEncoding)
	if err != nil {
		return nil, err
	}

	handle := accountFeedHandler(address, accounts.invalidate, v, log)
	opts = append(opts, watcher.WithSubscribe(subscribe))

	return watcher.New("account:"+address, endpoint, dialer, handle, opts...), nil
}

// accountFeedHandler accepts the subscribe acknowledgement and account
// notifications. Anything else is malformed.
func accountFeedHandler(address string, invalidate func(string), v validators.Validator, log *logger.Logger) watcher.Handler {
	return func(ctx context.Context, msg []byte) error {
		var envelope struct {
			Method string          `json:"method"`
			Result json.RawMessage `json:"result"`
		}
		if err := json.Unmarshal(msg, &envelope); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedFeedMessage, err)
		}

		if envelope.Method == "" && len(envelope.Result) > 0 {
			var ack models.RPCSubscribeResult
			if err := json.Unmarshal(msg, &ack); err != nil {
				return fmt.Errorf("%w: %w", ErrMalformedFeedMessage, err)
			}
			log.Debug().
				Str("func", "accountFeedHandler").
				Str("address", address).
				Int64("subscription", ack.Result).
				Msg("account feed subscribed")
			return nil
		}

		var note models.AccountNotification
		if err := validators.DecodeJSON(ctx, v, msg, &note); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedFeedMessage, err)
		}

		invalidate(address)
		return nil
	}
}
