// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/keychain_mock.go -package=mock

// Keychain derives per-record key material from the master secret.
//
// Derivation is deterministic: two devices holding the same master secret and
// network derive identical keys for the same record key, so no key exchange
// is needed.
//
//	sign    = SLIP21(master, [network, "content", key, "sign"])    -> ed25519 seed
//	encrypt = SLIP21(master, [network, "content", key, "encrypt"]) -> secretbox key
type Keychain interface {
	// ContentKeys returns the signing and encryption keys of a record.
	ContentKeys(key string) (*ContentKeys, error)

	// Network returns the network label used in every derivation path.
	Network() string
}
