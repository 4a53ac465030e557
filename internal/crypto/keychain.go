// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"bytes"
	"crypto/ed25519"

	"golang.org/x/crypto/argon2"
)

const (
	// MinMasterKeyLen is the shortest accepted master secret.
	MinMasterKeyLen = 32

	labelContent = "content"
	labelSign    = "sign"
	labelEncrypt = "encrypt"
)

// keychain is the private implementation of [Keychain].
type keychain struct {
	master  []byte
	network string
}

// NewKeychain constructs a [Keychain] over master for network ("mainnet" or
// "sandbox"). The master secret is copied.
func NewKeychain(master []byte, network string) (Keychain, error) {
	if len(master) < MinMasterKeyLen {
		return nil, ErrInvalidMasterKey
	}
	if network == "" {
		return nil, ErrInvalidNetwork
	}

	return &keychain{
		master:  bytes.Clone(master),
		network: network,
	}, nil
}

// Network implements [Keychain].
func (k *keychain) Network() string {
	return k.network
}

// ContentKeys implements [Keychain].
func (k *keychain) ContentKeys(key string) (*ContentKeys, error) {
	if key == "" {
		return nil, ErrEmptyRecordKey
	}

	seed := DeriveSymmetricPath(k.master, []string{k.network, labelContent, key, labelSign})
	secret := DeriveSymmetricPath(k.master, []string{k.network, labelContent, key, labelEncrypt})

	priv := ed25519.NewKeyFromSeed(seed)
	ck := &ContentKeys{
		Public:  priv.Public().(ed25519.PublicKey),
		private: priv,
	}
	copy(ck.secret[:], secret)

	return ck, nil
}

// Argon2id parameters for passphrase-derived master keys. Time 1, 64 MiB,
// 4 threads, 32-byte output.
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
)

// MasterKeyFromPassphrase derives a master secret from a passphrase and salt
// with Argon2id. Every device using the same pair derives the same secret.
func MasterKeyFromPassphrase(passphrase, salt string) []byte {
	return argon2.IDKey([]byte(passphrase), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
}
