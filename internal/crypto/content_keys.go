// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

// NonceSize is the secretbox nonce length prefixed to every ciphertext.
const NonceSize = 24

// ContentKeys is the derived key material of one record.
type ContentKeys struct {
	// Public identifies the record on the server.
	Public ed25519.PublicKey

	private ed25519.PrivateKey
	secret  [32]byte
}

// Seal encrypts plaintext and returns nonce | secretbox(plaintext).
func (c *ContentKeys) Seal(plaintext []byte) ([]byte, error) {
	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNonce, err)
	}

	return secretbox.Seal(nonce[:], plaintext, &nonce, &c.secret), nil
}

// Open reverses [ContentKeys.Seal].
func (c *ContentKeys) Open(box []byte) ([]byte, error) {
	if len(box) < NonceSize+secretbox.Overhead {
		return nil, ErrCiphertextTooShort
	}

	var nonce [NonceSize]byte
	copy(nonce[:], box[:NonceSize])

	plaintext, ok := secretbox.Open(nil, box[NonceSize:], &nonce, &c.secret)
	if !ok {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// SignRead signs a read request expiring at expiry (unix seconds).
func (c *ContentKeys) SignRead(expiry uint32) []byte {
	return ed25519.Sign(c.private, ReadPayload(c.Public, expiry))
}

// SignWrite signs a write of ciphertext over sequence seq.
func (c *ContentKeys) SignWrite(ciphertext []byte, seq, expiry uint32) []byte {
	return ed25519.Sign(c.private, WritePayload(c.Public, ciphertext, seq, expiry))
}

// ReadPayload is the signed form of a read request: pubkey | expiry (u32 BE).
func ReadPayload(pub ed25519.PublicKey, expiry uint32) []byte {
	buf := make([]byte, 0, len(pub)+4)
	buf = append(buf, pub...)
	return binary.BigEndian.AppendUint32(buf, expiry)
}

// WritePayload is the signed form of a write request:
// pubkey | sha256(ciphertext) | seq (u32 BE) | expiry (u32 BE).
func WritePayload(pub ed25519.PublicKey, ciphertext []byte, seq, expiry uint32) []byte {
	digest := sha256.Sum256(ciphertext)

	buf := make([]byte, 0, len(pub)+len(digest)+8)
	buf = append(buf, pub...)
	buf = append(buf, digest[:]...)
	buf = binary.BigEndian.AppendUint32(buf, seq)
	return binary.BigEndian.AppendUint32(buf, expiry)
}

// Verify reports whether sig is a valid signature of payload by pub.
func Verify(pub, payload, sig []byte) (bool, error) {
	if len(pub) != ed25519.PublicKeySize {
		return false, ErrInvalidPublicKey
	}
	return ed25519.Verify(ed25519.PublicKey(pub), payload, sig), nil
}
