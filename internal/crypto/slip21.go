// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/hmac"
	"crypto/sha512"
)

const slip21Seed = "Symmetric key seed"

// DeriveSymmetricPath returns the 32-byte key at path under master following
// the SLIP-0021 node layout: every node is 64 bytes, the left half keys the
// next HMAC and the right half is the node's key.
func DeriveSymmetricPath(master []byte, path []string) []byte {
	node := hmacSHA512([]byte(slip21Seed), master)

	for _, label := range path {
		data := make([]byte, 0, 1+len(label))
		data = append(data, 0)
		data = append(data, label...)
		node = hmacSHA512(node[:32], data)
	}

	key := make([]byte, 32)
	copy(key, node[32:])
	return key
}

func hmacSHA512(key, data []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}
