// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

// HashString returns the one-at-a-time hash dictionaries are keyed by.
// Bytes are added sign-extended and hashing stops at the first NUL, so
// names outside ASCII hash the same way the engine hashes them.
func HashString(s string) uint32 {
	var hash uint32
	for i := 0; i < len(s) && s[i] != 0; i++ {
		hash += uint32(int32(int8(s[i])))
		hash += hash << 10
		hash ^= hash >> 6
	}

	hash += hash << 3
	hash ^= hash >> 11
	hash += hash << 15

	return hash
}
