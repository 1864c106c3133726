package hash

import "github.com/cespare/xxhash/v2"

// Digest computes the xxHash64 of an encoded message.
func Digest(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// DigestString computes the xxHash64 of the given string.
func DigestString(data string) uint64 {
	return xxhash.Sum64String(data)
}
