package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlgorithm(t *testing.T) {
	cases := map[string]Algorithm{
		"md5":      MD5,
		"MD5":      MD5,
		"sha1":     SHA1,
		"SHA-1":    SHA1,
		"sha256":   SHA256,
		"SHA_256":  SHA256,
		"blake2b":  BLAKE2b,
		"BLAKE3":   BLAKE3,
		"xxh3":     XXH3,
		"xxh3-128": XXH3,
		"xxh64":    XXH64,
		"crc32":    CRC32,
	}
	for in, want := range cases {
		got, err := ParseAlgorithm(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseAlgorithm("made-up-algo")
	assert.Error(t, err)
}

func TestMD5KnownVector(t *testing.T) {
	h, err := New(MD5)
	require.NoError(t, err)
	_, err = h.Update([]byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", h.Finalize())
}

func TestSHA1KnownVector(t *testing.T) {
	h, err := New(SHA1)
	require.NoError(t, err)
	_, _ = h.Update([]byte("hello world"))
	assert.Equal(t, "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed", h.Finalize())
}

func TestSHA256KnownVector(t *testing.T) {
	h, err := New(SHA256)
	require.NoError(t, err)
	_, _ = h.Update([]byte(""))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", h.Finalize())
}

func TestCRC32KnownVector(t *testing.T) {
	h, err := New(CRC32)
	require.NoError(t, err)
	_, _ = h.Update([]byte("123456789"))
	assert.Equal(t, "cbf43926", h.Finalize())
}

func TestEveryAlgorithmRoundTrips(t *testing.T) {
	for _, algo := range []Algorithm{MD5, SHA1, SHA256, SHA512, BLAKE2b, BLAKE3, XXH3, XXH64, CRC32} {
		h, err := New(algo)
		require.NoErrorf(t, err, "algo %s", algo)
		_, err = h.Update([]byte("the quick brown fox jumps over the lazy dog"))
		require.NoError(t, err)
		digest := h.Finalize()
		assert.NotEmpty(t, digest)
		assert.Equal(t, algo, h.Algorithm())
	}
}

func TestHashesMatch(t *testing.T) {
	assert.True(t, HashesMatch("5eb63bbbe01eeed093cb22bb8f5acdc3", "5EB6-3BBB-E01E-EED0-93CB-22BB-8F5A-CDC3"))
	assert.False(t, HashesMatch("5eb63bbbe01eeed093cb22bb8f5acdc3", "deadbeef"))
}
