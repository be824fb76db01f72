// Package hashing implements the StreamingHasher abstraction: a single
// update/finalize interface over every algorithm the core supports,
// selected at runtime by case-insensitive name.
package hashing

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"hash/crc32"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"

	"github.com/forensiccase/containerctl/internal/cerrors"
)

// Algorithm identifies a supported hash algorithm. Names are canonical;
// ParseAlgorithm accepts case-insensitive aliases.
type Algorithm string

const (
	MD5     Algorithm = "MD5"
	SHA1    Algorithm = "SHA-1"
	SHA256  Algorithm = "SHA-256"
	SHA512  Algorithm = "SHA-512"
	BLAKE2b Algorithm = "BLAKE2b"
	BLAKE3  Algorithm = "BLAKE3"
	XXH3    Algorithm = "XXH3-128"
	XXH64   Algorithm = "XXH64"
	CRC32   Algorithm = "CRC32"
)

// ParseAlgorithm resolves a user-supplied algorithm name, case- and
// punctuation-insensitively, to a canonical Algorithm. Unknown names
// return cerrors.ErrUnsupportedAlgorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	norm := strings.ToLower(strings.Map(func(r rune) rune {
		if r == '-' || r == '_' || r == ' ' {
			return -1
		}
		return r
	}, name))

	switch norm {
	case "md5":
		return MD5, nil
	case "sha1":
		return SHA1, nil
	case "sha256":
		return SHA256, nil
	case "sha512":
		return SHA512, nil
	case "blake2b":
		return BLAKE2b, nil
	case "blake3":
		return BLAKE3, nil
	case "xxh3", "xxh3128":
		return XXH3, nil
	case "xxh64":
		return XXH64, nil
	case "crc32":
		return CRC32, nil
	default:
		return "", fmt.Errorf("%w: %q", cerrors.ErrUnsupportedAlgorithm, name)
	}
}

// StreamingHasher accumulates bytes and produces a lowercase-hex digest.
// It wraps the stdlib hash.Hash interface where one exists and the
// zeebo BLAKE3/XXH3 writers otherwise, behind one update/finalize shape.
type StreamingHasher interface {
	Update(p []byte) (int, error)
	Finalize() string
	Algorithm() Algorithm
}

type stdHasher struct {
	algo Algorithm
	h    hash.Hash
}

func (s *stdHasher) Update(p []byte) (int, error) { return s.h.Write(p) }
func (s *stdHasher) Finalize() string             { return fmt.Sprintf("%x", s.h.Sum(nil)) }
func (s *stdHasher) Algorithm() Algorithm          { return s.algo }

type xxh64Hasher struct{ d *xxhash.Digest }

func (x *xxh64Hasher) Update(p []byte) (int, error) { return x.d.Write(p) }
func (x *xxh64Hasher) Finalize() string             { return fmt.Sprintf("%016x", x.d.Sum64()) }
func (x *xxh64Hasher) Algorithm() Algorithm          { return XXH64 }

type xxh3Hasher struct{ h *xxh3.Hasher }

func (x *xxh3Hasher) Update(p []byte) (int, error) { return x.h.Write(p) }
func (x *xxh3Hasher) Finalize() string {
	sum := x.h.Sum128().Bytes()
	return fmt.Sprintf("%x", sum[:])
}
func (x *xxh3Hasher) Algorithm() Algorithm { return XXH3 }

type blake3Hasher struct{ h *blake3.Hasher }

func (b *blake3Hasher) Update(p []byte) (int, error) { return b.h.Write(p) }
func (b *blake3Hasher) Finalize() string             { return fmt.Sprintf("%x", b.h.Sum(nil)) }
func (b *blake3Hasher) Algorithm() Algorithm          { return BLAKE3 }

// New constructs a StreamingHasher for algo. algo should come from
// ParseAlgorithm so that unsupported names are already rejected.
func New(algo Algorithm) (StreamingHasher, error) {
	switch algo {
	case MD5:
		return &stdHasher{algo: algo, h: md5.New()}, nil
	case SHA1:
		return &stdHasher{algo: algo, h: sha1.New()}, nil
	case SHA256:
		return &stdHasher{algo: algo, h: sha256.New()}, nil
	case SHA512:
		return &stdHasher{algo: algo, h: sha512.New()}, nil
	case CRC32:
		return &stdHasher{algo: algo, h: crc32.NewIEEE()}, nil
	case BLAKE2b:
		h, err := blake2b.New256(nil)
		if err != nil {
			return nil, fmt.Errorf("hashing: init blake2b: %w", err)
		}
		return &stdHasher{algo: algo, h: h}, nil
	case XXH64:
		return &xxh64Hasher{d: xxhash.New()}, nil
	case XXH3:
		return &xxh3Hasher{h: xxh3.New()}, nil
	case BLAKE3:
		return &blake3Hasher{h: blake3.New()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", cerrors.ErrUnsupportedAlgorithm, algo)
	}
}

// NormalizeStoredHash lowercases a stored hash value and strips every
// non-hex-digit character, matching how comparisons against embedded or
// companion-log hashes are performed throughout the core.
func NormalizeStoredHash(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HashesMatch compares a computed digest against a stored one using
// case-insensitive, non-hex-stripped equality.
func HashesMatch(computed, stored string) bool {
	return strings.ToLower(computed) == NormalizeStoredHash(stored)
}
