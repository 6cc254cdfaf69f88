// Package cryptox implements the envelope encryption used for vault entries
// and the slow salted hashing used for challenge answers and login passwords.
//
// Keys are derived per request from the user's presented password with
// argon2id, salted with the user id, and are never persisted.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/secretvault/internal/common"
	"golang.org/x/crypto/argon2"
)

// AlgorithmAES256GCM tags envelopes produced by Encrypt.
const AlgorithmAES256GCM = "AES-256-GCM"

const (
	KeySize   = 32
	NonceSize = 12
	TagSize   = 16
)

// ErrAuthenticationFailure is the only error Decrypt reports for a bad key,
// a tag mismatch or corrupted input.
var ErrAuthenticationFailure = errors.New("authentication failure")

// KDFParams are the argon2id cost parameters.
type KDFParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultKDFParams are the server defaults.
var DefaultKDFParams = KDFParams{Time: 1, Memory: 64 * 1024, Threads: 4}

// Engine derives entry keys and seals/opens envelopes. It holds no key
// material and is safe for concurrent use.
type Engine struct {
	params KDFParams
}

func NewEngine(params KDFParams) *Engine {
	return &Engine{params: params}
}

// DeriveKey returns a 32-byte key for the given password and user id.
// The result is deterministic; callers should wipe it with
// common.WipeByteArray once done.
func (e *Engine) DeriveKey(password []byte, userID string) []byte {
	return argon2.IDKey(password, []byte(userID), e.params.Time, e.params.Memory, e.params.Threads, KeySize)
}

// Encrypt seals plaintext with AES-256-GCM under key using a fresh random
// nonce. The GCM tag is returned separately from the ciphertext.
func (e *Engine) Encrypt(plaintext, key []byte) (nonce, tag, ciphertext []byte, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, nil, err
	}

	nonce = common.GenerateRandByteArray(NonceSize)
	sealed := aesgcm.Seal(nil, nonce, plaintext, nil)

	split := len(sealed) - TagSize
	ciphertext = sealed[:split:split]
	tag = sealed[split:]

	return nonce, tag, ciphertext, nil
}

// Decrypt verifies tag and returns the plaintext. Every failure, including
// malformed inputs, yields ErrAuthenticationFailure.
func (e *Engine) Decrypt(ciphertext, key, nonce, tag []byte) ([]byte, error) {
	if len(nonce) != NonceSize || len(tag) != TagSize {
		return nil, ErrAuthenticationFailure
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, aes.KeySizeError(len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
