// Package cryptox seals provider passkeys so they are never stored in
// plaintext. Keys are derived from the server secret with argon2id and
// payloads are encrypted with AES-GCM.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// keySalt is a domain separation constant. The actual secrecy comes from
// the server secret, not the salt.
var keySalt = []byte("teamcomp/passkey/v1")

// DeriveKey derives a 32-byte AES key from the server secret.
func DeriveKey(secret []byte) []byte {
	return argon2.IDKey(secret, keySalt, 1, 64*1024, 4, 32)
}

// Box seals and opens short secrets with a key derived from the server
// secret. Sealed values are base64 strings carrying the nonce prefix, so
// they can be stored in a text column.
type Box struct {
	key []byte
}

func NewBox(secret []byte) *Box {
	return &Box{key: DeriveKey(secret)}
}

func (b *Box) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (b *Box) Seal(plaintext []byte) (string, error) {
	aesgcm, err := b.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aesgcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (b *Box) Open(sealed string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("decoding sealed value: %w", err)
	}

	aesgcm, err := b.gcm()
	if err != nil {
		return nil, err
	}

	if len(raw) < aesgcm.NonceSize() {
		return nil, fmt.Errorf("sealed value too short")
	}

	nonce, ciphertext := raw[:aesgcm.NonceSize()], raw[aesgcm.NonceSize():]
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("opening sealed value: %w", err)
	}
	return plaintext, nil
}
