// Package confidential implements the client side of private token values:
// deriving a session account's AES onboarding key and moving amounts as
// ciphertext.
package confidential

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"golang.org/x/crypto/hkdf"
)

var (
	ErrInvalidKey        = errors.New("invalid aes key")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

const keySize = 32

// DeriveKey derives the AES onboarding key for an account on one network.
// The derivation binds the signing key and the network identifier, so the
// same account holds distinct onboarding keys on mainnet and testnet.
func DeriveKey(privateKeyHex, networkID string) (string, error) {
	secret, err := hex.DecodeString(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return "", fmt.Errorf("decode private key: %w", err)
	}
	if len(secret) == 0 {
		return "", fmt.Errorf("decode private key: empty")
	}

	salt := []byte("veil-onboarding:" + networkID)
	reader := hkdf.New(sha256.New, secret, salt, nil)
	key := make([]byte, keySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return "", fmt.Errorf("derive onboarding key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// EncryptValue encrypts a token amount under the onboarding key. Output is
// hex(nonce || ciphertext); the nonce is random per call so equal amounts do
// not produce equal ciphertext.
func EncryptValue(keyHex string, value *big.Int) (string, error) {
	gcm, err := newGCM(keyHex)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := gcm.Seal(nil, nonce, value.Bytes(), nil)
	return hex.EncodeToString(append(nonce, sealed...)), nil
}

// DecryptValue reverses EncryptValue.
func DecryptValue(keyHex, ciphertextHex string) (*big.Int, error) {
	gcm, err := newGCM(keyHex)
	if err != nil {
		return nil, err
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(ciphertextHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	if len(raw) < gcm.NonceSize() {
		return nil, fmt.Errorf("%w: too short", ErrInvalidCiphertext)
	}
	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	return new(big.Int).SetBytes(plain), nil
}

// EncryptValueBytes is EncryptValue returning raw bytes for calldata.
func EncryptValueBytes(keyHex string, value *big.Int) ([]byte, error) {
	encrypted, err := EncryptValue(keyHex, value)
	if err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	return raw, nil
}

// DecryptValueBytes decrypts a raw ciphertext as returned by a private token
// balance query.
func DecryptValueBytes(keyHex string, ciphertext []byte) (*big.Int, error) {
	return DecryptValue(keyHex, hex.EncodeToString(ciphertext))
}

func newGCM(keyHex string) (cipher.AEAD, error) {
	key, err := hex.DecodeString(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidKey, keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return gcm, nil
}
