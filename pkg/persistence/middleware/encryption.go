package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/stepform/pkg/domain"
	"github.com/aretw0/stepform/pkg/ports"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.SessionStore
	config EncryptionConfig
}

// envelopeKey is the only value an encrypted session exposes to the store.
const envelopeKey = "__encrypted__"

// ErrNotEncrypted is returned when a stored session carries no envelope.
var ErrNotEncrypted = errors.New("session is missing encrypted data envelope")

// ParseKey decodes a base64 (standard encoding) AES-256 key.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// NewEncryptionMiddleware creates a middleware that encrypts session values
// with AES-GCM. The store only sees the session ID and an opaque envelope.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, data *domain.SessionData) error {
	plain, err := json.Marshal(data.Values)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", data.ID, err)
	}
	sealed, err := encrypt(plain, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("encrypt session %s: %w", data.ID, err)
	}

	envelope := domain.NewSessionData(data.ID)
	envelope.Values[envelopeKey] = base64.StdEncoding.EncodeToString(sealed)
	return m.next.Save(ctx, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.SessionData, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Fail closed: once encryption is configured, plain sessions are rejected.
	encoded, ok := envelope.Values[envelopeKey].(string)
	if !ok {
		return nil, ErrNotEncrypted
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	plain, err := decrypt(sealed, m.config.keys())
	if err != nil {
		return nil, fmt.Errorf("decrypt session %s: %w", sessionID, err)
	}

	data := domain.NewSessionData(sessionID)
	if err := json.Unmarshal(plain, &data.Values); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", sessionID, err)
	}
	if data.Values == nil {
		data.Values = make(map[string]any)
	}
	return data, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// keys returns the active key followed by the fallback keys.
func (c EncryptionConfig) keys() [][]byte {
	return append([][]byte{c.ActiveKey}, c.FallbackKeys...)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// encrypt seals plaintext with a random nonce prepended to the output.
func encrypt(plaintext, key []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// decrypt opens ciphertext with the first key that authenticates it.
func decrypt(ciphertext []byte, keys [][]byte) ([]byte, error) {
	for _, key := range keys {
		aead, err := newAEAD(key)
		if err != nil {
			continue
		}
		n := aead.NonceSize()
		if len(ciphertext) < n {
			return nil, errors.New("ciphertext too short")
		}
		if plain, err := aead.Open(nil, ciphertext[:n], ciphertext[n:], nil); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("no key could decrypt the session")
}
