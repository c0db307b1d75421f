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

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
)

// envelopeKey is the single string entry of an encrypted save.
const envelopeKey = "__encrypted__"

// ErrNotEncrypted is returned when loading a save that has no encrypted envelope.
var ErrNotEncrypted = errors.New("save data is missing encrypted envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables key rotation without rewriting every save.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.SnapshotStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts saves using AES-GCM.
// The stored record keeps its profile and timestamp; the globals are replaced
// by an opaque envelope.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, profile string, data *domain.SaveData) error {
	plainText, err := json.Marshal(data.Globals)
	if err != nil {
		return fmt.Errorf("failed to marshal globals: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt globals: %w", err)
	}

	envelope := &domain.SaveData{
		Profile:   data.Profile,
		UpdatedAt: data.UpdatedAt,
		Globals: domain.VariableSnapshot{
			Strings: []domain.StringEntry{{Key: envelopeKey, Value: base64.StdEncoding.EncodeToString(ciphertext)}},
		},
	}
	return m.next.Save(ctx, profile, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, profile string) (*domain.SaveData, error) {
	envelope, err := m.next.Load(ctx, profile)
	if err != nil {
		return nil, err
	}

	s := envelope.Globals.Strings
	if len(s) != 1 || s[0].Key != envelopeKey || len(envelope.Globals.Ints) > 0 || len(envelope.Globals.Bools) > 0 {
		// Fail secure: a configured key means every save must be encrypted.
		return nil, ErrNotEncrypted
	}

	ciphertext, err := base64.StdEncoding.DecodeString(s[0].Value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt globals: %w", err)
	}

	out := &domain.SaveData{Profile: envelope.Profile, UpdatedAt: envelope.UpdatedAt}
	if err := json.Unmarshal(plainText, &out.Globals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted globals: %w", err)
	}
	return out, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, profile string) error {
	return m.next.Delete(ctx, profile)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}
