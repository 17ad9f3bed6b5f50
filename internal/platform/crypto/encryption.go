package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Service seals sensitive employee identifiers at rest with AES-256-GCM.
// Without a key it passes values through unchanged.
type Service struct {
	key []byte
}

func New(key string) (*Service, error) {
	if key == "" {
		return &Service{key: nil}, nil
	}
	decoded, err := decodeKey(key)
	if err != nil {
		return nil, err
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must be 32 bytes after decoding")
	}
	return &Service{key: decoded}, nil
}

func (s *Service) Configured() bool {
	return s != nil && len(s.key) == 32
}

func (s *Service) Encrypt(plain []byte) ([]byte, error) {
	if len(plain) == 0 {
		return nil, nil
	}
	if !s.Configured() {
		return plain, nil
	}
	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func (s *Service) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 {
		return nil, nil
	}
	if !s.Configured() {
		return ciphertext, nil
	}
	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, data := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, data, nil)
}

func (s *Service) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (s *Service) EncryptString(value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	return s.Encrypt([]byte(value))
}

func (s *Service) DecryptString(value []byte) (string, error) {
	plain, err := s.Decrypt(value)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// Mask keeps the last four characters of a government ID for display.
func Mask(value string) string {
	value = strings.TrimSpace(value)
	if len(value) <= 4 {
		return value
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}

func decodeKey(raw string) ([]byte, error) {
	if len(raw) == 64 {
		if decoded, err := hex.DecodeString(raw); err == nil {
			return decoded, nil
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	return []byte(raw), nil
}
