package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"reviewpilot-core/internal/apperror"
)

const keyLength = 32

// EncryptionService encrypts credentials at rest.
// Ciphertexts are AES-256-CBC with PKCS#7 padding, encoded as hex(iv) ":" hex(data).
type EncryptionService struct {
	block cipher.Block
}

// NewEncryptionService derives the cipher key from secret.
// The key is the first 32 characters of base64(sha256(secret)), so tokens
// stored by earlier deployments keep decrypting.
func NewEncryptionService(secret string) (*EncryptionService, error) {
	if secret == "" {
		return nil, fmt.Errorf("encryption secret is required")
	}

	sum := sha256.Sum256([]byte(secret))
	key := []byte(base64.StdEncoding.EncodeToString(sum[:])[:keyLength])

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	return &EncryptionService{block: block}, nil
}

// Encrypt encrypts plaintext with a fresh random IV. Empty input is returned unchanged.
func (s *EncryptionService) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pad([]byte(plaintext))
	data := make([]byte, len(padded))
	cipher.NewCBCEncrypter(s.block, iv).CryptBlocks(data, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(data), nil
}

// Decrypt reverses Encrypt. Empty input is returned unchanged.
func (s *EncryptionService) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	ivHex, dataHex, found := strings.Cut(ciphertext, ":")
	if !found {
		return "", apperror.Decryption("ciphertext is missing the IV separator", nil)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", apperror.Decryption("IV is not valid hex", err)
	}
	if len(iv) != aes.BlockSize {
		return "", apperror.Decryption(fmt.Sprintf("IV must be %d bytes", aes.BlockSize), nil)
	}

	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return "", apperror.Decryption("ciphertext is not valid hex", err)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", apperror.Decryption("ciphertext is not a whole number of blocks", nil)
	}

	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(s.block, iv).CryptBlocks(plain, data)

	unpadded, err := unpad(plain)
	if err != nil {
		return "", apperror.Decryption("bad padding", err)
	}

	return string(unpadded), nil
}

func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, fmt.Errorf("invalid padding length %d", n)
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, fmt.Errorf("inconsistent padding bytes")
		}
	}
	return b[:len(b)-n], nil
}
