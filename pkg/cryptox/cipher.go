package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	CipherKeyLen = 32 // AES-256
	CipherIVLen  = aes.BlockSize

	pbkdf2Iterations = 10_000
)

var ErrCiphertext = errors.New("cryptox: invalid ciphertext")

// Cipher is AES-256-CBC with a fixed key and IV. It is deterministic on
// purpose: equal plaintexts encrypt to equal hex strings, which is what lets
// a presented refresh token be matched against the stored ciphertext.
// It is not a general purpose encryption primitive.
type Cipher struct {
	block cipher.Block
	iv    []byte
}

func NewCipher(key, iv []byte) (*Cipher, error) {
	if len(key) != CipherKeyLen {
		return nil, fmt.Errorf("cryptox: cipher key must be %d bytes, got %d", CipherKeyLen, len(key))
	}
	if len(iv) != CipherIVLen {
		return nil, fmt.Errorf("cryptox: cipher iv must be %d bytes, got %d", CipherIVLen, len(iv))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &Cipher{block: block, iv: append([]byte(nil), iv...)}, nil
}

// ParseCipher builds a Cipher from hex encoded key and IV.
func ParseCipher(hexKey, hexIV string) (*Cipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("cryptox: cipher key: %w", err)
	}
	iv, err := hex.DecodeString(hexIV)
	if err != nil {
		return nil, fmt.Errorf("cryptox: cipher iv: %w", err)
	}
	return NewCipher(key, iv)
}

// DeriveCipher stretches a passphrase with PBKDF2-SHA512 into key and IV.
func DeriveCipher(passphrase, salt string) (*Cipher, error) {
	if passphrase == "" || salt == "" {
		return nil, errors.New("cryptox: passphrase and salt are required")
	}
	material := pbkdf2.Key([]byte(passphrase), []byte(salt), pbkdf2Iterations, CipherKeyLen+CipherIVLen, sha512.New)
	return NewCipher(material[:CipherKeyLen], material[CipherKeyLen:])
}

// RandomCipher uses a fresh key and IV. Ciphertexts from a previous process
// can't be decrypted, so every stored session dies on restart.
func RandomCipher() (*Cipher, error) {
	material := make([]byte, CipherKeyLen+CipherIVLen)
	if _, err := rand.Read(material); err != nil {
		return nil, err
	}
	return NewCipher(material[:CipherKeyLen], material[CipherKeyLen:])
}

// Encrypt returns the hex encoded ciphertext of plaintext.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)
	return hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Bad hex, a partial block or broken padding all
// report ErrCiphertext.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	raw, err := hex.DecodeString(ciphertext)
	if err != nil || len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", ErrCiphertext
	}
	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, raw)

	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, ErrCiphertext
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, ErrCiphertext
		}
	}
	return b[:len(b)-n], nil
}
