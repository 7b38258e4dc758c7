// Package qr renders a booking confirmation as a QR code. The payload is
// AES-encrypted so the code can be verified at the door without exposing
// booking internals.
package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"

	"github.com/skip2/go-qrcode"

	"ms-cinema/internal/models"
)

type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

// GenerateBookingQR returns a PNG QR code carrying the encrypted booking.
func (g *Generator) GenerateBookingQR(booking models.Booking) ([]byte, error) {
	encrypted, err := g.EncodePayload(booking)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

// EncodePayload marshals and encrypts the booking into the string embedded in
// the QR image.
func (g *Generator) EncodePayload(booking models.Booking) (string, error) {
	data, err := json.Marshal(booking)
	if err != nil {
		return "", err
	}
	return encryptAES(data, g.secret)
}

// DecodePayload reverses the encryption applied by GenerateBookingQR. Used by
// door-scanner tooling and tests.
func (g *Generator) DecodePayload(encoded string) (models.Booking, error) {
	var booking models.Booking

	ciphertext, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return booking, err
	}
	if len(ciphertext) < aes.BlockSize {
		return booking, errors.New("payload too short")
	}

	block, err := aes.NewCipher(g.secret)
	if err != nil {
		return booking, err
	}

	iv := ciphertext[:aes.BlockSize]
	data := make([]byte, len(ciphertext)-aes.BlockSize)
	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(data, ciphertext[aes.BlockSize:])

	err = json.Unmarshal(data, &booking)
	return booking, err
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
