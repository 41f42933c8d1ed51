package qrcode

import (
	"encoding/base64"
	"errors"
	"image"
	"os"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when content is empty or only whitespace.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrFailedToGenerate is returned when the QR code cannot be encoded.
	ErrFailedToGenerate = errors.New("failed to generate QR code")
	// ErrFailedToWrite is returned when a test card cannot be written to disk.
	ErrFailedToWrite = errors.New("failed to write QR code file")
)

const defaultSize = 256

func encode(content string) (*skipqrcode.QRCode, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	q, err := skipqrcode.New(content, skipqrcode.Medium)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerate, err)
	}
	return q, nil
}

func normalizeSize(size int) int {
	if size <= 0 {
		return defaultSize
	}
	return size
}

// Generate returns a PNG of the QR code for content, size pixels square.
func Generate(content string, size int) ([]byte, error) {
	q, err := encode(content)
	if err != nil {
		return nil, err
	}
	png, err := q.PNG(normalizeSize(size))
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerate, err)
	}
	return png, nil
}

// Image returns the QR code for content as an in-memory image.
func Image(content string, size int) (image.Image, error) {
	q, err := encode(content)
	if err != nil {
		return nil, err
	}
	return q.Image(normalizeSize(size)), nil
}

// GenerateBase64Image returns a data URI usable in an <img> src attribute.
func GenerateBase64Image(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// WriteFile writes a PNG test card for content to path.
func WriteFile(content string, size int, path string) error {
	png, err := Generate(content, size)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return errors.Join(ErrFailedToWrite, err)
	}
	return nil
}
