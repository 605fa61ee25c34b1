// Package cardqr renders card ids as QR codes for printing on the card.
package cardqr

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultSize = 256
	MinSize     = 64
	MaxSize     = 1024
)

var ErrEmptyID = errors.New("empty card id")

// PNG encodes cardID as a size x size PNG. Sizes outside [MinSize, MaxSize]
// are clamped.
func PNG(cardID string, size int) ([]byte, error) {
	if cardID == "" {
		return nil, ErrEmptyID
	}

	qr, err := qrcode.New(cardID, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	img, err := qr.PNG(min(max(size, MinSize), MaxSize))
	if err != nil {
		return nil, fmt.Errorf("render qr png: %w", err)
	}

	return img, nil
}
