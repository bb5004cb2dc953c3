// Package qr renders session URLs as QR code images for the desktop
// login page.
package qr

import (
	"encoding/base64"
	"fmt"

	"rsc.io/qr"
)

// Encoder implements deps.QREncoder using rsc.io/qr
type Encoder struct {
	level qr.Level
}

// NewEncoder creates a QR encoder. Level L keeps the code coarse enough
// to scan off a desktop monitor.
func NewEncoder() *Encoder {
	return &Encoder{level: qr.L}
}

// EncodePNGBase64 renders the payload as a base64-encoded PNG
func (e *Encoder) EncodePNGBase64(payload string) (string, error) {
	code, err := qr.Encode(payload, e.level)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}
	return base64.StdEncoding.EncodeToString(code.PNG()), nil
}
