package dto

import "time"

// InitSessionResponse is the desktop login page payload. The QR encodes
// qr_url, which carries only the opaque session id.
type InitSessionResponse struct {
	SessionID    string    `json:"session_id"`
	QRURL        string    `json:"qr_url"`
	QRCodeBase64 string    `json:"qr_code_base64"` // PNG image base64
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthorizeRequest is sent by the phone-side flow after it has
// authenticated the staff user by its own means
type AuthorizeRequest struct {
	UserID string `json:"user_id"`
}

// AuthorizeResponse carries the verifier code for the phone screen.
// This payload only ever goes to the phone, never to the desktop.
type AuthorizeResponse struct {
	SessionID    string `json:"session_id"`
	Status       string `json:"status"`
	VerifierCode string `json:"verifier_code"`
}

// FinalizeRequest carries the code the desktop operator typed in
type FinalizeRequest struct {
	VerifierCode string `json:"verifier_code"`
}

// FinalizeResponse completes the login on the desktop side
type FinalizeResponse struct {
	SessionID   string `json:"session_id"`
	UserID      string `json:"user_id"`
	LoginTicket string `json:"login_ticket"`
}

// ErrorResponse is the error payload shared by all endpoints
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is the polling fallback view
type StatusResponse struct {
	SessionID string    `json:"session_id"`
	Status    string    `json:"status"`
	UserID    *string   `json:"user_id,omitempty"` // set once completed
	ExpiresAt time.Time `json:"expires_at"`
}
