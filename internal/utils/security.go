package utils

// MaskSessionID truncates a session id for secure logging. Session ids
// are bearer-ish (the QR payload is the id), so full values stay out of
// the logs.
//
// Examples:
//   - "pXq4…(43 chars)…" -> "pXq4Zt9w****"
//   - "short" -> "****"
func MaskSessionID(id string) string {
	if len(id) <= 8 {
		return "****"
	}
	return id[:8] + "****"
}
