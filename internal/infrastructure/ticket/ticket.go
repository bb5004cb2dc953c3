package ticket

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medcall/clinic-queue/auth-service/config"
)

// Claims is the payload carried by a short-lived login ticket. The
// ticket proves a completed QR handshake; the staff id travels in the
// standard subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer signs single-use login tickets handed out after finalize.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(cfg *config.TicketConfig) *Issuer {
	return &Issuer{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
	}
}

func (i *Issuer) Issue(userID string, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign login ticket: %w", err)
	}
	return signed, nil
}

// Validate parses a ticket and returns its claims. The queue backend
// redeems tickets through this path when exchanging them for a session.
func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid ticket")
	}

	return claims, nil
}
