package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medcall/clinic-queue/auth-service/config"
)

func newTestIssuer() *Issuer {
	return NewIssuer(&config.TicketConfig{
		Secret: "test-secret",
		TTL:    time.Minute,
	})
}

func TestIssueAndValidate(t *testing.T) {
	issuer := newTestIssuer()
	now := time.Now()

	token, err := issuer.Issue("user-1", now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.NotEmpty(t, claims.ID)
	require.WithinDuration(t, now.Add(time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestTicketsAreSingleUseDistinct(t *testing.T) {
	issuer := newTestIssuer()
	now := time.Now()

	first, err := issuer.Issue("user-1", now)
	require.NoError(t, err)
	second, err := issuer.Issue("user-1", now)
	require.NoError(t, err)

	// The jti claim makes every ticket unique so the consumer can
	// track redemption
	c1, err := issuer.Validate(first)
	require.NoError(t, err)
	c2, err := issuer.Validate(second)
	require.NoError(t, err)
	require.NotEqual(t, c1.ID, c2.ID)
}

func TestExpiredTicketRejected(t *testing.T) {
	issuer := newTestIssuer()

	token, err := issuer.Issue("user-1", time.Now().Add(-2*time.Minute))
	require.NoError(t, err)

	_, err = issuer.Validate(token)
	require.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	issuer := newTestIssuer()

	token, err := issuer.Issue("user-1", time.Now())
	require.NoError(t, err)

	other := NewIssuer(&config.TicketConfig{Secret: "other-secret", TTL: time.Minute})
	_, err = other.Validate(token)
	require.Error(t, err)
}

func TestTamperedTicketRejected(t *testing.T) {
	issuer := newTestIssuer()

	token, err := issuer.Issue("user-1", time.Now())
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = issuer.Validate(tampered)
	require.Error(t, err)
}
