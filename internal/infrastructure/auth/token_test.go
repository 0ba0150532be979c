package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService("")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := NewTokenService("s3cret", WithIssuer("lecturer-claims"))
	require.NoError(t, err)

	token, err := svc.Issue("lec-1")
	require.NoError(t, err)

	subject, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "lec-1", subject)
}

func TestTokenService_IssueRejectsEmptySubject(t *testing.T) {
	svc, err := NewTokenService("s3cret")
	require.NoError(t, err)

	_, err = svc.Issue("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_ParseFailures(t *testing.T) {
	svc, err := NewTokenService("s3cret")
	require.NoError(t, err)

	other, err := NewTokenService("different")
	require.NoError(t, err)
	foreign, err := other.Issue("lec-1")
	require.NoError(t, err)

	expiredIssuer, err := NewTokenService("s3cret",
		WithTTL(time.Minute),
		WithClock(func() time.Time { return time.Now().Add(-time.Hour) }),
	)
	require.NoError(t, err)
	expired, err := expiredIssuer.Issue("lec-1")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "lec-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).
		SignedString([]byte("s3cret"))
	require.NoError(t, err)

	valid, err := svc.Issue("lec-1")
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"none algorithm", none},
		{"missing subject", noSubject},
		{"tampered payload", tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_IssuerMismatch(t *testing.T) {
	issuer, err := NewTokenService("s3cret", WithIssuer("someone-else"))
	require.NoError(t, err)
	token, err := issuer.Issue("lec-1")
	require.NoError(t, err)

	svc, err := NewTokenService("s3cret", WithIssuer("lecturer-claims"))
	require.NoError(t, err)

	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
