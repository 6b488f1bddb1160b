package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestGenerateVerifyRoundTrip(t *testing.T) {
	opts := DefaultOptions(testSecret)

	token, expireAt, err := Generate(opts, "user-1", nil)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(opts.TTL), expireAt, 5*time.Second)

	claims, err := Verify(opts, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, err := Generate(DefaultOptions(testSecret), "user-1", nil)
	require.NoError(t, err)

	_, err = Verify(DefaultOptions([]byte("another-secret-another-secret!!")), token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	// TTL <= 0 falls back to the default inside Generate, so the expiry
	// case needs a tiny positive TTL.
	opts := DefaultOptions(testSecret)
	opts.TTL = time.Millisecond
	token, _, err := Generate(opts, "user-1", nil)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond) // exp has one-second resolution

	_, err = Verify(opts, token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := Verify(DefaultOptions(testSecret), "not.a.token")
	assert.Error(t, err)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	token, _, err := Generate(DefaultOptions(testSecret), "user-1", nil)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	parts[1] = strings.Map(func(r rune) rune {
		if r == 'a' {
			return 'b'
		}
		return r
	}, parts[1])

	_, err = Verify(DefaultOptions(testSecret), strings.Join(parts, "."))
	assert.Error(t, err)
}

func TestSigningMethodSelection(t *testing.T) {
	for _, alg := range []string{"", "HS256", "hs384", "HS512"} {
		opts := DefaultOptions(testSecret)
		opts.Alg = alg
		token, _, err := Generate(opts, "user-1", nil)
		require.NoError(t, err, "alg=%q", alg)
		claims, err := Verify(opts, token)
		require.NoError(t, err, "alg=%q", alg)
		assert.Equal(t, "user-1", claims.UserID())
	}

	opts := DefaultOptions(testSecret)
	opts.Alg = "RS256"
	_, _, err := Generate(opts, "user-1", nil)
	assert.Error(t, err)
}

func TestHashTokenStable(t *testing.T) {
	a := HashToken("token-a")
	assert.Equal(t, a, HashToken("token-a"))
	assert.NotEqual(t, a, HashToken("token-b"))
	assert.True(t, strings.HasPrefix(a, "sha256:"))
}
