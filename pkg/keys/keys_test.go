package keys

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeKey builds a JWT with the given claims. The signature is garbage;
// Inspect never verifies it.
func makeKey(t *testing.T, claims map[string]any) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "." + enc.EncodeToString([]byte("sig"))
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(24 * time.Hour).Unix()
	key := makeKey(t, map[string]any{
		"role": "anon",
		"ref":  "abcdefghijklmnop",
		"iss":  "supabase",
		"exp":  exp,
	})

	info, err := Inspect(key)
	require.NoError(t, err)

	assert.Equal(t, RoleAnon, info.Role)
	assert.Equal(t, "abcdefghijklmnop", info.Ref)
	assert.Equal(t, "supabase", info.Issuer)
	assert.Equal(t, exp, info.ExpiresAt.Unix())
	assert.False(t, info.Expired())
	assert.False(t, info.ServiceRole())
}

func TestInspectServiceRole(t *testing.T) {
	key := makeKey(t, map[string]any{"role": "service_role", "iss": "supabase"})

	info, err := Inspect(key)
	require.NoError(t, err)

	assert.True(t, info.ServiceRole())
}

func TestInspectExpired(t *testing.T) {
	key := makeKey(t, map[string]any{
		"role": "anon",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})

	info, err := Inspect(key)
	require.NoError(t, err)

	assert.True(t, info.Expired())
}

func TestInspectNoExpiry(t *testing.T) {
	key := makeKey(t, map[string]any{"role": "anon"})

	info, err := Inspect(key)
	require.NoError(t, err)

	assert.True(t, info.ExpiresAt.IsZero())
	assert.False(t, info.Expired())
}

func TestInspectNotAJWT(t *testing.T) {
	_, err := Inspect("not-a-jwt")
	assert.Error(t, err)
}
