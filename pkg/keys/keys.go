package keys

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles minted for project API keys.
const (
	RoleAnon        = "anon"
	RoleServiceRole = "service_role"
)

// Info is what a project API key claims about itself.
type Info struct {
	// Role is the Postgres role the key authenticates as, normally
	// "anon" or "service_role".
	Role string

	// Ref is the project reference the key was minted for.
	Ref string

	// Issuer is the iss claim, "supabase" for hosted projects.
	Issuer string

	// ExpiresAt is the key's expiry; zero if the key never expires.
	ExpiresAt time.Time
}

// Expired reports whether the key is past its expiry.
func (i *Info) Expired() bool {
	return !i.ExpiresAt.IsZero() && time.Now().After(i.ExpiresAt)
}

// ServiceRole reports whether the key bypasses row level security. Such a
// key makes the permissive test policies irrelevant and usually indicates
// the wrong key was exported.
func (i *Info) ServiceRole() bool {
	return i.Role == RoleServiceRole
}

// Inspect decodes a project API key. The key is a JWT signed with the
// project's secret, which we don't hold, so the claims are read without
// signature verification; the storage service is the authority on whether
// the key is actually accepted.
func Inspect(key string) (*Info, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(key, claims); err != nil {
		return nil, fmt.Errorf("keys: SUPABASE_KEY is not a JWT: %w", err)
	}

	info := &Info{}
	if role, ok := claims["role"].(string); ok {
		info.Role = role
	}
	if ref, ok := claims["ref"].(string); ok {
		info.Ref = ref
	}
	if iss, err := claims.GetIssuer(); err == nil {
		info.Issuer = iss
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
