// Package auth defines the per-request security context produced by a
// security provider and threaded through activation, handler invocation,
// and release.
package auth

// Context carries the outcome of authenticating one request. It lives
// for exactly one request and is never persisted.
type Context struct {
	// Principal identifies the authenticated caller.
	Principal string

	// Claims carries provider-specific attributes of the caller.
	Claims map[string]any

	// Token is the caller's token. When TokenRenewed is true it holds
	// the replacement issued during authentication.
	Token string

	// TokenRenewed marks that Token was re-issued and must be surfaced
	// to the caller.
	TokenRenewed bool
}

// Roles reads the "roles" claim as a string slice. Missing or
// differently-typed claims read as empty.
func (c *Context) Roles() []string {
	if c == nil || c.Claims == nil {
		return nil
	}
	switch v := c.Claims["roles"].(type) {
	case []string:
		return v
	case []any:
		roles := make([]string, 0, len(v))
		for _, r := range v {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
		return roles
	default:
		return nil
	}
}

// HasRole reports whether the context carries the given role.
func (c *Context) HasRole(role string) bool {
	for _, r := range c.Roles() {
		if r == role {
			return true
		}
	}
	return false
}
