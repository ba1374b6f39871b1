package domain

import "time"

// TokenClaims carries the identity encoded in an API bearer token.
// Account storage and session issuance live outside this core; the claims
// exist so the thin HTTP layer can validate tokens minted elsewhere.
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// Expired reports whether the token's expiry has passed
func (c *TokenClaims) Expired() bool {
	return time.Now().Unix() >= c.ExpiresAt
}
