package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer   = "contactbook"
	tokenAudience = "contactbook-api"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims represents the JWT claims of a session token. Subject holds the user ID.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the user the token is bound to.
func (c *Claims) UserID() string {
	return c.Subject
}

// GenerateToken creates a signed session token for the given user, valid for expiry.
func GenerateToken(userID, secret string, expiry time.Duration) (string, error) {
	return generateTokenAt(userID, secret, expiry, time.Now())
}

func generateTokenAt(userID, secret string, expiry time.Duration, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken checks signature, issuer, audience and expiry, returning the claims if valid.
// Every failure collapses to ErrInvalidToken.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
