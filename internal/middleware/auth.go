package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-airdrop/internal/constants"
)

var (
	ErrMissingToken   = errors.New("no authentication provided")
	ErrInvalidSubject = errors.New("token subject is not an address")
)

// CallerClaims are the claims of a caller token. The subject is the caller's
// hex address.
type CallerClaims struct {
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 caller tokens.
type Authenticator struct {
	secret []byte
	issuer string
}

// NewAuthenticator verifies tokens signed with secret. A non-empty issuer
// must match the iss claim.
func NewAuthenticator(secret, issuer string) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer}
}

// ValidateToken parses tokenString and returns the caller address in its
// subject.
func (a *Authenticator) ValidateToken(tokenString string) (common.Address, error) {
	tokenString = strings.TrimPrefix(tokenString, constants.BearerPrefix)
	if tokenString == "" {
		return common.Address{}, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &CallerClaims{}, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*CallerClaims)
	if !ok || !token.Valid {
		return common.Address{}, errors.New("invalid token claims")
	}
	if !common.IsHexAddress(claims.Subject) {
		return common.Address{}, ErrInvalidSubject
	}
	return common.HexToAddress(claims.Subject), nil
}

// IssueToken signs a token for caller valid for ttl. Used by tooling and
// tests.
func (a *Authenticator) IssueToken(caller common.Address, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := CallerClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   caller.Hex(),
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Middleware rejects requests without a valid caller token and stores the
// caller address in the gin context.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := a.ValidateToken(c.GetHeader(constants.AuthorizationHeader))
		if err != nil {
			LogWithCorrelationID(c.Request.Context()).Debug("Authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": err.Error()})
			return
		}
		c.Set(constants.CallerAddressKey, caller)
		c.Next()
	}
}

// Caller returns the authenticated caller stored by Middleware.
func Caller(c *gin.Context) (common.Address, bool) {
	v, ok := c.Get(constants.CallerAddressKey)
	if !ok {
		return common.Address{}, false
	}
	addr, ok := v.(common.Address)
	return addr, ok
}
