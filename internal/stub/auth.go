package stub

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type authConfig struct {
	secret   string
	email    string
	passHash []byte
	tokenTTL time.Duration
}

func newAuthConfig(secret, email, password string) (*authConfig, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &authConfig{
		secret:   secret,
		email:    strings.ToLower(strings.TrimSpace(email)),
		passHash: hash,
		tokenTTL: 12 * time.Hour,
	}, nil
}

func (a *authConfig) verify(email, password string) bool {
	if strings.ToLower(strings.TrimSpace(email)) != a.email {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.passHash, []byte(password)) == nil
}

func (a *authConfig) issueToken() (string, error) {
	claims := jwt.MapClaims{
		"sub": a.email,
		"exp": time.Now().Add(a.tokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.secret))
}

// authRequired guards the admin surfaces (order listing, status updates,
// training files).
func (a *authConfig) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(a.secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
