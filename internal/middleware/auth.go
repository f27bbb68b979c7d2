package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// DeviceClaims are the JWT claims carried by device tokens.
type DeviceClaims struct {
	DeviceID string `json:"deviceId"`
	jwt.RegisteredClaims
}

// JWTAuthConfig configures device authentication. When disabled, the
// middleware passes every request through untouched.
type JWTAuthConfig struct {
	Enabled         bool
	Secret          string
	ExpirationHours int
	DeviceKeyHash   string
}

type JWTAuth struct {
	cfg JWTAuthConfig
}

type contextKey string

// DeviceIDKey is the request-context key for the authenticated device.
const DeviceIDKey contextKey = "deviceId"

func NewJWTAuth(cfg JWTAuthConfig) *JWTAuth {
	return &JWTAuth{cfg: cfg}
}

func (a *JWTAuth) Enabled() bool {
	return a.cfg.Enabled
}

// VerifyDeviceKey compares a presented device key against the configured
// bcrypt hash.
func (a *JWTAuth) VerifyDeviceKey(key string) bool {
	if a.cfg.DeviceKeyHash == "" || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.cfg.DeviceKeyHash), []byte(key)) == nil
}

// GenerateToken issues a signed device token.
func (a *JWTAuth) GenerateToken(deviceID string) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(a.cfg.ExpirationHours) * time.Hour)

	claims := DeviceClaims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "helmet-monitor",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ValidateToken parses and validates a device token.
func (a *JWTAuth) ValidateToken(tokenString string) (*DeviceClaims, error) {
	claims := &DeviceClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// Middleware enforces a Bearer device token on the wrapped routes.
func (a *JWTAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "Missing bearer token"}`))
				return
			}

			claims, err := a.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "Invalid or expired token"}`))
				return
			}

			ctx := context.WithValue(r.Context(), DeviceIDKey, claims.DeviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
