package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/reliefnet/disaster-api/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var jwtAlgorithm = jwt.SigningMethodHS256

// BcryptCost is the work factor used for new password hashes
var BcryptCost = bcrypt.DefaultCost

// Claims represents the JWT claims
type Claims struct {
	AccountID string      `json:"id"`
	Role      models.Role `json:"role"`
	jwt.RegisteredClaims
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// TokenManager issues and verifies signed session tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager signing with secret; ttl defaults to 24h
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is how long issued tokens stay valid
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// CreateToken creates a new JWT binding an account id and role
func (m *TokenManager) CreateToken(accountID string, role models.Role) (string, error) {
	now := m.now()
	claims := &Claims{
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(m.secret)
}

// VerifyToken verifies a JWT token
func (m *TokenManager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if _, ok := models.ParseRole(string(claims.Role)); !ok || claims.AccountID == "" {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// AdminStore is what EnsureAdminExists needs from the account store
type AdminStore interface {
	CountAccounts(ctx context.Context, role models.Role) (int64, error)
	CreateAccount(ctx context.Context, a *models.Account) error
}

// EnsureAdminExists creates an admin account from the given credentials when
// no admin exists yet.
func EnsureAdminExists(ctx context.Context, store AdminStore, logger *zap.Logger, name, email, password string) error {
	count, err := store.CountAccounts(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.Account{
		ID:           uuid.NewString(),
		Role:         models.RoleAdmin,
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := store.CreateAccount(ctx, admin); err != nil {
		return err
	}
	logger.Info("default admin account created", zap.String("email", admin.Email))
	return nil
}
