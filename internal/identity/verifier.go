// Package identity wraps credential verification. Token minting lives in the
// identity platform; this core only verifies what it is handed.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"household-finance-be/internal/entity"
	"household-finance-be/internal/repository/specification"
	"household-finance-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrAccountLocked     = errors.New("account locked")
	ErrAccountInactive   = errors.New("account inactive")
)

// Identity is the verified result handed to the gateway.
type Identity struct {
	UserID   uuid.UUID
	Email    string
	FullName string
}

type Verifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}

type jwtVerifier struct {
	secret     []byte
	uowFactory unitofwork.RepositoryFactory

	// cache holds recently verified credentials keyed by token string.
	// A websocket reconnect storm should not hammer the users table.
	cache *gocache.Cache
}

func NewJWTVerifier(secret string, uowFactory unitofwork.RepositoryFactory) Verifier {
	return &jwtVerifier{
		secret:     []byte(secret),
		uowFactory: uowFactory,
		cache:      gocache.New(time.Minute, 5*time.Minute),
	}
}

func (v *jwtVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	if cached, ok := v.cache.Get(credential); ok {
		ident := cached.(Identity)
		return &ident, nil
	}

	token, err := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredential
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidCredential
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, ErrInvalidCredential
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrInvalidCredential
	}

	uow := v.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}
	switch user.Status {
	case entity.UserStatusBlocked:
		return nil, ErrAccountLocked
	case entity.UserStatusInactive:
		return nil, ErrAccountInactive
	}

	ident := Identity{UserID: user.Id, Email: user.Email, FullName: user.FullName}

	// Cache the positive result only; failures must re-verify every time.
	v.cache.Set(credential, ident, gocache.DefaultExpiration)

	return &ident, nil
}
