package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const storageIssuer = "taskdesk"

// StorageKeys issues and verifies the signed tokens that tie a browser to
// its storage partition.
type StorageKeys struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewStorageKeys(secret string, ttl time.Duration) *StorageKeys {
	if secret == "" {
		secret = "your-default-secret-key-change-in-production"
	}
	if ttl <= 0 {
		ttl = 365 * 24 * time.Hour
	}
	return &StorageKeys{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a new partition and a token naming it.
func (k *StorageKeys) Issue() (token, partition string, err error) {
	partition = uuid.NewString()
	token, err = k.Sign(partition)
	if err != nil {
		return "", "", err
	}
	return token, partition, nil
}

// Sign creates a token for an existing partition.
func (k *StorageKeys) Sign(partition string) (string, error) {
	now := k.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   partition,
		Issuer:    storageIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(k.ttl)),
	})

	signed, err := token.SignedString(k.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks a token and returns its partition.
func (k *StorageKeys) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return k.secret, nil
	}, jwt.WithIssuer(storageIssuer), jwt.WithTimeFunc(k.now))
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("invalid partition: %w", err)
	}
	return claims.Subject, nil
}
