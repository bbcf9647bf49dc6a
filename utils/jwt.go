package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessAudience  = "educenter-api"
	refreshAudience = "educenter-refresh"
)

// Claims carried by both token kinds.
type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// JWTManager signs access and refresh tokens with independent secrets and lifetimes.
type JWTManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

func NewJWTManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, issuer string) *JWTManager {
	return &JWTManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        issuer,
	}
}

func (j *JWTManager) sign(userID, role, audience string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID,
			Audience:  []string{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (j *JWTManager) GenerateAccessToken(userID, role string) (string, error) {
	return j.sign(userID, role, accessAudience, j.accessTTL, j.accessSecret)
}

func (j *JWTManager) GenerateRefreshToken(userID, role string) (string, error) {
	return j.sign(userID, role, refreshAudience, j.refreshTTL, j.refreshSecret)
}

func (j *JWTManager) GenerateTokenPair(userID, role string) (*TokenPair, error) {
	access, err := j.GenerateAccessToken(userID, role)
	if err != nil {
		return nil, err
	}
	refresh, err := j.GenerateRefreshToken(userID, role)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (j *JWTManager) parse(tokenString, audience string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithAudience(audience), jwt.WithIssuer(j.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (j *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.parse(tokenString, accessAudience, j.accessSecret)
}

func (j *JWTManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.parse(tokenString, refreshAudience, j.refreshSecret)
}
