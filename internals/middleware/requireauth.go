package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type AccessDetails struct {
	AccessUuid string
	Email      string
}

type RefreshDetails struct {
	RefreshUuid string
	Email       string
}

type TokenPair struct {
	AccessToken  string
	AccessUuid   string
	AtExpires    int64
	RefreshToken string
	RefreshUuid  string
	RtExpires    int64
}

// TokenManager issues and validates the JWT access/refresh pair. Token uuids
// live in redis with a TTL matching the token lifetime, so a pair can be
// revoked by deleting its keys.
type TokenManager struct {
	redis         *redis.Client
	accessSecret  []byte
	refreshSecret []byte
	log           *logrus.Logger
}

func NewTokenManager(redisClient *redis.Client, accessSecret, refreshSecret string, log *logrus.Logger) *TokenManager {
	return &TokenManager{
		redis:         redisClient,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		log:           log,
	}
}

// GenerateTokensAndSaveInCookies issues a fresh pair for the librarian,
// records it in redis and sets both cookies.
func (m *TokenManager) GenerateTokensAndSaveInCookies(c *gin.Context, email string) error {
	tokenPair, err := m.CreateTokenPair(email)
	if err != nil {
		m.log.WithError(err).Error("failed to create token pair")
		return err
	}
	if err := m.SaveTokenPair(c.Request.Context(), tokenPair, email); err != nil {
		m.log.WithError(err).Error("failed to save tokens in redis")
		return err
	}
	c.SetCookie("access_token", tokenPair.AccessToken, 3600, "/", "", false, true)
	c.SetCookie("refresh_token", tokenPair.RefreshToken, 7*24*3600, "/", "", false, true)
	return nil
}

func (m *TokenManager) CreateTokenPair(email string) (*TokenPair, error) {
	var err error
	token := &TokenPair{
		AtExpires:   time.Now().Add(15 * time.Minute).Unix(),
		RtExpires:   time.Now().Add(7 * 24 * time.Hour).Unix(),
		AccessUuid:  uuid.New().String(),
		RefreshUuid: uuid.New().String(),
	}

	atClaims := jwt.MapClaims{
		"authorized":  true,
		"access_uuid": token.AccessUuid,
		"email":       email,
		"exp":         token.AtExpires,
	}
	token.AccessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, atClaims).SignedString(m.accessSecret)
	if err != nil {
		return nil, err
	}

	rtClaims := jwt.MapClaims{
		"refresh_uuid": token.RefreshUuid,
		"email":        email,
		"exp":          token.RtExpires,
	}
	token.RefreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, rtClaims).SignedString(m.refreshSecret)
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (m *TokenManager) SaveTokenPair(ctx context.Context, tokenPair *TokenPair, email string) error {
	now := time.Now()
	at := time.Unix(tokenPair.AtExpires, 0)
	rt := time.Unix(tokenPair.RtExpires, 0)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := m.redis.Set(ctx, tokenPair.AccessUuid, email, at.Sub(now)).Err(); err != nil {
		return err
	}
	return m.redis.Set(ctx, tokenPair.RefreshUuid, email, rt.Sub(now)).Err()
}

// Authenticate guards routes behind a valid access token. A missing or
// expired access token falls back to the refresh flow.
func (m *TokenManager) Authenticate(c *gin.Context) {
	tokenString, err := c.Cookie("access_token")
	if err != nil {
		m.refreshTokenFlow(c)
		return
	}
	metadata, err := m.extractAccessTokenMetadata(tokenString)
	if err != nil {
		m.refreshTokenFlow(c)
		return
	}
	email, err := m.fetchAuth(c.Request.Context(), metadata.AccessUuid)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired or invalid"})
		return
	}
	c.Set("email", email)
	c.Next()
}

func (m *TokenManager) refreshTokenFlow(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "refresh token missing"})
		return
	}
	details, err := m.extractRefreshTokenMetadata(refreshToken)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	if _, err := m.fetchAuth(c.Request.Context(), details.RefreshUuid); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "refresh token revoked"})
		return
	}
	if err := m.GenerateTokensAndSaveInCookies(c, details.Email); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to refresh tokens"})
		return
	}
	c.Set("email", details.Email)
	c.Next()
}

func (m *TokenManager) extractAccessTokenMetadata(tokenString string) (*AccessDetails, error) {
	claims, err := extractTokenMetadata(tokenString, m.accessSecret, []string{"access_uuid", "email"})
	if err != nil {
		return nil, err
	}
	return &AccessDetails{
		AccessUuid: claims["access_uuid"].(string),
		Email:      claims["email"].(string),
	}, nil
}

func (m *TokenManager) extractRefreshTokenMetadata(refreshString string) (*RefreshDetails, error) {
	claims, err := extractTokenMetadata(refreshString, m.refreshSecret, []string{"refresh_uuid", "email"})
	if err != nil {
		return nil, err
	}
	return &RefreshDetails{
		RefreshUuid: claims["refresh_uuid"].(string),
		Email:       claims["email"].(string),
	}, nil
}

func extractTokenMetadata(tokenString string, secret []byte, expectedClaims []string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	for _, claim := range expectedClaims {
		if _, ok := claims[claim]; !ok {
			return nil, fmt.Errorf("missing required claim: %s", claim)
		}
	}
	return claims, nil
}

func (m *TokenManager) fetchAuth(ctx context.Context, tokenUuid string) (string, error) {
	return m.redis.Get(ctx, tokenUuid).Result()
}
