package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"leadtrail/internal/dto/req"
	"leadtrail/internal/dto/resp"
	"leadtrail/internal/model"
	"leadtrail/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	RedisKeyPrefix = "leadtrail:auth:session:"
	Issuer         = "leadtrail-auth-service"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrSessionExpired     = errors.New("session expired")
)

type AuthService struct {
	users           *repository.UserRepository
	redis           redis.Cmdable
	signingKey      []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

type UserClaims struct {
	UserID uint64 `json:"uid"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthService(users *repository.UserRepository, rdb redis.Cmdable, signingKey string, accessTokenTTL, refreshTokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:           users,
		redis:           rdb,
		signingKey:      []byte(signingKey),
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// Login checks the password of an active user and returns a token pair.
func (s *AuthService) Login(ctx context.Context, r req.LoginReq) (*resp.TokenResp, error) {
	user, err := s.users.FindActiveByEmail(ctx, r.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(r.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	role, err := s.users.RoleName(ctx, user)
	if err != nil {
		return nil, err
	}
	tokens, err := s.generateTokens(ctx, user, role)
	if err != nil {
		return nil, err
	}
	tokens.User = resp.UserInfo{ID: user.ID, Name: user.Name, Email: user.Email, Role: role}
	return tokens, nil
}

// Refresh rotates the token pair. Only the most recently issued refresh
// token of a user is accepted.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*resp.TokenResp, error) {
	claims, err := s.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}

	storedToken, err := s.redis.Get(ctx, sessionKey(claims.UserID)).Result()
	if err == redis.Nil {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, err
	}
	if storedToken != refreshToken {
		return nil, ErrTokenInvalid
	}

	user := &model.User{Base: model.Base{ID: claims.UserID}, Name: claims.Name}
	tokens, err := s.generateTokens(ctx, user, claims.Role)
	if err != nil {
		return nil, err
	}
	tokens.User = resp.UserInfo{ID: claims.UserID, Name: claims.Name, Role: claims.Role}
	return tokens, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	return s.redis.Del(ctx, sessionKey(userID)).Err()
}

// ParseToken validates the signature and expiry of an access or refresh token.
func (s *AuthService) ParseToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(Issuer))
	if err != nil {
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s *AuthService) generateTokens(ctx context.Context, user *model.User, role string) (*resp.TokenResp, error) {
	now := time.Now()
	accessToken, err := s.sign(user, role, now, s.accessTokenTTL, "")
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.sign(user, role, now, s.refreshTokenTTL, uuid.New().String())
	if err != nil {
		return nil, err
	}

	// Allow-list; a new login replaces the previous session.
	if err := s.redis.Set(ctx, sessionKey(user.ID), refreshToken, s.refreshTokenTTL).Err(); err != nil {
		return nil, err
	}

	return &resp.TokenResp{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTokenTTL.Seconds()),
	}, nil
}

func (s *AuthService) sign(user *model.User, role string, now time.Time, ttl time.Duration, jti string) (string, error) {
	claims := UserClaims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
			ID:        jti,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

func sessionKey(userID uint64) string {
	return RedisKeyPrefix + strconv.FormatUint(userID, 10)
}
