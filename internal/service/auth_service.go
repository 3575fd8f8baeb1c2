package service

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"essay-hub/internal/config"
	"essay-hub/internal/domain"
	"essay-hub/internal/dto"
	"essay-hub/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	tokenTypeAccess   = "access"
	tokenTypeRefresh  = "refresh"
	minPasswordLength = 8
)

var (
	ErrInvalidAuthState      = errors.New("invalid oauth state")
	ErrFailedToExchangeToken = errors.New("failed to exchange oauth token")
	ErrFailedToGetUserInfo   = errors.New("failed to get user info from google")
	ErrInvalidJWTToken       = errors.New("invalid jwt token")
	ErrEncryptionFailed      = errors.New("failed to encrypt token")
	ErrDecryptionFailed      = errors.New("failed to decrypt token")
)

// AuthService defines the interface for authentication operations.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (accessToken string, refreshToken string, user *domain.User, err error)
	Login(ctx context.Context, email, password string) (accessToken string, refreshToken string, user *domain.User, err error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	GetGoogleLoginURL(state string) string
	HandleGoogleCallback(ctx context.Context, code string, receivedState string, expectedState string) (accessToken string, refreshToken string, user *domain.User, err error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	CreateJWT(ctx context.Context, user *domain.User, ttl time.Duration, tokenType string) (string, error)
	RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, newRefreshToken string, err error)
	EncryptToken(token string) (string, error)
	DecryptToken(encryptedToken string) (string, error)
}

type authServiceImpl struct {
	userRepo      domain.UserRepository
	oauth2Config  *oauth2.Config
	cfg           config.AuthConfig
	encryptionKey []byte // 32 bytes for AES-256
	userInfoURL   string
	bcryptCost    int
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo domain.UserRepository, cfg config.AuthConfig) (AuthService, error) {
	if len(cfg.JWT.SecretKey) < 32 {
		// The first 32 bytes of the JWT secret double as the AES key for stored OAuth tokens.
		return nil, errors.New("jwt secret key must be at least 32 bytes long")
	}

	return &authServiceImpl{
		userRepo: userRepo,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleOAuth.ClientID,
			ClientSecret: cfg.GoogleOAuth.ClientSecret,
			RedirectURL:  cfg.GoogleOAuth.RedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
		cfg:           cfg,
		encryptionKey: []byte(cfg.JWT.SecretKey[:32]),
		userInfoURL:   googleUserInfoURL,
		bcryptCost:    bcrypt.DefaultCost,
	}, nil
}

// Register creates an email/password account and signs the user in.
func (s *authServiceImpl) Register(ctx context.Context, name, email, password string) (string, string, *domain.User, error) {
	appLogger := logger.Get()

	if len(password) < minPasswordLength {
		return "", "", nil, domain.ValidationErrors{domain.NewOutOfRangeError("password", len(password), minPasswordLength, 128)}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", "", nil, domain.NewInternalError("Failed to hash password", err)
	}

	user := domain.NewUser(name, email, string(hash))
	if err := user.Validate(); err != nil {
		return "", "", nil, err
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return "", "", nil, domain.NewInternalError("Failed to check email", err)
	}
	if existing != nil {
		return "", "", nil, domain.NewError(domain.CodeEmailTaken, "Email is already registered", nil)
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if domain.HasCode(err, domain.CodeEmailTaken) {
			return "", "", nil, err
		}
		return "", "", nil, domain.NewInternalError("Failed to create user", err)
	}
	appLogger.Info("New user registered", zap.String("userID", user.ID), zap.String("email", user.Email))

	return s.issueTokens(ctx, user)
}

// Login checks the password against the stored bcrypt hash.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (string, string, *domain.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", "", nil, domain.NewInternalError("Failed to load user", err)
	}
	if user == nil || user.PasswordHash == "" {
		return "", "", nil, invalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Get().Warn("Password mismatch on login", zap.String("userID", user.ID))
		return "", "", nil, invalidCredentials()
	}

	logger.Get().Info("User logged in", zap.String("userID", user.ID))
	return s.issueTokens(ctx, user)
}

func (s *authServiceImpl) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return domain.NewInternalError("Failed to load user", err)
	}
	if user == nil {
		return domain.NewUserNotFoundError(userID)
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return invalidCredentials()
	}
	if len(newPassword) < minPasswordLength {
		return domain.ValidationErrors{domain.NewOutOfRangeError("new_password", len(newPassword), minPasswordLength, 128)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return domain.NewInternalError("Failed to hash password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return domain.NewInternalError("Failed to update password", err)
	}
	logger.Get().Info("Password changed", zap.String("userID", userID))
	return nil
}

func invalidCredentials() error {
	return domain.NewError(domain.CodeInvalidCredentials, "Invalid email or password", nil)
}

func (s *authServiceImpl) GetGoogleLoginURL(state string) string {
	return s.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce) // Request refresh token
}

func (s *authServiceImpl) HandleGoogleCallback(ctx context.Context, code string, receivedState string, expectedState string) (string, string, *domain.User, error) {
	appLogger := logger.Get()
	if receivedState != expectedState {
		return "", "", nil, ErrInvalidAuthState
	}

	googleToken, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: %v", ErrFailedToExchangeToken, err)
	}

	client := s.oauth2Config.Client(ctx, googleToken)
	resp, err := client.Get(s.userInfoURL)
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: %v", ErrFailedToGetUserInfo, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", nil, fmt.Errorf("%w: status %d", ErrFailedToGetUserInfo, resp.StatusCode)
	}

	var userInfo dto.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return "", "", nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if userInfo.ID == "" || userInfo.Email == "" {
		return "", "", nil, errors.New("google user info is incomplete")
	}

	user, err := s.userRepo.GetUserByGoogleID(ctx, userInfo.ID)
	if err != nil {
		return "", "", nil, domain.NewInternalError("Error fetching user by google_id", err)
	}
	if user == nil {
		// An email/password account with the same address gets linked.
		user, err = s.userRepo.GetUserByEmail(ctx, userInfo.Email)
		if err != nil {
			return "", "", nil, domain.NewInternalError("Error fetching user by email", err)
		}
	}

	encryptedAccessToken, err := s.EncryptToken(googleToken.AccessToken)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}
	var encryptedRefreshToken string
	if googleToken.RefreshToken != "" {
		encryptedRefreshToken, err = s.EncryptToken(googleToken.RefreshToken)
		if err != nil {
			return "", "", nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
	}
	var expiresAt *time.Time
	if !googleToken.Expiry.IsZero() {
		expiry := googleToken.Expiry
		expiresAt = &expiry
	}

	if user == nil { // User not found, create new user
		newUser := domain.NewUser(userInfo.Name, userInfo.Email, "")
		newUser.GoogleID = userInfo.ID
		newUser.ProfilePictureURL = userInfo.Picture
		newUser.EncryptedAccessToken = encryptedAccessToken
		newUser.EncryptedRefreshToken = encryptedRefreshToken
		newUser.TokenExpiresAt = expiresAt
		if newUser.Name == "" {
			newUser.Name = strings.Split(newUser.Email, "@")[0]
		}
		if err := s.userRepo.CreateUser(ctx, newUser); err != nil {
			return "", "", nil, domain.NewInternalError("Failed to create user", err)
		}
		user = newUser
		appLogger.Info("New user created via Google OAuth", zap.String("userID", user.ID), zap.String("email", user.Email))
	} else { // User found, update tokens and profile info if changed
		user.GoogleID = userInfo.ID
		if userInfo.Name != "" {
			user.Name = userInfo.Name
		}
		if userInfo.Picture != "" {
			user.ProfilePictureURL = userInfo.Picture
		}
		user.EncryptedAccessToken = encryptedAccessToken
		if encryptedRefreshToken != "" { // Only update refresh token if a new one was provided
			user.EncryptedRefreshToken = encryptedRefreshToken
		}
		user.TokenExpiresAt = expiresAt
		if err := s.userRepo.UpdateUser(ctx, user); err != nil {
			return "", "", nil, domain.NewInternalError("Failed to update user", err)
		}
		appLogger.Info("User logged in via Google OAuth", zap.String("userID", user.ID), zap.String("email", user.Email))
	}

	return s.issueTokens(ctx, user)
}

func (s *authServiceImpl) issueTokens(ctx context.Context, user *domain.User) (string, string, *domain.User, error) {
	accessToken, err := s.CreateJWT(ctx, user, s.cfg.JWT.AccessTokenTTL, tokenTypeAccess)
	if err != nil {
		return "", "", nil, domain.NewInternalError("Failed to create access token", err)
	}
	refreshToken, err := s.CreateJWT(ctx, user, s.cfg.JWT.RefreshTokenTTL, tokenTypeRefresh)
	if err != nil {
		return "", "", nil, domain.NewInternalError("Failed to create refresh token", err)
	}
	return accessToken, refreshToken, user, nil
}

func (s *authServiceImpl) CreateJWT(ctx context.Context, user *domain.User, ttl time.Duration, tokenType string) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		UserID:    user.ID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWT.SecretKey))
}

func tokenSnippet(token string) string {
	return token[:min(len(token), 20)] + "..."
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	appLogger := logger.Get()
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWT.SecretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			appLogger.Warn("JWT token expired", zap.Error(err), zap.String("token_snippet", tokenSnippet(tokenString)))
		} else {
			appLogger.Warn("JWT validation failed", zap.Error(err), zap.String("token_snippet", tokenSnippet(tokenString)))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	if claims, ok := token.Claims.(*dto.AuthClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidJWTToken
}

func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshTokenString string) (string, string, error) {
	appLogger := logger.Get()
	claims, err := s.ValidateJWT(ctx, refreshTokenString)
	if err != nil {
		return "", "", domain.NewError(domain.CodeUnauthorized, "Invalid refresh token", err)
	}
	if claims.TokenType != tokenTypeRefresh {
		return "", "", domain.NewUnauthorizedError("Not a refresh token")
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		appLogger.Error("Failed to load user for refresh token", zap.String("userID", claims.UserID), zap.Error(err))
		return "", "", domain.NewInternalError("Failed to load user for refresh token", err)
	}
	if user == nil {
		return "", "", domain.NewNotFoundError(fmt.Sprintf("User %s not found for refresh token", claims.UserID))
	}

	newAccessToken, newRefreshToken, _, err := s.issueTokens(ctx, user)
	if err != nil {
		return "", "", err
	}
	appLogger.Info("JWT token refreshed", zap.String("userID", user.ID))
	return newAccessToken, newRefreshToken, nil
}

// EncryptToken encrypts a token using AES-GCM.
func (s *authServiceImpl) EncryptToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	gcm, err := s.gcm()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	ciphertext := gcm.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptToken decrypts a token using AES-GCM.
func (s *authServiceImpl) DecryptToken(encryptedToken string) (string, error) {
	if encryptedToken == "" {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(encryptedToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	gcm, err := s.gcm()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

func (s *authServiceImpl) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
