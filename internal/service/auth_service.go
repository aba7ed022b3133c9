package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/prereg-portal-api/internal/models"
	"github.com/noah-isme/prereg-portal-api/internal/upstream"
	appErrors "github.com/noah-isme/prereg-portal-api/pkg/errors"
)

type upstreamAuth interface {
	Login(ctx context.Context, studentID, password string) (*upstream.LoginResult, error)
	StudentDetails(ctx context.Context, token string) (*models.StudentProfile, error)
}

type sessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// AuthConfig defines configuration for gateway sessions.
type AuthConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// LoginRequest carries the student's credentials.
type LoginRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

// LoginResponse is the issued gateway session.
type LoginResponse struct {
	Token     string                `json:"token"`
	ExpiresIn int64                 `json:"expires_in"`
	Student   models.StudentProfile `json:"student"`
}

// AuthService proxies login to the registrar and manages gateway sessions.
// Passwords are never stored; the registrar verifies them and the gateway
// keeps only the upstream bearer token inside the session record.
type AuthService struct {
	upstream  upstreamAuth
	sessions  sessionStore
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(up upstreamAuth, sessions sessionStore, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{upstream: up, sessions: sessions, validator: validate, logger: logger, config: config}
}

// Login authenticates against the registrar, persists the session and
// issues a gateway token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	result, err := s.upstream.Login(ctx, req.StudentID, req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &models.Session{
		ID:            uuid.NewString(),
		UpstreamToken: result.Token,
		Student:       result.Student,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.config.TTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}

	token, err := s.generateToken(session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}

	s.logger.Info("student logged in", zap.String("student_id", result.Student.StudentID))

	return &LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.TTL.Seconds()),
		Student:   result.Student,
	}, nil
}

// ValidateToken parses and validates a gateway session token.
func (s *AuthService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrSessionExpired, "")
	}
	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}
	return claims, nil
}

// Session resolves claims to the persisted session record.
func (s *AuthService) Session(ctx context.Context, claims *models.SessionClaims) (*models.Session, error) {
	return s.sessions.Find(ctx, claims.SessionID)
}

// RefreshProfile refetches the student profile from the registrar and
// updates the persisted session.
func (s *AuthService) RefreshProfile(ctx context.Context, session *models.Session) (*models.StudentProfile, error) {
	profile, err := s.upstream.StudentDetails(ctx, session.UpstreamToken)
	if err != nil {
		return nil, err
	}
	if profile.UID == "" {
		profile.UID = session.Student.UID
	}
	session.Student = *profile
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Warn("failed to persist refreshed profile", zap.String("student_id", profile.StudentID), zap.Error(err))
	}
	return profile, nil
}

// Logout removes the persisted session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	return nil
}

func (s *AuthService) generateToken(session *models.Session) (string, error) {
	claims := &models.SessionClaims{
		SessionID: session.ID,
		StudentID: session.Student.StudentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   session.Student.StudentID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}
