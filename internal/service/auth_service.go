package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/events-api/internal/models"
	"github.com/campushq/events-api/internal/store"
	"github.com/campushq/events-api/pkg/config"
	appErrors "github.com/campushq/events-api/pkg/errors"
)

// authStore is the student persistence surface the auth flows need.
type authStore interface {
	FindByEnrollment(ctx context.Context, enrollmentNo string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	UpdateLastLogin(ctx context.Context, enrollmentNo string, ts time.Time) error
}

// AuthService issues and validates JWT access tokens for students.
type AuthService struct {
	students  authStore
	jwtCfg    config.JWTConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs AuthService.
func NewAuthService(students authStore, jwtCfg config.JWTConfig, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		students:  students,
		jwtCfg:    jwtCfg,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Login verifies credentials and returns a signed access token. Failed
// lookups and bad passwords share one response to avoid enrollment probing.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "enrollment number and password are required")
	}

	student, err := s.students.FindByEnrollment(ctx, req.EnrollmentNo)
	if err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to load student")
	}
	if !student.IsActive {
		return nil, appErrors.ErrInactiveAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	now := s.now().UTC()
	token, err := s.signToken(student, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	if err := s.students.UpdateLastLogin(ctx, student.EnrollmentNo, now); err != nil {
		s.logger.Sugar().Warnw("failed to stamp last login", "enrollment_no", student.EnrollmentNo, "error", err)
	}

	student.PasswordHash = ""
	s.logger.Sugar().Infow("student logged in", "enrollment_no", student.EnrollmentNo)
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwtCfg.Expiration.Seconds()),
		Student:     student,
	}, nil
}

func (s *AuthService) signToken(student *models.Student, now time.Time) (string, error) {
	claims := models.Claims{
		EnrollmentNo: student.EnrollmentNo,
		FullName:     student.FullName,
		Role:         models.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Subject:   student.EnrollmentNo,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.Expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.Secret))
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// SignupRequest is the student account creation payload.
type SignupRequest struct {
	EnrollmentNo string `json:"enrollment_no" validate:"required"`
	FullName     string `json:"full_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	MobileNo     string `json:"mobile_no"`
	Department   string `json:"department"`
	Semester     string `json:"semester"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"date_of_birth"`
	Password     string `json:"password" validate:"required,min=8"`
}

// Signup creates a student account with a hashed password.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid signup payload")
	}
	if !models.ValidEnrollmentNo(req.EnrollmentNo) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid enrollment number format")
	}

	if _, err := s.students.FindByEnrollment(ctx, req.EnrollmentNo); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a student with this enrollment number already exists")
	} else if !errors.Is(err, store.ErrNoDocument) {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to check enrollment")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	student := &models.Student{
		EnrollmentNo:        req.EnrollmentNo,
		FullName:            req.FullName,
		Email:               req.Email,
		MobileNo:            req.MobileNo,
		Department:          req.Department,
		Semester:            req.Semester,
		Gender:              req.Gender,
		DateOfBirth:         req.DateOfBirth,
		PasswordHash:        string(hash),
		IsActive:            true,
		EventParticipations: map[string]models.Participation{},
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to create student")
	}

	s.logger.Sugar().Infow("student account created", "enrollment_no", student.EnrollmentNo)
	student.PasswordHash = ""
	return student, nil
}
