package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/events-api/internal/models"
	"github.com/campushq/events-api/pkg/config"
	appErrors "github.com/campushq/events-api/pkg/errors"
)

func newAuthFixture(t *testing.T, students *fakeStudentStore) *AuthService {
	t.Helper()
	return NewAuthService(students, config.JWTConfig{
		Secret:     "test_secret",
		Expiration: time.Hour,
		Issuer:     "events-api-test",
	}, nil, nil)
}

func studentWithPassword(t *testing.T, enrollmentNo, name, password string) *models.Student {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	s := activeStudent(enrollmentNo, name)
	s.PasswordHash = string(hash)
	return s
}

func TestLogin(t *testing.T) {
	students := newFakeStudentStore(studentWithPassword(t, "22BEIT30043", "Asha Patel", "s3cret-pass"))
	svc := newAuthFixture(t, students)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		EnrollmentNo: "22BEIT30043",
		Password:     "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Empty(t, res.Student.PasswordHash, "hash never leaves the service")

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "22BEIT30043", claims.EnrollmentNo)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	students := newFakeStudentStore(studentWithPassword(t, "22BEIT30043", "Asha Patel", "s3cret-pass"))
	svc := newAuthFixture(t, students)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		EnrollmentNo: "22BEIT30043",
		Password:     "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEnrollmentSameError(t *testing.T) {
	svc := newAuthFixture(t, newFakeStudentStore())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		EnrollmentNo: "22BEIT99999",
		Password:     "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code,
		"unknown enrollment is indistinguishable from a bad password")
}

func TestLoginInactiveAccount(t *testing.T) {
	s := studentWithPassword(t, "22BEIT30043", "Asha Patel", "s3cret-pass")
	s.IsActive = false
	svc := newAuthFixture(t, newFakeStudentStore(s))

	_, err := svc.Login(context.Background(), models.LoginRequest{
		EnrollmentNo: "22BEIT30043",
		Password:     "s3cret-pass",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthFixture(t, newFakeStudentStore())

	_, err := svc.ValidateToken("not-a-jwt")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestSignup(t *testing.T) {
	students := newFakeStudentStore()
	svc := newAuthFixture(t, students)

	created, err := svc.Signup(context.Background(), SignupRequest{
		EnrollmentNo: "22BEIT30043",
		FullName:     "Asha Patel",
		Email:        "asha@campus.local",
		Password:     "s3cret-pass",
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.Empty(t, created.PasswordHash)

	// The stored document keeps the hash and it verifies.
	stored, err := students.FindByEnrollment(context.Background(), "22BEIT30043")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))

	_, err = svc.Signup(context.Background(), SignupRequest{
		EnrollmentNo: "22BEIT30043",
		FullName:     "Asha Patel",
		Email:        "asha@campus.local",
		Password:     "s3cret-pass",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSignupInvalidEnrollment(t *testing.T) {
	svc := newAuthFixture(t, newFakeStudentStore())

	_, err := svc.Signup(context.Background(), SignupRequest{
		EnrollmentNo: "bad-format",
		FullName:     "Asha Patel",
		Email:        "asha@campus.local",
		Password:     "s3cret-pass",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
