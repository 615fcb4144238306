package usecase

import (
	"context"
	"testing"
	"time"

	"healgenie-portal/config"
	"healgenie-portal/internal/delivery/dto"
	"healgenie-portal/internal/domain/entity"
	"healgenie-portal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func doctorSignUp() *dto.SignUpRequest {
	experience := 7
	return &dto.SignUpRequest{
		Email:    "Jane@Example.com",
		Password: "secret123",
		Data: dto.SignUpMetadata{
			FirstName:   "Jane",
			LastName:    "Smith",
			UserType:    "doctor",
			Designation: "Consultant",
			Specialty:   "Cardiology",
			Experience:  &experience,
		},
	}
}

func TestSignUpDoctorMaterializesRows(t *testing.T) {
	db, sqlMock := newTestDB(t)
	users, profiles, doctors, patients, tokens := &mockUserRepo{}, &mockProfileRepo{}, &mockDoctorProfileRepo{}, &mockPatientProfileRepo{}, &mockTokenStore{}
	svc := jwt.NewJWTService(config.JWTConfig{Secret: "s", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	uc := NewAuthUsecase(db, newTestLogger(), users, profiles, doctors, patients, svc, tokens, newAuditMock())

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	users.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(u *entity.User) bool {
		return u.Email == "jane@example.com" && u.RawMetadata["specialty"] == "Cardiology"
	})).Return(nil)
	profiles.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(p *entity.Profile) bool {
		return p.FirstName == "Jane" && p.UserType == entity.UserTypeDoctor && p.Phone == nil
	})).Return(nil)
	doctors.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(d *entity.DoctorProfile) bool {
		return d.Designation == "Consultant" && d.Specialty == "Cardiology" && d.Experience == 7
	})).Return(nil)
	tokens.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, time.Minute, time.Hour).Return(nil)

	session, err := uc.SignUp(context.Background(), doctorSignUp())
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, "bearer", session.TokenType)
	assert.Equal(t, "jane@example.com", session.User.Email)

	claims, err := svc.ValidateToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "doctor", claims.UserType)
	assert.Equal(t, session.User.ID, claims.UserID)

	patients.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	users.AssertExpectations(t)
	profiles.AssertExpectations(t)
	doctors.AssertExpectations(t)
	require.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestSignUpPatientComputesAge(t *testing.T) {
	db, sqlMock := newTestDB(t)
	users, profiles, doctors, patients, tokens := &mockUserRepo{}, &mockProfileRepo{}, &mockDoctorProfileRepo{}, &mockPatientProfileRepo{}, &mockTokenStore{}
	svc := jwt.NewJWTService(config.JWTConfig{Secret: "s", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	uc := NewAuthUsecase(db, newTestLogger(), users, profiles, doctors, patients, svc, tokens, newAuditMock()).(*authUsecase)
	uc.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	users.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	profiles.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	patients.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(p *entity.PatientProfile) bool {
		return p.Age == 36 && len(p.Allergies) == 1 && p.Allergies[0] == "penicillin"
	})).Return(nil)
	tokens.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := uc.SignUp(context.Background(), &dto.SignUpRequest{
		Email:    "john@example.com",
		Password: "secret123",
		Data: dto.SignUpMetadata{
			FirstName:   "John",
			LastName:    "Doe",
			UserType:    "patient",
			DateOfBirth: "1990-01-15",
			Allergies:   []string{"penicillin"},
		},
	})
	require.NoError(t, err)
	patients.AssertExpectations(t)
	doctors.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignUpPatientRejectsBadDate(t *testing.T) {
	db, _ := newTestDB(t)
	uc := NewAuthUsecase(db, newTestLogger(), &mockUserRepo{}, &mockProfileRepo{}, &mockDoctorProfileRepo{}, &mockPatientProfileRepo{}, jwt.NewJWTService(config.JWTConfig{Secret: "s"}), &mockTokenStore{}, newAuditMock())

	_, err := uc.SignUp(context.Background(), &dto.SignUpRequest{
		Email:    "john@example.com",
		Password: "secret123",
		Data:     dto.SignUpMetadata{FirstName: "J", LastName: "D", UserType: "patient", DateOfBirth: "15/01/1990"},
	})
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	db, sqlMock := newTestDB(t)
	users := &mockUserRepo{}
	uc := NewAuthUsecase(db, newTestLogger(), users, &mockProfileRepo{}, &mockDoctorProfileRepo{}, &mockPatientProfileRepo{}, jwt.NewJWTService(config.JWTConfig{Secret: "s"}), &mockTokenStore{}, newAuditMock())

	sqlMock.ExpectBegin()
	sqlMock.ExpectRollback()
	users.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := uc.SignUp(context.Background(), doctorSignUp())
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestSignInUnknownEmail(t *testing.T) {
	db, _ := newTestDB(t)
	users := &mockUserRepo{}
	uc := NewAuthUsecase(db, newTestLogger(), users, &mockProfileRepo{}, &mockDoctorProfileRepo{}, &mockPatientProfileRepo{}, jwt.NewJWTService(config.JWTConfig{Secret: "s"}), &mockTokenStore{}, newAuditMock())

	users.On("FindByEmail", mock.Anything, mock.Anything, "nobody@example.com").Return(nil, nil)

	_, err := uc.SignIn(context.Background(), &dto.PasswordGrantRequest{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn(t *testing.T) {
	db, _ := newTestDB(t)
	users, profiles, tokens := &mockUserRepo{}, &mockProfileRepo{}, &mockTokenStore{}
	svc := jwt.NewJWTService(config.JWTConfig{Secret: "s", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	uc := NewAuthUsecase(db, newTestLogger(), users, profiles, &mockDoctorProfileRepo{}, &mockPatientProfileRepo{}, svc, tokens, newAuditMock())

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &entity.User{ID: uuid.New(), Email: "jane@example.com", Password: string(hash)}

	users.On("FindByEmail", mock.Anything, mock.Anything, "jane@example.com").Return(user, nil)
	profiles.On("FindByID", mock.Anything, mock.Anything, user.ID).Return(&entity.Profile{ID: user.ID, UserType: entity.UserTypePatient}, nil)
	tokens.On("Save", mock.Anything, user.ID, mock.Anything, mock.Anything, time.Minute, time.Hour).Return(nil)

	t.Run("wrong password", func(t *testing.T) {
		_, err := uc.SignIn(context.Background(), &dto.PasswordGrantRequest{Email: "jane@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		session, err := uc.SignIn(context.Background(), &dto.PasswordGrantRequest{Email: " Jane@example.com ", Password: "secret123"})
		require.NoError(t, err)

		claims, err := svc.ValidateToken(session.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "patient", claims.UserType)
		assert.Equal(t, int64(60), session.ExpiresIn)
	})
}

func TestRefreshTokenRevoked(t *testing.T) {
	db, _ := newTestDB(t)
	tokens := &mockTokenStore{}
	svc := jwt.NewJWTService(config.JWTConfig{Secret: "s", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	uc := NewAuthUsecase(db, newTestLogger(), &mockUserRepo{}, &mockProfileRepo{}, &mockDoctorProfileRepo{}, &mockPatientProfileRepo{}, svc, tokens, newAuditMock())

	userID := uuid.New()
	refresh, refreshID, err := svc.GenerateRefreshToken(userID, "a@example.com", "patient")
	require.NoError(t, err)
	tokens.On("Consume", mock.Anything, userID, refreshID).Return(false, nil)

	_, err = uc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: refresh})
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	db, _ := newTestDB(t)
	svc := jwt.NewJWTService(config.JWTConfig{Secret: "s", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	uc := NewAuthUsecase(db, newTestLogger(), &mockUserRepo{}, &mockProfileRepo{}, &mockDoctorProfileRepo{}, &mockPatientProfileRepo{}, svc, &mockTokenStore{}, newAuditMock())

	access, _, err := svc.GenerateAccessToken(uuid.New(), "a@example.com", "patient")
	require.NoError(t, err)

	_, err = uc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: access})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignOutRevokesBothTokens(t *testing.T) {
	db, _ := newTestDB(t)
	tokens := &mockTokenStore{}
	svc := jwt.NewJWTService(config.JWTConfig{Secret: "s", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	uc := NewAuthUsecase(db, newTestLogger(), &mockUserRepo{}, &mockProfileRepo{}, &mockDoctorProfileRepo{}, &mockPatientProfileRepo{}, svc, tokens, newAuditMock())

	userID := uuid.New()
	refresh, refreshID, err := svc.GenerateRefreshToken(userID, "a@example.com", "patient")
	require.NoError(t, err)
	tokens.On("Revoke", mock.Anything, userID, "access-id", refreshID).Return(nil)

	require.NoError(t, uc.SignOut(context.Background(), userID, "access-id", refresh))
	tokens.AssertExpectations(t)
}
