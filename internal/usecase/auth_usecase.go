package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"healgenie-portal/internal/converter"
	"healgenie-portal/internal/delivery/dto"
	"healgenie-portal/internal/domain/entity"
	"healgenie-portal/internal/domain/repository"
	"healgenie-portal/internal/service"
	"healgenie-portal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidDateFormat  = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidUserType    = errors.New("user_type must be doctor or patient")
)

const dateLayout = "2006-01-02"

type AuthUsecase interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.SessionResponse, error)
	SignIn(ctx context.Context, req *dto.PasswordGrantRequest) (*dto.SessionResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.SessionResponse, error)
	SignOut(ctx context.Context, userID uuid.UUID, accessTokenID, refreshToken string) error
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	userRepo           repository.UserRepository
	profileRepo        repository.ProfileRepository
	doctorProfileRepo  repository.DoctorProfileRepository
	patientProfileRepo repository.PatientProfileRepository
	jwtService         *jwt.JWTService
	tokenStore         service.TokenStore
	auditService       service.AuditService
	now                func() time.Time
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	patientProfileRepo repository.PatientProfileRepository,
	jwtService *jwt.JWTService,
	tokenStore service.TokenStore,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:                 db,
		log:                log,
		userRepo:           userRepo,
		profileRepo:        profileRepo,
		doctorProfileRepo:  doctorProfileRepo,
		patientProfileRepo: patientProfileRepo,
		jwtService:         jwtService,
		tokenStore:         tokenStore,
		auditService:       auditService,
		now:                time.Now,
	}
}

// SignUp creates the user and materializes the profile and role rows from the
// sign-up metadata in one transaction, then opens a session.
func (u *authUsecase) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.SessionResponse, error) {
	meta := req.Data
	userType := entity.UserType(meta.UserType)
	if !userType.Valid() {
		return nil, ErrInvalidUserType
	}

	var dob time.Time
	if userType == entity.UserTypePatient {
		parsed, err := time.Parse(dateLayout, meta.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		dob = parsed
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user := &entity.User{
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Password:    string(hashedPassword),
		RawMetadata: metadataToJSON(meta),
	}
	if err := u.userRepo.Create(ctx, tx, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	profile := &entity.Profile{
		ID:        user.ID,
		FirstName: meta.FirstName,
		LastName:  meta.LastName,
		UserType:  userType,
	}
	if meta.Phone != "" {
		phone := meta.Phone
		profile.Phone = &phone
	}
	if err := u.profileRepo.Create(ctx, tx, profile); err != nil {
		u.log.Warnf("Failed to create profile: %+v", err)
		return nil, err
	}

	switch userType {
	case entity.UserTypeDoctor:
		doctor := &entity.DoctorProfile{
			ID:          user.ID,
			Designation: meta.Designation,
			Specialty:   meta.Specialty,
		}
		if meta.Experience != nil {
			doctor.Experience = *meta.Experience
		}
		if err := u.doctorProfileRepo.Create(ctx, tx, doctor); err != nil {
			u.log.Warnf("Failed to create doctor profile: %+v", err)
			return nil, err
		}
	case entity.UserTypePatient:
		patient := &entity.PatientProfile{
			ID:          user.ID,
			DateOfBirth: dob,
			Allergies:   entity.StringArray(meta.Allergies),
		}
		if meta.Age != nil {
			patient.Age = *meta.Age
		} else {
			patient.Age = patient.AgeAt(u.now())
		}
		if err := u.patientProfileRepo.Create(ctx, tx, patient); err != nil {
			u.log.Warnf("Failed to create patient profile: %+v", err)
			return nil, err
		}
	}

	if err := u.auditService.LogEvent(ctx, tx, &user.ID, entity.AuditActionUserRegister, entity.JSON{"user_type": meta.UserType}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return u.issueSession(ctx, user, userType)
}

func (u *authUsecase) SignIn(ctx context.Context, req *dto.PasswordGrantRequest) (*dto.SessionResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, u.db, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	userType, err := u.userTypeOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if err := u.auditService.LogEvent(ctx, u.db, &user.ID, entity.AuditActionUserLogin, nil); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return u.issueSession(ctx, user, userType)
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.SessionResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	consumed, err := u.tokenStore.Consume(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrTokenRevoked
	}

	user, err := u.userRepo.FindByID(ctx, u.db, claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	userType, err := u.userTypeOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return u.issueSession(ctx, user, userType)
}

func (u *authUsecase) SignOut(ctx context.Context, userID uuid.UUID, accessTokenID, refreshToken string) error {
	refreshTokenID := ""
	if refreshToken != "" {
		claims, err := u.jwtService.ValidateToken(refreshToken)
		if err == nil && claims.UserID == userID && claims.TokenType == jwt.RefreshToken {
			refreshTokenID = claims.TokenID
		}
	}

	if err := u.tokenStore.Revoke(ctx, userID, accessTokenID, refreshTokenID); err != nil {
		return err
	}

	if err := u.auditService.LogEvent(ctx, u.db, &userID, entity.AuditActionUserLogout, nil); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}
	return nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	resp := converter.UserToResponse(user)
	return &resp, nil
}

func (u *authUsecase) userTypeOf(ctx context.Context, userID uuid.UUID) (entity.UserType, error) {
	profile, err := u.profileRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find profile: %+v", err)
		return "", err
	}
	if profile == nil {
		return "", nil
	}
	return profile.UserType, nil
}

func (u *authUsecase) issueSession(ctx context.Context, user *entity.User, userType entity.UserType) (*dto.SessionResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(user.ID, user.Email, userType.String())
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(user.ID, user.Email, userType.String())
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	accessExpiry := u.jwtService.GetAccessExpiry()
	if err := u.tokenStore.Save(ctx, user.ID, accessTokenID, refreshTokenID, accessExpiry, u.jwtService.GetRefreshExpiry()); err != nil {
		return nil, err
	}

	return &dto.SessionResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(accessExpiry.Seconds()),
		ExpiresAt:    u.now().Add(accessExpiry).Unix(),
		User:         converter.UserToResponse(user),
	}, nil
}

func metadataToJSON(meta dto.SignUpMetadata) entity.JSON {
	data := entity.JSON{
		"first_name": meta.FirstName,
		"last_name":  meta.LastName,
		"user_type":  meta.UserType,
	}
	if meta.Phone != "" {
		data["phone"] = meta.Phone
	}
	if meta.Designation != "" {
		data["designation"] = meta.Designation
	}
	if meta.Specialty != "" {
		data["specialty"] = meta.Specialty
	}
	if meta.Experience != nil {
		data["experience"] = *meta.Experience
	}
	if meta.DateOfBirth != "" {
		data["date_of_birth"] = meta.DateOfBirth
	}
	if meta.Age != nil {
		data["age"] = *meta.Age
	}
	if len(meta.Allergies) > 0 {
		data["allergies"] = meta.Allergies
	}
	return data
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// isForeignKeyError checks if the error is a PostgreSQL foreign key violation
// containing the specified constraint name
func isForeignKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23503 = foreign_key_violation
		if pgErr.Code == "23503" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
