package backend

import (
	"context"
	"time"

	"healgenie-portal/internal/delivery/dto"

	"github.com/google/uuid"
)

// Record shapes are shared with the server's wire format.
type (
	User              = dto.UserResponse
	Profile           = dto.ProfileResponse
	ProfileUpdate     = dto.UpdateProfileRequest
	DoctorProfile     = dto.DoctorProfileResponse
	PatientProfile    = dto.PatientProfileResponse
	ProfileSymbol     = dto.ProfileSymbolResponse
	PatientSearchItem = dto.PatientSearchItem
	PatientRecord     = dto.PatientRecordResponse
	Prescription      = dto.PrescriptionResponse
	Medicine          = dto.MedicineResponse
	SignUpRequest     = dto.SignUpRequest
	SignUpMetadata    = dto.SignUpMetadata
)

type AuthEvent string

const (
	EventInitialSession AuthEvent = "INITIAL_SESSION"
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
	EventUserUpdated    AuthEvent = "USER_UPDATED"
)

// AuthListener receives every session transition. session is nil after sign-out.
type AuthListener func(event AuthEvent, session *Session)

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

// expiryLeeway refreshes a little early so a token does not lapse in flight.
const expiryLeeway = 30 * time.Second

func (s *Session) Expired(now time.Time) bool {
	return !now.Add(expiryLeeway).Before(time.Unix(s.ExpiresAt, 0))
}

// UserType reads the role recorded in the sign-up metadata, if any.
func (s *Session) UserType() string {
	if s == nil || s.User.UserMetadata == nil {
		return ""
	}
	userType, _ := s.User.UserMetadata["user_type"].(string)
	return userType
}

// Client is the portal's view of the hosted backend.
type Client interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, req *SignUpRequest) (*Session, error)
	SignOut(ctx context.Context) error
	GetSession(ctx context.Context) (*Session, error)
	OnAuthStateChange(fn AuthListener) (unsubscribe func())

	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update *ProfileUpdate) (*Profile, error)
	GetDoctorProfile(ctx context.Context, id uuid.UUID) (*DoctorProfile, error)
	GetPatientProfile(ctx context.Context, id uuid.UUID) (*PatientProfile, error)
	GetProfileSymbol(ctx context.Context, id int) (*ProfileSymbol, error)
	ListProfileSymbols(ctx context.Context) ([]ProfileSymbol, error)
	SearchPatients(ctx context.Context, query string, limit int) ([]PatientSearchItem, error)
	GetPatientRecord(ctx context.Context, id uuid.UUID) (*PatientRecord, error)
	ListPrescriptions(ctx context.Context) ([]Prescription, error)
}
