package session

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"healgenie-portal/internal/portal/backend"
	"healgenie-portal/internal/portal/backend/backendtest"
	"healgenie-portal/internal/portal/eventloop"
	"healgenie-portal/internal/portal/notify"
	"healgenie-portal/internal/portal/profile"
	"healgenie-portal/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFixture struct {
	fake     *backendtest.Fake
	loop     *eventloop.Loop
	loader   *profile.Loader
	store    *Store
	notes    *notify.Recorder
	doctor   *backend.Session
	patient  *backend.Session
	password string
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	loop := eventloop.New(log)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	fx := &storeFixture{
		fake:     backendtest.New(),
		loop:     loop,
		notes:    &notify.Recorder{},
		password: "secret1",
	}
	fx.loader = profile.NewLoader(fx.fake, loop, fx.notes, log)
	fx.store = NewStore(fx.fake, loop, fx.loader, fx.notes, validator.NewValidator(), log)
	t.Cleanup(func() {
		fx.store.Close()
		fx.loader.Close()
		loop.Close()
		cancel()
	})

	doctorID, patientID := uuid.New(), uuid.New()
	fx.doctor = backendtest.Session(doctorID, "jane@example.com", "doctor")
	fx.patient = backendtest.Session(patientID, "john@example.com", "patient")

	fx.fake.PutProfile(&backend.Profile{ID: doctorID, FirstName: "Jane", LastName: "Smith", UserType: "doctor"})
	fx.fake.PutDoctor(&backend.DoctorProfile{ID: doctorID, Designation: "Consultant", Specialty: "Cardiology"})
	fx.fake.PutProfile(&backend.Profile{ID: patientID, FirstName: "John", LastName: "Doe", UserType: "patient"})
	fx.fake.PutPatient(&backend.PatientProfile{ID: patientID, DateOfBirth: "1990-04-01", Age: 35})

	fx.fake.OnSignIn = func(email, password string) (*backend.Session, error) {
		if password != fx.password {
			return nil, &backend.APIError{Status: 401, Message: "Invalid login credentials"}
		}
		switch email {
		case fx.doctor.User.Email:
			return fx.doctor, nil
		case fx.patient.User.Email:
			return fx.patient, nil
		}
		return nil, &backend.APIError{Status: 401, Message: "Invalid login credentials"}
	}
	return fx
}

func (fx *storeFixture) init(t *testing.T) {
	t.Helper()
	require.NoError(t, fx.store.Initialize(context.Background()))
	fx.settle(t)
}

func (fx *storeFixture) settle(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, fx.store.Settle(ctx))
}

func validRegistration() RegisterInput {
	experience := 8
	return RegisterInput{
		FirstName:       "Gregory",
		LastName:        "House",
		Email:           "house@example.com",
		Password:        "vicodin",
		ConfirmPassword: "vicodin",
		UserType:        "doctor",
		Designation:     "Head of Diagnostics",
		Specialty:       "Nephrology",
		Experience:      &experience,
	}
}

func TestInitializeRestoresSession(t *testing.T) {
	fx := newStoreFixture(t)
	fx.fake.SetSession(fx.doctor)
	assert.True(t, fx.store.Loading())

	fx.init(t)
	require.NoError(t, fx.store.Initialize(context.Background()))

	assert.False(t, fx.store.Loading())
	assert.Equal(t, 1, fx.fake.Calls("GetSession"))
	require.NotNil(t, fx.store.Identity())
	assert.Equal(t, fx.doctor.User.ID, fx.store.Identity().User.ID)

	snap := fx.store.Profile()
	require.Equal(t, profile.StateReady, snap.State)
	assert.Equal(t, "Cardiology", snap.View.Doctor.Specialty)
}

func TestInitializeWithoutSession(t *testing.T) {
	fx := newStoreFixture(t)
	fx.init(t)

	assert.False(t, fx.store.Loading())
	assert.Nil(t, fx.store.Identity())
	assert.Equal(t, profile.StateUnauthenticated, fx.store.Profile().State)
	assert.Zero(t, fx.fake.Calls("GetProfile"))
	assert.Equal(t, 1, fx.fake.Listeners())
}

func TestInitializeWithExpiredSession(t *testing.T) {
	fx := newStoreFixture(t)
	fx.fake.Fail("GetSession", &backend.APIError{Status: 401, Message: "Invalid refresh token"})
	fx.init(t)

	assert.False(t, fx.store.Loading())
	assert.Nil(t, fx.store.Identity())
	warnings := fx.notes.Levels(notify.LevelWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Session expired", warnings[0].Title)
}

func TestEventSequencesEndOnLastSession(t *testing.T) {
	tests := []struct {
		name   string
		events func(fx *storeFixture)
		want   func(fx *storeFixture) *backend.Session
	}{
		{
			name: "doctor then patient",
			events: func(fx *storeFixture) {
				fx.fake.Emit(backend.EventSignedIn, fx.doctor)
				fx.fake.Emit(backend.EventSignedOut, nil)
				fx.fake.Emit(backend.EventSignedIn, fx.patient)
			},
			want: func(fx *storeFixture) *backend.Session { return fx.patient },
		},
		{
			name: "patient then doctor without sign out",
			events: func(fx *storeFixture) {
				fx.fake.Emit(backend.EventSignedIn, fx.patient)
				fx.fake.Emit(backend.EventSignedIn, fx.doctor)
				fx.fake.Emit(backend.EventTokenRefreshed, fx.doctor)
			},
			want: func(fx *storeFixture) *backend.Session { return fx.doctor },
		},
		{
			name: "user updated after refresh",
			events: func(fx *storeFixture) {
				fx.fake.Emit(backend.EventSignedIn, fx.doctor)
				fx.fake.Emit(backend.EventTokenRefreshed, fx.doctor)
				fx.fake.Emit(backend.EventSignedOut, nil)
				fx.fake.Emit(backend.EventSignedIn, fx.patient)
				fx.fake.Emit(backend.EventUserUpdated, fx.patient)
			},
			want: func(fx *storeFixture) *backend.Session { return fx.patient },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newStoreFixture(t)
			fx.init(t)

			tt.events(fx)
			fx.settle(t)

			want := tt.want(fx)
			require.NotNil(t, fx.store.Identity())
			assert.Equal(t, want.User.ID, fx.store.Identity().User.ID)

			snap := fx.store.Profile()
			require.Equal(t, profile.StateReady, snap.State)
			assert.Equal(t, want.User.ID, snap.IdentityID)
			assert.Equal(t, want.User.ID, snap.View.Profile.ID)
			if want.UserType() == "doctor" {
				assert.Equal(t, want.User.ID, snap.View.Doctor.ID)
				assert.Nil(t, snap.View.Patient)
			} else {
				assert.Equal(t, want.User.ID, snap.View.Patient.ID)
				assert.Nil(t, snap.View.Doctor)
			}
		})
	}
}

func TestSignOutClearsProfileSynchronously(t *testing.T) {
	fx := newStoreFixture(t)
	fx.init(t)
	fx.fake.Emit(backend.EventSignedIn, fx.doctor)
	fx.settle(t)
	require.Equal(t, profile.StateReady, fx.store.Profile().State)

	fx.fake.Emit(backend.EventSignedOut, nil)
	require.NoError(t, fx.loop.Flush(context.Background()))

	assert.Nil(t, fx.store.Identity())
	snap := fx.store.Profile()
	assert.Equal(t, profile.StateUnauthenticated, snap.State)
	assert.Nil(t, snap.View)
}

func TestLateDoctorExtensionDiscardedAfterSignOut(t *testing.T) {
	fx := newStoreFixture(t)
	fx.init(t)
	release := fx.fake.Block("GetDoctorProfile")

	fx.fake.Emit(backend.EventSignedIn, fx.doctor)
	require.Eventually(t, func() bool {
		return fx.fake.Calls("GetDoctorProfile") == 1
	}, time.Second, 5*time.Millisecond)

	fx.fake.Emit(backend.EventSignedOut, nil)
	require.NoError(t, fx.loop.Flush(context.Background()))
	release()
	fx.settle(t)

	assert.Nil(t, fx.store.Identity())
	snap := fx.store.Profile()
	assert.Equal(t, profile.StateUnauthenticated, snap.State)
	assert.Nil(t, snap.View)
	assert.Empty(t, fx.notes.Levels(notify.LevelError))
}

func TestLogin(t *testing.T) {
	fx := newStoreFixture(t)
	fx.init(t)

	require.NoError(t, fx.store.Login(context.Background(), "  jane@example.com ", "secret1"))
	fx.settle(t)

	require.NotNil(t, fx.store.Identity())
	assert.Equal(t, fx.doctor.User.ID, fx.store.Identity().User.ID)
	assert.Equal(t, profile.StateReady, fx.store.Profile().State)

	successes := fx.notes.Levels(notify.LevelSuccess)
	require.Len(t, successes, 1)
	assert.Equal(t, "Success!", successes[0].Title)
}

func TestLoginLeavesIdentityToListener(t *testing.T) {
	fx := newStoreFixture(t)
	fx.init(t)
	fx.store.Close()

	require.NoError(t, fx.store.Login(context.Background(), "jane@example.com", "secret1"))
	fx.settle(t)

	assert.Nil(t, fx.store.Identity())
	assert.Zero(t, fx.fake.Calls("GetProfile"))
}

func TestLoginValidation(t *testing.T) {
	fx := newStoreFixture(t)
	fx.init(t)
	before := fx.fake.TotalCalls()

	err := fx.store.Login(context.Background(), "not-an-email", "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email must be a valid email address", verr.Fields["email"])
	assert.Equal(t, "password is required", verr.Fields["password"])
	assert.Equal(t, before, fx.fake.TotalCalls())
	assert.Len(t, fx.notes.Levels(notify.LevelError), 1)
}

func TestLoginFailureCarriesServiceMessage(t *testing.T) {
	fx := newStoreFixture(t)
	fx.init(t)

	err := fx.store.Login(context.Background(), "jane@example.com", "wrong-password")
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
	fx.settle(t)

	assert.Nil(t, fx.store.Identity())
	errs := fx.notes.Levels(notify.LevelError)
	require.Len(t, errs, 1)
	assert.Equal(t, "Login failed", errs[0].Title)
	assert.Equal(t, "Invalid login credentials", errs[0].Message)
}

func TestRegisterValidationMakesNoCalls(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *RegisterInput)
		fields map[string]string
	}{
		{
			name:   "password mismatch",
			mutate: func(in *RegisterInput) { in.ConfirmPassword = "vicodin2" },
			fields: map[string]string{"confirm_password": "confirm_password must match Password"},
		},
		{
			name: "doctor without designation or specialty",
			mutate: func(in *RegisterInput) {
				in.Designation = ""
				in.Specialty = ""
			},
			fields: map[string]string{
				"designation": "designation is required",
				"specialty":   "specialty is required",
			},
		},
		{
			name: "patient without date of birth",
			mutate: func(in *RegisterInput) {
				in.UserType = "patient"
				in.Designation = ""
				in.Specialty = ""
			},
			fields: map[string]string{"date_of_birth": "date_of_birth is required"},
		},
		{
			name: "patient with malformed date of birth",
			mutate: func(in *RegisterInput) {
				in.UserType = "patient"
				in.DateOfBirth = "01/04/1990"
			},
			fields: map[string]string{"date_of_birth": "date_of_birth must be a date in YYYY-MM-DD format"},
		},
		{
			name:   "short password",
			mutate: func(in *RegisterInput) { in.Password, in.ConfirmPassword = "abc", "abc" },
			fields: map[string]string{"password": "password must be at least 6 characters"},
		},
		{
			name:   "unknown user type",
			mutate: func(in *RegisterInput) { in.UserType = "nurse" },
			fields: map[string]string{"user_type": "user_type must be one of: doctor, patient"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newStoreFixture(t)
			fx.init(t)
			before := fx.fake.TotalCalls()

			in := validRegistration()
			tt.mutate(&in)
			err := fx.store.Register(context.Background(), in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.fields, verr.Fields)
			assert.Equal(t, before, fx.fake.TotalCalls())
			assert.Zero(t, fx.fake.Calls("SignUp"))
		})
	}
}

func TestRegisterSendsRoleMetadata(t *testing.T) {
	fx := newStoreFixture(t)
	fx.init(t)

	var got *backend.SignUpRequest
	fx.fake.OnSignUp = func(req *backend.SignUpRequest) (*backend.Session, error) {
		got = req
		return backendtest.Session(uuid.New(), req.Email, req.Data.UserType), nil
	}

	in := validRegistration()
	in.Allergies = []string{"ignored for doctors"}
	require.NoError(t, fx.store.Register(context.Background(), in))

	require.NotNil(t, got)
	assert.Equal(t, "house@example.com", got.Email)
	assert.Equal(t, "doctor", got.Data.UserType)
	assert.Equal(t, "Head of Diagnostics", got.Data.Designation)
	assert.Equal(t, 8, *got.Data.Experience)
	assert.Empty(t, got.Data.Allergies)
	assert.Empty(t, got.Data.DateOfBirth)
	assert.Zero(t, fx.fake.Calls("UpdateProfile"))
}

func TestRegisterAttachesSymbolOnce(t *testing.T) {
	fx := newStoreFixture(t)
	fx.init(t)
	fx.fake.PutSymbol(&backend.ProfileSymbol{ID: 4, Name: "Heart"})

	in := validRegistration()
	symbolID := 4
	in.ProfileSymbolID = &symbolID
	require.NoError(t, fx.store.Register(context.Background(), in))

	updates := fx.fake.Updates()
	require.Len(t, updates, 1)
	assert.Equal(t, 4, *updates[0].ProfileSymbolID)
	assert.Nil(t, updates[0].FirstName)

	successes := fx.notes.Levels(notify.LevelSuccess)
	require.Len(t, successes, 1)
	assert.Equal(t, "Account created!", successes[0].Title)
}

func TestRegisterSucceedsWhenSymbolUpdateFails(t *testing.T) {
	fx := newStoreFixture(t)
	fx.init(t)
	fx.fake.Fail("UpdateProfile", errors.New("row level security violation"))

	in := validRegistration()
	symbolID := 1
	in.ProfileSymbolID = &symbolID
	require.NoError(t, fx.store.Register(context.Background(), in))

	assert.Equal(t, 1, fx.fake.Calls("UpdateProfile"))
	warnings := fx.notes.Levels(notify.LevelWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, "row level security violation", warnings[0].Message)
	assert.Len(t, fx.notes.Levels(notify.LevelSuccess), 1)
}

func TestRegisterFailureCarriesServiceMessage(t *testing.T) {
	fx := newStoreFixture(t)
	fx.init(t)
	fx.fake.Fail("SignUp", &backend.APIError{Status: 409, Message: "User already registered"})

	err := fx.store.Register(context.Background(), validRegistration())
	require.Error(t, err)
	errs := fx.notes.Levels(notify.LevelError)
	require.Len(t, errs, 1)
	assert.Equal(t, "User already registered", errs[0].Message)
}

func TestRefreshProfileWithoutIdentityMakesNoCalls(t *testing.T) {
	fx := newStoreFixture(t)
	fx.init(t)
	before := fx.fake.TotalCalls()

	require.NoError(t, fx.store.RefreshProfile())
	fx.settle(t)

	assert.Equal(t, before, fx.fake.TotalCalls())
}

func TestLogout(t *testing.T) {
	fx := newStoreFixture(t)
	fx.init(t)
	require.NoError(t, fx.store.Login(context.Background(), "john@example.com", "secret1"))
	fx.settle(t)
	require.Equal(t, profile.StateReady, fx.store.Profile().State)

	require.NoError(t, fx.store.Logout(context.Background()))
	fx.settle(t)

	assert.Nil(t, fx.store.Identity())
	assert.Equal(t, profile.StateUnauthenticated, fx.store.Profile().State)
}
