package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"healgenie-portal/internal/domain/entity"
	"healgenie-portal/pkg/jwt"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, db *gorm.DB, user *entity.User) error {
	args := m.Called(ctx, db, user)
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error) {
	args := m.Called(ctx, db, email)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, db, id)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

type mockProfileRepo struct{ mock.Mock }

func (m *mockProfileRepo) Create(ctx context.Context, db *gorm.DB, profile *entity.Profile) error {
	return m.Called(ctx, db, profile).Error(0)
}

func (m *mockProfileRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Profile, error) {
	args := m.Called(ctx, db, id)
	profile, _ := args.Get(0).(*entity.Profile)
	return profile, args.Error(1)
}

func (m *mockProfileRepo) Update(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	args := m.Called(ctx, db, id, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProfileRepo) SearchPatients(ctx context.Context, db *gorm.DB, filter entity.PatientSearchFilter) ([]entity.PatientSearchResult, error) {
	args := m.Called(ctx, db, filter)
	results, _ := args.Get(0).([]entity.PatientSearchResult)
	return results, args.Error(1)
}

type mockDoctorProfileRepo struct{ mock.Mock }

func (m *mockDoctorProfileRepo) Create(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	return m.Called(ctx, db, profile).Error(0)
}

func (m *mockDoctorProfileRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.DoctorProfile, error) {
	args := m.Called(ctx, db, id)
	profile, _ := args.Get(0).(*entity.DoctorProfile)
	return profile, args.Error(1)
}

func (m *mockDoctorProfileRepo) Update(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	args := m.Called(ctx, db, id, fields)
	return args.Get(0).(int64), args.Error(1)
}

type mockPatientProfileRepo struct{ mock.Mock }

func (m *mockPatientProfileRepo) Create(ctx context.Context, db *gorm.DB, profile *entity.PatientProfile) error {
	return m.Called(ctx, db, profile).Error(0)
}

func (m *mockPatientProfileRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.PatientProfile, error) {
	args := m.Called(ctx, db, id)
	profile, _ := args.Get(0).(*entity.PatientProfile)
	return profile, args.Error(1)
}

func (m *mockPatientProfileRepo) Update(ctx context.Context, db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	args := m.Called(ctx, db, id, fields)
	return args.Get(0).(int64), args.Error(1)
}

type mockSymbolRepo struct{ mock.Mock }

func (m *mockSymbolRepo) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.ProfileSymbol, error) {
	args := m.Called(ctx, db, id)
	symbol, _ := args.Get(0).(*entity.ProfileSymbol)
	return symbol, args.Error(1)
}

func (m *mockSymbolRepo) FindAll(ctx context.Context, db *gorm.DB) ([]entity.ProfileSymbol, error) {
	args := m.Called(ctx, db)
	symbols, _ := args.Get(0).([]entity.ProfileSymbol)
	return symbols, args.Error(1)
}

type mockPrescriptionRepo struct{ mock.Mock }

func (m *mockPrescriptionRepo) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Prescription, error) {
	args := m.Called(ctx, db, patientID)
	prescriptions, _ := args.Get(0).([]entity.Prescription)
	return prescriptions, args.Error(1)
}

type mockDoctorPatientRepo struct{ mock.Mock }

func (m *mockDoctorPatientRepo) FindLink(ctx context.Context, db *gorm.DB, doctorID, patientID uuid.UUID) (*entity.DoctorPatient, error) {
	args := m.Called(ctx, db, doctorID, patientID)
	link, _ := args.Get(0).(*entity.DoctorPatient)
	return link, args.Error(1)
}

type mockAuditLogRepo struct{ mock.Mock }

func (m *mockAuditLogRepo) Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error {
	return m.Called(ctx, db, log).Error(0)
}

func (m *mockAuditLogRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]entity.AuditLog, error) {
	args := m.Called(ctx, db, userID, limit)
	logs, _ := args.Get(0).([]entity.AuditLog)
	return logs, args.Error(1)
}

type mockTokenStore struct{ mock.Mock }

func (m *mockTokenStore) Save(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string, accessTTL, refreshTTL time.Duration) error {
	return m.Called(ctx, userID, accessTokenID, refreshTokenID, accessTTL, refreshTTL).Error(0)
}

func (m *mockTokenStore) Exists(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) (bool, error) {
	args := m.Called(ctx, userID, tokenID, tokenType)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenStore) Consume(ctx context.Context, userID uuid.UUID, refreshTokenID string) (bool, error) {
	args := m.Called(ctx, userID, refreshTokenID)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenStore) Revoke(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error {
	return m.Called(ctx, userID, accessTokenID, refreshTokenID).Error(0)
}

type mockAuditService struct{ mock.Mock }

func (m *mockAuditService) LogEvent(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, metadata entity.JSON) error {
	return m.Called(ctx, tx, userID, action, metadata).Error(0)
}

func (m *mockAuditService) LogUpdate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, changes interface{}) error {
	return m.Called(ctx, tx, userID, action, entityName, entityID, changes).Error(0)
}

func newAuditMock() *mockAuditService {
	audit := &mockAuditService{}
	audit.On("LogEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	audit.On("LogUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return audit
}
