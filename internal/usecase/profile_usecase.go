package usecase

import (
	"context"
	"errors"

	"healgenie-portal/internal/converter"
	"healgenie-portal/internal/delivery/dto"
	"healgenie-portal/internal/domain/entity"
	"healgenie-portal/internal/domain/repository"
	"healgenie-portal/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrForbidden             = errors.New("you don't have permission to access this resource")
	ErrProfileNotFound       = errors.New("profile not found")
	ErrDoctorNotFound        = errors.New("doctor profile not found")
	ErrPatientNotFound       = errors.New("patient profile not found")
	ErrProfileSymbolNotFound = errors.New("profile symbol not found")
	ErrNothingToUpdate       = errors.New("no fields to update")
)

// ProfileUsecase serves read-one / update-one on the profile tables. Rows are
// only visible to their owner; doctors may also read patient rows.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, caller entity.Principal, id uuid.UUID) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, caller entity.Principal, id uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	GetDoctorProfile(ctx context.Context, caller entity.Principal, id uuid.UUID) (*dto.DoctorProfileResponse, error)
	UpdateDoctorProfile(ctx context.Context, caller entity.Principal, id uuid.UUID, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorProfileResponse, error)
	GetPatientProfile(ctx context.Context, caller entity.Principal, id uuid.UUID) (*dto.PatientProfileResponse, error)
	UpdatePatientProfile(ctx context.Context, caller entity.Principal, id uuid.UUID, req *dto.UpdatePatientProfileRequest) (*dto.PatientProfileResponse, error)
	GetProfileSymbol(ctx context.Context, id int) (*dto.ProfileSymbolResponse, error)
	ListProfileSymbols(ctx context.Context) (*dto.ProfileSymbolListResponse, error)
}

type profileUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	profileRepo        repository.ProfileRepository
	doctorProfileRepo  repository.DoctorProfileRepository
	patientProfileRepo repository.PatientProfileRepository
	symbolRepo         repository.ProfileSymbolRepository
	auditService       service.AuditService
}

func NewProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	profileRepo repository.ProfileRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	patientProfileRepo repository.PatientProfileRepository,
	symbolRepo repository.ProfileSymbolRepository,
	auditService service.AuditService,
) ProfileUsecase {
	return &profileUsecase{
		db:                 db,
		log:                log,
		profileRepo:        profileRepo,
		doctorProfileRepo:  doctorProfileRepo,
		patientProfileRepo: patientProfileRepo,
		symbolRepo:         symbolRepo,
		auditService:       auditService,
	}
}

func (u *profileUsecase) GetProfile(ctx context.Context, caller entity.Principal, id uuid.UUID) (*dto.ProfileResponse, error) {
	if !caller.Owns(id) && !caller.IsDoctor() {
		return nil, ErrForbidden
	}

	profile, err := u.profileRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	// Doctors may look at patients, not at other doctors.
	if !caller.Owns(id) && profile.UserType != entity.UserTypePatient {
		return nil, ErrForbidden
	}

	return converter.ProfileToResponse(profile), nil
}

func (u *profileUsecase) UpdateProfile(ctx context.Context, caller entity.Principal, id uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if !caller.Owns(id) {
		return nil, ErrForbidden
	}

	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.ProfileSymbolID != nil {
		fields["profile_symbol_id"] = *req.ProfileSymbolID
	}
	if len(fields) == 0 {
		return nil, ErrNothingToUpdate
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if req.ProfileSymbolID != nil {
		symbol, err := u.symbolRepo.FindByID(ctx, tx, *req.ProfileSymbolID)
		if err != nil {
			u.log.Warnf("Failed to find profile symbol: %+v", err)
			return nil, err
		}
		if symbol == nil {
			return nil, ErrProfileSymbolNotFound
		}
	}

	affected, err := u.profileRepo.Update(ctx, tx, id, fields)
	if err != nil {
		if isForeignKeyError(err, "profile_symbol") {
			return nil, ErrProfileSymbolNotFound
		}
		u.log.Warnf("Failed to update profile: %+v", err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrProfileNotFound
	}

	if err := u.auditService.LogUpdate(ctx, tx, &caller.UserID, entity.AuditActionProfileUpdate, "profile", id.String(), fields); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	profile, err := u.profileRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to reload profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.ProfileToResponse(profile), nil
}

func (u *profileUsecase) GetDoctorProfile(ctx context.Context, caller entity.Principal, id uuid.UUID) (*dto.DoctorProfileResponse, error) {
	if !caller.Owns(id) {
		return nil, ErrForbidden
	}

	profile, err := u.doctorProfileRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *profileUsecase) UpdateDoctorProfile(ctx context.Context, caller entity.Principal, id uuid.UUID, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorProfileResponse, error) {
	if !caller.Owns(id) {
		return nil, ErrForbidden
	}

	fields := map[string]interface{}{}
	if req.Designation != nil {
		fields["designation"] = *req.Designation
	}
	if req.Specialty != nil {
		fields["specialty"] = *req.Specialty
	}
	if req.Experience != nil {
		fields["experience"] = *req.Experience
	}
	if len(fields) == 0 {
		return nil, ErrNothingToUpdate
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.doctorProfileRepo.Update(ctx, tx, id, fields)
	if err != nil {
		u.log.Warnf("Failed to update doctor profile: %+v", err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrDoctorNotFound
	}

	if err := u.auditService.LogUpdate(ctx, tx, &caller.UserID, entity.AuditActionDoctorUpdate, "doctor_profile", id.String(), fields); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	profile, err := u.doctorProfileRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to reload doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *profileUsecase) GetPatientProfile(ctx context.Context, caller entity.Principal, id uuid.UUID) (*dto.PatientProfileResponse, error) {
	if !caller.Owns(id) && !caller.IsDoctor() {
		return nil, ErrForbidden
	}

	profile, err := u.patientProfileRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find patient profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientProfileToResponse(profile), nil
}

func (u *profileUsecase) UpdatePatientProfile(ctx context.Context, caller entity.Principal, id uuid.UUID, req *dto.UpdatePatientProfileRequest) (*dto.PatientProfileResponse, error) {
	if !caller.Owns(id) {
		return nil, ErrForbidden
	}

	fields := map[string]interface{}{}
	if req.Allergies != nil {
		fields["allergies"] = entity.StringArray(req.Allergies)
	}
	if req.MedicalHistory != nil {
		fields["medical_history"] = *req.MedicalHistory
	}
	if len(fields) == 0 {
		return nil, ErrNothingToUpdate
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.patientProfileRepo.Update(ctx, tx, id, fields)
	if err != nil {
		u.log.Warnf("Failed to update patient profile: %+v", err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrPatientNotFound
	}

	if err := u.auditService.LogUpdate(ctx, tx, &caller.UserID, entity.AuditActionPatientUpdate, "patient_profile", id.String(), fields); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	profile, err := u.patientProfileRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to reload patient profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.PatientProfileToResponse(profile), nil
}

func (u *profileUsecase) GetProfileSymbol(ctx context.Context, id int) (*dto.ProfileSymbolResponse, error) {
	symbol, err := u.symbolRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find profile symbol: %+v", err)
		return nil, err
	}
	if symbol == nil {
		return nil, ErrProfileSymbolNotFound
	}
	return converter.ProfileSymbolToResponse(symbol), nil
}

func (u *profileUsecase) ListProfileSymbols(ctx context.Context) (*dto.ProfileSymbolListResponse, error) {
	symbols, err := u.symbolRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to find profile symbols: %+v", err)
		return nil, err
	}

	responses := converter.ProfileSymbolsToResponses(symbols)
	return &dto.ProfileSymbolListResponse{
		Symbols: responses,
		Total:   len(responses),
	}, nil
}
