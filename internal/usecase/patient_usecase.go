package usecase

import (
	"context"
	"errors"
	"strings"

	"healgenie-portal/internal/converter"
	"healgenie-portal/internal/delivery/dto"
	"healgenie-portal/internal/domain/entity"
	"healgenie-portal/internal/domain/repository"
	"healgenie-portal/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrEmptySearchQuery = errors.New("please enter a patient name or ID")
)

const maxSearchResults = 50

// PatientUsecase backs the doctor-facing patient search and record pages.
type PatientUsecase interface {
	SearchPatients(ctx context.Context, caller entity.Principal, query string, limit int) (*dto.PatientSearchResponse, error)
	GetPatientRecord(ctx context.Context, caller entity.Principal, patientID uuid.UUID) (*dto.PatientRecordResponse, error)
	ListOwnPrescriptions(ctx context.Context, caller entity.Principal) ([]dto.PrescriptionResponse, error)
}

type patientUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	profileRepo        repository.ProfileRepository
	patientProfileRepo repository.PatientProfileRepository
	prescriptionRepo   repository.PrescriptionRepository
	doctorPatientRepo  repository.DoctorPatientRepository
	auditService       service.AuditService
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	profileRepo repository.ProfileRepository,
	patientProfileRepo repository.PatientProfileRepository,
	prescriptionRepo repository.PrescriptionRepository,
	doctorPatientRepo repository.DoctorPatientRepository,
	auditService service.AuditService,
) PatientUsecase {
	return &patientUsecase{
		db:                 db,
		log:                log,
		profileRepo:        profileRepo,
		patientProfileRepo: patientProfileRepo,
		prescriptionRepo:   prescriptionRepo,
		doctorPatientRepo:  doctorPatientRepo,
		auditService:       auditService,
	}
}

func (u *patientUsecase) SearchPatients(ctx context.Context, caller entity.Principal, query string, limit int) (*dto.PatientSearchResponse, error) {
	if !caller.IsDoctor() {
		return nil, ErrForbidden
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptySearchQuery
	}
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}

	results, err := u.profileRepo.SearchPatients(ctx, u.db, entity.PatientSearchFilter{
		DoctorID: caller.UserID,
		Query:    query,
		Limit:    limit,
	})
	if err != nil {
		u.log.Warnf("Failed to search patients: %+v", err)
		return nil, err
	}

	return converter.PatientSearchResultsToResponse(results), nil
}

// GetPatientRecord loads the profile, the patient extension, prescriptions and
// the caller's visit link concurrently.
func (u *patientUsecase) GetPatientRecord(ctx context.Context, caller entity.Principal, patientID uuid.UUID) (*dto.PatientRecordResponse, error) {
	if !caller.IsDoctor() {
		return nil, ErrForbidden
	}

	var (
		profile       *entity.Profile
		patient       *entity.PatientProfile
		prescriptions []entity.Prescription
		link          *entity.DoctorPatient
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = u.profileRepo.FindByID(gctx, u.db, patientID)
		return err
	})
	g.Go(func() error {
		var err error
		patient, err = u.patientProfileRepo.FindByID(gctx, u.db, patientID)
		return err
	})
	g.Go(func() error {
		var err error
		prescriptions, err = u.prescriptionRepo.FindByPatientID(gctx, u.db, patientID)
		return err
	})
	g.Go(func() error {
		var err error
		link, err = u.doctorPatientRepo.FindLink(gctx, u.db, caller.UserID, patientID)
		return err
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to load patient record: %+v", err)
		return nil, err
	}

	if profile == nil || profile.UserType != entity.UserTypePatient || patient == nil {
		return nil, ErrPatientNotFound
	}

	if err := u.auditService.LogEvent(ctx, u.db, &caller.UserID, entity.AuditActionPatientRecordGet, entity.JSON{"patient_id": patientID.String()}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	resp := &dto.PatientRecordResponse{
		Profile:       *converter.ProfileToResponse(profile),
		Patient:       *converter.PatientProfileToResponse(patient),
		Prescriptions: converter.PrescriptionsToResponses(prescriptions),
	}
	if link != nil {
		resp.LastVisit = link.LastVisit
	}
	return resp, nil
}

// ListOwnPrescriptions returns the caller's prescriptions, newest first.
func (u *patientUsecase) ListOwnPrescriptions(ctx context.Context, caller entity.Principal) ([]dto.PrescriptionResponse, error) {
	if caller.UserType != entity.UserTypePatient {
		return nil, ErrForbidden
	}

	prescriptions, err := u.prescriptionRepo.FindByPatientID(ctx, u.db, caller.UserID)
	if err != nil {
		u.log.Warnf("Failed to find prescriptions: %+v", err)
		return nil, err
	}

	return converter.PrescriptionsToResponses(prescriptions), nil
}
