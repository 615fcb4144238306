package usecase

import (
	"context"

	"healgenie-portal/internal/converter"
	"healgenie-portal/internal/delivery/dto"
	"healgenie-portal/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultActivityLimit = 20

// AuditLogUsecase exposes a user's own activity trail.
type AuditLogUsecase interface {
	ListOwnActivity(ctx context.Context, userID uuid.UUID, limit int) (*dto.AuditLogListResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) ListOwnActivity(ctx context.Context, userID uuid.UUID, limit int) (*dto.AuditLogListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultActivityLimit
	}

	logs, err := u.auditLogRepo.FindByUserID(ctx, u.db, userID, limit)
	if err != nil {
		u.log.Warnf("Failed to find audit logs: %+v", err)
		return nil, err
	}

	responses := converter.AuditLogsToResponses(logs)
	return &dto.AuditLogListResponse{
		Logs:  responses,
		Total: len(responses),
	}, nil
}
