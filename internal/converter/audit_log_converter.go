package converter

import (
	"healgenie-portal/internal/delivery/dto"
	"healgenie-portal/internal/domain/entity"
)

func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i, l := range logs {
		responses[i] = dto.AuditLogResponse{
			ID:        l.ID,
			Action:    l.Action,
			Metadata:  l.Metadata,
			CreatedAt: l.CreatedAt,
		}
	}
	return responses
}
