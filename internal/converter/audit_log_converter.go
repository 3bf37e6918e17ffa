package converter

import (
	"smart-clinic-backend/internal/delivery/dto"
	"smart-clinic-backend/internal/domain/entity"
)

// AuditLogToResponse converts an AuditLog entity to AuditLogResponse DTO
func AuditLogToResponse(auditLog *entity.AuditLog) *dto.AuditLogResponse {
	if auditLog == nil {
		return nil
	}

	response := &dto.AuditLogResponse{
		ID:        auditLog.ID,
		Action:    auditLog.Action,
		Metadata:  auditLog.Metadata,
		CreatedAt: auditLog.CreatedAt,
	}
	if user := UserToResponse(auditLog.User); user != nil {
		response.User = *user
	}
	return response
}

// AuditLogsToListResponse converts a slice of AuditLog entities to a list DTO
func AuditLogsToListResponse(logs []entity.AuditLog, total int64) *dto.AuditLogListResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i := range logs {
		responses[i] = *AuditLogToResponse(&logs[i])
	}
	return &dto.AuditLogListResponse{
		Logs:  responses,
		Total: total,
	}
}
