package dto

import (
	"time"

	"dental-clinic-booking/internal/domain/entity"
)

type AuditLogResponse struct {
	ID        int64                `json:"id"`
	User      *ParticipantResponse `json:"user,omitempty"`
	Action    string               `json:"action"`
	Metadata  entity.JSON          `json:"metadata"`
	CreatedAt time.Time            `json:"createdAt"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
