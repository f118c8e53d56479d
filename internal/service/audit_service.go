package service

import (
	"context"

	"dental-clinic-booking/internal/domain/entity"
	"dental-clinic-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditService interface {
	LogCreate(ctx context.Context, userID *int, action string, entityName string, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, userID *int, action string, entityName string, entityID string, oldValue, newValue interface{}) error
	LogEvent(ctx context.Context, userID *int, action string, metadata entity.JSON) error
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, userID *int, action string, entityName string, entityID string, newValue interface{}) error {
	return s.LogEvent(ctx, userID, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": nil,
		"new_value": newValue,
	})
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, userID *int, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return s.LogEvent(ctx, userID, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": oldValue,
		"new_value": newValue,
	})
}

// LogEvent logs an action that is not tied to an entity change, such as a login
func (s *auditService) LogEvent(ctx context.Context, userID *int, action string, metadata entity.JSON) error {
	auditLog := &entity.AuditLog{
		UserID:   userID,
		Action:   action,
		Metadata: metadata,
	}

	if err := s.auditRepo.Create(ctx, s.db, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log %s: %+v", action, err)
		return err
	}

	return nil
}
