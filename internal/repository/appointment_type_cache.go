package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dental-clinic-booking/internal/domain/entity"
	domainRepo "dental-clinic-booking/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AppointmentTypesCacheKey holds the JSON encoded list of all appointment types
const AppointmentTypesCacheKey = "appointment_types:all"

// cachedAppointmentTypeRepository reads appointment types through Redis.
// Redis failures are logged and fall back to the wrapped repository.
type cachedAppointmentTypeRepository struct {
	inner       domainRepo.AppointmentTypeRepository
	redisClient *redis.Client
	ttl         time.Duration
	log         *logrus.Logger
}

func NewCachedAppointmentTypeRepository(
	inner domainRepo.AppointmentTypeRepository,
	redisClient *redis.Client,
	ttl time.Duration,
	log *logrus.Logger,
) domainRepo.AppointmentTypeRepository {
	return &cachedAppointmentTypeRepository{
		inner:       inner,
		redisClient: redisClient,
		ttl:         ttl,
		log:         log,
	}
}

func (r *cachedAppointmentTypeRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.AppointmentType, error) {
	payload, err := r.redisClient.Get(ctx, AppointmentTypesCacheKey).Bytes()
	switch {
	case err == nil:
		var types []entity.AppointmentType
		if err := json.Unmarshal(payload, &types); err == nil {
			return types, nil
		}
		r.log.Warnf("Discarding corrupt appointment type cache entry: %+v", err)
	case !errors.Is(err, redis.Nil):
		r.log.Warnf("Failed to read appointment types from Redis: %+v", err)
	}

	types, err := r.inner.FindAll(ctx, db)
	if err != nil {
		return nil, err
	}

	payload, err = json.Marshal(types)
	if err != nil {
		r.log.Warnf("Failed to encode appointment types for cache: %+v", err)
		return types, nil
	}
	if err := r.redisClient.Set(ctx, AppointmentTypesCacheKey, payload, r.ttl).Err(); err != nil {
		r.log.Warnf("Failed to cache appointment types: %+v", err)
	}

	return types, nil
}

func (r *cachedAppointmentTypeRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.AppointmentType, error) {
	types, err := r.FindAll(ctx, db)
	if err != nil {
		return nil, err
	}
	for i := range types {
		if types[i].ID == id {
			return &types[i], nil
		}
	}
	return nil, nil
}

func (r *cachedAppointmentTypeRepository) Create(ctx context.Context, db *gorm.DB, appointmentType *entity.AppointmentType) error {
	if err := r.inner.Create(ctx, db, appointmentType); err != nil {
		return err
	}
	if err := r.redisClient.Del(ctx, AppointmentTypesCacheKey).Err(); err != nil {
		r.log.Warnf("Failed to invalidate appointment type cache: %+v", err)
	}
	return nil
}
