package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/pantry/backend/internal/apperr"
	"github.com/pageza/pantry/backend/internal/models"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
	recorderWriteTimeout = 5 * time.Second
)

type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// ValidateActivity checks that every required field is present and enumerated values are known
func ValidateActivity(entry *models.ActivityLog) error {
	var missing []string
	if entry.UserID == uuid.Nil {
		missing = append(missing, "user")
	}
	if strings.TrimSpace(entry.UserName) == "" {
		missing = append(missing, "userName")
	}
	if entry.ActionType == "" {
		missing = append(missing, "actionType")
	}
	if entry.EntityType == "" {
		missing = append(missing, "entityType")
	}
	if strings.TrimSpace(entry.EntityID) == "" {
		missing = append(missing, "entityId")
	}
	if strings.TrimSpace(entry.EntityName) == "" {
		missing = append(missing, "entityName")
	}
	if len(missing) > 0 {
		return apperr.E(apperr.ErrValidation, "Missing required fields: %s", strings.Join(missing, ", "))
	}

	if !models.IsValidAction(entry.ActionType) {
		return apperr.E(apperr.ErrValidation, "Invalid actionType: %s", entry.ActionType)
	}
	if !models.IsValidEntity(entry.EntityType) {
		return apperr.E(apperr.ErrValidation, "Invalid entityType: %s", entry.EntityType)
	}
	return nil
}

// Record validates and persists a single entry
func (s *ActivityService) Record(ctx context.Context, entry *models.ActivityLog) error {
	if err := ValidateActivity(entry); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// List returns entries newest first together with the total matching count
func (s *ActivityService) List(ctx context.Context, filters *models.ActivityFilters) ([]models.ActivityLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.ActivityLog{})

	limit := defaultActivityLimit
	offset := 0
	if filters != nil {
		if filters.UserID != "" {
			userID, err := uuid.Parse(filters.UserID)
			if err != nil {
				return nil, 0, apperr.E(apperr.ErrValidation, "Invalid user id")
			}
			query = query.Where("user_id = ?", userID)
		}
		if filters.EntityType != "" {
			query = query.Where("entity_type = ?", filters.EntityType)
		}
		if filters.ActionType != "" {
			query = query.Where("action_type = ?", filters.ActionType)
		}
		if filters.Limit > 0 {
			limit = min(filters.Limit, maxActivityLimit)
		}
		if filters.Offset > 0 {
			offset = filters.Offset
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activity: %w", err)
	}

	var entries []models.ActivityLog
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, total, nil
}

// Recorder writes activity entries on a background goroutine.
// Enqueue never blocks; entries are dropped and logged when the queue is full.
type Recorder struct {
	svc   *ActivityService
	log   *zap.Logger
	queue chan models.ActivityLog
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewRecorder(svc *ActivityService, size int, log *zap.Logger) *Recorder {
	if size <= 0 {
		size = 1
	}
	r := &Recorder{
		svc:   svc,
		log:   log,
		queue: make(chan models.ActivityLog, size),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

func (r *Recorder) Enqueue(entry models.ActivityLog) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.log.Warn("activity recorder closed, dropping entry",
			zap.String("action", entry.ActionType),
			zap.String("entity", entry.EntityType))
		return
	}

	select {
	case r.queue <- entry:
	default:
		r.log.Warn("activity queue full, dropping entry",
			zap.String("action", entry.ActionType),
			zap.String("entity", entry.EntityType),
			zap.String("entity_id", entry.EntityID))
	}
}

// Close stops accepting entries and waits for the queue to drain
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for entry := range r.queue {
		r.write(entry)
	}
}

func (r *Recorder) write(entry models.ActivityLog) {
	ctx, cancel := context.WithTimeout(context.Background(), recorderWriteTimeout)
	defer cancel()

	if err := r.svc.Record(ctx, &entry); err != nil {
		r.log.Error("failed to record activity",
			zap.Error(err),
			zap.String("action", entry.ActionType),
			zap.String("entity", entry.EntityType),
			zap.String("entity_id", entry.EntityID))
	}
}

// NopRecorder discards every entry
type NopRecorder struct{}

func (NopRecorder) Enqueue(models.ActivityLog) {}

// newActivity builds an entry attributed to actor
func newActivity(actor *models.User, action, entity, entityID, entityName, detail string) models.ActivityLog {
	return models.ActivityLog{
		UserID:     actor.ID,
		UserName:   actor.Name,
		ActionType: action,
		EntityType: entity,
		EntityID:   entityID,
		EntityName: entityName,
		Detail:     detail,
	}
}
