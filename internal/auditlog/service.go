package auditlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/licimar/licimar-backend/pkg/db/models"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
	"github.com/licimar/licimar-backend/pkg/logger"
	"github.com/licimar/licimar-backend/pkg/metrics"
	"github.com/licimar/licimar-backend/pkg/pagination"
)

const cleanupJobName = "audit_retention_cleanup"

// Service records and reads the audit trail.
type Service interface {
	Record(ctx context.Context, actorID *uuid.UUID, action, details, ip, userAgent string)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.PageResult, error)
	Cleanup(ctx context.Context) (*CleanupResult, error)
}

// CleanupResult reports the retention sweep outcome.
type CleanupResult struct {
	Deleted       int64     `json:"deleted"`
	RetentionDays int       `json:"retention_days"`
	Cutoff        time.Time `json:"cutoff"`
}

// EntryDTO is the API representation of one audit entry.
type EntryDTO struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Action    string     `json:"action"`
	Details   *string    `json:"details,omitempty"`
	IP        *string    `json:"ip,omitempty"`
	UserAgent *string    `json:"user_agent,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type service struct {
	repo          *Repository
	retentionDays int
	logg          *logger.Logger
	jobs          *metrics.JobMetrics
}

// NewService constructs the audit service.
func NewService(repo *Repository, retentionDays int, logg *logger.Logger, jobs *metrics.JobMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &service{repo: repo, retentionDays: retentionDays, logg: logg, jobs: jobs}, nil
}

// Record appends an entry best-effort: failures are logged, never surfaced,
// so a broken trail cannot fail the mutation it describes.
func (s *service) Record(ctx context.Context, actorID *uuid.UUID, action, details, ip, userAgent string) {
	entry := &models.AuditLog{
		UserID:    actorID,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	if details != "" {
		entry.Details = &details
	}
	if ip != "" {
		entry.IP = &ip
	}
	if userAgent != "" {
		entry.UserAgent = &userAgent
	}
	if err := s.repo.Create(ctx, entry); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"action": action}), "audit.record.failed")
	}
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.PageResult, error) {
	params = params.Normalize()
	items, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit entries")
	}
	dtos := make([]*EntryDTO, 0, len(items))
	for i := range items {
		e := items[i]
		dtos = append(dtos, &EntryDTO{
			ID:        e.ID,
			UserID:    e.UserID,
			Action:    e.Action,
			Details:   e.Details,
			IP:        e.IP,
			UserAgent: e.UserAgent,
			CreatedAt: e.CreatedAt,
		})
	}
	return pagination.NewPage(dtos, params, total), nil
}

func (s *service) Cleanup(ctx context.Context) (*CleanupResult, error) {
	start := time.Now()
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)

	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	s.jobs.ObserveDuration(cleanupJobName, time.Since(start))
	if err != nil {
		s.jobs.IncFailure(cleanupJobName)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cleanup audit entries")
	}
	s.jobs.IncSuccess(cleanupJobName)

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"deleted": deleted, "cutoff": cutoff})
		s.logg.Info(ctx, "audit.cleanup.complete")
	}
	return &CleanupResult{Deleted: deleted, RetentionDays: s.retentionDays, Cutoff: cutoff}, nil
}
