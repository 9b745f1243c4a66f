package cron

import (
	"context"
	"fmt"

	"github.com/licimar/licimar-backend/internal/auditlog"
	"github.com/licimar/licimar-backend/pkg/logger"
)

// AuditRetentionJob prunes audit entries older than the retention window.
type AuditRetentionJob struct {
	audit auditlog.Service
	logg  *logger.Logger
}

// NewAuditRetentionJob builds the retention job.
func NewAuditRetentionJob(audit auditlog.Service, logg *logger.Logger) (*AuditRetentionJob, error) {
	if audit == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &AuditRetentionJob{audit: audit, logg: logg}, nil
}

// Name identifies the job in logs and metrics.
func (j *AuditRetentionJob) Name() string { return "audit_retention" }

// Run performs one retention sweep.
func (j *AuditRetentionJob) Run(ctx context.Context) error {
	result, err := j.audit.Cleanup(ctx)
	if err != nil {
		return err
	}
	ctx = j.logg.WithFields(ctx, map[string]any{
		"deleted":        result.Deleted,
		"retention_days": result.RetentionDays,
	})
	j.logg.Info(ctx, "audit retention sweep finished")
	return nil
}
