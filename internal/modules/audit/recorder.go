package audit

import (
	"context"
	"encoding/json"

	"classifieds/internal/domain"
	"classifieds/internal/pkg/metrics"

	"github.com/sirupsen/logrus"
)

type Store interface {
	Create(ctx context.Context, entry *domain.AdminActionLog) error
}

// Recorder appends admin action rows. Writes are best effort: the primary
// mutation has already committed, so a failure is logged and counted and
// never returned to the caller.
type Recorder struct {
	store   Store
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

func NewRecorder(store Store, log logrus.FieldLogger, m *metrics.Metrics) *Recorder {
	return &Recorder{store: store, log: log, metrics: m}
}

func (r *Recorder) Record(ctx context.Context, adminID, action, targetType, targetID string, details map[string]any) {
	entry := &domain.AdminActionLog{
		AdminID:    adminID,
		ActionType: action,
		TargetType: targetType,
		TargetID:   targetID,
	}
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err == nil {
			entry.Details = raw
		}
	}

	if err := r.store.Create(ctx, entry); err != nil {
		if r.metrics != nil {
			r.metrics.AuditWriteFailures.Inc()
		}
		r.log.WithFields(logrus.Fields{
			"admin_id":    adminID,
			"action":      action,
			"target_type": targetType,
			"target_id":   targetID,
			"error":       err.Error(),
		}).Warn("admin action log write failed")
	}
}
