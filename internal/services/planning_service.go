package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pinggolf/loadplan-toolbox/internal/config"
	"github.com/pinggolf/loadplan-toolbox/internal/db"
	"github.com/pinggolf/loadplan-toolbox/internal/queue"
)

// PlanRunRequest is the message published to trigger an asynchronous
// planning run.
type PlanRunRequest struct {
	JobID       string    `json:"jobId"`
	StartDate   time.Time `json:"startDate"`
	HorizonDays int       `json:"horizonDays"`
	TriggeredBy string    `json:"triggeredBy,omitempty"`
}

// PlanningService is the synchronous front door for triggering a run: it
// validates the request, records it, and hands the heavy work to the
// worker pool over NATS rather than blocking the caller.
type PlanningService struct {
	db      *db.Queries
	nats    *queue.Manager
	audit   *AuditService
	limiter *RateLimiterService
	config  *config.Config
}

// NewPlanningService creates a new planning service.
func NewPlanningService(queries *db.Queries, nats *queue.Manager, audit *AuditService, limiter *RateLimiterService, cfg *config.Config) *PlanningService {
	return &PlanningService{
		db:      queries,
		nats:    nats,
		audit:   audit,
		limiter: limiter,
		config:  cfg,
	}
}

// TriggerRun validates and enqueues a new planning run, returning the job
// id immediately. The actual plan is built and persisted off this path by
// PlanWorker. Whether non-default trucks end up in use is the Demand
// Placer's own decision, computed from the horizon's average footprint
// against the default fleet's deck area — not a caller-supplied flag.
func (s *PlanningService) TriggerRun(ctx context.Context, startDate time.Time, horizonDays int, triggeredBy string) (string, error) {
	if horizonDays <= 0 {
		return "", fmt.Errorf("horizonDays must be positive")
	}
	if horizonDays > s.config.PlanningMaxHorizonDays {
		return "", fmt.Errorf("horizonDays %d exceeds maximum of %d", horizonDays, s.config.PlanningMaxHorizonDays)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	jobID := uuid.NewString()

	if err := s.db.CreatePlanRun(ctx, jobID, startDate, horizonDays, triggeredBy); err != nil {
		return "", fmt.Errorf("create plan run: %w", err)
	}

	if err := s.audit.Log(ctx, AuditParams{
		EntityType: "plan_run",
		EntityID:   jobID,
		Operation:  "trigger",
		UserName:   triggeredBy,
		Metadata: map[string]interface{}{
			"startDate":   startDate.Format("2006-01-02"),
			"horizonDays": horizonDays,
		},
	}); err != nil {
		log.Printf("Failed to write audit log for plan run %s: %v", jobID, err)
	}

	req := PlanRunRequest{
		JobID:       jobID,
		StartDate:   startDate,
		HorizonDays: horizonDays,
		TriggeredBy: triggeredBy,
	}
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal plan run request: %w", err)
	}

	if err := s.nats.Publish(queue.SubjectPlanRunRequested, data); err != nil {
		return "", fmt.Errorf("publish plan run request: %w", err)
	}

	log.Printf("Triggered plan run %s (start=%s, horizon=%d days)", jobID, startDate.Format("2006-01-02"), horizonDays)
	return jobID, nil
}
