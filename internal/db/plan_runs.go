package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreatePlanRun inserts a new plan run header in the "pending" state.
func (q *Queries) CreatePlanRun(ctx context.Context, id string, startDate time.Time, horizonDays int, createdBy string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO plan_runs (id, start_date, horizon_days, status, created_by)
		VALUES ($1, $2, $3, 'pending', $4)
	`, id, startDate, horizonDays, sql.NullString{String: createdBy, Valid: createdBy != ""})
	if err != nil {
		return fmt.Errorf("create plan run: %w", err)
	}
	return nil
}

// StartPlanRun marks a run as running.
func (q *Queries) StartPlanRun(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `UPDATE plan_runs SET status = 'running' WHERE id = $1`, id)
	return err
}

// CompletePlanRun records the final summary of a successful run.
func (q *Queries) CompletePlanRun(ctx context.Context, id string, totalTrips, totalWarnings, unloadedCount int, useNonDefaultTrucks bool, status string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE plan_runs
		SET status = $1,
		    total_trips = $2,
		    total_warnings = $3,
		    unloaded_count = $4,
		    use_non_default_trucks = $5,
		    completed_at = NOW()
		WHERE id = $6
	`, status, totalTrips, totalWarnings, unloadedCount, useNonDefaultTrucks, id)
	if err != nil {
		return fmt.Errorf("complete plan run: %w", err)
	}
	return nil
}

// FailPlanRun marks a run as failed with an error message.
func (q *Queries) FailPlanRun(ctx context.Context, id, errMsg string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE plan_runs SET status = 'failed', error_message = $1, completed_at = NOW() WHERE id = $2
	`, errMsg, id)
	return err
}

// GetPlanRun fetches one run header by id.
func (q *Queries) GetPlanRun(ctx context.Context, id string) (*PlanRun, error) {
	var r PlanRun
	err := q.db.QueryRowContext(ctx, `
		SELECT id, start_date, horizon_days, total_trips, total_warnings, unloaded_count,
		       status, use_non_default_trucks, created_at, created_by, completed_at, error_message
		FROM plan_runs WHERE id = $1
	`, id).Scan(&r.ID, &r.StartDate, &r.HorizonDays, &r.TotalTrips, &r.TotalWarnings, &r.UnloadedCount,
		&r.Status, &r.UseNonDefaultTrucks, &r.CreatedAt, &r.CreatedBy, &r.CompletedAt, &r.ErrorMessage)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan run %s: %w", id, err)
	}
	return &r, nil
}
