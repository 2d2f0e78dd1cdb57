package db

import (
	"context"
	"fmt"
)

// InsertPlanItem persists one loaded line of a run.
func (q *Queries) InsertPlanItem(ctx context.Context, item PlanItem) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO plan_items (
			plan_run_id, loading_date, truck_id, truck_name, product_id, product_code,
			container_id, num_containers, total_quantity, delivery_date,
			is_advanced, original_date, volume_utilization, weight_utilization
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, item.PlanRunID, item.LoadingDate, item.TruckID, item.TruckName, item.ProductID, item.ProductCode,
		item.ContainerID, item.NumContainers, item.TotalQuantity, item.DeliveryDate,
		item.IsAdvanced, item.OriginalDate, item.VolumeUtilization, item.WeightUtilization)
	if err != nil {
		return fmt.Errorf("insert plan item: %w", err)
	}
	return nil
}

// InsertPlanWarning persists one free-form warning for a working day.
func (q *Queries) InsertPlanWarning(ctx context.Context, w PlanWarning) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO warnings (plan_run_id, warning_date, message) VALUES ($1, $2, $3)
	`, w.PlanRunID, w.Date, w.Message)
	if err != nil {
		return fmt.Errorf("insert plan warning: %w", err)
	}
	return nil
}

// InsertUnloadedTask persists one residual demand that could not be placed.
func (q *Queries) InsertUnloadedTask(ctx context.Context, t PlanUnloadedTask) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO unloaded_tasks (
			plan_run_id, loading_date, product_id, product_code, container_id,
			num_containers, total_quantity, delivery_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.PlanRunID, t.LoadingDate, t.ProductID, t.ProductCode, t.ContainerID,
		t.NumContainers, t.TotalQuantity, t.DeliveryDate)
	if err != nil {
		return fmt.Errorf("insert unloaded task: %w", err)
	}
	return nil
}

// ListPlanItems returns every persisted item for a run, ordered the way
// the original's detail query does: loading date, then truck.
func (q *Queries) ListPlanItems(ctx context.Context, planRunID string) ([]PlanItem, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT plan_run_id, loading_date, truck_id, truck_name, product_id, product_code,
		       container_id, num_containers, total_quantity, delivery_date,
		       is_advanced, original_date, volume_utilization, weight_utilization
		FROM plan_items
		WHERE plan_run_id = $1
		ORDER BY loading_date, truck_id
	`, planRunID)
	if err != nil {
		return nil, fmt.Errorf("list plan items: %w", err)
	}
	defer rows.Close()

	var out []PlanItem
	for rows.Next() {
		var it PlanItem
		if err := rows.Scan(&it.PlanRunID, &it.LoadingDate, &it.TruckID, &it.TruckName, &it.ProductID,
			&it.ProductCode, &it.ContainerID, &it.NumContainers, &it.TotalQuantity, &it.DeliveryDate,
			&it.IsAdvanced, &it.OriginalDate, &it.VolumeUtilization, &it.WeightUtilization); err != nil {
			return nil, fmt.Errorf("scan plan item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListPlanWarnings returns every warning raised during a run.
func (q *Queries) ListPlanWarnings(ctx context.Context, planRunID string) ([]PlanWarning, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT plan_run_id, warning_date, message FROM warnings WHERE plan_run_id = $1 ORDER BY warning_date
	`, planRunID)
	if err != nil {
		return nil, fmt.Errorf("list plan warnings: %w", err)
	}
	defer rows.Close()

	var out []PlanWarning
	for rows.Next() {
		var w PlanWarning
		if err := rows.Scan(&w.PlanRunID, &w.Date, &w.Message); err != nil {
			return nil, fmt.Errorf("scan plan warning: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// ListUnloadedTasks returns every residual demand recorded for a run.
func (q *Queries) ListUnloadedTasks(ctx context.Context, planRunID string) ([]PlanUnloadedTask, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT plan_run_id, loading_date, product_id, product_code, container_id,
		       num_containers, total_quantity, delivery_date
		FROM unloaded_tasks WHERE plan_run_id = $1 ORDER BY loading_date
	`, planRunID)
	if err != nil {
		return nil, fmt.Errorf("list unloaded tasks: %w", err)
	}
	defer rows.Close()

	var out []PlanUnloadedTask
	for rows.Next() {
		var t PlanUnloadedTask
		if err := rows.Scan(&t.PlanRunID, &t.LoadingDate, &t.ProductID, &t.ProductCode, &t.ContainerID,
			&t.NumContainers, &t.TotalQuantity, &t.DeliveryDate); err != nil {
			return nil, fmt.Errorf("scan unloaded task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
