package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Queries provides access to all database operations.
type Queries struct {
	db *sql.DB
}

// New creates a new Queries instance.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// DB returns the underlying database connection.
func (q *Queries) DB() *sql.DB {
	return q.db
}

// Connect opens a connection pool to Postgres with the given limits and
// verifies it with a ping.
func Connect(databaseURL string, maxOpen, maxIdle int, connLifetime time.Duration) (*sql.DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxIdle)
	conn.SetConnMaxLifetime(connLifetime)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// ListTrucks returns the truck master, ordered by id for deterministic
// default-fleet ordering downstream.
func (q *Queries) ListTrucks(ctx context.Context) ([]Truck, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, deck_width_mm, deck_depth_mm, deck_height_mm, max_weight_kg,
		       default_use, arrival_day_offset, priority_product_codes,
		       departure_time, arrival_time
		FROM trucks
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list trucks: %w", err)
	}
	defer rows.Close()

	var out []Truck
	for rows.Next() {
		var t Truck
		var priorityCodes sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.DeckWidthMM, &t.DeckDepthMM, &t.DeckHeightMM,
			&t.MaxWeightKg, &t.DefaultUse, &t.ArrivalDayOffset, &priorityCodes,
			&t.DepartureTime, &t.ArrivalTime); err != nil {
			return nil, fmt.Errorf("scan truck: %w", err)
		}
		t.PriorityProductCodes = splitCSVList(priorityCodes)
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListContainers returns the container master, ordered by id.
func (q *Queries) ListContainers(ctx context.Context) ([]Container, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, width_mm, depth_mm, height_mm, max_gross_weight_kg, stackable, max_stack
		FROM containers
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	defer rows.Close()

	var out []Container
	for rows.Next() {
		var c Container
		if err := rows.Scan(&c.ID, &c.WidthMM, &c.DepthMM, &c.HeightMM, &c.MaxGrossWeightKg,
			&c.Stackable, &c.MaxStack); err != nil {
			return nil, fmt.Errorf("scan container: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListProducts returns the product master, ordered by id.
func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, code, name, capacity, container_id, used_truck_ids
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		var usedTruckIDs sql.NullString
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Capacity, &p.ContainerID, &usedTruckIDs); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.UsedTruckIDs = splitCSVIntList(usedTruckIDs)
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListOpenOrders returns customer orders with a delivery date inside
// [from, from+horizonDays) calendar days, ordered by id for determinism.
// Orders are not filtered by any delivery or shipment status.
func (q *Queries) ListOpenOrders(ctx context.Context, from time.Time, horizonDays int) ([]Order, error) {
	to := from.AddDate(0, 0, horizonDays)
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, product_id, delivery_date, order_quantity
		FROM customer_orders
		WHERE delivery_date >= $1 AND delivery_date < $2
		ORDER BY id
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list open orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.ProductID, &o.DeliveryDate, &o.OrderQuantity); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListHolidays returns holidays in [from, to], ordered by date.
func (q *Queries) ListHolidays(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT date, note FROM holidays
		WHERE date >= $1 AND date <= $2
		ORDER BY date
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.Date, &h.Note); err != nil {
			return nil, fmt.Errorf("scan holiday: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// AddHoliday inserts or replaces one non-working date.
func (q *Queries) AddHoliday(ctx context.Context, date time.Time, note string) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO holidays (date, note) VALUES ($1, $2)
		ON CONFLICT (date) DO UPDATE SET note = EXCLUDED.note
	`, date, sql.NullString{String: note, Valid: note != ""})
	return err
}

// RemoveHoliday deletes one non-working date, making it a working day again.
func (q *Queries) RemoveHoliday(ctx context.Context, date time.Time) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM holidays WHERE date = $1`, date)
	return err
}

func splitCSVList(ns sql.NullString) []string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	parts := strings.Split(ns.String, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitCSVIntList(ns sql.NullString) []int64 {
	strs := splitCSVList(ns)
	out := make([]int64, 0, len(strs))
	for _, s := range strs {
		var v int64
		if _, err := fmt.Sscanf(s, "%d", &v); err == nil {
			out = append(out, v)
		}
	}
	return out
}
