package db

import (
	"database/sql"
	"encoding/json"
	"time"
)

// ========================================
// MASTER DATA MODELS
// ========================================

// Truck is the persisted row shape for the truck master.
type Truck struct {
	ID                   int64
	Name                 string
	DeckWidthMM          int64
	DeckDepthMM          int64
	DeckHeightMM         int64
	MaxWeightKg          float64
	DefaultUse           bool
	ArrivalDayOffset     int
	PriorityProductCodes []string
	DepartureTime        sql.NullString
	ArrivalTime          sql.NullString
}

// Container is the persisted row shape for the container master.
type Container struct {
	ID               int64
	WidthMM          int64
	DepthMM          int64
	HeightMM         int64
	MaxGrossWeightKg float64
	Stackable        bool
	MaxStack         int
}

// Product is the persisted row shape for the product master.
type Product struct {
	ID           int64
	Code         string
	Name         sql.NullString
	Capacity     int
	ContainerID  int64
	UsedTruckIDs []int64
}

// Order is an outstanding delivery commitment loaded from customer orders.
type Order struct {
	ID            string
	ProductID     int64
	DeliveryDate  time.Time
	OrderQuantity int
}

// Holiday is one non-working calendar date.
type Holiday struct {
	Date time.Time
	Note sql.NullString
}

// ========================================
// PLAN RUN MODELS
// ========================================

// PlanRun is the header row for one triggered planning run
// (table `plan_runs`).
type PlanRun struct {
	ID                  string
	StartDate           time.Time
	HorizonDays         int
	TotalTrips          int
	TotalWarnings       int
	UnloadedCount       int
	Status              string
	UseNonDefaultTrucks bool
	CreatedAt           time.Time
	CreatedBy           sql.NullString
	CompletedAt         sql.NullTime
	ErrorMessage        sql.NullString
}

// PlanItem is one loaded line in a persisted plan (table `plan_items`),
// carrying exactly the stable field names a CSV export or UI table needs.
type PlanItem struct {
	PlanRunID         string
	LoadingDate       time.Time
	TruckID           int64
	TruckName         string
	ProductID         int64
	ProductCode       string
	ContainerID       int64
	NumContainers     int
	TotalQuantity     int
	DeliveryDate      time.Time
	IsAdvanced        bool
	OriginalDate      time.Time
	VolumeUtilization float64
	WeightUtilization float64
}

// PlanWarning is one free-form warning raised for a working day during a
// run (table `warnings`).
type PlanWarning struct {
	PlanRunID string
	Date      time.Time
	Message   string
}

// PlanUnloadedTask is one residual demand a run could not place (table
// `unloaded_tasks`).
type PlanUnloadedTask struct {
	PlanRunID     string
	LoadingDate   time.Time
	ProductID     int64
	ProductCode   string
	ContainerID   int64
	NumContainers int
	TotalQuantity int
	DeliveryDate  time.Time
}

// ========================================
// AUDIT LOG MODELS
// ========================================

// AuditLog represents an audit log entry for a plan-run action.
type AuditLog struct {
	ID         int64           `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	UserID     sql.NullString  `json:"user_id,omitempty"`
	UserName   sql.NullString  `json:"user_name,omitempty"`
	EntityType string          `json:"entity_type"`
	EntityID   sql.NullString  `json:"entity_id,omitempty"`
	Operation  string          `json:"operation"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	IPAddress  sql.NullString  `json:"ip_address,omitempty"`
	UserAgent  sql.NullString  `json:"user_agent,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CreateAuditLogParams contains parameters for creating an audit log entry.
type CreateAuditLogParams struct {
	EntityType string
	EntityID   sql.NullString
	Operation  string
	UserID     sql.NullString
	UserName   sql.NullString
	Metadata   json.RawMessage
	IPAddress  sql.NullString
	UserAgent  sql.NullString
}

// GetAuditLogsParams contains parameters for querying audit logs.
type GetAuditLogsParams struct {
	EntityType sql.NullString
	Operation  sql.NullString
	UserID     sql.NullString
	StartTime  sql.NullTime
	EndTime    sql.NullTime
	Limit      int32
}
