package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pinggolf/loadplan-toolbox/internal/db"
)

// ExportService renders a persisted plan's line items back out as CSV for
// operator download.
type ExportService struct {
	db *db.Queries
}

// NewExportService creates a new export service.
func NewExportService(queries *db.Queries) *ExportService {
	return &ExportService{db: queries}
}

var planItemsCSVHeader = []string{
	"loading_date", "truck_id", "truck_name", "product_id", "product_code",
	"container_id", "num_containers", "total_quantity", "delivery_date",
	"is_advanced", "original_date", "volume_utilization", "weight_utilization",
}

// WritePlanCSV streams the plan_items for planRunID as CSV to w.
func (s *ExportService) WritePlanCSV(ctx context.Context, w io.Writer, planRunID string) error {
	items, err := s.db.ListPlanItems(ctx, planRunID)
	if err != nil {
		return fmt.Errorf("list plan items for export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(planItemsCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	const dateLayout = "2006-01-02"
	for _, item := range items {
		record := []string{
			item.LoadingDate.Format(dateLayout),
			fmt.Sprintf("%d", item.TruckID),
			item.TruckName,
			fmt.Sprintf("%d", item.ProductID),
			item.ProductCode,
			fmt.Sprintf("%d", item.ContainerID),
			fmt.Sprintf("%d", item.NumContainers),
			fmt.Sprintf("%d", item.TotalQuantity),
			item.DeliveryDate.Format(dateLayout),
			fmt.Sprintf("%t", item.IsAdvanced),
			item.OriginalDate.Format(dateLayout),
			fmt.Sprintf("%.1f", item.VolumeUtilization),
			fmt.Sprintf("%.1f", item.WeightUtilization),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
