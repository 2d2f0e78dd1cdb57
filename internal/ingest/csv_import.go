// Package ingest parses operator-supplied CSV uploads into the order
// records the planning core consumes, rejecting malformed rows with their
// line number rather than silently dropping them — the operator is present
// at upload time to fix the file, unlike a demand the core itself drops
// mid-run.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// OrderRow is one validated row of an order upload.
type OrderRow struct {
	OrderID       string
	ProductCode   string
	DeliveryDate  time.Time
	OrderQuantity int
}

// RowError pairs a CSV line number with why that row was rejected.
type RowError struct {
	Line    int
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ImportResult holds every row that parsed cleanly plus every row that
// didn't, so the caller can report both instead of aborting on the first
// bad line.
type ImportResult struct {
	Rows   []OrderRow
	Errors []RowError
}

const dateLayout = "2006-01-02"

// ImportOrders reads a CSV with header "order_id,product_code,delivery_date,order_quantity"
// and validates every data row independently.
func ImportOrders(r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col, err := columnIndex(header, "order_id", "product_code", "delivery_date", "order_quantity")
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}

		row, rowErr := parseOrderRow(record, col, line)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

func parseOrderRow(record []string, col map[string]int, line int) (OrderRow, *RowError) {
	orderID := strings.TrimSpace(record[col["order_id"]])
	if orderID == "" {
		return OrderRow{}, &RowError{Line: line, Message: "order_id is required"}
	}

	productCode := strings.TrimSpace(record[col["product_code"]])
	if productCode == "" {
		return OrderRow{}, &RowError{Line: line, Message: "product_code is required"}
	}

	dateStr := strings.TrimSpace(record[col["delivery_date"]])
	deliveryDate, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return OrderRow{}, &RowError{Line: line, Message: fmt.Sprintf("invalid delivery_date %q, expected YYYY-MM-DD", dateStr)}
	}

	qtyStr := strings.TrimSpace(record[col["order_quantity"]])
	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty <= 0 {
		return OrderRow{}, &RowError{Line: line, Message: fmt.Sprintf("invalid order_quantity %q, must be a positive integer", qtyStr)}
	}

	return OrderRow{
		OrderID:       orderID,
		ProductCode:   productCode,
		DeliveryDate:  deliveryDate,
		OrderQuantity: qty,
	}, nil
}

func columnIndex(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return idx, nil
}
