package api

import (
	"encoding/json"
	"net/http"

	"github.com/pinggolf/loadplan-toolbox/internal/ingest"
)

// ImportOrdersResponse reports how many rows were accepted and rejected.
type ImportOrdersResponse struct {
	Imported int               `json:"imported"`
	Errors   []ingest.RowError `json:"errors,omitempty"`
}

// handleImportOrders accepts a CSV upload of customer orders, upserting
// every well-formed row and reporting the rest back to the operator.
func (s *Server) handleImportOrders(w http.ResponseWriter, r *http.Request) {
	result, err := ingest.ImportOrders(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	imported := 0
	for _, row := range result.Rows {
		if err := s.db.UpsertOrderByProductCode(r.Context(), row.OrderID, row.ProductCode, row.DeliveryDate, row.OrderQuantity); err != nil {
			result.Errors = append(result.Errors, ingest.RowError{Message: "order " + row.OrderID + ": " + err.Error()})
			continue
		}
		imported++
	}

	s.auditService.Log(r.Context(), auditParams("order_import", "", "import", s.currentUserName(r),
		map[string]interface{}{"imported": imported, "rejected": len(result.Errors)}))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ImportOrdersResponse{
		Imported: imported,
		Errors:   result.Errors,
	})
}
