package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pinggolf/loadplan-toolbox/internal/services"
)

// auditParams builds an audit log entry for an operator-facing mutation.
func auditParams(entityType, entityID, operation, userName string, metadata map[string]interface{}) services.AuditParams {
	return services.AuditParams{
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  operation,
		UserName:   userName,
		Metadata:   metadata,
	}
}

// AuditLogResponse is one audit entry for API responses.
type AuditLogResponse struct {
	Timestamp  string `json:"timestamp"`
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId,omitempty"`
	Operation  string `json:"operation"`
	UserName   string `json:"userName,omitempty"`
}

// handleListAudit returns recent audit log entries, optionally filtered by
// entity type and operation.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	entityType := r.URL.Query().Get("entityType")
	operation := r.URL.Query().Get("operation")

	logs, err := s.auditService.QueryAuditLog(r.Context(), entityType, operation, "", time.Time{}, time.Time{}, 100)
	if err != nil {
		http.Error(w, "Failed to load audit log", http.StatusInternalServerError)
		return
	}

	out := make([]AuditLogResponse, len(logs))
	for i, l := range logs {
		out[i] = AuditLogResponse{
			Timestamp:  l.Timestamp.Format(time.RFC3339),
			EntityType: l.EntityType,
			EntityID:   l.EntityID.String,
			Operation:  l.Operation,
			UserName:   l.UserName.String,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
