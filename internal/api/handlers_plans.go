package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// TriggerPlanRequest is the trigger endpoint's request body.
type TriggerPlanRequest struct {
	StartDate   string `json:"startDate"`
	HorizonDays int    `json:"horizonDays"`
	TriggeredBy string `json:"triggeredBy,omitempty"`
}

// TriggerPlanResponse is returned immediately; the run itself proceeds
// asynchronously.
type TriggerPlanResponse struct {
	JobID string `json:"jobId"`
}

// handleTriggerPlan validates and enqueues a new planning run.
func (s *Server) handleTriggerPlan(w http.ResponseWriter, r *http.Request) {
	var req TriggerPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		http.Error(w, "startDate must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	if req.HorizonDays == 0 {
		req.HorizonDays = s.config.PlanningHorizonDays
	}

	triggeredBy := req.TriggeredBy
	if triggeredBy == "" {
		triggeredBy = s.currentUserName(r)
	}

	jobID, err := s.planningService.TriggerRun(r.Context(), startDate, req.HorizonDays, triggeredBy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(TriggerPlanResponse{JobID: jobID})
}

// PlanResponse is the persisted shape of one run, re-hydrated from its
// detail tables for the API consumer.
type PlanResponse struct {
	ID                  string              `json:"id"`
	StartDate           string              `json:"startDate"`
	HorizonDays         int                 `json:"horizonDays"`
	Status              string              `json:"status"`
	TotalTrips          int                 `json:"totalTrips"`
	TotalWarnings       int                 `json:"totalWarnings"`
	UnloadedCount       int                 `json:"unloadedCount"`
	UseNonDefaultTrucks bool                `json:"useNonDefaultTrucks"`
	CreatedAt           string              `json:"createdAt"`
	CreatedBy           string              `json:"createdBy,omitempty"`
	CompletedAt         string              `json:"completedAt,omitempty"`
	ErrorMessage        string              `json:"errorMessage,omitempty"`
	Items               []PlanItemResponse  `json:"items"`
	Warnings            []WarningResponse   `json:"warnings"`
	UnloadedTasks       []UnloadedTaskResponse `json:"unloadedTasks"`
}

// PlanItemResponse carries every plan_items column named in §6, under
// camelCase JSON keys.
type PlanItemResponse struct {
	LoadingDate        string  `json:"loadingDate"`
	TruckID            int64   `json:"truckId"`
	TruckName          string  `json:"truckName"`
	ProductID          int64   `json:"productId"`
	ProductCode        string  `json:"productCode"`
	ContainerID        int64   `json:"containerId"`
	NumContainers      int     `json:"numContainers"`
	TotalQuantity      int     `json:"totalQuantity"`
	DeliveryDate       string  `json:"deliveryDate"`
	IsAdvanced         bool    `json:"isAdvanced"`
	OriginalDate       string  `json:"originalDate"`
	VolumeUtilization  float64 `json:"volumeUtilization"`
	WeightUtilization  float64 `json:"weightUtilization"`
}

// WarningResponse is one free-form warning for a working day.
type WarningResponse struct {
	Date    string `json:"date"`
	Message string `json:"message"`
}

// UnloadedTaskResponse is one residual demand a run could not place.
type UnloadedTaskResponse struct {
	LoadingDate   string `json:"loadingDate"`
	ProductID     int64  `json:"productId"`
	ProductCode   string `json:"productCode"`
	ContainerID   int64  `json:"containerId"`
	NumContainers int    `json:"numContainers"`
	TotalQuantity int    `json:"totalQuantity"`
	DeliveryDate  string `json:"deliveryDate"`
}

const isoDate = "2006-01-02"

// handleGetPlan returns a persisted plan in full.
func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, err := s.db.GetPlanRun(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to load plan run", http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.Error(w, "Plan run not found", http.StatusNotFound)
		return
	}

	items, err := s.db.ListPlanItems(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to load plan items", http.StatusInternalServerError)
		return
	}
	warnings, err := s.db.ListPlanWarnings(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to load plan warnings", http.StatusInternalServerError)
		return
	}
	unloaded, err := s.db.ListUnloadedTasks(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to load unloaded tasks", http.StatusInternalServerError)
		return
	}

	resp := PlanResponse{
		ID:                  run.ID,
		StartDate:           run.StartDate.Format(isoDate),
		HorizonDays:         run.HorizonDays,
		Status:              run.Status,
		TotalTrips:          run.TotalTrips,
		TotalWarnings:       run.TotalWarnings,
		UnloadedCount:       run.UnloadedCount,
		UseNonDefaultTrucks: run.UseNonDefaultTrucks,
		CreatedAt:           run.CreatedAt.Format(time.RFC3339),
		CreatedBy:           run.CreatedBy.String,
		ErrorMessage:        run.ErrorMessage.String,
	}
	if run.CompletedAt.Valid {
		resp.CompletedAt = run.CompletedAt.Time.Format(time.RFC3339)
	}

	for _, it := range items {
		resp.Items = append(resp.Items, PlanItemResponse{
			LoadingDate:       it.LoadingDate.Format(isoDate),
			TruckID:           it.TruckID,
			TruckName:         it.TruckName,
			ProductID:         it.ProductID,
			ProductCode:       it.ProductCode,
			ContainerID:       it.ContainerID,
			NumContainers:     it.NumContainers,
			TotalQuantity:     it.TotalQuantity,
			DeliveryDate:      it.DeliveryDate.Format(isoDate),
			IsAdvanced:        it.IsAdvanced,
			OriginalDate:      it.OriginalDate.Format(isoDate),
			VolumeUtilization: it.VolumeUtilization,
			WeightUtilization: it.WeightUtilization,
		})
	}
	for _, wr := range warnings {
		resp.Warnings = append(resp.Warnings, WarningResponse{
			Date:    wr.Date.Format(isoDate),
			Message: wr.Message,
		})
	}
	for _, t := range unloaded {
		resp.UnloadedTasks = append(resp.UnloadedTasks, UnloadedTaskResponse{
			LoadingDate:   t.LoadingDate.Format(isoDate),
			ProductID:     t.ProductID,
			ProductCode:   t.ProductCode,
			ContainerID:   t.ContainerID,
			NumContainers: t.NumContainers,
			TotalQuantity: t.TotalQuantity,
			DeliveryDate:  t.DeliveryDate.Format(isoDate),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleExportPlanCSV renders a persisted plan's items as CSV into a buffer
// and writes the response only once rendering has succeeded.
func (s *Server) handleExportPlanCSV(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var buf bytes.Buffer
	if err := s.exportService.WritePlanCSV(r.Context(), &buf, id); err != nil {
		http.Error(w, "Failed to export plan", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\"plan-"+id+".csv\"")
	w.Write(buf.Bytes())
}
