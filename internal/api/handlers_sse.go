package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/nats-io/nats.go"
	"github.com/pinggolf/loadplan-toolbox/internal/queue"
)

// PlanProgressEvent mirrors the worker's progress message shape.
type PlanProgressEvent struct {
	JobID          string `json:"jobId"`
	Status         string `json:"status"`
	CurrentStep    string `json:"currentStep,omitempty"`
	CompletedSteps int    `json:"completedSteps,omitempty"`
	TotalSteps     int    `json:"totalSteps,omitempty"`
	Error          string `json:"error,omitempty"`
}

// handlePlanProgressSSE streams a run's progress over Server-Sent Events.
func (s *Server) handlePlanProgressSSE(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]
	if jobID == "" {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)
	ctx := r.Context()

	rc.SetWriteDeadline(time.Now().Add(30 * time.Second))
	fmt.Fprintf(w, "event: connected\ndata: {\"message\": \"Connected to progress stream\"}\n\n")
	flusher.Flush()

	if run, err := s.db.GetPlanRun(ctx, jobID); err != nil {
		log.Printf("Failed to get plan run %s: %v", jobID, err)
	} else if run != nil {
		sendSSEEvent(w, flusher, rc, "progress", PlanProgressEvent{JobID: run.ID, Status: run.Status})
	}

	msgChan := make(chan *nats.Msg, 10)
	forward := func(msg *nats.Msg) {
		select {
		case msgChan <- msg:
		case <-ctx.Done():
		}
	}

	progressSub, err := s.natsManager.Subscribe(queue.GetPlanRunProgressSubject(jobID), forward)
	if err != nil {
		sendSSEEvent(w, flusher, rc, "error", map[string]string{"error": "Failed to subscribe to progress updates"})
		return
	}
	defer progressSub.Unsubscribe()

	completeSub, err := s.natsManager.Subscribe(queue.GetPlanRunCompleteSubject(jobID), forward)
	if err != nil {
		sendSSEEvent(w, flusher, rc, "error", map[string]string{"error": "Failed to subscribe to completion events"})
		return
	}
	defer completeSub.Unsubscribe()

	errorSub, err := s.natsManager.Subscribe(queue.GetPlanRunErrorSubject(jobID), forward)
	if err != nil {
		sendSSEEvent(w, flusher, rc, "error", map[string]string{"error": "Failed to subscribe to error events"})
		return
	}
	defer errorSub.Unsubscribe()

	heartbeat := time.NewTicker(5 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-msgChan:
			var update PlanProgressEvent
			if err := json.Unmarshal(msg.Data, &update); err != nil {
				log.Printf("Failed to parse progress update: %v", err)
				continue
			}

			eventType := "progress"
			switch update.Status {
			case "completed":
				eventType = "complete"
			case "failed":
				eventType = "error"
			}

			sendSSEEvent(w, flusher, rc, eventType, update)

			if update.Status == "completed" || update.Status == "failed" {
				time.Sleep(500 * time.Millisecond)
				return
			}

		case <-heartbeat.C:
			rc.SetWriteDeadline(time.Now().Add(30 * time.Second))
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

// sendSSEEvent writes one Server-Sent Event and extends the write deadline.
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, rc *http.ResponseController, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("Failed to marshal SSE data: %v", err)
		return
	}

	rc.SetWriteDeadline(time.Now().Add(30 * time.Second))
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, jsonData)
	flusher.Flush()
}
