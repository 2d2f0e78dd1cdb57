package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
	"github.com/pinggolf/loadplan-toolbox/internal/calendar"
	"github.com/pinggolf/loadplan-toolbox/internal/config"
	"github.com/pinggolf/loadplan-toolbox/internal/db"
	"github.com/pinggolf/loadplan-toolbox/internal/loadplan"
	"github.com/pinggolf/loadplan-toolbox/internal/queue"
	"github.com/pinggolf/loadplan-toolbox/internal/services"
)

// PlanWorker takes triggered runs off the request path: it loads the
// masters and open orders, builds the working-day calendar, runs the
// planning core, and persists the result.
type PlanWorker struct {
	nats   *queue.Manager
	db     *db.Queries
	config *config.Config
}

// NewPlanWorker creates a new plan worker.
func NewPlanWorker(nats *queue.Manager, database *db.Queries, cfg *config.Config) *PlanWorker {
	return &PlanWorker{nats: nats, db: database, config: cfg}
}

// Start subscribes to triggered run requests. Multiple worker processes may
// share QueueGroupPlanWorkers so each run is handled exactly once.
func (w *PlanWorker) Start() error {
	_, err := w.nats.QueueSubscribe(
		queue.SubjectPlanRunRequested,
		queue.QueueGroupPlanWorkers,
		w.handleRunRequest,
	)
	if err != nil {
		return fmt.Errorf("subscribe to plan run requests: %w", err)
	}
	log.Println("Plan worker started and listening for run requests")
	return nil
}

func (w *PlanWorker) handleRunRequest(msg *nats.Msg) {
	var req services.PlanRunRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Printf("Failed to parse plan run request: %v", err)
		return
	}

	if err := w.HandleRunRequest(context.Background(), req); err != nil {
		log.Printf("Plan run %s failed: %v", req.JobID, err)
	}
}

// HandleRunRequest runs one triggered job end to end: load inputs, run the
// core, persist the result, publish progress.
func (w *PlanWorker) HandleRunRequest(ctx context.Context, req services.PlanRunRequest) error {
	ctx, cancel := context.WithTimeout(ctx, w.config.PlanRunTimeout)
	defer cancel()

	if err := w.db.StartPlanRun(ctx, req.JobID); err != nil {
		return fmt.Errorf("start plan run: %w", err)
	}

	w.publishProgress(req.JobID, "running", "Loading masters", 0, 4)

	trucks, err := w.db.ListTrucks(ctx)
	if err != nil {
		return w.fail(ctx, req.JobID, fmt.Errorf("load trucks: %w", err))
	}
	containers, err := w.db.ListContainers(ctx)
	if err != nil {
		return w.fail(ctx, req.JobID, fmt.Errorf("load containers: %w", err))
	}
	products, err := w.db.ListProducts(ctx)
	if err != nil {
		return w.fail(ctx, req.JobID, fmt.Errorf("load products: %w", err))
	}
	orders, err := w.db.ListOpenOrders(ctx, req.StartDate, req.HorizonDays)
	if err != nil {
		return w.fail(ctx, req.JobID, fmt.Errorf("load open orders: %w", err))
	}

	w.publishProgress(req.JobID, "running", "Building calendar", 1, 4)

	cal, err := calendar.LoadDBCalendar(ctx, w.db, req.StartDate, req.HorizonDays)
	if err != nil {
		return w.fail(ctx, req.JobID, fmt.Errorf("load calendar: %w", err))
	}

	w.publishProgress(req.JobID, "running", "Planning", 2, 4)

	result, err := loadplan.Plan(ctx, loadplan.Input{
		StartDate:  req.StartDate,
		Days:       req.HorizonDays,
		Orders:     toCoreOrders(orders),
		Products:   toCoreProducts(products),
		Containers: toCoreContainers(containers),
		Trucks:     toCoreTrucks(trucks),
		Calendar:   cal,
	})
	if err != nil {
		return w.fail(ctx, req.JobID, fmt.Errorf("run core: %w", err))
	}

	w.publishProgress(req.JobID, "running", "Persisting results", 3, 4)

	truckNameByID := make(map[loadplan.TruckID]string, len(trucks))
	for _, t := range trucks {
		truckNameByID[loadplan.TruckID(t.ID)] = t.Name
	}

	for _, day := range result.WorkingDates {
		key := day.Format("2006-01-02")
		dayPlan := result.DailyPlans[key]
		for _, trip := range dayPlan.Trucks {
			for _, item := range trip.Items {
				if err := w.db.InsertPlanItem(ctx, db.PlanItem{
					PlanRunID:         req.JobID,
					LoadingDate:       item.LoadingDate,
					TruckID:           int64(item.TruckID),
					TruckName:         truckNameByID[item.TruckID],
					ProductID:         int64(item.ProductID),
					ProductCode:       item.ProductCode,
					ContainerID:       int64(item.ContainerID),
					NumContainers:     item.NumContainers,
					TotalQuantity:     item.TotalQuantity,
					DeliveryDate:      item.DeliveryDate,
					IsAdvanced:        item.IsAdvanced(),
					OriginalDate:      item.OriginalDate,
					VolumeUtilization: trip.VolumeUtilizationPct,
					WeightUtilization: trip.WeightUtilizationPct,
				}); err != nil {
					return w.fail(ctx, req.JobID, fmt.Errorf("persist plan item: %w", err))
				}
			}
		}
		for _, warning := range dayPlan.Warnings {
			if err := w.db.InsertPlanWarning(ctx, db.PlanWarning{
				PlanRunID: req.JobID,
				Date:      day,
				Message:   warning,
			}); err != nil {
				return w.fail(ctx, req.JobID, fmt.Errorf("persist plan warning: %w", err))
			}
		}
	}

	for _, task := range result.UnloadedTasks {
		if err := w.db.InsertUnloadedTask(ctx, db.PlanUnloadedTask{
			PlanRunID:     req.JobID,
			LoadingDate:   task.LoadingDate,
			ProductID:     int64(task.Demand.ProductID),
			ProductCode:   task.Demand.ProductCode,
			ContainerID:   int64(task.Demand.ContainerID),
			NumContainers: task.Demand.NumContainers,
			TotalQuantity: task.Demand.TotalQuantity,
			DeliveryDate:  task.Demand.DeliveryDate,
		}); err != nil {
			return w.fail(ctx, req.JobID, fmt.Errorf("persist unloaded task: %w", err))
		}
	}

	if err := w.db.CompletePlanRun(ctx, req.JobID, result.Summary.TotalTrips, result.Summary.TotalWarnings,
		result.Summary.UnloadedCount, result.Summary.UseNonDefaultTrucks, result.Summary.Status); err != nil {
		return fmt.Errorf("complete plan run: %w", err)
	}

	w.publishComplete(req.JobID)
	log.Printf("Plan run %s complete: %d trips, %d warnings, %d unloaded", req.JobID,
		result.Summary.TotalTrips, result.Summary.TotalWarnings, result.Summary.UnloadedCount)
	return nil
}

func (w *PlanWorker) fail(ctx context.Context, jobID string, cause error) error {
	if err := w.db.FailPlanRun(ctx, jobID, cause.Error()); err != nil {
		log.Printf("Failed to record failure for plan run %s: %v", jobID, err)
	}
	w.publishError(jobID, cause.Error())
	return cause
}

type planProgressMessage struct {
	JobID          string `json:"jobId"`
	Status         string `json:"status"`
	CurrentStep    string `json:"currentStep"`
	CompletedSteps int    `json:"completedSteps"`
	TotalSteps     int    `json:"totalSteps"`
	Error          string `json:"error,omitempty"`
}

func (w *PlanWorker) publishProgress(jobID, status, step string, completed, total int) {
	data, err := json.Marshal(planProgressMessage{
		JobID: jobID, Status: status, CurrentStep: step, CompletedSteps: completed, TotalSteps: total,
	})
	if err != nil {
		log.Printf("Failed to marshal progress update for %s: %v", jobID, err)
		return
	}
	if err := w.nats.Publish(queue.GetPlanRunProgressSubject(jobID), data); err != nil {
		log.Printf("Failed to publish progress update for %s: %v", jobID, err)
	}
}

func (w *PlanWorker) publishComplete(jobID string) {
	data, err := json.Marshal(planProgressMessage{JobID: jobID, Status: "completed", CompletedSteps: 4, TotalSteps: 4})
	if err != nil {
		log.Printf("Failed to marshal completion for %s: %v", jobID, err)
		return
	}
	if err := w.nats.Publish(queue.GetPlanRunCompleteSubject(jobID), data); err != nil {
		log.Printf("Failed to publish completion for %s: %v", jobID, err)
	}
}

func (w *PlanWorker) publishError(jobID, errMsg string) {
	data, err := json.Marshal(planProgressMessage{JobID: jobID, Status: "failed", Error: errMsg})
	if err != nil {
		log.Printf("Failed to marshal error for %s: %v", jobID, err)
		return
	}
	if err := w.nats.Publish(queue.GetPlanRunErrorSubject(jobID), data); err != nil {
		log.Printf("Failed to publish error for %s: %v", jobID, err)
	}
}

func toCoreTrucks(trucks []db.Truck) []loadplan.Truck {
	out := make([]loadplan.Truck, 0, len(trucks))
	for _, t := range trucks {
		out = append(out, loadplan.Truck{
			ID:                   loadplan.TruckID(t.ID),
			Name:                 t.Name,
			DeckWidthMM:          t.DeckWidthMM,
			DeckDepthMM:          t.DeckDepthMM,
			DeckHeightMM:         t.DeckHeightMM,
			MaxWeightKg:          t.MaxWeightKg,
			DefaultUse:           t.DefaultUse,
			ArrivalDayOffset:     t.ArrivalDayOffset,
			PriorityProductCodes: t.PriorityProductCodes,
			DepartureTime:        t.DepartureTime.String,
			ArrivalTime:          t.ArrivalTime.String,
		})
	}
	return out
}

func toCoreContainers(containers []db.Container) []loadplan.Container {
	out := make([]loadplan.Container, 0, len(containers))
	for _, c := range containers {
		out = append(out, loadplan.Container{
			ID:               loadplan.ContainerID(c.ID),
			WidthMM:          c.WidthMM,
			DepthMM:          c.DepthMM,
			HeightMM:         c.HeightMM,
			MaxGrossWeightKg: c.MaxGrossWeightKg,
			Stackable:        c.Stackable,
			MaxStack:         c.MaxStack,
		})
	}
	return out
}

func toCoreProducts(products []db.Product) []loadplan.Product {
	out := make([]loadplan.Product, 0, len(products))
	for _, p := range products {
		truckIDs := make([]loadplan.TruckID, len(p.UsedTruckIDs))
		for i, id := range p.UsedTruckIDs {
			truckIDs[i] = loadplan.TruckID(id)
		}
		out = append(out, loadplan.Product{
			ID:           loadplan.ProductID(p.ID),
			Code:         p.Code,
			Capacity:     p.Capacity,
			ContainerID:  loadplan.ContainerID(p.ContainerID),
			UsedTruckIDs: truckIDs,
		})
	}
	return out
}

func toCoreOrders(orders []db.Order) []loadplan.Order {
	out := make([]loadplan.Order, len(orders))
	for i, o := range orders {
		out[i] = loadplan.Order{
			ID:            loadplan.OrderID(o.ID),
			ProductID:     loadplan.ProductID(o.ProductID),
			DeliveryDate:  o.DeliveryDate,
			OrderQuantity: o.OrderQuantity,
		}
	}
	return out
}
