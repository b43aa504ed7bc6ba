package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mealsnap/backend/internal/models"
	"github.com/mealsnap/backend/internal/quantity"
)

// PipelineState is one step of the capture-to-entry flow.
type PipelineState string

const (
	StateCapturing   PipelineState = "capturing"
	StateIdentifying PipelineState = "identifying"
	StateReviewing   PipelineState = "reviewing"
	StateCalculating PipelineState = "calculating"
	StateReady       PipelineState = "ready"
	StateFailed      PipelineState = "failed"
)

var (
	// ErrAnalysisInFlight rejects a second identify/calculate request while
	// one is outstanding for the same pipeline.
	ErrAnalysisInFlight = errors.New("an analysis request is already in flight")
	// ErrNoItems blocks confirmation while the review list is empty.
	ErrNoItems = errors.New("at least one food item is required")
	// ErrInvalidState rejects an operation the current state does not allow.
	ErrInvalidState = errors.New("operation not allowed in current pipeline state")
)

// EntrySaver persists a finished entry draft. Save failures move the
// pipeline to Failed; they are never swallowed.
type EntrySaver interface {
	SaveEntry(ctx context.Context, entry *models.FoodEntry) (*models.FoodEntry, error)
}

// CalculateParams carries the user-supplied metadata attached when the
// confirmed items are turned into an entry.
type CalculateParams struct {
	ImageURI  string
	Timestamp int64 // epoch millis; zero means now, past values backdate the entry
	MealType  string
	Notes     string
}

// AnalysisPipeline drives one user's capture flow:
//
//	Capturing -> Identifying -> Reviewing -> Calculating -> Ready | Failed
//
// Identifying always reaches Reviewing because identification degrades to a
// fallback instead of failing. Only a missing credential or a failed save
// reaches Failed, and retry re-enters Reviewing.
type AnalysisPipeline struct {
	mu         sync.Mutex
	state      PipelineState
	generation uint64
	inFlight   bool
	session    *ReviewSession
	entry      *models.FoodEntry
	failure    error
}

// NewAnalysisPipeline starts in Capturing.
func NewAnalysisPipeline() *AnalysisPipeline {
	return &AnalysisPipeline{state: StateCapturing}
}

// State returns the current pipeline state.
func (p *AnalysisPipeline) State() PipelineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Session returns the review session, or nil before identification.
func (p *AnalysisPipeline) Session() *ReviewSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// Entry returns the saved entry once the pipeline is Ready.
func (p *AnalysisPipeline) Entry() *models.FoodEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entry
}

// Identify runs the first provider call and seeds the review session. A
// request while another call is outstanding returns ErrAnalysisInFlight.
// Re-identifying from Reviewing restarts the flow with a fresh session.
func (p *AnalysisPipeline) Identify(ctx context.Context, gateway *VisionService, encodedImage string) (IdentifyResult, error) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return IdentifyResult{}, ErrAnalysisInFlight
	}
	p.inFlight = true
	p.state = StateIdentifying
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	result := gateway.IdentifyFood(ctx, encodedImage)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	if p.generation != gen {
		// The user navigated away while the call was outstanding; drop the
		// stale result without touching state.
		log.Printf("[Pipeline] discarding stale identify result (generation %d)", gen)
		return result, nil
	}
	p.session = NewReviewSession(result.Items)
	p.state = StateReviewing
	return result, nil
}

// Calculate runs the second provider call over the confirmed items, builds
// the entry and saves it. Reviewing with a non-empty list is the only state
// it is allowed from.
func (p *AnalysisPipeline) Calculate(ctx context.Context, gateway *VisionService, saver EntrySaver, userID uuid.UUID, params CalculateParams) (*models.FoodEntry, error) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return nil, ErrAnalysisInFlight
	}
	if p.state != StateReviewing || p.session == nil {
		p.mu.Unlock()
		return nil, ErrInvalidState
	}
	items := p.session.Items()
	if len(items) == 0 {
		p.mu.Unlock()
		return nil, ErrNoItems
	}
	p.inFlight = true
	p.state = StateCalculating
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	result, err := gateway.CalculateNutrition(ctx, items)
	if err != nil {
		// Missing credential is a configuration problem; the user fixes it
		// in settings and retries from Reviewing.
		p.fail(gen, err)
		return nil, err
	}

	draft := BuildEntry(userID, items, result, params)
	saved, err := saver.SaveEntry(ctx, draft)
	if err != nil {
		p.fail(gen, err)
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	if p.generation != gen {
		log.Printf("[Pipeline] discarding stale calculate result (generation %d)", gen)
		return saved, nil
	}
	p.entry = saved
	p.state = StateReady
	return saved, nil
}

func (p *AnalysisPipeline) fail(gen uint64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	if p.generation != gen {
		return
	}
	p.state = StateFailed
	p.failure = err
}

// Retry returns a Failed pipeline to Reviewing so the user can confirm
// again.
func (p *AnalysisPipeline) Retry() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateFailed || p.session == nil {
		return ErrInvalidState
	}
	p.state = StateReviewing
	p.failure = nil
	return nil
}

// Abandon discards the current run, e.g. when the user navigates away. Any
// outstanding provider response becomes stale and is ignored on arrival.
func (p *AnalysisPipeline) Abandon() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.session = nil
	p.entry = nil
	p.failure = nil
	p.state = StateCapturing
}

// BuildEntry shapes a nutrition result into an entry draft. Total calories
// come from the provider; the nutrition summary is recomputed locally from
// the item nutrients so saved totals are always internally consistent.
func BuildEntry(userID uuid.UUID, confirmed []IdentifiedItem, result NutritionResult, params CalculateParams) *models.FoodEntry {
	quantities := make(map[string]string, len(confirmed))
	for _, item := range confirmed {
		quantities[item.Name] = item.Quantity
	}

	items := make([]models.FoodItem, len(result.FoodItems))
	var summary models.Nutrients
	for i, est := range result.FoodItems {
		weight := quantity.ParseWeight(est.Weight)
		portion := quantity.ParseQuantity(quantities[est.Name])

		nutrients := models.Nutrients{
			Protein: est.Nutrients.Protein,
			Carbs:   est.Nutrients.Carbs,
			Fat:     est.Nutrients.Fat,
			Fiber:   est.Nutrients.Fiber,
		}
		summary = summary.Add(nutrients)

		items[i] = models.FoodItem{
			ID:            uuid.New(),
			Name:          est.Name,
			Calories:      est.Calories,
			Weight:        weight.Amount,
			Unit:          weight.Unit,
			Nutrients:     nutrients,
			Confidence:    est.Confidence,
			PortionAmount: portion.Amount,
			PortionUnit:   portion.Unit,
		}
	}

	timestamp := params.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	return &models.FoodEntry{
		UserID:        userID,
		Timestamp:     timestamp,
		ImageURI:      params.ImageURI,
		TotalCalories: result.TotalCalories,
		Confidence:    result.Confidence,
		Summary:       summary,
		Items:         items,
		MealType:      params.MealType,
		Notes:         params.Notes,
		IsManual:      false,
	}
}

// PipelineManager tracks one pipeline per user for the HTTP layer.
type PipelineManager struct {
	mu        sync.Mutex
	pipelines map[uuid.UUID]*AnalysisPipeline
}

func NewPipelineManager() *PipelineManager {
	return &PipelineManager{pipelines: make(map[uuid.UUID]*AnalysisPipeline)}
}

// Get returns the user's pipeline, creating one on first use.
func (m *PipelineManager) Get(userID uuid.UUID) *AnalysisPipeline {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pipelines[userID]
	if !ok {
		p = NewAnalysisPipeline()
		m.pipelines[userID] = p
	}
	return p
}
