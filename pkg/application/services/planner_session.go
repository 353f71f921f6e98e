package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vsinha/sop/pkg/application/dto"
	"github.com/vsinha/sop/pkg/domain/entities"
	domainservices "github.com/vsinha/sop/pkg/domain/services"
	"github.com/vsinha/sop/pkg/infrastructure/events"
)

// PlannerSession is one planner's interactive state: the active scenario,
// the simulation month being adjusted, the demand edit buffer and the
// last narration. It is safe for concurrent use.
type PlannerSession struct {
	store      *ScenarioStore
	narrator   Narrator
	eventStore events.EventStore
	metrics    MetricsRecorder
	logger     zerolog.Logger

	defaultLine  entities.ProductLine
	defaultMonth *entities.PlanningMonth
	now          func() time.Time

	mu        sync.Mutex
	line      entities.ProductLine
	month     entities.PlanningMonth
	key       entities.ScenarioKey
	viewMode  entities.ViewMode
	series    []entities.DemandForecast
	simMonth  string
	narration string
	analyzing bool
	editor    *DemandEditor
	// generation changes on every context switch and plan edit so a
	// narration of an earlier plan can be recognized and dropped
	generation uint64
}

// SessionOption configures a PlannerSession
type SessionOption func(*PlannerSession)

// WithLogger sets the session logger
func WithLogger(logger zerolog.Logger) SessionOption {
	return func(s *PlannerSession) { s.logger = logger }
}

// WithSessionEvents publishes context switches and narrations to es
func WithSessionEvents(es events.EventStore) SessionOption {
	return func(s *PlannerSession) { s.eventStore = es }
}

// WithMetrics records narration outcomes on m
func WithMetrics(m MetricsRecorder) SessionOption {
	return func(s *PlannerSession) { s.metrics = m }
}

// WithDefaultContext sets the scenario selected when the session starts
func WithDefaultContext(line entities.ProductLine, month entities.PlanningMonth) SessionOption {
	return func(s *PlannerSession) {
		s.defaultLine = line
		s.defaultMonth = &month
	}
}

// WithDefaultProductLine sets the starting product line and keeps the current month
func WithDefaultProductLine(line entities.ProductLine) SessionOption {
	return func(s *PlannerSession) { s.defaultLine = line }
}

// WithClock overrides the clock used to pick the current planning month
func WithClock(now func() time.Time) SessionOption {
	return func(s *PlannerSession) { s.now = now }
}

// NewPlannerSession creates a session and resolves its starting scenario
func NewPlannerSession(store *ScenarioStore, narrator Narrator, opts ...SessionOption) (*PlannerSession, error) {
	s := &PlannerSession{
		store:       store,
		narrator:    narrator,
		metrics:     noopMetrics{},
		logger:      zerolog.Nop(),
		defaultLine: entities.Standard,
		now:         time.Now,
		viewMode:    entities.Stacked,
	}
	for _, opt := range opts {
		opt(s)
	}

	month := entities.NewPlanningMonth(s.now())
	if s.defaultMonth != nil {
		month = *s.defaultMonth
	}

	if err := s.SelectContext(s.defaultLine, month); err != nil {
		return nil, err
	}
	return s, nil
}

// SelectContext switches the active scenario. Both caches are re-resolved
// for the new key; the narration and the demand edit buffer are dropped.
// The previous key's cache is never written.
func (s *PlannerSession) SelectContext(line entities.ProductLine, month entities.PlanningMonth) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selectContextLocked(line, month)
}

func (s *PlannerSession) selectContextLocked(line entities.ProductLine, month entities.PlanningMonth) error {
	key := entities.NewScenarioKey(line, month)

	series, err := s.store.ResolveDemand(key)
	if err != nil {
		return err
	}
	if _, err := s.store.ResolveConfigs(key, series); err != nil {
		return err
	}

	previous := s.key
	s.line = line
	s.month = month
	s.key = key
	s.series = series
	s.simMonth = ""
	if len(series) > 0 {
		s.simMonth = series[0].Month
	}
	s.editor = nil
	s.invalidateNarrationLocked()

	s.publish(events.NewContextSwitchedEvent(previous, key))
	s.logger.Debug().Str("from", string(previous)).Str("to", string(key)).Msg("scenario context switched")
	return nil
}

// SelectProductLine switches the product line and keeps the planning month
func (s *PlannerSession) SelectProductLine(line entities.ProductLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selectContextLocked(line, s.month)
}

// SelectPlanningMonth switches the planning month and keeps the product line
func (s *PlannerSession) SelectPlanningMonth(month entities.PlanningMonth) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selectContextLocked(s.line, month)
}

// SetViewMode selects how backlog counts toward the capacity gap
func (s *PlannerSession) SetViewMode(mode entities.ViewMode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.viewMode = mode
}

// SelectSimulationMonth picks the month whose devices UpdateDevice edits
func (s *PlannerSession) SelectSimulationMonth(label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, forecast := range s.series {
		if forecast.Month == label {
			s.simMonth = label
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownMonth, label)
}

// SimulationDevices returns the working devices of the selected month
func (s *PlannerSession) SimulationDevices() ([]entities.DeviceConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.store.WorkingConfigs(s.key)
	if err != nil {
		return nil, err
	}
	return configs[s.simMonth], nil
}

// UpdateDevice sets one parameter of a device in the selected month's
// working copy. Unparsable input counts as 0 and the result is clamped.
func (s *PlannerSession) UpdateDevice(deviceID int, field DeviceField, raw string) ([]entities.DeviceConfig, error) {
	if _, err := ParseDeviceField(string(field)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.store.WorkingConfigs(s.key)
	if err != nil {
		return nil, err
	}

	devices := configs[s.simMonth]
	found := false
	for i := range devices {
		if devices[i].ID == deviceID {
			devices[i] = applyDeviceField(devices[i], field, ParseDeviceValue(raw))
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %d in %s", ErrUnknownDevice, deviceID, s.simMonth)
	}

	if err := s.store.SetMonthConfig(s.key, s.simMonth, devices); err != nil {
		return nil, err
	}
	s.invalidateNarrationLocked()
	return entities.CloneDevices(devices), nil
}

// SaveSimulation writes every month of the working copy to the cache
func (s *PlannerSession) SaveSimulation() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.store.WorkingConfigs(s.key)
	if err != nil {
		return err
	}
	return s.store.SaveConfigs(s.key, configs)
}

// OpenDemandEditor returns the demand edit buffer, creating it from the
// current series on first use
func (s *PlannerSession) OpenDemandEditor() *DemandEditor {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editor == nil {
		s.editor = newDemandEditor(s.series)
	}
	return s.editor
}

// DemandEditor returns the open edit buffer, if any
func (s *PlannerSession) DemandEditor() (*DemandEditor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.editor, s.editor != nil
}

// CloseDemandEditor discards the edit buffer
func (s *PlannerSession) CloseDemandEditor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editor = nil
}

// SaveDemandEdits saves the edit buffer as the scenario's demand series.
// Months new to the series get default devices; unsaved simulation edits
// of existing months are kept.
func (s *PlannerSession) SaveDemandEdits() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editor == nil {
		return ErrEditorClosed
	}

	rows := s.editor.Rows()
	if err := s.store.SaveDemand(s.key, rows); err != nil {
		return err
	}
	if err := s.store.BackfillWorking(s.key, rows); err != nil {
		return err
	}
	s.editor.markSaved()

	s.series = rows
	if !hasMonth(rows, s.simMonth) {
		s.simMonth = ""
		if len(rows) > 0 {
			s.simMonth = rows[0].Month
		}
	}
	s.invalidateNarrationLocked()
	return nil
}

// invalidateNarrationLocked drops the narration of a plan that no longer
// exists, including one still being generated
func (s *PlannerSession) invalidateNarrationLocked() {
	s.narration = ""
	s.generation++
}

func hasMonth(series []entities.DemandForecast, label string) bool {
	for _, f := range series {
		if f.Month == label {
			return true
		}
	}
	return false
}

// Plan derives the chart series and KPIs of the active scenario from its
// demand and working device configurations
func (s *PlannerSession) Plan() (dto.PlanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.planLocked()
}

func (s *PlannerSession) planLocked() (dto.PlanResult, error) {
	configs, err := s.store.WorkingConfigs(s.key)
	if err != nil {
		return dto.PlanResult{}, err
	}

	chart, kpi := domainservices.DeriveFor(s.line, s.series, configs, s.viewMode)
	gaps := make([]entities.Quantity, len(chart))
	for i, point := range chart {
		gaps[i] = domainservices.MonthlyGap(point, s.viewMode)
	}

	return dto.PlanResult{
		Key:           s.key,
		ProductLine:   s.line,
		PlanningMonth: s.month,
		ViewMode:      s.viewMode,
		GapLabel:      s.viewMode.GapLabel(),
		Chart:         chart,
		MonthlyGaps:   gaps,
		KPI:           kpi,
	}, nil
}

// Analyze requests a narration of the current plan. Only one request may
// be in flight per session; the busy flag is released on every return.
// A result for a scenario that is no longer active is returned as stale
// and not kept.
func (s *PlannerSession) Analyze(ctx context.Context) (dto.NarrationResult, error) {
	s.mu.Lock()
	if s.analyzing {
		s.mu.Unlock()
		return dto.NarrationResult{}, ErrAnalysisInProgress
	}
	plan, err := s.planLocked()
	if err != nil {
		s.mu.Unlock()
		return dto.NarrationResult{}, err
	}
	s.analyzing = true
	generation := s.generation
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.analyzing = false
		s.mu.Unlock()
	}()

	result := s.narrator.Narrate(ctx, plan.Chart, plan.ProductLine.String())
	s.metrics.NarrationCompleted(result.Outcome)

	s.mu.Lock()
	if generation == s.generation {
		s.narration = result.Text
	} else {
		result.Stale = true
		s.logger.Info().Str("key", string(plan.Key)).Msg("discarding narration of a superseded plan")
	}
	s.mu.Unlock()

	s.publish(events.NewNarrationCompletedEvent(plan.Key, result.Outcome != OutcomeSuccess))
	return result, nil
}

// Snapshot returns the session state for presentation
func (s *PlannerSession) Snapshot() dto.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	months := make([]string, 0, len(s.series))
	for _, f := range s.series {
		months = append(months, f.Month)
	}

	return dto.SessionSnapshot{
		Key:             s.key,
		ProductLine:     s.line,
		PlanningMonth:   s.month,
		ViewMode:        s.viewMode,
		Months:          months,
		SimulationMonth: s.simMonth,
		Narration:       s.narration,
		Analyzing:       s.analyzing,
		EditorOpen:      s.editor != nil,
		SavedDemand:     s.store.HasSavedDemand(s.key),
		SavedConfigs:    s.store.HasSavedConfigs(s.key),
	}
}

func (s *PlannerSession) publish(event events.Event) {
	if s.eventStore == nil {
		return
	}
	if err := s.eventStore.AppendEvent(event.StreamID(), event); err != nil {
		s.logger.Warn().Err(err).Str("event_type", event.Type()).Msg("failed to publish session event")
	}
}

// SavedScenarios lists the scenarios with cached entries
func (s *PlannerSession) SavedScenarios() ([]dto.ScenarioSummary, error) {
	return s.store.SavedScenarios()
}

// History returns the event history of the active scenario from fromVersion on
func (s *PlannerSession) History(fromVersion int) ([]events.Event, error) {
	s.mu.Lock()
	key := s.key
	s.mu.Unlock()

	return s.store.History(key, fromVersion)
}

// EventLog returns the events of all scenarios from fromPosition on
func (s *PlannerSession) EventLog(fromPosition int) ([]events.Event, error) {
	return s.store.EventLog(fromPosition)
}
