package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vsinha/sop/pkg/application/dto"
	"github.com/vsinha/sop/pkg/domain/entities"
	"github.com/vsinha/sop/pkg/infrastructure/events"
	"github.com/vsinha/sop/pkg/infrastructure/repositories/memory"
)

type fixedNarrator struct {
	result dto.NarrationResult
}

func (n fixedNarrator) Narrate(context.Context, []entities.ChartDataPoint, string) dto.NarrationResult {
	return n.result
}

// blockingNarrator waits for release before answering
type blockingNarrator struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingNarrator() *blockingNarrator {
	return &blockingNarrator{started: make(chan struct{}), release: make(chan struct{})}
}

func (n *blockingNarrator) Narrate(context.Context, []entities.ChartDataPoint, string) dto.NarrationResult {
	n.once.Do(func() { close(n.started) })
	<-n.release
	return dto.NarrationResult{Text: "late analysis", Outcome: OutcomeSuccess}
}

var january2024 = entities.PlanningMonth{Year: 2024, Month: time.January}

func newTestSession(t *testing.T, narrator Narrator, opts ...SessionOption) (*PlannerSession, *ScenarioStore) {
	t.Helper()
	store := NewScenarioStore(memory.NewScenarioRepository())
	opts = append([]SessionOption{WithDefaultContext(entities.Standard, january2024)}, opts...)
	session, err := NewPlannerSession(store, narrator, opts...)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return session, store
}

func TestNewPlannerSession_Defaults(t *testing.T) {
	session, _ := newTestSession(t, fixedNarrator{})
	snap := session.Snapshot()

	if snap.Key != "Standard Series-2024-01" {
		t.Errorf("Expected key Standard Series-2024-01, got %s", snap.Key)
	}
	if snap.ViewMode != entities.Stacked {
		t.Errorf("Expected stacked view, got %s", snap.ViewMode)
	}
	if snap.SimulationMonth != "Jan N" {
		t.Errorf("Expected simulation month Jan N, got %s", snap.SimulationMonth)
	}
	if len(snap.Months) != 4 {
		t.Errorf("Expected 4 months, got %v", snap.Months)
	}
	if snap.SavedDemand || snap.SavedConfigs {
		t.Error("Expected nothing saved for a fresh session")
	}
}

func TestNewPlannerSession_UsesClock(t *testing.T) {
	store := NewScenarioStore(memory.NewScenarioRepository())
	clock := func() time.Time { return time.Date(2025, time.October, 14, 9, 0, 0, 0, time.UTC) }
	session, err := NewPlannerSession(store, fixedNarrator{}, WithClock(clock), WithDefaultProductLine(entities.Industrial))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if key := session.Snapshot().Key; key != "Industrial Heavy-Duty-2025-10" {
		t.Errorf("Expected key for current month, got %s", key)
	}
}

func TestPlannerSession_PlanMatchesBaseline(t *testing.T) {
	session, _ := newTestSession(t, fixedNarrator{})
	plan, err := session.Plan()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(plan.Chart) != 4 || len(plan.MonthlyGaps) != 4 {
		t.Fatalf("Expected 4 chart points and gaps, got %d/%d", len(plan.Chart), len(plan.MonthlyGaps))
	}

	// Jan override: 3 devices, 3 shifts, OT 2, no maintenance: 24 days
	jan := plan.Chart[0]
	if jan.ActualCapacity != 24*3*(280+250+250) {
		t.Errorf("Expected Jan actual capacity %d, got %d", 24*3*(280+250+250), jan.ActualCapacity)
	}
	if plan.MonthlyGaps[0] != jan.ActualCapacity-jan.TotalRequirement {
		t.Errorf("Expected stacked gap, got %d", plan.MonthlyGaps[0])
	}
	if plan.GapLabel != "Capacity Gap (Total)" {
		t.Errorf("Unexpected gap label %q", plan.GapLabel)
	}

	session.SetViewMode(entities.Split)
	split, _ := session.Plan()
	if split.KPI.CapacityGap-plan.KPI.CapacityGap != plan.KPI.TotalBacklog {
		t.Errorf("Expected split gap to exceed stacked gap by total backlog %d, got %d vs %d",
			plan.KPI.TotalBacklog, split.KPI.CapacityGap, plan.KPI.CapacityGap)
	}
	if split.KPI.TotalBacklog != plan.KPI.TotalBacklog {
		t.Error("Expected backlog total to be independent of view mode")
	}
}

func TestPlannerSession_UpdateDevice(t *testing.T) {
	session, _ := newTestSession(t, fixedNarrator{})
	before, _ := session.Plan()

	devices, err := session.UpdateDevice(1, DeviceShifts, "1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if devices[0].Shifts != 1 {
		t.Errorf("Expected shifts 1, got %d", devices[0].Shifts)
	}

	after, _ := session.Plan()
	if after.Chart[0].ActualCapacity >= before.Chart[0].ActualCapacity {
		t.Error("Expected fewer shifts to lower January capacity")
	}
	if after.Chart[1].ActualCapacity != before.Chart[1].ActualCapacity {
		t.Error("Expected other months to be unaffected")
	}

	if devices, _ := session.UpdateDevice(2, DeviceOvertimeDays, "oops"); devices[1].OvertimeDays != 0 {
		t.Errorf("Expected unparsable input to become 0, got %d", devices[1].OvertimeDays)
	}
	if devices, _ := session.UpdateDevice(3, DeviceMaintenanceDays, "99"); devices[2].MaintenanceDays != entities.MaxMaintenanceDays {
		t.Errorf("Expected clamped maintenance days, got %d", devices[2].MaintenanceDays)
	}

	if _, err := session.UpdateDevice(42, DeviceShifts, "1"); !errors.Is(err, ErrUnknownDevice) {
		t.Errorf("Expected ErrUnknownDevice, got %v", err)
	}
	if _, err := session.UpdateDevice(1, DeviceField("name"), "x"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Expected ErrUnknownField, got %v", err)
	}
}

func TestPlannerSession_SelectSimulationMonth(t *testing.T) {
	session, _ := newTestSession(t, fixedNarrator{})

	if err := session.SelectSimulationMonth("Mar N+2"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	devices, _ := session.SimulationDevices()
	if devices[0].BaseCapacity != 300 {
		t.Errorf("Expected March override devices, got %+v", devices[0])
	}
	if err := session.SelectSimulationMonth("Dec N+9"); !errors.Is(err, ErrUnknownMonth) {
		t.Errorf("Expected ErrUnknownMonth, got %v", err)
	}
}

func TestPlannerSession_SwitchAwayAndBack(t *testing.T) {
	session, store := newTestSession(t, fixedNarrator{})
	key := session.Snapshot().Key

	_, _ = session.UpdateDevice(1, DeviceShifts, "1")
	if err := session.SaveSimulation(); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	_, _ = session.UpdateDevice(1, DeviceShifts, "2")

	if err := session.SelectProductLine(entities.Performance); err != nil {
		t.Fatalf("Failed to switch: %v", err)
	}
	if !store.HasSavedConfigs(key) {
		t.Fatal("Expected saved configs to survive the switch")
	}
	devices, _ := session.SimulationDevices()
	if devices[0].BaseCapacity != 175 {
		t.Errorf("Expected performance defaults, got %+v", devices[0])
	}

	if err := session.SelectProductLine(entities.Standard); err != nil {
		t.Fatalf("Failed to switch back: %v", err)
	}
	devices, _ = session.SimulationDevices()
	if devices[0].Shifts != 1 {
		t.Errorf("Expected saved shifts 1 (unsaved edit dropped), got %d", devices[0].Shifts)
	}
}

func TestPlannerSession_UnsavedEditsDroppedOnSwitch(t *testing.T) {
	session, store := newTestSession(t, fixedNarrator{})
	key := session.Snapshot().Key

	_, _ = session.UpdateDevice(1, DeviceShifts, "1")
	_ = session.SelectPlanningMonth(entities.PlanningMonth{Year: 2024, Month: time.February})
	_ = session.SelectPlanningMonth(january2024)

	if store.HasSavedConfigs(key) {
		t.Error("Expected switching not to write the previous key's cache")
	}
	devices, _ := session.SimulationDevices()
	if devices[0].Shifts != 3 {
		t.Errorf("Expected baseline shifts 3, got %d", devices[0].Shifts)
	}
}

func TestPlannerSession_DemandEditing(t *testing.T) {
	session, store := newTestSession(t, fixedNarrator{})
	key := session.Snapshot().Key

	_, _ = session.UpdateDevice(1, DeviceShifts, "1")

	editor := session.OpenDemandEditor()
	if session.OpenDemandEditor() != editor {
		t.Error("Expected the open editor to be reused")
	}
	editor.ApplyEdit(0, ForecastValue, "60000")

	if got, _ := session.Plan(); got.Chart[0].Demand != 45000 {
		t.Errorf("Expected unsaved editor not to affect the plan, got %d", got.Chart[0].Demand)
	}

	if err := session.SaveDemandEdits(); err != nil {
		t.Fatalf("Failed to save demand: %v", err)
	}
	if !store.HasSavedDemand(key) {
		t.Error("Expected demand to be cached")
	}
	plan, _ := session.Plan()
	if plan.Chart[0].Demand != 60000 {
		t.Errorf("Expected saved demand 60000, got %d", plan.Chart[0].Demand)
	}
	devices, _ := session.SimulationDevices()
	if devices[0].Shifts != 1 {
		t.Errorf("Expected unsaved simulation edit to survive demand save, got %d", devices[0].Shifts)
	}
	if editor.HasChanges() {
		t.Error("Expected editor to be clean after save")
	}

	session.CloseDemandEditor()
	if err := session.SaveDemandEdits(); !errors.Is(err, ErrEditorClosed) {
		t.Errorf("Expected ErrEditorClosed, got %v", err)
	}
}

func TestPlannerSession_SwitchDropsEditorAndNarration(t *testing.T) {
	session, _ := newTestSession(t, fixedNarrator{result: dto.NarrationResult{Text: "analysis", Outcome: OutcomeSuccess}})

	if _, err := session.Analyze(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	session.OpenDemandEditor()
	if snap := session.Snapshot(); snap.Narration != "analysis" || !snap.EditorOpen {
		t.Fatalf("Unexpected snapshot before switch: %+v", snap)
	}

	_ = session.SelectProductLine(entities.Premium)
	snap := session.Snapshot()
	if snap.Narration != "" || snap.EditorOpen {
		t.Errorf("Expected narration and editor cleared, got %+v", snap)
	}
}

func TestPlannerSession_UpdateDeviceClearsNarration(t *testing.T) {
	session, _ := newTestSession(t, fixedNarrator{result: dto.NarrationResult{Text: "analysis", Outcome: OutcomeSuccess}})
	_, _ = session.Analyze(context.Background())
	_, _ = session.UpdateDevice(1, DeviceShifts, "2")
	if n := session.Snapshot().Narration; n != "" {
		t.Errorf("Expected narration cleared, got %q", n)
	}
}

func TestPlannerSession_AnalyzeBusy(t *testing.T) {
	narrator := newBlockingNarrator()
	metrics := newCountingMetrics()
	session, _ := newTestSession(t, narrator, WithMetrics(metrics))

	done := make(chan dto.NarrationResult)
	go func() {
		result, _ := session.Analyze(context.Background())
		done <- result
	}()
	<-narrator.started

	if !session.Snapshot().Analyzing {
		t.Error("Expected busy flag while narration is in flight")
	}
	if _, err := session.Analyze(context.Background()); !errors.Is(err, ErrAnalysisInProgress) {
		t.Errorf("Expected ErrAnalysisInProgress, got %v", err)
	}

	close(narrator.release)
	result := <-done
	if result.Text != "late analysis" || result.Stale {
		t.Errorf("Unexpected result: %+v", result)
	}
	snap := session.Snapshot()
	if snap.Analyzing {
		t.Error("Expected busy flag cleared")
	}
	if snap.Narration != "late analysis" {
		t.Errorf("Expected narration kept, got %q", snap.Narration)
	}
	if metrics.narrations[OutcomeSuccess] != 1 {
		t.Errorf("Expected one successful narration recorded, got %v", metrics.narrations)
	}
}

func TestPlannerSession_AnalyzeDiscardedAfterSwitch(t *testing.T) {
	narrator := newBlockingNarrator()
	session, _ := newTestSession(t, narrator)

	done := make(chan dto.NarrationResult)
	go func() {
		result, _ := session.Analyze(context.Background())
		done <- result
	}()
	<-narrator.started

	if err := session.SelectProductLine(entities.Industrial); err != nil {
		t.Fatalf("Failed to switch: %v", err)
	}
	close(narrator.release)

	result := <-done
	if !result.Stale {
		t.Error("Expected result to be marked stale")
	}
	snap := session.Snapshot()
	if snap.Narration != "" {
		t.Errorf("Expected stale narration to be discarded, got %q", snap.Narration)
	}
	if snap.Analyzing {
		t.Error("Expected busy flag cleared")
	}
}

func TestPlannerSession_FallbackClearsBusy(t *testing.T) {
	svc := NewNarrationService(nil, zerolog.Nop())
	session, _ := newTestSession(t, svc)

	result, err := session.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Text != MissingCredentialMessage {
		t.Errorf("Expected missing credential message, got %q", result.Text)
	}
	if session.Snapshot().Analyzing {
		t.Error("Expected busy flag cleared after fallback")
	}
}

func TestPlannerSession_PublishesEvents(t *testing.T) {
	es := events.NewInMemoryEventStore(zerolog.Nop())
	store := NewScenarioStore(memory.NewScenarioRepository(), WithEventStore(es))
	session, err := NewPlannerSession(store, fixedNarrator{}, WithSessionEvents(es), WithDefaultContext(entities.Standard, january2024))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, _ = session.UpdateDevice(1, DeviceShifts, "2")
	_ = session.SaveSimulation()

	stream, _ := es.ReadEvents("Standard Series-2024-01", 1)
	want := []string{events.ContextSwitchedEvent, events.MonthAdjustedEvent, events.ConfigsSavedEvent}
	if len(stream) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(stream))
	}
	for i, e := range stream {
		if e.Type() != want[i] {
			t.Errorf("Event %d: expected %s, got %s", i, want[i], e.Type())
		}
	}
}

func TestPlannerSession_AnalyzeDiscardedAfterPlanEdit(t *testing.T) {
	tests := []struct {
		name string
		edit func(t *testing.T, session *PlannerSession)
	}{
		{"device edit", func(t *testing.T, session *PlannerSession) {
			if _, err := session.UpdateDevice(1, DeviceShifts, "0"); err != nil {
				t.Fatalf("Failed to update device: %v", err)
			}
		}},
		{"demand save", func(t *testing.T, session *PlannerSession) {
			session.OpenDemandEditor().ApplyEdit(0, ForecastValue, "1")
			if err := session.SaveDemandEdits(); err != nil {
				t.Fatalf("Failed to save demand: %v", err)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			narrator := newBlockingNarrator()
			session, _ := newTestSession(t, narrator)

			done := make(chan dto.NarrationResult)
			go func() {
				result, _ := session.Analyze(context.Background())
				done <- result
			}()
			<-narrator.started

			tt.edit(t, session)
			close(narrator.release)

			result := <-done
			if !result.Stale {
				t.Error("Expected result for the pre-edit plan to be marked stale")
			}
			if n := session.Snapshot().Narration; n != "" {
				t.Errorf("Expected narration of the pre-edit plan discarded, got %q", n)
			}
		})
	}
}

func TestPlannerSession_HistoryAndSavedScenarios(t *testing.T) {
	es := events.NewInMemoryEventStore(zerolog.Nop())
	store := NewScenarioStore(memory.NewScenarioRepository(), WithEventStore(es))
	session, err := NewPlannerSession(store, fixedNarrator{}, WithSessionEvents(es), WithDefaultContext(entities.Standard, january2024))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if saved, _ := session.SavedScenarios(); len(saved) != 0 {
		t.Errorf("Expected no saved scenarios, got %v", saved)
	}

	_ = session.SaveSimulation()
	if err := session.SelectProductLine(entities.Premium); err != nil {
		t.Fatalf("Failed to switch: %v", err)
	}

	saved, err := session.SavedScenarios()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("Expected 1 saved scenario, got %d", len(saved))
	}
	if saved[0].ProductLine != entities.Standard || saved[0].SavedDemand || !saved[0].SavedConfigs {
		t.Errorf("Unexpected summary: %+v", saved[0])
	}

	history, _ := session.History(1)
	if len(history) != 1 || history[0].Type() != events.ContextSwitchedEvent {
		t.Errorf("Expected only the switch event for the premium key, got %v", history)
	}

	log, _ := session.EventLog(0)
	if len(log) != 3 {
		t.Errorf("Expected 3 events overall, got %d", len(log))
	}
}
