package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/quality"
	"github.com/bitfantasy/nimo-qc/internal/qc/repository"
	"github.com/bitfantasy/nimo-qc/internal/qc/testutil"
	"github.com/bitfantasy/nimo-qc/internal/shared/cache"
	"github.com/bitfantasy/nimo-qc/internal/shared/sse"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServices(t *testing.T) *Services {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewServices(repository.NewRepositories(db), cache.NewMemoryCache(16, time.Minute), nil, nil)
}

func TestBandLabel(t *testing.T) {
	assert.Equal(t, "Needs Improvement", BandLabel(quality.BandNeedsImprovement))
	assert.Equal(t, "Excellent", BandLabel(quality.BandExcellent))
}

func TestCompleteInspection_GeneratesCAPAWithSuggestions(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	ws, user := testutil.DefaultWorkspace, testutil.DefaultUser

	insp, err := svc.Inspection.CreateInspection(ctx, ws, user, &CreateInspectionRequest{
		ProductionMethod: "silkscreen", LotSize: 40, TotalGood: 18,
	})
	require.NoError(t, err)
	assert.Equal(t, "SILKSCREEN", insp.ProductionMethod)
	assert.Equal(t, 13, insp.SampleSize)

	_, err = svc.Inspection.AddDefect(ctx, ws, insp.ID, user, &AddDefectRequest{
		ReasonCode: "UNDER_CURE", Quantity: 2, CostAttribution: "staff", CostImpact: decimal.RequireFromString("12.50"),
	})
	require.NoError(t, err)

	res, err := svc.Inspection.CompleteInspection(ctx, ws, insp.ID, user, &CompleteInspectionRequest{})
	require.NoError(t, err)
	assert.Equal(t, entity.InspectionStatusFailed, res.Inspection.Status)
	assert.Equal(t, DispositionRework, res.Inspection.Disposition)
	require.NotNil(t, res.CAPA)

	year := time.Now().UTC().Year()
	assert.Equal(t, quality.FormatNumber(quality.CAPAPrefix, year, 1), res.CAPA.CAPANumber)
	assert.Equal(t, entity.CAPAPriorityCritical, res.CAPA.Priority)
	assert.Equal(t, entity.CAPASourceInspection, res.CAPA.Source)

	var suggestions []string
	require.NoError(t, json.Unmarshal(res.CAPA.Suggestions, &suggestions))
	require.Len(t, suggestions, 1)
	assert.Contains(t, suggestions[0], "Under Cured")

	manual, err := svc.CAPA.Create(ctx, ws, user, &CreateCAPARequest{Title: "follow-up"})
	require.NoError(t, err)
	assert.Equal(t, quality.FormatNumber(quality.CAPAPrefix, year, 2), manual.CAPANumber)

	_, err = svc.Inspection.AddDefect(ctx, ws, insp.ID, user, &AddDefectRequest{ReasonCode: "PINHOLES", Quantity: 1})
	assert.ErrorIs(t, err, ErrInspectionClosed)
}

func TestExportReport(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	ws, user := testutil.DefaultWorkspace, testutil.DefaultUser

	insp, err := svc.Inspection.CreateInspection(ctx, ws, user, &CreateInspectionRequest{
		ProductionMethod: "EMBROIDERY", LotSize: 200, TotalGood: 40,
	})
	require.NoError(t, err)
	_, err = svc.Inspection.AddDefect(ctx, ws, insp.ID, user, &AddDefectRequest{
		ReasonCode: "PUCKERING", Quantity: 5, CostImpact: decimal.RequireFromString("3.2"),
	})
	require.NoError(t, err)

	f, name, err := svc.Inspection.ExportReport(ctx, ws, insp.ID)
	require.NoError(t, err)
	assert.Equal(t, insp.InspectionNumber+".xlsx", name)
	assert.Equal(t, []string{"Summary", "Defects", "Severity"}, f.GetSheetList())

	band, err := f.GetCellValue("Summary", "B14")
	require.NoError(t, err)
	assert.Equal(t, "Needs Improvement", band)

	code, _ := f.GetCellValue("Defects", "A2")
	severity, _ := f.GetCellValue("Defects", "C2")
	cost, _ := f.GetCellValue("Defects", "F2")
	assert.Equal(t, "PUCKERING", code)
	assert.Equal(t, "MAJOR", severity)
	assert.Equal(t, "3.20", cost)

	major, _ := f.GetCellValue("Severity", "B3")
	assert.Equal(t, "5", major)
}

func TestMutationsPublishEvents(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	ws, user := testutil.DefaultWorkspace, testutil.DefaultUser

	client := &sse.Client{ID: "watcher", WorkspaceID: ws, Events: make(chan sse.Event, 8)}
	svc.Events.Register(client)
	defer svc.Events.Unregister(client.ID)

	insp, err := svc.Inspection.CreateInspection(ctx, ws, user, &CreateInspectionRequest{ProductionMethod: "DTF", LotSize: 10})
	require.NoError(t, err)
	_, err = svc.Inspection.StartInspection(ctx, ws, insp.ID, user)
	require.NoError(t, err)

	var actions []string
	for len(client.Events) > 0 {
		var payload InspectionEvent
		ev := <-client.Events
		require.Equal(t, sse.EventInspectionUpdate, ev.EventType)
		require.NoError(t, json.Unmarshal([]byte(ev.Data), &payload))
		assert.Equal(t, insp.ID, payload.InspectionID)
		actions = append(actions, payload.Action)
	}
	assert.Equal(t, []string{"create", "start"}, actions)
}

func TestCreateInspection_ConcurrentNumbersAreUnique(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	ws, user := testutil.DefaultWorkspace, testutil.DefaultUser
	const n = 20

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []string
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			insp, err := svc.Inspection.CreateInspection(ctx, ws, user, &CreateInspectionRequest{
				ProductionMethod: "DTF", LotSize: 50,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers = append(numbers, insp.InspectionNumber)
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	require.Len(t, numbers, n)

	year := time.Now().UTC().Year()
	want := make([]string, n)
	for i := range want {
		want[i] = quality.FormatInspectionNumber(year, i+1)
	}
	sort.Strings(numbers)
	assert.Equal(t, want, numbers)
}

func TestCAPAChangesRefreshCachedSummary(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	ws, user := testutil.DefaultWorkspace, testutil.DefaultUser

	before, err := svc.Analytics.Summary(ctx, ws, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), before.OpenCAPA)

	task, err := svc.CAPA.Create(ctx, ws, user, &CreateCAPARequest{Title: "manual"})
	require.NoError(t, err)

	afterCreate, err := svc.Analytics.Summary(ctx, ws, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), afterCreate.OpenCAPA)

	closed := entity.CAPAStatusClosed
	_, err = svc.CAPA.Update(ctx, ws, task.ID, user, &UpdateCAPARequest{Status: &closed})
	require.NoError(t, err)

	afterClose, err := svc.Analytics.Summary(ctx, ws, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), afterClose.OpenCAPA)
}

func TestCAPAUpdate_ConcurrentTransitionsStayConsistent(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()
	ws, user := testutil.DefaultWorkspace, testutil.DefaultUser

	task, err := svc.CAPA.Create(ctx, ws, user, &CreateCAPARequest{Title: "dryer drift"})
	require.NoError(t, err)

	targets := []string{entity.CAPAStatusClosed, entity.CAPAStatusInProgress}
	results := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, status := range targets {
		wg.Add(1)
		go func(i int, status string) {
			defer wg.Done()
			_, results[i] = svc.CAPA.Update(ctx, ws, task.ID, user, &UpdateCAPARequest{Status: &status})
		}(i, status)
	}
	wg.Wait()

	require.NoError(t, results[0])
	succeeded := 1
	if results[1] == nil {
		succeeded++
	} else {
		assert.ErrorIs(t, results[1], ErrInvalidTransition)
	}

	got, err := svc.CAPA.Get(ctx, ws, task.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CAPAStatusClosed, got.Status)
	assert.NotNil(t, got.ClosedAt)

	logs, _, err := svc.CAPA.repos.ActivityLog.FindByEntity(ctx, ws, entity.EntityTypeCAPA, task.ID, 1, 20)
	require.NoError(t, err)
	updates := 0
	for _, l := range logs {
		if l.Action == "update" {
			updates++
		}
	}
	assert.Equal(t, succeeded, updates)
}
