package journal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haldorsen/breakwater/internal/journal"
	"github.com/haldorsen/breakwater/internal/model"
)

func newTestJournal(t *testing.T) *journal.SQLiteJournal {
	t.Helper()
	j, err := journal.NewSQLiteJournal(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteJournal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func makeDispatch(poolKey, outcome string, status int, durationMS int64) *model.Dispatch {
	return &model.Dispatch{
		ID:         model.NewID(),
		PoolKey:    poolKey,
		Outcome:    outcome,
		Status:     status,
		DurationMS: durationMS,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestRecordAndGetDispatch(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	d := makeDispatch("default", model.OutcomeSuccess, 200, 42)
	if err := j.RecordDispatch(ctx, d); err != nil {
		t.Fatalf("RecordDispatch: %v", err)
	}

	got, err := j.GetDispatch(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDispatch: %v", err)
	}
	if got.PoolKey != "default" || got.Outcome != model.OutcomeSuccess || got.Status != 200 || got.DurationMS != 42 {
		t.Errorf("GetDispatch = %+v, want the stored record", got)
	}
}

func TestGetDispatchNotFound(t *testing.T) {
	j := newTestJournal(t)

	_, err := j.GetDispatch(context.Background(), model.NewID())
	if !errors.Is(err, journal.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListDispatchesPagination(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d := makeDispatch("default", model.OutcomeSuccess, 200, int64(i))
		// Distinct timestamps so the DESC ordering is deterministic.
		d.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		if err := j.RecordDispatch(ctx, d); err != nil {
			t.Fatalf("RecordDispatch: %v", err)
		}
	}

	page, total, err := j.ListDispatches(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListDispatches: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}
	if page[0].DurationMS != 4 {
		t.Errorf("first record duration = %d, want newest (4)", page[0].DurationMS)
	}

	rest, _, err := j.ListDispatches(ctx, 10, 2)
	if err != nil {
		t.Fatalf("ListDispatches offset: %v", err)
	}
	if len(rest) != 3 {
		t.Errorf("remaining records = %d, want 3", len(rest))
	}
}

func TestGetDispatchStats(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	seed := []*model.Dispatch{
		makeDispatch("default", model.OutcomeSuccess, 200, 10),
		makeDispatch("default", model.OutcomeTimeout, 504, 30),
		makeDispatch("payments", model.OutcomeSuccess, 200, 20),
		makeDispatch("payments", model.OutcomeSaturated, 503, 0),
	}
	for _, d := range seed {
		if err := j.RecordDispatch(ctx, d); err != nil {
			t.Fatalf("RecordDispatch: %v", err)
		}
	}

	stats, err := j.GetDispatchStats(ctx)
	if err != nil {
		t.Fatalf("GetDispatchStats: %v", err)
	}
	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.CountByOutcome[model.OutcomeSuccess] != 2 {
		t.Errorf("success count = %d, want 2", stats.CountByOutcome[model.OutcomeSuccess])
	}
	if stats.CountByPool["payments"] != 2 {
		t.Errorf("payments count = %d, want 2", stats.CountByPool["payments"])
	}
	if stats.AvgDurationMS != 15 {
		t.Errorf("AvgDurationMS = %v, want 15", stats.AvgDurationMS)
	}
}

func TestStatsOnEmptyJournal(t *testing.T) {
	j := newTestJournal(t)

	stats, err := j.GetDispatchStats(context.Background())
	if err != nil {
		t.Fatalf("GetDispatchStats: %v", err)
	}
	if stats.Total != 0 || stats.AvgDurationMS != 0 {
		t.Errorf("empty stats = %+v, want zeroes", stats)
	}
}
