package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatefold.io/internal/product"
)

func newTestService() (*Service, *MemoryStore) {
	catalog := product.NewMemoryCatalog()
	catalog.Add(product.Product{ID: "p1", OrgID: "org-1", Slug: "ascorbic-acid"})
	store := NewMemoryStore()
	return NewService(store, catalog), store
}

func validVisit() Visit {
	return Visit{
		ProductID:    "p1",
		AccessMethod: MethodURL,
		SessionID:    "sess-1",
		VisitorID:    "v1",
		Context: VisitContext{
			UserAgent:  "test-agent",
			DeviceType: "desktop",
		},
	}
}

func TestRecordVisitUniqueThenRepeat(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.RecordVisit(ctx, validVisit())
	require.NoError(t, err)
	assert.True(t, first.IsUniqueVisit)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "org-1", first.OrgID)

	second, err := svc.RecordVisit(ctx, validVisit())
	require.NoError(t, err)
	assert.False(t, second.IsUniqueVisit)
	assert.NotEqual(t, first.ID, second.ID)

	other := validVisit()
	other.VisitorID = "v2"
	third, err := svc.RecordVisit(ctx, other)
	require.NoError(t, err)
	assert.True(t, third.IsUniqueVisit)
}

func TestRecordVisitAnonymousIsUnique(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	visit := validVisit()
	visit.VisitorID = ""

	for i := 0; i < 2; i++ {
		event, err := svc.RecordVisit(ctx, visit)
		require.NoError(t, err)
		assert.True(t, event.IsUniqueVisit)
	}
}

func TestRecordVisitConcurrentSameVisitor(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	const n = 16
	results := make([]bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			event, err := svc.RecordVisit(ctx, validVisit())
			if err != nil {
				t.Errorf("record visit: %v", err)
				return
			}
			results[i] = event.IsUniqueVisit
		}(i)
	}
	wg.Wait()

	uniques := 0
	for _, unique := range results {
		if unique {
			uniques++
		}
	}
	assert.Equal(t, 1, uniques, "exactly one concurrent visit may be unique")
}

func TestRecordVisitValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*Visit)
		wantErr error
	}{
		{"missing product", func(v *Visit) { v.ProductID = "" }, ErrMissingField},
		{"missing method", func(v *Visit) { v.AccessMethod = "" }, ErrMissingField},
		{"unknown method", func(v *Visit) { v.AccessMethod = "carrier_pigeon" }, ErrInvalidInput},
		{"missing session", func(v *Visit) { v.SessionID = " " }, ErrMissingField},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			visit := validVisit()
			tc.mutate(&visit)
			_, err := svc.RecordVisit(ctx, visit)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestRecordVisitUnknownProduct(t *testing.T) {
	svc, _ := newTestService()

	visit := validVisit()
	visit.ProductID = "ghost"
	_, err := svc.RecordVisit(context.Background(), visit)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecordActionHappyPath(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	visit, err := svc.RecordVisit(ctx, validVisit())
	require.NoError(t, err)

	action, err := svc.RecordAction(ctx, Action{
		AccessID:     visit.ID,
		ProductID:    "p1",
		ActionType:   ActionDocumentDownload,
		ActionTarget: "spec-sheet.pdf",
		Metadata:     map[string]string{"page": "2"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, action.ID)
	assert.Equal(t, visit.ID, action.AccessID)
	assert.Equal(t, "org-1", action.OrgID, "org denormalized from parent visit")
}

func TestRecordActionUnknownTypeWritesNothing(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	visit, err := svc.RecordVisit(ctx, validVisit())
	require.NoError(t, err)

	_, err = svc.RecordAction(ctx, Action{
		AccessID:   visit.ID,
		ProductID:  "p1",
		ActionType: "bogus",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 0, store.ActionCount())
}

func TestRecordActionMissingParent(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.RecordAction(context.Background(), Action{
		AccessID:   "no-such-access",
		ProductID:  "p1",
		ActionType: ActionPageView,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecordActionValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name   string
		action Action
	}{
		{"missing access id", Action{ProductID: "p1", ActionType: ActionPageView}},
		{"missing product id", Action{AccessID: "a1", ActionType: ActionPageView}},
		{"missing action type", Action{AccessID: "a1", ProductID: "p1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordAction(ctx, tc.action)
			require.ErrorIs(t, err, ErrMissingField)
		})
	}
}
