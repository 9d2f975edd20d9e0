package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kshadid/thegiftspace/pkg/clients/giftspace"
)

// fakeAPI implements the API interface with programmable failures.
type fakeAPI struct {
	mu sync.Mutex

	createErr error
	updateErr error
	upsertErr error

	createCalls int
	updateCalls int
	upsertCalls int

	lastFunds []giftspace.Fund

	assignedID     string
	normalizedSlug string

	collaborators []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		assignedID:     "reg_1",
		normalizedSlug: "sara-omar",
	}
}

func (f *fakeAPI) CreateRegistry(ctx context.Context, req *giftspace.CreateRegistryRequest) (*giftspace.Registry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &giftspace.Registry{
		ID:          f.assignedID,
		CoupleNames: req.CoupleNames,
		Slug:        f.normalizedSlug,
	}, nil
}

func (f *fakeAPI) UpdateRegistry(ctx context.Context, registryID string, req *giftspace.UpdateRegistryRequest) (*giftspace.Registry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &giftspace.Registry{ID: registryID, Slug: req.Slug}, nil
}

func (f *fakeAPI) BulkUpsertFunds(ctx context.Context, registryID string, funds []giftspace.Fund) (*giftspace.BulkUpsertFundsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upsertCalls++
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.lastFunds = append([]giftspace.Fund(nil), funds...)
	return &giftspace.BulkUpsertFundsResponse{Created: len(funds)}, nil
}

func (f *fakeAPI) AddCollaborator(ctx context.Context, registryID, email string) (*giftspace.Registry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.collaborators = append(f.collaborators, email)
	return &giftspace.Registry{ID: registryID}, nil
}

func (f *fakeAPI) RemoveCollaborator(ctx context.Context, registryID, userID string) (*giftspace.Registry, error) {
	return &giftspace.Registry{ID: registryID}, nil
}

func newTestReconciler(api *fakeAPI) (*Reconciler, *MemStore) {
	store := NewMemStore()
	return NewReconciler(ReconcilerDependencies{API: api, Store: store}), store
}

func TestLoadDraft_Fresh(t *testing.T) {
	r, _ := newTestReconciler(newFakeAPI())

	draft := r.LoadDraft()

	assert.Empty(t, draft.ID)
	assert.Equal(t, "AED", draft.Currency)
}

func TestSaveLocal_RoundTrip(t *testing.T) {
	r, _ := newTestReconciler(newFakeAPI())

	draft := NewDraft()
	draft.CoupleNames = "Sara & Omar"
	fund := draft.AddFund()
	fund.Title = "Honeymoon"

	r.SaveLocal(draft)

	loaded := r.LoadDraft()
	assert.Equal(t, "Sara & Omar", loaded.CoupleNames)
	require.Len(t, loaded.Funds, 1)
	assert.Equal(t, "Honeymoon", loaded.Funds[0].Title)
	assert.Equal(t, fund.ID, loaded.Funds[0].ID)
}

func TestSaveAll_FirstSyncAdoptsRemoteIdentity(t *testing.T) {
	api := newFakeAPI()
	r, _ := newTestReconciler(api)

	draft := NewDraft()
	draft.CoupleNames = "Sara & Omar"
	draft.Slug = "Sara & Omar 2026"
	draft.AddFund()

	outcome := r.SaveAll(context.Background(), draft)

	assert.Equal(t, SavedToCloud, outcome)
	assert.Equal(t, "reg_1", draft.ID, "remote-assigned id is adopted")
	assert.Equal(t, "sara-omar", draft.Slug, "normalized slug is adopted")
	assert.Equal(t, 1, api.createCalls)
	assert.Equal(t, 1, api.upsertCalls)

	// The adopted identity is persisted, so a reload keeps it.
	loaded := r.LoadDraft()
	assert.Equal(t, "reg_1", loaded.ID)
	assert.Equal(t, "sara-omar", loaded.Slug)
}

func TestSaveAll_SecondSyncUpdates(t *testing.T) {
	api := newFakeAPI()
	r, _ := newTestReconciler(api)

	draft := NewDraft()
	draft.CoupleNames = "Sara & Omar"
	draft.AddFund()

	require.Equal(t, SavedToCloud, r.SaveAll(context.Background(), draft))
	require.Equal(t, SavedToCloud, r.SaveAll(context.Background(), draft))

	assert.Equal(t, 1, api.createCalls, "create happens exactly once")
	assert.Equal(t, 1, api.updateCalls)
	assert.Equal(t, 2, api.upsertCalls)
}

func TestSaveAll_RemoteFailureStaysLocal(t *testing.T) {
	api := newFakeAPI()
	api.createErr = &giftspace.Error{StatusCode: 503, Message: "unavailable"}
	r, _ := newTestReconciler(api)

	draft := NewDraft()
	draft.CoupleNames = "Sara & Omar"
	draft.AddFund()

	outcome := r.SaveAll(context.Background(), draft)

	assert.Equal(t, SavedLocally, outcome)
	assert.Empty(t, draft.ID, "no remote identity adopted on failure")

	// Local durability is unconditional.
	loaded := r.LoadDraft()
	assert.Equal(t, "Sara & Omar", loaded.CoupleNames)
	assert.Len(t, loaded.Funds, 1)
}

func TestSaveAll_RecoversAfterOutage(t *testing.T) {
	api := newFakeAPI()
	api.createErr = &giftspace.Error{StatusCode: 503, Message: "unavailable"}
	r, _ := newTestReconciler(api)

	draft := NewDraft()
	draft.CoupleNames = "Sara & Omar"
	draft.AddFund()

	require.Equal(t, SavedLocally, r.SaveAll(context.Background(), draft))

	// Outage ends; the same draft syncs as a create, not an update.
	api.mu.Lock()
	api.createErr = nil
	api.mu.Unlock()

	assert.Equal(t, SavedToCloud, r.SaveAll(context.Background(), draft))
	assert.Equal(t, "reg_1", draft.ID)
	assert.Equal(t, 0, api.updateCalls)
}

func TestSyncRemote_SendsFullFundList(t *testing.T) {
	api := newFakeAPI()
	r, _ := newTestReconciler(api)

	draft := NewDraft()
	draft.CoupleNames = "Sara & Omar"
	a := draft.AddFund()
	a.Title = "A"
	b := draft.AddFund()
	b.Title = "B"
	require.True(t, draft.MoveFund(b.ID, -1))

	require.True(t, r.SyncRemote(context.Background(), draft))

	require.Len(t, api.lastFunds, 2)
	assert.Equal(t, "B", api.lastFunds[0].Title)
	assert.Equal(t, 0, api.lastFunds[0].Order)
	assert.Equal(t, "A", api.lastFunds[1].Title)
	assert.Equal(t, 1, api.lastFunds[1].Order)
}

func TestSyncRemote_UpsertFailureReportsFalse(t *testing.T) {
	api := newFakeAPI()
	api.upsertErr = &giftspace.Error{StatusCode: 422, Message: "invalid fund"}
	r, _ := newTestReconciler(api)

	draft := NewDraft()
	draft.CoupleNames = "Sara & Omar"
	draft.AddFund()

	assert.False(t, r.SyncRemote(context.Background(), draft))
	// The registry itself was created; the id sticks so the retry updates.
	assert.Equal(t, "reg_1", draft.ID)
}

func TestQuickActions_SilentSync(t *testing.T) {
	api := newFakeAPI()
	r, _ := newTestReconciler(api)

	draft := NewDraft()
	draft.CoupleNames = "Sara & Omar"
	fund := draft.AddFund()

	require.True(t, r.TogglePinned(context.Background(), draft, fund.ID))
	require.True(t, r.ToggleVisible(context.Background(), draft, fund.ID))
	require.True(t, r.CommitGoal(context.Background(), draft, fund.ID, 7500))
	r.Flush()

	assert.True(t, fund.Pinned)
	assert.False(t, fund.Visible)
	assert.Equal(t, float64(7500), fund.Goal)

	// Each quick action persisted locally before its background sync.
	loaded := r.LoadDraft()
	require.Len(t, loaded.Funds, 1)
	assert.True(t, loaded.Funds[0].Pinned)
	assert.False(t, loaded.Funds[0].Visible)
	assert.Equal(t, float64(7500), loaded.Funds[0].Goal)
}

func TestQuickActionThenSaveAll_UpdatesInsteadOfRecreating(t *testing.T) {
	api := newFakeAPI()
	r, _ := newTestReconciler(api)

	draft := NewDraft()
	draft.CoupleNames = "Sara & Omar"
	draft.Slug = "sara-omar"
	fund := draft.AddFund()

	// The background sync creates the registry; only its snapshot sees the
	// remote id at that point.
	require.True(t, r.TogglePinned(context.Background(), draft, fund.ID))
	r.Flush()
	require.Equal(t, 1, api.createCalls)

	// The explicit save must pick the persisted id up and update. A second
	// create would collide on the slug and strand the draft locally.
	outcome := r.SaveAll(context.Background(), draft)

	assert.Equal(t, SavedToCloud, outcome)
	assert.Equal(t, 1, api.createCalls, "explicit save must update, not re-create")
	assert.Equal(t, 1, api.updateCalls)
	assert.Equal(t, "reg_1", draft.ID)
}

func TestQuickActions_Reorder(t *testing.T) {
	api := newFakeAPI()
	r, _ := newTestReconciler(api)

	draft := NewDraft()
	a := draft.AddFund()
	b := draft.AddFund()
	c := draft.AddFund()

	require.True(t, r.MoveFund(context.Background(), draft, c.ID, -2))
	require.True(t, r.ReorderFund(context.Background(), draft, a.ID, b.ID))
	r.Flush()

	loaded := r.LoadDraft()
	require.Len(t, loaded.Funds, 3)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, []string{loaded.Funds[0].ID, loaded.Funds[1].ID, loaded.Funds[2].ID})
	assertDenseOrder(t, loaded)

	// A clamped move that lands on the source position syncs nothing.
	upserts := api.upsertCalls
	assert.False(t, r.MoveFund(context.Background(), draft, loaded.Funds[0].ID, -5))
	r.Flush()
	assert.Equal(t, upserts, api.upsertCalls)
}

func TestQuickActions_RemoteFailureIsSilent(t *testing.T) {
	api := newFakeAPI()
	api.createErr = &giftspace.Error{StatusCode: 500, Message: "boom"}
	r, _ := newTestReconciler(api)

	draft := NewDraft()
	fund := draft.AddFund()

	// No error surfaces; the local mutation stands.
	require.True(t, r.TogglePinned(context.Background(), draft, fund.ID))
	r.Flush()

	assert.True(t, fund.Pinned)
	loaded := r.LoadDraft()
	require.Len(t, loaded.Funds, 1)
	assert.True(t, loaded.Funds[0].Pinned)
}

func TestQuickActions_UnknownFund(t *testing.T) {
	r, _ := newTestReconciler(newFakeAPI())
	draft := NewDraft()

	assert.False(t, r.TogglePinned(context.Background(), draft, "missing"))
	assert.False(t, r.ToggleVisible(context.Background(), draft, "missing"))
	assert.False(t, r.CommitGoal(context.Background(), draft, "missing", 100))
	r.Flush()
}

func TestCollaborators_RequireRemoteRegistry(t *testing.T) {
	api := newFakeAPI()
	r, _ := newTestReconciler(api)
	draft := NewDraft()

	err := r.AddCollaborator(context.Background(), draft, "friend@example.com")
	require.Error(t, err)
	apiErr, ok := giftspace.AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsConflict())

	draft.ID = "reg_1"
	require.NoError(t, r.AddCollaborator(context.Background(), draft, "friend@example.com"))
	assert.Equal(t, []string{"friend@example.com"}, api.collaborators)
}

func TestLoadDraft_CorruptStore(t *testing.T) {
	r, store := newTestReconciler(newFakeAPI())
	store.Set("registry_draft", []byte("{not json"))
	store.Set("registry_id", []byte("reg_9"))

	draft := r.LoadDraft()

	// The corrupt draft is discarded but the registry id survives, so the
	// next sync updates instead of creating a duplicate.
	assert.Equal(t, "reg_9", draft.ID)
	assert.Equal(t, "AED", draft.Currency)
}
