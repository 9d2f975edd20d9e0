package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDenseOrder(t *testing.T, draft *Draft) {
	t.Helper()
	for i, f := range draft.Funds {
		assert.Equal(t, i, f.Order, "fund %s has order %d at position %d", f.ID, f.Order, i)
	}
}

func draftWithFunds(titles ...string) *Draft {
	draft := NewDraft()
	for _, title := range titles {
		fund := draft.AddFund()
		fund.Title = title
	}
	return draft
}

func titles(draft *Draft) []string {
	out := make([]string, len(draft.Funds))
	for i, f := range draft.Funds {
		out[i] = f.Title
	}
	return out
}

func TestNewDraft_Defaults(t *testing.T) {
	draft := NewDraft()

	assert.Equal(t, "AED", draft.Currency)
	assert.Equal(t, "modern", draft.Theme)
	assert.Empty(t, draft.ID)
	assert.Empty(t, draft.Funds)
}

func TestAddFund(t *testing.T) {
	draft := NewDraft()

	first := draft.AddFund()
	second := draft.AddFund()

	assert.Equal(t, "New Gift", first.Title)
	assert.Equal(t, float64(1000), first.Goal)
	assert.Equal(t, "Experience", first.Category)
	assert.True(t, first.Visible)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	assertDenseOrder(t, draft)
}

func TestDuplicateFund(t *testing.T) {
	draft := draftWithFunds("Honeymoon", "Kitchen")
	original := draft.Funds[0]

	copied := draft.DuplicateFund(original.ID)
	require.NotNil(t, copied)

	assert.Equal(t, "Honeymoon (Copy)", copied.Title)
	assert.NotEqual(t, original.ID, copied.ID)
	assert.Equal(t, 2, copied.Order, "duplicate is appended, not inserted next to the original")
	assert.Equal(t, []string{"Honeymoon", "Kitchen", "Honeymoon (Copy)"}, titles(draft))
	assertDenseOrder(t, draft)

	assert.Nil(t, draft.DuplicateFund("missing"))
}

func TestRemoveFund(t *testing.T) {
	draft := draftWithFunds("A", "B", "C")
	removed := draft.Funds[1].ID

	require.True(t, draft.RemoveFund(removed))

	assert.Equal(t, []string{"A", "C"}, titles(draft))
	assertDenseOrder(t, draft)

	assert.False(t, draft.RemoveFund(removed), "removing twice fails cleanly")
}

func TestMoveFund(t *testing.T) {
	tests := []struct {
		name     string
		fundPos  int
		delta    int
		moved    bool
		expected []string
	}{
		{
			name:     "move down by one",
			fundPos:  0,
			delta:    1,
			moved:    true,
			expected: []string{"B", "A", "C"},
		},
		{
			name:     "move up by one",
			fundPos:  2,
			delta:    -1,
			moved:    true,
			expected: []string{"A", "C", "B"},
		},
		{
			name:     "clamp past end",
			fundPos:  0,
			delta:    10,
			moved:    true,
			expected: []string{"B", "C", "A"},
		},
		{
			name:     "clamp before start",
			fundPos:  2,
			delta:    -10,
			moved:    true,
			expected: []string{"C", "A", "B"},
		},
		{
			name:     "clamped to own position is a no-op",
			fundPos:  0,
			delta:    -5,
			moved:    false,
			expected: []string{"A", "B", "C"},
		},
		{
			name:     "zero delta is a no-op",
			fundPos:  1,
			delta:    0,
			moved:    false,
			expected: []string{"A", "B", "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := draftWithFunds("A", "B", "C")
			id := draft.Funds[tt.fundPos].ID

			moved := draft.MoveFund(id, tt.delta)

			assert.Equal(t, tt.moved, moved)
			assert.Equal(t, tt.expected, titles(draft))
			assertDenseOrder(t, draft)
		})
	}
}

func TestMoveFund_UnknownID(t *testing.T) {
	draft := draftWithFunds("A", "B")

	assert.False(t, draft.MoveFund("missing", 1))
	assert.Equal(t, []string{"A", "B"}, titles(draft))
}

func TestReorderFund(t *testing.T) {
	draft := draftWithFunds("A", "B", "C", "D")

	// Drag A over C.
	require.True(t, draft.ReorderFund(draft.Funds[0].ID, draft.Funds[2].ID))
	assert.Equal(t, []string{"B", "C", "A", "D"}, titles(draft))
	assertDenseOrder(t, draft)

	// Dragging an item over itself does nothing.
	assert.False(t, draft.ReorderFund(draft.Funds[0].ID, draft.Funds[0].ID))
}

func TestReorderFund_Converges(t *testing.T) {
	draft := draftWithFunds("A", "B", "C")
	from := draft.Funds[2].ID
	to := draft.Funds[0].ID

	require.True(t, draft.ReorderFund(from, to))
	first := titles(draft)

	// Re-applying the same drag-over while the drag is in progress keeps the
	// same dense order.
	draft.ReorderFund(from, to)
	assert.Equal(t, first, titles(draft))
	assertDenseOrder(t, draft)
}

func TestFundByID(t *testing.T) {
	draft := draftWithFunds("A")

	fund := draft.FundByID(draft.Funds[0].ID)
	require.NotNil(t, fund)

	fund.Goal = 5000
	assert.Equal(t, float64(5000), draft.Funds[0].Goal, "FundByID returns a live pointer into the draft")

	assert.Nil(t, draft.FundByID("missing"))
}

// TestEditingScenario walks a realistic editing session end to end and
// checks the order invariant after every step.
func TestEditingScenario(t *testing.T) {
	draft := NewDraft()
	draft.CoupleNames = "Sara & Omar"
	draft.Slug = "Sara & Omar 2026"

	honeymoon := draft.AddFund()
	honeymoon.Title = "Honeymoon in Kyoto"
	honeymoon.Goal = 12000

	kitchen := draft.AddFund()
	kitchen.Title = "Kitchen Fund"

	charity := draft.AddFund()
	charity.Title = "Charity"
	assertDenseOrder(t, draft)

	copied := draft.DuplicateFund(kitchen.ID)
	require.NotNil(t, copied)
	assert.Equal(t, "Kitchen Fund (Copy)", copied.Title)
	assertDenseOrder(t, draft)

	require.True(t, draft.MoveFund(charity.ID, -2))
	assert.Equal(t, []string{"Charity", "Honeymoon in Kyoto", "Kitchen Fund", "Kitchen Fund (Copy)"}, titles(draft))

	require.True(t, draft.RemoveFund(copied.ID))
	assert.Equal(t, []string{"Charity", "Honeymoon in Kyoto", "Kitchen Fund"}, titles(draft))
	assertDenseOrder(t, draft)
}
