package ordering

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/production-calendar/internal/model"
)

var base = time.Date(2024, time.March, 4, 6, 0, 0, 0, time.UTC)

func intPtr(i int) *int { return &i }

func workItem(id string, idx *int, createdMinutes int) model.WorkItem {
	return model.WorkItem{
		ID:          id,
		DayID:       "day-1",
		Day:         time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
		Code:        "P-" + id,
		ProductName: "Product " + id,
		Status:      model.StatusPending,
		OrderIndex:  idx,
		CreatedAt:   base.Add(time.Duration(createdMinutes) * time.Minute),
	}
}

func TestFromItems_IndexedFirstThenCreationTime(t *testing.T) {
	items := []model.WorkItem{
		workItem("late-null", nil, 30),
		workItem("idx2", intPtr(2), 0),
		workItem("early-null", nil, 5),
		workItem("idx0", intPtr(0), 50),
		workItem("idx1", intPtr(1), 10),
	}

	got := FromItems(items).IDs()
	want := []string{"idx0", "idx1", "idx2", "early-null", "late-null"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	// Input is not reordered in place.
	assert.Equal(t, "late-null", items[0].ID)
}

func TestFromItems_DuplicateIndicesBreakTiesDeterministically(t *testing.T) {
	items := []model.WorkItem{
		workItem("b", intPtr(1), 10),
		workItem("a", intPtr(1), 10),
		workItem("c", intPtr(1), 5),
	}
	want := []string{"c", "a", "b"}
	if diff := cmp.Diff(want, FromItems(items).IDs()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func randomItems(rng *rand.Rand, n int) []model.WorkItem {
	items := make([]model.WorkItem, n)
	for i := range items {
		var idx *int
		if rng.Intn(2) == 0 {
			idx = intPtr(rng.Intn(n + 1))
		}
		items[i] = workItem(fmt.Sprintf("item-%02d", i), idx, rng.Intn(20))
	}
	return items
}

func TestFromItems_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 300; round++ {
		items := randomItems(rng, rng.Intn(12))
		first := FromItems(items).IDs()

		shuffled := append([]model.WorkItem(nil), items...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		require.Equal(t, first, FromItems(items).IDs(), "repeated call")
		require.Equal(t, first, FromItems(shuffled).IDs(), "input order must not matter")

		list := FromItems(items)
		seenNull := false
		for _, it := range list.Items() {
			if it.OrderIndex == nil {
				seenNull = true
				continue
			}
			require.False(t, seenNull, "indexed item %s after an unindexed one", it.ID)
		}
	}
}

func TestPersistenceDelta_DenseAndComplete(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for round := 0; round < 200; round++ {
		list := FromItems(randomItems(rng, rng.Intn(15)))
		if list.Len() > 0 {
			ids := list.IDs()
			list = list.Move(ids[rng.Intn(len(ids))], rng.Intn(len(ids)+4)-2)
		}

		delta := list.PersistenceDelta()
		require.Len(t, delta, list.Len())

		seenIDs := make(map[string]bool)
		for i, a := range delta {
			require.Equal(t, i, a.Index)
			require.False(t, seenIDs[a.ItemID], "duplicate id %s", a.ItemID)
			seenIDs[a.ItemID] = true
		}
		for _, id := range list.IDs() {
			require.True(t, seenIDs[id], "missing %s", id)
		}
	}
}

func TestMove_ToCurrentIndexIsNoOp(t *testing.T) {
	list := FromItems([]model.WorkItem{
		workItem("a", intPtr(0), 0),
		workItem("b", intPtr(1), 0),
		workItem("c", nil, 0),
	})
	for i, id := range list.IDs() {
		assert.Equal(t, list.IDs(), list.Move(id, i).IDs())
	}
}

func TestMove_MissingIDIsNoOp(t *testing.T) {
	list := FromItems([]model.WorkItem{
		workItem("a", intPtr(0), 0),
		workItem("b", intPtr(1), 0),
	})
	for _, k := range []int{-5, -1, 0, 1, 2, 100} {
		assert.Equal(t, list.IDs(), list.Move("nonexistent", k).IDs(), "k=%d", k)
	}
	assert.Equal(t, 0, FromItems(nil).Move("nonexistent", 3).Len())
}

func TestMove_ClampsTarget(t *testing.T) {
	list := FromItems([]model.WorkItem{
		workItem("a", intPtr(0), 0),
		workItem("b", intPtr(1), 0),
		workItem("c", intPtr(2), 0),
	})
	assert.Equal(t, []string{"b", "c", "a"}, list.Move("a", 99).IDs())
	assert.Equal(t, []string{"c", "a", "b"}, list.Move("c", -3).IDs())
	assert.Equal(t, []string{"a", "c", "b"}, list.Move("b", 2).IDs())
	assert.Equal(t, []string{"a", "b", "c"}, list.IDs(), "receiver is unchanged")
}

func TestMove_ReorderScenario(t *testing.T) {
	a := workItem("A", intPtr(0), 20)
	b := workItem("B", intPtr(1), 10)
	c := workItem("C", nil, 0)

	list := FromItems([]model.WorkItem{c, b, a})
	require.Equal(t, []string{"A", "B", "C"}, list.IDs())

	moved := list.Move("C", 0)
	assert.Equal(t, []string{"C", "A", "B"}, moved.IDs())
	assert.Equal(t, []model.OrderAssignment{
		{ItemID: "C", Index: 0},
		{ItemID: "A", Index: 1},
		{ItemID: "B", Index: 2},
	}, moved.PersistenceDelta())
}

func TestMoveOnto(t *testing.T) {
	list := FromItems([]model.WorkItem{
		workItem("a", intPtr(0), 0),
		workItem("b", intPtr(1), 0),
		workItem("c", intPtr(2), 0),
		workItem("d", intPtr(3), 0),
	})

	assert.Equal(t, []string{"b", "c", "a", "d"}, list.MoveOnto("a", "c").IDs())
	assert.Equal(t, []string{"a", "d", "b", "c"}, list.MoveOnto("d", "b").IDs())
	assert.Equal(t, list.IDs(), list.MoveOnto("a", "a").IDs())
	assert.Equal(t, list.IDs(), list.MoveOnto("a", "gone").IDs())
	assert.Equal(t, list.IDs(), list.MoveOnto("gone", "a").IDs())
}

func TestRemoveAndReplace(t *testing.T) {
	list := FromItems([]model.WorkItem{
		workItem("a", intPtr(0), 0),
		workItem("b", intPtr(1), 0),
	})

	assert.Equal(t, []string{"b"}, list.Remove("a").IDs())
	assert.Equal(t, list.IDs(), list.Remove("zzz").IDs())

	updated := workItem("b", intPtr(1), 0)
	updated.Status = model.StatusInProduction
	replaced := list.Replace(updated)
	got, ok := replaced.Get("b")
	require.True(t, ok)
	assert.Equal(t, model.StatusInProduction, got.Status)
	orig, _ := list.Get("b")
	assert.Equal(t, model.StatusPending, orig.Status)
}

func TestReindexed(t *testing.T) {
	list := FromItems([]model.WorkItem{
		workItem("x", nil, 1),
		workItem("y", intPtr(7), 0),
	}).Reindexed()

	for i, it := range list.Items() {
		require.NotNil(t, it.OrderIndex)
		assert.Equal(t, i, *it.OrderIndex)
	}
	// Re-sorting the reindexed items reproduces the same order.
	assert.True(t, list.SameOrder(FromItems(list.Items())))
}
