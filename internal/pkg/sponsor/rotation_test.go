package sponsor

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/problemdock/ProblemDock/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rotationPool(n int) []models.SponsorSlot {
	pool := make([]models.SponsorSlot, n)
	for i := range pool {
		pool[i] = models.SponsorSlot{
			UUID:   fmt.Sprintf("sponsor-%d", i),
			Status: models.SponsorStatusActive,
		}
	}
	return pool
}

func visibleIDs(r *Rotation) []string {
	visible := r.Visible()
	ids := make([]string, len(visible))
	for i, s := range visible {
		ids[i] = s.UUID
	}
	return ids
}

func assertNoDuplicates(t *testing.T, ids []string) {
	t.Helper()
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate visible sponsor %q in %v", id, ids)
		}
		seen[id] = struct{}{}
	}
}

func TestRotationInitialAssignment(t *testing.T) {
	r := NewRotation(rotationPool(8), RotationOptions{Cards: 6, Rand: rand.New(rand.NewSource(1))})

	require.Equal(t, 6, r.Cards())
	assertNoDuplicates(t, visibleIDs(r))
}

func TestRotationNoDuplicateInvariant(t *testing.T) {
	// Simulation over many ticks: with a pool at least as large as the
	// card count, no two cards may ever show the same sponsor.
	for poolSize := 6; poolSize <= 10; poolSize++ {
		for seed := int64(0); seed < 5; seed++ {
			r := NewRotation(rotationPool(poolSize), RotationOptions{
				Cards: 6,
				Rand:  rand.New(rand.NewSource(seed)),
			})
			for tick := 0; tick < 500; tick++ {
				r.Tick()
				ids := visibleIDs(r)
				require.Len(t, ids, 6)
				assertNoDuplicates(t, ids)
			}
		}
	}
}

func TestRotationPoolEqualsCardsStaysPermutation(t *testing.T) {
	pool := rotationPool(3)
	r := NewRotation(pool, RotationOptions{Cards: 3, Rand: rand.New(rand.NewSource(42))})

	want := map[string]struct{}{
		"sponsor-0": {},
		"sponsor-1": {},
		"sponsor-2": {},
	}

	check := func() {
		ids := visibleIDs(r)
		require.Len(t, ids, 3)
		assertNoDuplicates(t, ids)
		for _, id := range ids {
			_, ok := want[id]
			require.True(t, ok, "unexpected sponsor %q", id)
		}
	}

	check()
	for tick := 0; tick < 200; tick++ {
		r.Tick()
		check()
	}
}

func TestRotationSingleSponsorPool(t *testing.T) {
	r := NewRotation(rotationPool(1), RotationOptions{Cards: 3, Rand: rand.New(rand.NewSource(7))})

	require.Equal(t, 3, r.Cards())
	before := visibleIDs(r)
	for _, id := range before {
		assert.Equal(t, "sponsor-0", id)
	}

	// Flips may still animate but the content cannot change.
	for tick := 0; tick < 20; tick++ {
		r.Tick()
		assert.Equal(t, before, visibleIDs(r))
	}
}

func TestRotationEmptyPool(t *testing.T) {
	r := NewRotation(nil, RotationOptions{Cards: 6, Rand: rand.New(rand.NewSource(1))})

	assert.Equal(t, 0, r.Cards())
	assert.Empty(t, r.Visible())
	assert.Nil(t, r.Tick())
}

func TestRotationFlipCount(t *testing.T) {
	r := NewRotation(rotationPool(8), RotationOptions{Cards: 6, Rand: rand.New(rand.NewSource(3))})

	sawOne := false
	sawTwo := false
	for tick := 0; tick < 100; tick++ {
		flipped := r.Tick()
		require.GreaterOrEqual(t, len(flipped), 1)
		require.LessOrEqual(t, len(flipped), 2)
		switch len(flipped) {
		case 1:
			sawOne = true
		case 2:
			sawTwo = true
		}
	}
	assert.True(t, sawOne, "expected some single-card flips")
	assert.True(t, sawTwo, "expected some double-card flips")
}

func TestRotationRunStopsOnCancel(t *testing.T) {
	r := NewRotation(rotationPool(6), RotationOptions{
		Cards:        4,
		TickEvery:    2 * time.Millisecond,
		FlipDuration: time.Millisecond,
		Rand:         rand.New(rand.NewSource(9)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("rotation loop did not stop after cancellation")
	}
	assertNoDuplicates(t, visibleIDs(r))
}
