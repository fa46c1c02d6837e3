package sponsor

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/problemdock/ProblemDock/app/models"
)

// Rotation animates which sponsor is visible in each card position of a
// zone. State is local to one viewer session: the pool is fetched once
// and every viewer sees an independently randomized sequence. Fairness is
// statistical, no cross-session coordination exists.
//
// Each card carries a front and a back face. Ticks flip one or two cards
// to their other face, then re-deal the now-hidden faces so content keeps
// varying. No two cards show the same sponsor at the same instant as long
// as the pool is at least as large as the card count; smaller pools
// degrade gracefully down to a single sponsor on every face.
type Rotation struct {
	mu    sync.Mutex
	pool  []models.SponsorSlot
	cards []rotationCard
	rng   *rand.Rand

	tickEvery    time.Duration
	flipDuration time.Duration
}

// rotationCard tracks the two faces of one card position as pool indexes.
// A face of -1 is absent; the card then keeps showing its other face.
type rotationCard struct {
	front    int
	back     int
	showBack bool
}

// RotationOptions tunes a rotation. Zero values fall back to the package
// defaults; Rand falls back to a time-seeded source.
type RotationOptions struct {
	Cards        int
	TickEvery    time.Duration
	FlipDuration time.Duration
	Rand         *rand.Rand
}

// NewRotation deals the initial faces for a zone: the pool is shuffled,
// the first cards become front faces (cycling when the pool is smaller
// than the card count), and back faces are pre-dealt from the sponsors
// left over. An empty pool yields a rotation with no cards.
func NewRotation(pool []models.SponsorSlot, opts RotationOptions) *Rotation {
	if opts.Cards <= 0 {
		opts.Cards = DefaultRailCards
	}
	if opts.TickEvery <= 0 {
		opts.TickEvery = DefaultTickEvery
	}
	if opts.FlipDuration <= 0 {
		opts.FlipDuration = DefaultFlipDuration
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	r := &Rotation{
		pool:         append([]models.SponsorSlot(nil), pool...),
		rng:          rng,
		tickEvery:    opts.TickEvery,
		flipDuration: opts.FlipDuration,
	}
	if len(r.pool) == 0 {
		return r
	}

	shuffled := rng.Perm(len(r.pool))
	r.cards = make([]rotationCard, opts.Cards)
	fronts := make(map[int]struct{}, opts.Cards)
	for i := range r.cards {
		front := shuffled[i%len(shuffled)]
		r.cards[i] = rotationCard{front: front, back: -1}
		fronts[front] = struct{}{}
	}
	for i := range r.cards {
		r.cards[i].back = r.pickFace(fronts, r.cards[i].front)
	}
	return r
}

// Cards returns the number of card positions.
func (r *Rotation) Cards() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cards)
}

// Visible returns the sponsor currently shown per card position.
func (r *Rotation) Visible() []models.SponsorSlot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.SponsorSlot, len(r.cards))
	for i, c := range r.cards {
		out[i] = r.pool[visibleIndex(c)]
	}
	return out
}

// Flip turns one or two randomly chosen cards over (uniform choice
// between flipping one and flipping two) and returns the flipped card
// positions. The face turning up is checked against everything that
// stays visible, and re-dealt on conflict, so a sufficiently large pool
// never shows the same sponsor twice at once.
func (r *Rotation) Flip() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.cards) == 0 {
		return nil
	}
	count := 1 + r.rng.Intn(2)
	if count > len(r.cards) {
		count = len(r.cards)
	}
	flipped := r.rng.Perm(len(r.cards))[:count]

	flipping := make(map[int]struct{}, count)
	for _, i := range flipped {
		flipping[i] = struct{}{}
	}
	taken := make(map[int]struct{}, len(r.cards))
	for i, c := range r.cards {
		if _, ok := flipping[i]; !ok {
			taken[visibleIndex(c)] = struct{}{}
		}
	}

	for _, i := range flipped {
		card := &r.cards[i]
		incoming := hiddenIndex(*card)
		if _, clash := taken[incoming]; clash || incoming < 0 {
			incoming = r.pickFace(taken, visibleIndex(*card))
		}
		if incoming < 0 {
			// Nothing else to show; the flip animation runs with
			// unchanged content.
			incoming = visibleIndex(*card)
		}
		setHidden(card, incoming)
		card.showBack = !card.showBack
		taken[visibleIndex(*card)] = struct{}{}
	}
	return flipped
}

// Refresh re-deals the hidden face of each given card with a sponsor not
// visible anywhere in the zone, falling back to any sponsor other than
// the card's own visible one. It runs after the flip transition has
// completed.
func (r *Rotation) Refresh(flipped []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	visible := make(map[int]struct{}, len(r.cards))
	for _, c := range r.cards {
		visible[visibleIndex(c)] = struct{}{}
	}

	for _, i := range flipped {
		if i < 0 || i >= len(r.cards) {
			continue
		}
		card := &r.cards[i]
		if next := r.pickFace(visible, visibleIndex(*card)); next >= 0 {
			setHidden(card, next)
		}
	}
}

// Tick performs one full rotation step, flip plus hidden-face refresh,
// and returns the flipped card positions.
func (r *Rotation) Tick() []int {
	flipped := r.Flip()
	r.Refresh(flipped)
	return flipped
}

// Run drives the rotation until the context is canceled: flip on every
// tick, then refresh the hidden faces once the flip transition duration
// has passed. Cancellation also aborts a pending post-flip refresh.
func (r *Rotation) Run(ctx context.Context) {
	if r.Cards() == 0 {
		return
	}

	ticker := time.NewTicker(r.tickEvery)
	defer ticker.Stop()

	flipTimer := time.NewTimer(r.flipDuration)
	if !flipTimer.Stop() {
		<-flipTimer.C
	}
	defer flipTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			flipped := r.Flip()
			flipTimer.Reset(r.flipDuration)
			select {
			case <-ctx.Done():
				return
			case <-flipTimer.C:
				r.Refresh(flipped)
			}
		}
	}
}

// pickFace draws a random pool index outside the excluded set. When the
// exclusion exhausts the pool it falls back to any index other than
// notOwn, and to -1 when even that is impossible.
func (r *Rotation) pickFace(exclude map[int]struct{}, notOwn int) int {
	candidates := make([]int, 0, len(r.pool))
	for i := range r.pool {
		if _, ok := exclude[i]; !ok {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		for i := range r.pool {
			if i != notOwn {
				candidates = append(candidates, i)
			}
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	return candidates[r.rng.Intn(len(candidates))]
}

func visibleIndex(c rotationCard) int {
	if c.showBack && c.back >= 0 {
		return c.back
	}
	return c.front
}

func hiddenIndex(c rotationCard) int {
	if c.showBack && c.back >= 0 {
		return c.front
	}
	return c.back
}

func setHidden(c *rotationCard, idx int) {
	if c.showBack && c.back >= 0 {
		c.front = idx
	} else {
		c.back = idx
	}
}
