package flow_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/lantern/pkg/adapters/memory"
	"github.com/aretw0/lantern/pkg/domain"
	"github.com/aretw0/lantern/pkg/flow"
	"github.com/aretw0/lantern/pkg/journey"
	"github.com/aretw0/lantern/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway records calls and can fail or block on demand.
type stubGateway struct {
	mu      sync.Mutex
	calls   []domain.LanternRequest
	err     error
	entered chan struct{}
	release chan struct{}
}

func (g *stubGateway) CreateLantern(ctx context.Context, req domain.LanternRequest) (domain.LanternRecord, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	err := g.err
	n := len(g.calls)
	g.mu.Unlock()

	if g.entered != nil {
		g.entered <- struct{}{}
		<-g.release
	}
	if err != nil {
		return domain.LanternRecord{}, err
	}
	return domain.LanternRecord{ID: strings.Repeat("x", n), LanternRequest: req}, nil
}

func (g *stubGateway) setErr(err error) {
	g.mu.Lock()
	g.err = err
	g.mu.Unlock()
}

func (g *stubGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func newController(t *testing.T, store flow.JourneyStore, gw ports.LanternGateway, opts ...flow.Option) *flow.Controller {
	t.Helper()
	if store == nil {
		store = journey.NewStore(memory.NewStore())
	}
	c, err := flow.New(context.Background(), store, gw, opts...)
	require.NoError(t, err)
	return c
}

// toWriting walks a fresh controller to the writing phase.
func toWriting(t *testing.T, c *flow.Controller, date string) {
	t.Helper()
	ctx := context.Background()
	token, _, err := c.SelectBirthdate(ctx, date)
	require.NoError(t, err)
	require.NoError(t, c.CompleteEntry(ctx, token))
}

func TestController_FullJourney(t *testing.T) {
	ctx := context.Background()
	store := journey.NewStore(memory.NewStore())
	gw := memory.NewGateway()
	c := newController(t, store, gw, flow.WithShareBaseURL("https://lanterns.example/"))

	assert.Equal(t, domain.PhaseIdle, c.State().Phase)

	token, sign, err := c.SelectBirthdate(ctx, "1990-01-26")
	require.NoError(t, err)
	assert.Equal(t, domain.Sign{Animal: domain.AnimalHorse, Element: domain.ElementMetal}, sign)
	state := c.State()
	assert.Equal(t, domain.PhaseEnteringTransition, state.Phase)
	require.NotNil(t, state.Pending)
	assert.Equal(t, sign, *state.Pending)

	// Nothing is recorded before the reveal completes.
	j, err := c.Journey(ctx)
	require.NoError(t, err)
	assert.Nil(t, j.Birthdate)

	require.NoError(t, c.CompleteEntry(ctx, token))
	state = c.State()
	assert.Equal(t, domain.PhaseWriting, state.Phase)
	assert.False(t, state.Locked)
	assert.Nil(t, state.Pending)

	_, err = c.SetIdentity(ctx, domain.Ptr("Mei"), domain.Ptr("mei@example.com"))
	require.NoError(t, err)

	sub, err := c.SubmitWish(ctx, "  Happy New Year  ")
	require.NoError(t, err)
	assert.Equal(t, "Happy New Year", sub.Wish.Text)
	assert.NotEmpty(t, sub.Wish.ID)
	assert.NotEmpty(t, sub.Record.ID)
	assert.Equal(t, domain.PhaseExitingTransition, c.State().Phase)

	_, ok := c.ShareLink()
	assert.False(t, ok, "not share-ready until the release completes")

	require.NoError(t, c.CompleteExit(ctx, sub.Token))
	assert.Equal(t, domain.PhaseDone, c.State().Phase)

	link, ok := c.ShareLink()
	require.True(t, ok)
	assert.Equal(t, "https://lanterns.example/lantern/"+sub.Record.ID, link)

	j, err = c.Journey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1990-01-26", j.Birthdate.String())
	assert.Equal(t, domain.AnimalHorse, *j.Zodiac)
	assert.Equal(t, domain.ElementMetal, *j.Element)
	require.Len(t, j.Wishes, 1)
	assert.Equal(t, sub.Wish, j.Wishes[0])

	lanterns := gw.Lanterns()
	require.Len(t, lanterns, 1)
	assert.Equal(t, domain.LanternRequest{
		Name:       "Mei",
		Email:      "mei@example.com",
		Birthdate:  "1990-01-26",
		AnimalSign: domain.AnimalHorse,
		Element:    domain.ElementMetal,
		Message:    "Happy New Year",
	}, lanterns[0].LanternRequest)
}

func TestController_InvalidBirthdateStaysIdle(t *testing.T) {
	c := newController(t, nil, nil)

	for _, input := range []string{"not-a-date", "1990-13-01", "1990-02-30", ""} {
		_, _, err := c.SelectBirthdate(context.Background(), input)
		assert.ErrorIs(t, err, domain.ErrInvalidFormat, input)
	}
	assert.Equal(t, domain.PhaseIdle, c.State().Phase)
	assert.Zero(t, c.State().Generation)
}

func TestController_UndefinedTriggersAreRefused(t *testing.T) {
	ctx := context.Background()
	c := newController(t, nil, nil)

	_, err := c.SubmitWish(ctx, "too early")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	var te *domain.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, domain.PhaseIdle, te.From)
	assert.Equal(t, domain.TriggerSubmitWish, te.Trigger)

	assert.ErrorIs(t, c.CompleteExit(ctx, 0), domain.ErrInvalidTransition)
	assert.ErrorIs(t, c.WriteAnother(ctx), domain.ErrInvalidTransition)
	assert.ErrorIs(t, c.CompleteEntry(ctx, 0), domain.ErrInvalidTransition)
	assert.Equal(t, domain.PhaseIdle, c.State().Phase)

	toWriting(t, c, "2025-01-20")
	_, _, err = c.SelectBirthdate(ctx, "2025-02-01")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "birthdate is only set from idle")

	j, err := c.Journey(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.AnimalDragon, *j.Zodiac)
}

func TestController_StaleCompletionIsIgnored(t *testing.T) {
	ctx := context.Background()
	store := journey.NewStore(memory.NewStore())
	c := newController(t, store, nil)

	token, _, err := c.SelectBirthdate(ctx, "2025-02-01")
	require.NoError(t, err)

	err = c.CompleteEntry(ctx, token-1)
	assert.ErrorIs(t, err, domain.ErrStaleCompletion)
	assert.Equal(t, domain.PhaseEnteringTransition, c.State().Phase)

	j, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, j.Zodiac, "a stale signal applies nothing")

	require.NoError(t, c.CompleteEntry(ctx, token))

	// A repeated signal arrives after the phase moved on.
	assert.ErrorIs(t, c.CompleteEntry(ctx, token), domain.ErrInvalidTransition)

	sub, err := c.SubmitWish(ctx, "first")
	require.NoError(t, err)
	assert.ErrorIs(t, c.CompleteExit(ctx, token), domain.ErrStaleCompletion)
	require.NoError(t, c.CompleteExit(ctx, sub.Token))
}

func TestController_GatewayFailureKeepsWishResubmittable(t *testing.T) {
	ctx := context.Background()
	gw := &stubGateway{err: &domain.GatewayError{Kind: domain.GatewayUnreachable}}
	c := newController(t, nil, gw)
	toWriting(t, c, "2025-01-20")

	_, err := c.SubmitWish(ctx, "Peace")
	assert.ErrorIs(t, err, domain.ErrUnreachable)

	state := c.State()
	assert.Equal(t, domain.PhaseWriting, state.Phase)
	assert.False(t, state.Locked)

	j, err := c.Journey(ctx)
	require.NoError(t, err)
	assert.Empty(t, j.Wishes)

	gw.setErr(&domain.GatewayError{Kind: domain.GatewayRejected, Status: 422, Detail: "bad email"})
	_, err = c.SubmitWish(ctx, "Peace")
	assert.ErrorIs(t, err, domain.ErrRejected)

	gw.setErr(nil)
	sub, err := c.SubmitWish(ctx, "Peace")
	require.NoError(t, err)
	assert.Equal(t, "Peace", sub.Wish.Text)
	assert.Equal(t, 3, gw.callCount())
	assert.Equal(t, domain.PhaseExitingTransition, c.State().Phase)
}

func TestController_WishGuards(t *testing.T) {
	ctx := context.Background()
	gw := &stubGateway{}
	c := newController(t, nil, gw)
	toWriting(t, c, "2025-01-20")

	_, err := c.SubmitWish(ctx, "   \t ")
	assert.ErrorIs(t, err, domain.ErrEmptyWish)

	_, err = c.SubmitWish(ctx, strings.Repeat("灯", domain.MaxWishLength+1))
	assert.ErrorIs(t, err, domain.ErrWishTooLong)
	assert.Zero(t, gw.callCount())
	assert.Equal(t, domain.PhaseWriting, c.State().Phase)

	// The limit counts characters, not bytes.
	sub, err := c.SubmitWish(ctx, strings.Repeat("灯", domain.MaxWishLength))
	require.NoError(t, err)
	require.NoError(t, c.CompleteExit(ctx, sub.Token))
	require.NoError(t, c.WriteAnother(ctx))
	assert.Equal(t, domain.PhaseWriting, c.State().Phase)

	_, err = c.SubmitWish(ctx, strings.Repeat("灯", domain.MaxWishLength))
	assert.ErrorIs(t, err, domain.ErrDuplicateWish)
	assert.Equal(t, 1, gw.callCount(), "duplicates never reach the gateway")
	assert.False(t, c.State().Locked)
}

func TestController_MaxWishLengthOption(t *testing.T) {
	c := newController(t, nil, nil, flow.WithMaxWishLength(5))
	toWriting(t, c, "2025-01-20")

	_, err := c.SubmitWish(context.Background(), "123456")
	assert.ErrorIs(t, err, domain.ErrWishTooLong)
}

func TestController_ConcurrentSubmitIsRefused(t *testing.T) {
	ctx := context.Background()
	gw := &stubGateway{entered: make(chan struct{}), release: make(chan struct{})}
	c := newController(t, nil, gw)
	toWriting(t, c, "2025-01-20")

	var (
		wg  sync.WaitGroup
		sub flow.Submission
		err error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sub, err = c.SubmitWish(ctx, "first")
	}()

	<-gw.entered
	assert.True(t, c.State().Locked)

	_, second := c.SubmitWish(ctx, "second")
	var te *domain.TransitionError
	require.ErrorAs(t, second, &te)
	assert.True(t, te.Locked)

	close(gw.release)
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, "first", sub.Wish.Text)
	assert.Equal(t, 1, gw.callCount())

	j, jerr := c.Journey(ctx)
	require.NoError(t, jerr)
	assert.Len(t, j.Wishes, 1)
}

func TestController_Resume(t *testing.T) {
	ctx := context.Background()

	revealed := func(t *testing.T, wishes ...string) *journey.Store {
		store := journey.NewStore(memory.NewStore())
		cmds := []domain.Command{
			domain.SetBirthdate{Date: domain.MustParseDate("1990-01-26")},
			domain.SetZodiac{Animal: domain.AnimalHorse},
			domain.SetElement{Element: domain.ElementMetal},
		}
		for _, w := range wishes {
			cmds = append(cmds, domain.AddWishes{Wishes: []domain.Wish{{Text: w}}})
		}
		_, err := store.Dispatch(ctx, cmds...)
		require.NoError(t, err)
		return store
	}

	t.Run("Revealed Journey Resumes Writing", func(t *testing.T) {
		c := newController(t, revealed(t, "old"), nil)
		assert.Equal(t, domain.PhaseWriting, c.State().Phase)
		assert.False(t, c.State().Locked)
	})

	t.Run("Resume Done With Wishes", func(t *testing.T) {
		c := newController(t, revealed(t, "old"), nil, flow.WithResume(flow.ResumeDone))
		assert.Equal(t, domain.PhaseDone, c.State().Phase)

		_, ok := c.ShareLink()
		assert.False(t, ok, "no lantern was created by this controller")
		require.NoError(t, c.WriteAnother(ctx))
	})

	t.Run("Resume Done Without Wishes", func(t *testing.T) {
		c := newController(t, revealed(t), nil, flow.WithResume(flow.ResumeDone))
		assert.Equal(t, domain.PhaseWriting, c.State().Phase)
	})

	t.Run("Birthdate Alone Starts Idle", func(t *testing.T) {
		store := journey.NewStore(memory.NewStore())
		_, err := store.Dispatch(ctx, domain.SetBirthdate{Date: domain.MustParseDate("1990-01-26")})
		require.NoError(t, err)

		c := newController(t, store, nil)
		assert.Equal(t, domain.PhaseIdle, c.State().Phase)
	})
}

func TestController_Offline(t *testing.T) {
	ctx := context.Background()
	c := newController(t, nil, nil)
	toWriting(t, c, "2025-01-20")

	sub, err := c.SubmitWish(ctx, "offline wish")
	require.NoError(t, err)
	assert.Empty(t, sub.Record.ID)
	assert.Equal(t, "offline wish", sub.Record.Message)

	require.NoError(t, c.CompleteExit(ctx, sub.Token))
	_, ok := c.ShareLink()
	assert.False(t, ok)
}

func TestController_Close(t *testing.T) {
	ctx := context.Background()
	c := newController(t, nil, nil)

	token, _, err := c.SelectBirthdate(ctx, "2025-01-20")
	require.NoError(t, err)

	c.Close()
	c.Close()

	assert.ErrorIs(t, c.CompleteEntry(ctx, token), domain.ErrControllerClosed)
	_, _, err = c.SelectBirthdate(ctx, "2025-01-20")
	assert.ErrorIs(t, err, domain.ErrControllerClosed)
	_, err = c.SubmitWish(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrControllerClosed)
	_, err = c.SetIdentity(ctx, domain.Ptr("Mei"), nil)
	assert.ErrorIs(t, err, domain.ErrControllerClosed)

	j, err := c.Journey(ctx)
	require.NoError(t, err)
	assert.Nil(t, j.Birthdate, "the interrupted reveal was never recorded")
}

func TestController_Hooks(t *testing.T) {
	ctx := context.Background()

	var (
		mu          sync.Mutex
		transitions []string
		rejections  []domain.Trigger
		submissions int
	)
	hooks := domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			mu.Lock()
			defer mu.Unlock()
			transitions = append(transitions, string(e.From)+">"+string(e.To))
		},
		OnRejected: func(_ context.Context, e *domain.RejectionEvent) {
			mu.Lock()
			defer mu.Unlock()
			rejections = append(rejections, e.Trigger)
		},
		OnSubmission: func(_ context.Context, e *domain.SubmissionEvent) {
			mu.Lock()
			defer mu.Unlock()
			submissions++
		},
	}

	c := newController(t, nil, memory.NewGateway(), flow.WithLifecycleHooks(hooks))

	_, _, err := c.SelectBirthdate(ctx, "bogus")
	require.Error(t, err)
	toWriting(t, c, "2025-01-20")
	sub, err := c.SubmitWish(ctx, "hello")
	require.NoError(t, err)
	require.NoError(t, c.CompleteExit(ctx, sub.Token))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"idle>entering_transition",
		"entering_transition>writing",
		"writing>exiting_transition",
		"exiting_transition>done",
	}, transitions)
	assert.Equal(t, []domain.Trigger{domain.TriggerSelectBirthdate}, rejections)
	assert.Equal(t, 1, submissions)
}

// flakyStore fails the next n wish recordings.
type flakyStore struct {
	*journey.Store
	mu       sync.Mutex
	failAdds int
}

func (s *flakyStore) Dispatch(ctx context.Context, cmds ...domain.Command) (domain.JourneyState, error) {
	s.mu.Lock()
	fail := false
	for _, cmd := range cmds {
		if _, ok := cmd.(domain.AddWishes); ok && s.failAdds > 0 {
			s.failAdds--
			fail = true
		}
	}
	s.mu.Unlock()
	if fail {
		return domain.JourneyState{}, errors.New("disk full")
	}
	return s.Store.Dispatch(ctx, cmds...)
}

func TestController_RecordFailureReusesCreatedLantern(t *testing.T) {
	ctx := context.Background()
	gw := &stubGateway{}
	store := &flakyStore{Store: journey.NewStore(memory.NewStore()), failAdds: 1}
	c := newController(t, store, gw)
	toWriting(t, c, "2025-01-20")

	_, err := c.SubmitWish(ctx, "Peace")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `lantern "x" created`)
	assert.Equal(t, domain.PhaseWriting, c.State().Phase)
	assert.False(t, c.State().Locked)

	sub, err := c.SubmitWish(ctx, "Peace")
	require.NoError(t, err)
	assert.Equal(t, "x", sub.Record.ID, "the first lantern is reused")
	assert.Equal(t, 1, gw.callCount())

	j, err := c.Journey(ctx)
	require.NoError(t, err)
	require.Len(t, j.Wishes, 1)

	// Other texts still reach the gateway.
	require.NoError(t, c.CompleteExit(ctx, sub.Token))
	require.NoError(t, c.WriteAnother(ctx))
	sub, err = c.SubmitWish(ctx, "Health")
	require.NoError(t, err)
	assert.Equal(t, "xx", sub.Record.ID)
	assert.Equal(t, 2, gw.callCount())
}

func TestController_UnconfirmedLanternIsNotRetried(t *testing.T) {
	ctx := context.Background()
	gw := &stubGateway{err: &domain.GatewayError{Kind: domain.GatewayUnconfirmed, Status: 201}}
	c := newController(t, nil, gw)
	toWriting(t, c, "2025-01-20")

	sub, err := c.SubmitWish(ctx, "Peace")
	require.NoError(t, err)
	assert.Empty(t, sub.Record.ID)
	assert.Equal(t, "Peace", sub.Record.Message)
	assert.Equal(t, domain.PhaseExitingTransition, c.State().Phase)

	j, err := c.Journey(ctx)
	require.NoError(t, err)
	assert.True(t, j.HasWish("Peace"))

	require.NoError(t, c.CompleteExit(ctx, sub.Token))
	_, ok := c.ShareLink()
	assert.False(t, ok, "no link without a lantern ID")
	assert.Equal(t, 1, gw.callCount())
}
