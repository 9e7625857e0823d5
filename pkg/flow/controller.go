package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/aretw0/lantern/internal/logging"
	"github.com/aretw0/lantern/pkg/domain"
	"github.com/aretw0/lantern/pkg/ports"
	"github.com/aretw0/lantern/pkg/zodiac"
	"github.com/google/uuid"
)

// JourneyStore is the persistence the controller needs.
// It is satisfied by *journey.Store.
type JourneyStore interface {
	Load(ctx context.Context) (domain.JourneyState, error)
	Dispatch(ctx context.Context, cmds ...domain.Command) (domain.JourneyState, error)
}

// Token identifies one entry into a transition phase. A completion signal is
// only honoured when it carries the token of the current entry.
type Token uint64

// Submission is the outcome of an accepted wish.
type Submission struct {
	Wish   domain.Wish
	Record domain.LanternRecord
	Token  Token // Completes the exiting transition
}

// Controller sequences one visitor through the journey.
type Controller struct {
	store   JourneyStore
	gateway ports.LanternGateway
	calc    *zodiac.Calculator
	logger  *slog.Logger
	hooks   domain.LifecycleHooks

	resume        ResumePolicy
	maxWishLength int
	shareBase     string
	newID         func() string

	mu          sync.Mutex
	state       domain.FlowState
	pendingDate *domain.Date
	closed      bool
	// unrecorded holds lanterns created remotely whose wish failed to record,
	// keyed by wish text. A resubmission reuses them instead of creating another.
	unrecorded map[string]domain.LanternRecord
}

// New loads the journey and creates a controller positioned according to it.
// A nil gateway runs the controller offline: wishes are recorded locally and
// carry no lantern ID.
func New(ctx context.Context, store JourneyStore, gateway ports.LanternGateway, opts ...Option) (*Controller, error) {
	c := &Controller{
		store:         store,
		gateway:       gateway,
		calc:          zodiac.New(),
		logger:        logging.NewNop(),
		resume:        ResumeWriting,
		maxWishLength: domain.MaxWishLength,
		newID:         uuid.NewString,
		state:         domain.FlowState{Phase: domain.PhaseIdle},
		unrecorded:    make(map[string]domain.LanternRecord),
	}
	for _, opt := range opts {
		opt(c)
	}

	journey, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load journey: %w", err)
	}

	if journey.Revealed() {
		c.state.Phase = domain.PhaseWriting
		if c.resume == ResumeDone && len(journey.Wishes) > 0 {
			c.state.Phase = domain.PhaseDone
		}
	}

	c.logger.Debug("controller started", "phase", c.state.Phase, "wishes", len(journey.Wishes))
	return c, nil
}

// State returns a snapshot of the flow state.
func (c *Controller) State() domain.FlowState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Journey returns the stored journey.
func (c *Controller) Journey(ctx context.Context) (domain.JourneyState, error) {
	return c.store.Load(ctx)
}

// ShareLink returns the public link of the last lantern once the journey is done.
func (c *Controller) ShareLink() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase != domain.PhaseDone || c.state.LanternID == "" {
		return "", false
	}
	return c.shareBase + "/lantern/" + c.state.LanternID, true
}

// SelectBirthdate calculates the sign of input and starts the reveal.
// Nothing is persisted until CompleteEntry.
func (c *Controller) SelectBirthdate(ctx context.Context, input string) (Token, domain.Sign, error) {
	c.mu.Lock()
	if err := c.guard(domain.TriggerSelectBirthdate); err != nil {
		c.mu.Unlock()
		c.rejected(ctx, domain.TriggerSelectBirthdate, err)
		return 0, domain.Sign{}, err
	}

	date, err := domain.ParseDate(input)
	if err != nil {
		phase := c.state.Phase
		c.mu.Unlock()
		c.rejectedIn(ctx, phase, domain.TriggerSelectBirthdate, err)
		return 0, domain.Sign{}, err
	}
	result := c.calc.CalculateDate(date)

	c.pendingDate = &date
	c.state.Pending = &result.Sign
	token := c.enter(domain.PhaseEnteringTransition)
	c.mu.Unlock()

	c.transitioned(ctx, domain.PhaseIdle, domain.PhaseEnteringTransition, domain.TriggerSelectBirthdate)
	c.logger.Info("birthdate selected",
		"animal", result.Animal,
		"element", result.Element,
		"approximate", result.Approximate,
	)
	return token, result.Sign, nil
}

// CompleteEntry finishes the reveal and records birthdate and sign in one dispatch.
func (c *Controller) CompleteEntry(ctx context.Context, token Token) error {
	c.mu.Lock()
	if err := c.guardToken(domain.TriggerEntryComplete, token); err != nil {
		c.mu.Unlock()
		c.rejected(ctx, domain.TriggerEntryComplete, err)
		return err
	}

	// The dispatch stays under the lock so a repeated token can't record twice.
	sign := *c.state.Pending
	if _, err := c.store.Dispatch(ctx,
		domain.SetBirthdate{Date: *c.pendingDate},
		domain.SetZodiac{Animal: sign.Animal},
		domain.SetElement{Element: sign.Element},
	); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to record reveal: %w", err)
	}

	c.pendingDate = nil
	c.state.Pending = nil
	c.state.Phase = domain.PhaseWriting
	c.state.Locked = false
	c.mu.Unlock()

	c.transitioned(ctx, domain.PhaseEnteringTransition, domain.PhaseWriting, domain.TriggerEntryComplete)
	return nil
}

// SubmitWish validates text, creates a lantern and records the wish.
//
// The wish is only recorded once the gateway accepts it, so a failed
// submission can be retried with the same text. While the gateway call is in
// flight the controller is locked and further submissions are refused.
func (c *Controller) SubmitWish(ctx context.Context, text string) (Submission, error) {
	c.mu.Lock()
	if err := c.guard(domain.TriggerSubmitWish); err != nil {
		c.mu.Unlock()
		c.rejected(ctx, domain.TriggerSubmitWish, err)
		return Submission{}, err
	}
	text, err := c.validateWish(text)
	if err != nil {
		c.mu.Unlock()
		c.rejectedIn(ctx, domain.PhaseWriting, domain.TriggerSubmitWish, err)
		return Submission{}, err
	}
	c.state.Locked = true
	c.mu.Unlock()

	journey, err := c.store.Load(ctx)
	if err != nil {
		c.unlockWriting()
		return Submission{}, fmt.Errorf("failed to load journey: %w", err)
	}
	if journey.HasWish(text) {
		c.unlockWriting()
		c.rejectedIn(ctx, domain.PhaseWriting, domain.TriggerSubmitWish, domain.ErrDuplicateWish)
		return Submission{}, domain.ErrDuplicateWish
	}

	wish := domain.Wish{ID: c.newID(), Text: text}
	req := buildRequest(journey, text)
	record, err := c.createOnce(ctx, req)
	if errors.Is(err, domain.ErrUnconfirmed) {
		// The lantern exists under an unknown ID. Record the wish without
		// one so a retry can't create a second lantern.
		c.logger.Warn("lantern created without confirmation", "err", err)
		record, err = domain.LanternRecord{LanternRequest: req}, nil
	}
	if err != nil {
		c.mu.Lock()
		c.state.Locked = false
		closed := c.closed
		c.mu.Unlock()
		if !closed {
			c.transitioned(ctx, domain.PhaseWriting, domain.PhaseWriting, domain.TriggerSubmitFailed)
		}
		c.logger.Warn("wish submission failed", "err", err)
		return Submission{}, err
	}

	if _, err := c.store.Dispatch(ctx, domain.AddWishes{Wishes: []domain.Wish{wish}}); err != nil {
		c.mu.Lock()
		c.unrecorded[text] = record
		c.state.Locked = false
		c.mu.Unlock()
		return Submission{}, fmt.Errorf("lantern %q created but wish not recorded: %w", record.ID, err)
	}

	c.mu.Lock()
	delete(c.unrecorded, text)
	c.mu.Unlock()

	sub := Submission{Wish: wish, Record: record}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return sub, domain.ErrControllerClosed
	}
	c.state.Locked = false
	c.state.LanternID = record.ID
	sub.Token = c.enter(domain.PhaseExitingTransition)
	c.mu.Unlock()

	c.transitioned(ctx, domain.PhaseWriting, domain.PhaseExitingTransition, domain.TriggerSubmitWish)
	c.logger.Info("wish submitted", "wish_id", wish.ID, "lantern_id", record.ID)
	return sub, nil
}

// CompleteExit finishes the release and makes the journey share-ready.
func (c *Controller) CompleteExit(ctx context.Context, token Token) error {
	c.mu.Lock()
	if err := c.guardToken(domain.TriggerExitComplete, token); err != nil {
		c.mu.Unlock()
		c.rejected(ctx, domain.TriggerExitComplete, err)
		return err
	}
	c.state.Phase = domain.PhaseDone
	c.mu.Unlock()

	c.transitioned(ctx, domain.PhaseExitingTransition, domain.PhaseDone, domain.TriggerExitComplete)
	return nil
}

// WriteAnother returns from done to writing so another wish can be made.
func (c *Controller) WriteAnother(ctx context.Context) error {
	c.mu.Lock()
	if err := c.guard(domain.TriggerWriteAnother); err != nil {
		c.mu.Unlock()
		c.rejected(ctx, domain.TriggerWriteAnother, err)
		return err
	}
	c.state.Phase = domain.PhaseWriting
	c.state.Locked = false
	c.mu.Unlock()

	c.transitioned(ctx, domain.PhaseDone, domain.PhaseWriting, domain.TriggerWriteAnother)
	return nil
}

// SetIdentity records the visitor's name and email. Nil fields are left as they are.
// It is accepted in every phase, but not after Close.
func (c *Controller) SetIdentity(ctx context.Context, name, email *string) (domain.JourneyState, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return domain.JourneyState{}, domain.ErrControllerClosed
	}
	return c.store.Dispatch(ctx, domain.SetIdentity{Name: name, Email: email})
}

// Close abandons the journey view. Pending completion signals become stale
// and every further transition fails with domain.ErrControllerClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.state.Generation++
	c.logger.Debug("controller closed", "phase", c.state.Phase)
}

// createOnce reuses a lantern already created for text, if any.
func (c *Controller) createOnce(ctx context.Context, req domain.LanternRequest) (domain.LanternRecord, error) {
	c.mu.Lock()
	record, ok := c.unrecorded[req.Message]
	c.mu.Unlock()
	if ok {
		c.logger.Info("reusing created lantern", "lantern_id", record.ID)
		return record, nil
	}
	return c.createLantern(ctx, req)
}

func (c *Controller) createLantern(ctx context.Context, req domain.LanternRequest) (domain.LanternRecord, error) {
	if c.gateway == nil {
		return domain.LanternRecord{LanternRequest: req}, nil
	}

	start := time.Now()
	record, err := c.gateway.CreateLantern(ctx, req)
	if c.hooks.OnSubmission != nil {
		c.hooks.OnSubmission(ctx, &domain.SubmissionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSubmission},
			LanternID: record.ID,
			Duration:  time.Since(start),
			Err:       err,
		})
	}
	return record, err
}

func buildRequest(journey domain.JourneyState, text string) domain.LanternRequest {
	req := domain.LanternRequest{Message: text}
	if journey.Identity.Name != nil {
		req.Name = *journey.Identity.Name
	}
	if journey.Identity.Email != nil {
		req.Email = *journey.Identity.Email
	}
	if journey.Birthdate != nil {
		req.Birthdate = journey.Birthdate.String()
	}
	if journey.Zodiac != nil {
		req.AnimalSign = *journey.Zodiac
	}
	if journey.Element != nil {
		req.Element = *journey.Element
	}
	return req
}

// validateWish returns the cleaned text or the guard it fails.
func (c *Controller) validateWish(text string) (string, error) {
	text, err := sanitizeWish(text)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", domain.ErrEmptyWish
	}
	if n := utf8.RuneCountInString(text); n > c.maxWishLength {
		return "", fmt.Errorf("%w: %d characters, limit is %d", domain.ErrWishTooLong, n, c.maxWishLength)
	}
	return text, nil
}

// guard checks trigger against the transition table. It must be called with c.mu held.
func (c *Controller) guard(trigger domain.Trigger) error {
	if c.closed {
		return domain.ErrControllerClosed
	}
	if _, ok := domain.Next(c.state.Phase, trigger); !ok || c.state.Locked {
		return &domain.TransitionError{From: c.state.Phase, Locked: c.state.Locked, Trigger: trigger}
	}
	return nil
}

// guardToken must be called with c.mu held.
func (c *Controller) guardToken(trigger domain.Trigger, token Token) error {
	if err := c.guard(trigger); err != nil {
		return err
	}
	if uint64(token) != c.state.Generation {
		return domain.ErrStaleCompletion
	}
	return nil
}

// enter moves to a transition phase under a fresh generation.
// It must be called with c.mu held.
func (c *Controller) enter(phase domain.Phase) Token {
	c.state.Phase = phase
	c.state.Generation++
	return Token(c.state.Generation)
}

func (c *Controller) unlockWriting() {
	c.mu.Lock()
	c.state.Locked = false
	c.mu.Unlock()
}

func (c *Controller) snapshot() domain.FlowState {
	s := c.state
	if s.Pending != nil {
		p := *s.Pending
		s.Pending = &p
	}
	return s
}

func (c *Controller) transitioned(ctx context.Context, from, to domain.Phase, trigger domain.Trigger) {
	c.logger.Debug("transition", "from", from, "to", to, "trigger", trigger)
	if c.hooks.OnTransition != nil {
		c.hooks.OnTransition(ctx, &domain.TransitionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTransition},
			From:      from,
			To:        to,
			Trigger:   trigger,
		})
	}
}

// rejected reads the current phase itself, so c.mu must not be held.
func (c *Controller) rejected(ctx context.Context, trigger domain.Trigger, err error) {
	c.mu.Lock()
	phase := c.state.Phase
	c.mu.Unlock()
	c.rejectedIn(ctx, phase, trigger, err)
}

func (c *Controller) rejectedIn(ctx context.Context, phase domain.Phase, trigger domain.Trigger, err error) {
	c.logger.Debug("trigger rejected", "phase", phase, "trigger", trigger, "err", err)
	if c.hooks.OnRejected != nil {
		c.hooks.OnRejected(ctx, &domain.RejectionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRejected},
			Phase:     phase,
			Trigger:   trigger,
			Err:       err,
		})
	}
}
