package flow

import (
	"log/slog"
	"strings"

	"github.com/aretw0/lantern/pkg/domain"
	"github.com/aretw0/lantern/pkg/zodiac"
)

// ResumePolicy decides where a controller starts when the journey already
// holds a revealed sign.
type ResumePolicy int

const (
	// ResumeWriting starts in the writing phase so another wish can be added.
	ResumeWriting ResumePolicy = iota
	// ResumeDone starts share-ready when at least one wish was recorded.
	ResumeDone
)

// Option configures a Controller.
type Option func(*Controller)

// WithResume sets the resume policy (default ResumeWriting).
func WithResume(policy ResumePolicy) Option {
	return func(c *Controller) {
		c.resume = policy
	}
}

// WithCalculator overrides the zodiac calculator.
func WithCalculator(calc *zodiac.Calculator) Option {
	return func(c *Controller) {
		c.calc = calc
	}
}

// WithLogger configures a logger for the Controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
// Hooks run synchronously, outside the controller lock.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithMaxWishLength overrides the wish length limit, counted in characters.
func WithMaxWishLength(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxWishLength = n
		}
	}
}

// WithShareBaseURL sets the prefix of share links.
func WithShareBaseURL(base string) Option {
	return func(c *Controller) {
		c.shareBase = strings.TrimRight(base, "/")
	}
}
