package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/lantern/internal/presentation/tui"
	"github.com/aretw0/lantern/pkg/domain"
	"github.com/aretw0/lantern/pkg/flow"
	"github.com/aretw0/lantern/pkg/zodiac"
)

// Terminal drives a controller from line based input.
// Reveal and release complete as soon as their text is printed.
type Terminal struct {
	In          io.Reader
	Out         io.Writer
	Render      tui.Renderer
	AskIdentity bool

	lines *bufio.Reader
}

// Run walks the journey until the visitor declines another wish or input ends.
func (t *Terminal) Run(ctx context.Context, c *flow.Controller) error {
	if t.In == nil || t.Out == nil {
		return errors.New("terminal input and output must be set")
	}
	if t.Render == nil {
		t.Render = tui.NewRenderer(true)
	}
	t.lines = bufio.NewReader(t.In)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch phase := c.State().Phase; phase {
		case domain.PhaseIdle:
			err = t.reveal(ctx, c)
		case domain.PhaseWriting:
			err = t.wish(ctx, c)
		case domain.PhaseDone:
			var again bool
			again, err = t.confirm("Write another wish? [y/N]: ")
			if err == nil {
				if !again {
					return nil
				}
				err = c.WriteAnother(ctx)
			}
		default:
			// Transitions complete synchronously here, so no other phase is observable.
			return fmt.Errorf("unexpected phase %s", phase)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (t *Terminal) reveal(ctx context.Context, c *flow.Controller) error {
	input, err := t.prompt("Your birthdate (YYYY-MM-DD): ")
	if err != nil {
		return err
	}

	token, sign, err := c.SelectBirthdate(ctx, input)
	if errors.Is(err, domain.ErrInvalidFormat) {
		t.say("That is not a date I can read. Try something like 1990-01-26.")
		return nil
	}
	if err != nil {
		return err
	}

	date, _ := domain.ParseDate(input)
	_, _, inTable := zodiac.Boundary(date.Year)
	t.show(tui.RevealMarkdown(sign, !inTable))

	if err := c.CompleteEntry(ctx, token); err != nil {
		return err
	}

	if t.AskIdentity {
		return t.identity(ctx, c)
	}
	return nil
}

func (t *Terminal) identity(ctx context.Context, c *flow.Controller) error {
	name, err := t.prompt("Your name (optional): ")
	if err != nil {
		return err
	}
	email, err := t.prompt("Your email (optional): ")
	if err != nil {
		return err
	}

	var namePtr, emailPtr *string
	if name != "" {
		namePtr = &name
	}
	if email != "" {
		emailPtr = &email
	}
	if namePtr == nil && emailPtr == nil {
		return nil
	}
	_, err = c.SetIdentity(ctx, namePtr, emailPtr)
	return err
}

func (t *Terminal) wish(ctx context.Context, c *flow.Controller) error {
	text, err := t.prompt("Make a wish: ")
	if err != nil {
		return err
	}

	sub, err := c.SubmitWish(ctx, text)
	var gwErr *domain.GatewayError
	switch {
	case errors.Is(err, domain.ErrEmptyWish):
		t.say("A lantern needs a wish.")
		return nil
	case errors.Is(err, domain.ErrWishTooLong):
		t.say(fmt.Sprintf("Wishes are limited in length (%v).", err))
		return nil
	case errors.Is(err, domain.ErrDuplicateWish):
		t.say("You already made that wish.")
		return nil
	case errors.Is(err, domain.ErrInvalidWishText):
		t.say("That wish contains characters I can't send.")
		return nil
	case errors.As(err, &gwErr):
		t.say(fmt.Sprintf("The lantern could not be released: %v. Your wish was kept, try again.", gwErr))
		return nil
	case err != nil:
		return err
	}

	if err := c.CompleteExit(ctx, sub.Token); err != nil {
		return err
	}
	link, _ := c.ShareLink()
	t.show(tui.ReleaseMarkdown(sub.Wish, link))
	return nil
}

func (t *Terminal) prompt(label string) (string, error) {
	fmt.Fprint(t.Out, label)
	line, err := t.lines.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) confirm(label string) (bool, error) {
	answer, err := t.prompt(label)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func (t *Terminal) say(msg string) {
	fmt.Fprintf(t.Out, ">>> %s\n", msg)
}

func (t *Terminal) show(markdown string) {
	out, err := t.Render(markdown)
	if err != nil {
		out = markdown
	}
	fmt.Fprintln(t.Out, strings.TrimSpace(out))
}
