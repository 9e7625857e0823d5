package journey

import (
	"fmt"

	"github.com/aretw0/lantern/pkg/domain"
)

// Reduce applies a single command to a journey and returns the new journey.
// It is pure: the input is never mutated and no I/O happens here.
func Reduce(state domain.JourneyState, cmd domain.Command) (domain.JourneyState, error) {
	next := state.Clone()

	switch c := cmd.(type) {
	case domain.SetBirthdate:
		if !c.Date.IsZero() {
			next.Birthdate = domain.Ptr(c.Date)
		}
	case domain.SetZodiac:
		if c.Animal != "" {
			next.Zodiac = domain.Ptr(c.Animal)
		}
	case domain.SetElement:
		if c.Element != "" {
			next.Element = domain.Ptr(c.Element)
		}
	case domain.AddWishes:
		next.Wishes = mergeWishes(next.Wishes, c.Wishes)
	case domain.SetIdentity:
		if c.Name != nil {
			next.Identity.Name = domain.Ptr(*c.Name)
		}
		if c.Email != nil {
			next.Identity.Email = domain.Ptr(*c.Email)
		}
	case domain.Clear:
		return domain.NewJourneyState(), nil
	default:
		return state, fmt.Errorf("unknown command %T", cmd)
	}

	return next, nil
}

// Fold applies commands in order.
func Fold(state domain.JourneyState, cmds ...domain.Command) (domain.JourneyState, error) {
	var err error
	for _, cmd := range cmds {
		state, err = Reduce(state, cmd)
		if err != nil {
			return state, err
		}
	}
	return state, nil
}

// mergeWishes returns the union of existing and incoming, unique by text.
// Existing wishes keep their position and ID; incoming ones are appended in order.
func mergeWishes(existing, incoming []domain.Wish) []domain.Wish {
	out := make([]domain.Wish, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))

	for _, batch := range [][]domain.Wish{existing, incoming} {
		for _, w := range batch {
			if w.Text == "" {
				continue
			}
			if _, dup := seen[w.Text]; dup {
				continue
			}
			seen[w.Text] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}
