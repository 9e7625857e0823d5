package domain

// MaxWishLength is the default upper bound, in characters, of a wish.
const MaxWishLength = 150

// Wish is a short user-authored message. Wishes are unique by Text, not by ID.
type Wish struct {
	ID   string `json:"id"`
	Text string `json:"wish"`
}

// Identity holds the optional personal fields attached to a journey.
type Identity struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// JourneyState is the durable snapshot of one visitor's progress.
type JourneyState struct {
	Birthdate *Date    `json:"birthdate"`
	Zodiac    *Animal  `json:"zodiac"`
	Element   *Element `json:"element"`
	Wishes    []Wish   `json:"wishes"`
	Identity  Identity `json:"userData"`
}

// NewJourneyState returns the structural defaults: no birthdate, no sign,
// no wishes and an empty identity.
func NewJourneyState() JourneyState {
	return JourneyState{Wishes: []Wish{}}
}

// HasWish reports whether a wish with exactly this text is recorded.
func (s JourneyState) HasWish(text string) bool {
	for _, w := range s.Wishes {
		if w.Text == text {
			return true
		}
	}
	return false
}

// Sign returns the recorded sign, if both halves are present.
func (s JourneyState) Sign() (Sign, bool) {
	if s.Zodiac == nil || s.Element == nil {
		return Sign{}, false
	}
	return Sign{Animal: *s.Zodiac, Element: *s.Element}, true
}

// Revealed reports whether a birthdate and zodiac have been recorded.
func (s JourneyState) Revealed() bool {
	return s.Birthdate != nil && s.Zodiac != nil
}

// Clone returns a deep copy, so callers can't mutate shared slices or pointers.
func (s JourneyState) Clone() JourneyState {
	out := JourneyState{
		Birthdate: clonePtr(s.Birthdate),
		Zodiac:    clonePtr(s.Zodiac),
		Element:   clonePtr(s.Element),
		Wishes:    make([]Wish, len(s.Wishes)),
		Identity: Identity{
			Name:  clonePtr(s.Identity.Name),
			Email: clonePtr(s.Identity.Email),
		},
	}
	copy(out.Wishes, s.Wishes)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
