package domain

// Command is one of the closed set of mutations accepted by the journey store.
// The unexported marker keeps the set closed to this package, so a type switch
// over the cases below is exhaustive.
type Command interface {
	command()
}

// SetBirthdate replaces the recorded birthdate.
type SetBirthdate struct {
	Date Date
}

// SetZodiac replaces the recorded animal.
type SetZodiac struct {
	Animal Animal
}

// SetElement replaces the recorded element.
type SetElement struct {
	Element Element
}

// AddWishes merges wishes into the recorded set, deduplicating by text.
// Previously recorded wishes are never removed.
type AddWishes struct {
	Wishes []Wish
}

// SetIdentity shallow-merges identity fields. Nil fields are ignored.
type SetIdentity struct {
	Name  *string
	Email *string
}

// Clear resets the journey to its structural defaults.
type Clear struct{}

func (SetBirthdate) command() {}
func (SetZodiac) command()    {}
func (SetElement) command()   {}
func (AddWishes) command()    {}
func (SetIdentity) command()  {}
func (Clear) command()        {}
