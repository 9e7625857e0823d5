package zodiac

import (
	"log/slog"

	"github.com/aretw0/lantern/internal/logging"
	"github.com/aretw0/lantern/pkg/domain"
)

// Result is the outcome of a calculation.
type Result struct {
	domain.Sign

	// CycleYear is the year whose animal and element were assigned.
	// It is the birth year minus one when the birthdate precedes that year's lunar new year.
	CycleYear int

	// Approximate is set when the birth year has no table entry and the
	// date was treated as falling on or after the lunar new year.
	Approximate bool
}

// Calculator maps birthdates to signs. The zero value is not usable; use New.
type Calculator struct {
	logger *slog.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger sets the logger used to report out-of-table years.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Calculator) {
		c.logger = logger
	}
}

// New creates a Calculator.
func New(opts ...Option) *Calculator {
	c := &Calculator{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCalculator = New()

// Calculate parses a YYYY-MM-DD birthdate and returns its sign using a silent calculator.
func Calculate(input string) (Result, error) {
	return defaultCalculator.Calculate(input)
}

// Calculate parses a YYYY-MM-DD birthdate and returns its sign.
// Malformed input returns domain.ErrInvalidFormat.
func (c *Calculator) Calculate(input string) (Result, error) {
	d, err := domain.ParseDate(input)
	if err != nil {
		return Result{}, err
	}
	return c.CalculateDate(d), nil
}

// CalculateDate returns the sign of a birthdate. It depends only on d and the
// static boundary table.
func (c *Calculator) CalculateDate(d domain.Date) Result {
	cycleYear := d.Year
	approximate := false

	month, day, ok := Boundary(d.Year)
	if !ok {
		// Years outside the table fall through as "not before the boundary".
		approximate = true
		c.logger.Warn("lunar new year not found for year, assuming on or after boundary",
			"year", d.Year,
			"first_year", firstYear,
			"last_year", lastYear,
		)
	} else if d.Before(domain.Date{Year: d.Year, Month: month, Day: day}) {
		cycleYear = d.Year - 1
	}

	return Result{
		Sign:        SignForCycleYear(cycleYear),
		CycleYear:   cycleYear,
		Approximate: approximate,
	}
}

// SignForCycleYear returns the animal and element of a cycle year.
func SignForCycleYear(year int) domain.Sign {
	offset := year - 4
	return domain.Sign{
		Animal:  domain.Animals[mod(offset, 12)],
		Element: domain.Elements[mod(offset, 10)/2],
	}
}

// Boundary returns the lunar new year of a calendar year, if the table covers it.
func Boundary(year int) (month, day int, ok bool) {
	b, ok := boundaries[year]
	if !ok {
		return 0, 0, false
	}
	return b[0], b[1], true
}

// Range returns the first and last years covered by the table.
func Range() (first, last int) {
	return firstYear, lastYear
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
