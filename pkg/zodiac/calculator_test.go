package zodiac_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/aretw0/lantern/pkg/domain"
	"github.com/aretw0/lantern/pkg/zodiac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		animal    domain.Animal
		element   domain.Element
		cycleYear int
	}{
		{"on boundary", "1990-01-26", domain.AnimalHorse, domain.ElementMetal, 1990},
		{"day before boundary", "1990-01-25", domain.AnimalSnake, domain.ElementEarth, 1989},
		{"before 2025 boundary", "2025-01-20", domain.AnimalDragon, domain.ElementWood, 2024},
		{"after 2025 boundary", "2025-02-01", domain.AnimalSnake, domain.ElementWood, 2025},
		{"first table year", "1900-01-30", domain.AnimalRat, domain.ElementMetal, 1900},
		{"before first boundary", "1900-01-29", domain.AnimalPig, domain.ElementEarth, 1899},
		{"leap day", "2024-02-29", domain.AnimalDragon, domain.ElementWood, 2024},
		{"december", "2000-12-31", domain.AnimalDragon, domain.ElementMetal, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := zodiac.Calculate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.animal, res.Animal)
			assert.Equal(t, tt.element, res.Element)
			assert.Equal(t, tt.cycleYear, res.CycleYear)
			assert.False(t, res.Approximate)
		})
	}
}

func TestCalculate_InvalidFormat(t *testing.T) {
	for _, input := range []string{"not-a-date", "2025/01/01", "2025-02-30", "1990-1"} {
		_, err := zodiac.Calculate(input)
		assert.ErrorIs(t, err, domain.ErrInvalidFormat, input)
	}
}

func TestCalculate_OutOfRangeFallsBackToCalendarYear(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	calc := zodiac.New(zodiac.WithLogger(logger))

	// 2030-01-01 precedes the real lunar new year, but the table stops at 2029.
	res, err := calc.Calculate("2030-01-01")
	require.NoError(t, err)

	assert.True(t, res.Approximate)
	assert.Equal(t, 2030, res.CycleYear)
	assert.Equal(t, domain.AnimalDog, res.Animal)
	assert.Equal(t, domain.ElementMetal, res.Element)
	assert.Contains(t, buf.String(), "year=2030")
}

func TestCalculate_Deterministic(t *testing.T) {
	first, last := zodiac.Range()
	for year := first; year <= last; year++ {
		month, day, ok := zodiac.Boundary(year)
		require.True(t, ok, "year %d missing from table", year)

		d := domain.Date{Year: year, Month: month, Day: day}
		a := zodiac.New().CalculateDate(d)
		b := zodiac.New().CalculateDate(d)
		assert.Equal(t, a, b)
		assert.Equal(t, year, a.CycleYear, "boundary day belongs to the new cycle")
	}
}

func TestSignForCycleYear_Cycles(t *testing.T) {
	assert.Equal(t, domain.AnimalRat, zodiac.SignForCycleYear(1984).Animal)
	assert.Equal(t, domain.ElementWood, zodiac.SignForCycleYear(1984).Element)
	assert.Equal(t, domain.ElementWood, zodiac.SignForCycleYear(1985).Element)
	assert.Equal(t, domain.ElementFire, zodiac.SignForCycleYear(1986).Element)

	// Years before the cycle origin still map into the tables.
	assert.Equal(t, domain.AnimalPig, zodiac.SignForCycleYear(3).Animal)
	assert.Equal(t, domain.ElementWater, zodiac.SignForCycleYear(3).Element)
}
