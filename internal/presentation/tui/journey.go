package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/lantern/pkg/domain"
)

var animalGlyphs = map[domain.Animal]string{
	domain.AnimalRat:     "🐀",
	domain.AnimalOx:      "🐂",
	domain.AnimalTiger:   "🐅",
	domain.AnimalRabbit:  "🐇",
	domain.AnimalDragon:  "🐉",
	domain.AnimalSnake:   "🐍",
	domain.AnimalHorse:   "🐎",
	domain.AnimalGoat:    "🐐",
	domain.AnimalMonkey:  "🐒",
	domain.AnimalRooster: "🐓",
	domain.AnimalDog:     "🐕",
	domain.AnimalPig:     "🐖",
}

// RevealMarkdown describes a sign.
func RevealMarkdown(sign domain.Sign, approximate bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s %s\n\n", animalGlyphs[sign.Animal], sign.Element, sign.Animal)
	fmt.Fprintf(&b, "You were born in the year of the **%s %s**.\n", sign.Element, sign.Animal)
	if approximate {
		b.WriteString("\n> Your birth year is outside the lunar calendar table; the sign assumes a birthday after the new year.\n")
	}
	return b.String()
}

// ReleaseMarkdown announces a released lantern.
func ReleaseMarkdown(wish domain.Wish, link string) string {
	var b strings.Builder
	b.WriteString("## 🏮 Your lantern is rising\n\n")
	fmt.Fprintf(&b, "> %s\n", wish.Text)
	if link != "" {
		fmt.Fprintf(&b, "\nShare it: %s\n", link)
	}
	return b.String()
}
