/*
Package lantern is a journey engine for a lunar new year lantern experience.

A visitor enters a birthdate, has a zodiac sign revealed, writes wishes and
releases each of them as a lantern on a remote service. The engine owns the
sequencing, the sign calculation and the durable journey data; hosts own the
presentation.

# Layout

  - pkg/domain: data model, commands, errors and lifecycle events.
  - pkg/zodiac: the calendar based animal and element calculator.
  - pkg/journey: merge-on-write persistence of the journey snapshot.
  - pkg/flow: the controller state machine driving one visitor.
  - pkg/adapters: snapshot substrates (memory, file, redis, sqlite), the remote
    lantern client and the host APIs (HTTP, MCP).

# Usage

	store := journey.NewStore(file.New(".lantern/state"))
	gateway := lanterns.NewClient("https://lanterns.example/api", apiKey)

	c, err := flow.New(ctx, store, gateway)
	if err != nil {
		return err
	}

	token, sign, err := c.SelectBirthdate(ctx, "1990-01-26")
	// present the reveal of sign, then:
	err = c.CompleteEntry(ctx, token)

	sub, err := c.SubmitWish(ctx, "Happy New Year")
	// present the release, then:
	err = c.CompleteExit(ctx, sub.Token)

The lantern binary (cmd/lantern) wires these packages from a configuration
file and environment variables.
*/
package lantern
