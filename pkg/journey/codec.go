package journey

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/lantern/pkg/domain"
)

// Encode serializes a journey using the durable snapshot schema.
func Encode(state domain.JourneyState) ([]byte, error) {
	if state.Wishes == nil {
		state.Wishes = []domain.Wish{}
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal journey: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot and merges it with the structural defaults, so a
// partial or older snapshot never surfaces missing fields to callers.
// Duplicate wish texts left by older writers are collapsed, first one wins.
func Decode(data []byte) (domain.JourneyState, error) {
	state := domain.NewJourneyState()
	if len(data) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.NewJourneyState(), fmt.Errorf("failed to unmarshal journey: %w", err)
	}
	state.Wishes = mergeWishes(nil, state.Wishes)
	return state, nil
}
