package domain

// Phase is the position of a controller within the journey.
type Phase string

const (
	PhaseIdle               Phase = "idle"                // Waiting for a birthdate
	PhaseEnteringTransition Phase = "entering_transition" // Reveal presentation in progress
	PhaseWriting            Phase = "writing"             // Wish authoring
	PhaseExitingTransition  Phase = "exiting_transition"  // Release presentation in progress
	PhaseDone               Phase = "done"                // Share-ready
)

// Trigger names the event that asked for a transition.
type Trigger string

const (
	TriggerSelectBirthdate Trigger = "select_birthdate"
	TriggerEntryComplete   Trigger = "entry_complete"
	TriggerSubmitWish      Trigger = "submit_wish"
	TriggerSubmitFailed    Trigger = "submit_failed"
	TriggerExitComplete    Trigger = "exit_complete"
	TriggerWriteAnother    Trigger = "write_another"
)

// FlowState is the transient snapshot of a controller. It is never persisted.
type FlowState struct {
	Phase Phase `json:"phase"`

	// Locked is set while a wish submission is in flight (Phase == PhaseWriting).
	Locked bool `json:"locked"`

	// Generation identifies the current entry into a transition phase.
	// Completion signals carrying an older generation are ignored.
	Generation uint64 `json:"generation"`

	// Pending holds the calculated sign while the reveal is in progress.
	Pending *Sign `json:"pending,omitempty"`

	// LanternID is the remote identity of the last created lantern.
	LanternID string `json:"lantern_id,omitempty"`
}

// LanternRequest is the payload sent to the remote lantern service.
type LanternRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Birthdate  string  `json:"birthdate"`
	AnimalSign Animal  `json:"animal_sign"`
	Element    Element `json:"element"`
	Message    string  `json:"message"`
}

// LanternRecord is a lantern as stored by the remote service.
// The client never updates or deletes it.
type LanternRecord struct {
	ID string `json:"id"`
	LanternRequest
}
