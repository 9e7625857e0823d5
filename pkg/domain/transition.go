package domain

// Transition is an edge of the journey state machine.
type Transition struct {
	From    Phase   `json:"from"`
	To      Phase   `json:"to"`
	Trigger Trigger `json:"trigger"`
}

// Transitions lists every defined edge. A trigger without an edge from the
// current phase is refused and leaves the state unchanged.
var Transitions = []Transition{
	{From: PhaseIdle, To: PhaseEnteringTransition, Trigger: TriggerSelectBirthdate},
	{From: PhaseEnteringTransition, To: PhaseWriting, Trigger: TriggerEntryComplete},
	{From: PhaseWriting, To: PhaseExitingTransition, Trigger: TriggerSubmitWish},
	{From: PhaseWriting, To: PhaseWriting, Trigger: TriggerSubmitFailed},
	{From: PhaseExitingTransition, To: PhaseDone, Trigger: TriggerExitComplete},
	{From: PhaseDone, To: PhaseWriting, Trigger: TriggerWriteAnother},
}

// Next returns the phase reached by trigger from phase, if the edge exists.
func Next(from Phase, trigger Trigger) (Phase, bool) {
	for _, t := range Transitions {
		if t.From == from && t.Trigger == trigger {
			return t.To, true
		}
	}
	return "", false
}
