/*
Package flow implements the journey state machine.

A Controller moves through five phases:

	idle ──select_birthdate──▶ entering_transition ──entry_complete──▶ writing
	writing ──submit_wish──▶ exiting_transition ──exit_complete──▶ done
	done ──write_another──▶ writing

Transition phases are left by completion signals that carry the Token handed
out on entry. A token from an earlier entry, or one delivered after Close, is
ignored. Triggers that are not defined for the current phase are refused with
a *domain.TransitionError and leave the state untouched.
*/
package flow
