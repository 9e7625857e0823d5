/*
Package domain contains the core domain models of the lantern journey.

It defines the durable journey snapshot, the closed set of commands that mutate
it, the transient flow state of a controller and the lantern records exchanged
with the remote service. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - JourneyState: birthdate, zodiac sign, wishes and identity of one visitor.
  - Command: SetBirthdate, SetZodiac, SetElement, AddWishes, SetIdentity, Clear.
  - FlowState: the controller phase (idle, entering_transition, writing, exiting_transition, done).
  - LanternRequest / LanternRecord: the remote artifact created from a wish.
*/
package domain
