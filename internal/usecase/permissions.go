package usecase

import "github.com/niveshpath/advisory-backend/internal/entity"

// CanUpdate reports whether the actor may mutate the lead's outreach state.
// Admins always may. A non-admin may only update a lead that is assigned to
// them; an unassigned lead must first be claimed via CanTransfer.
//
// Clients doing UI gating must mirror these exact rules; the server rejects
// where the UI merely disables.
func CanUpdate(lead *entity.Lead, actor entity.Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	assignee := lead.Outreach.AssignedTo
	return assignee != nil && *assignee == actor.ID
}

// CanTransfer reports whether the actor may change the lead's assignee.
// An unassigned lead can be claimed by anyone; an assigned lead can only be
// handed over by its current assignee (or an admin).
func CanTransfer(lead *entity.Lead, actor entity.Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	assignee := lead.Outreach.AssignedTo
	if assignee == nil {
		return true // claim-to-self
	}
	return *assignee == actor.ID
}
