package entity

import "errors"

var (
	ErrLeadNotFound = errors.New("lead not found")
	ErrUserNotFound = errors.New("user not found")

	// ErrNotApplicable signals a lifecycle transition attempted from the
	// wrong state (archive an archived lead, restore an active one). It is
	// deliberately distinct from ErrLeadNotFound in the error taxonomy even
	// though the HTTP layer reports both as 404.
	ErrNotApplicable = errors.New("lead not in applicable state")

	// ErrNoUpdates signals an outreach patch whose recognized fields all
	// equal the current state.
	ErrNoUpdates = errors.New("no updates")

	ErrForbidden = errors.New("actor not permitted")
)
