package model

// OUOffset pins a fixed rotation offset for every employee pooled under
// an organisational unit, used by outcome-based rostering (§4.1/§4.2).
type OUOffset struct {
	OUID           string
	RotationOffset int
}

// RosterRequest is the full solve-request document: the root envelope
// the validator, ICPMP, slot builder and solver all operate on.
type RosterRequest struct {
	PlanningHorizon PlanningHorizon
	Employees       []Employee
	DemandItems     []DemandItem

	// OUOffsets is required when any DemandItem uses OutcomeBased rostering.
	OUOffsets []OUOffset

	// PublicHolidays is the set of civil dates (YYYY-MM-DD) treated as
	// public holidays for shift inclusion flags and _dayType metadata.
	PublicHolidays []string

	// EnableOTAwareICPMP widens the ICPMP lower-bound formula with the
	// monthly OT budget converted into effective extra days (§4.2).
	EnableOTAwareICPMP bool

	// Incremental-mode fields (§4.7): when CutoffDate is set, slots on
	// or before it are locked from a prior run's assignments.
	CutoffDate       string
	PriorAssignments []Assignment
	SolveFromDate    string

	// EmptySlotsOnly restricts slot generation/solve to currently
	// unassigned slots (§4.7 empty-slots mode).
	EmptySlotsOnly bool
}
