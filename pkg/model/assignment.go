package model

import "time"

// AssignmentSource distinguishes assignments carried over unchanged from
// an earlier run against those newly solved in this run (§2.2/incremental
// mode).
type AssignmentSource string

const (
	SourceLocked      AssignmentSource = "locked"
	SourceIncremental AssignmentSource = "incremental"
)

// Hours is the per-assignment breakdown produced by the hour-calculation
// engine. All fields are hours, rounded to two decimals at the output
// boundary; upstream of this struct the hour engine computes them in
// full precision with decimal.Decimal.
type Hours struct {
	Gross      float64
	Lunch      float64
	Normal     float64
	OT         float64
	RestDayPay float64
	Paid       float64
}

// AuditInfo is attached to every assignment emitted by an incremental
// solve, recording provenance for later reconciliation.
type AuditInfo struct {
	SolverRunID string
	Source      AssignmentSource
	Timestamp   time.Time
	InputHash   string
}

// Assignment is the solved outcome for one (slot, employee) pair.
type Assignment struct {
	SlotID     string
	EmployeeID string

	Status    SlotStatus
	Start     time.Time
	End       time.Time
	ShiftCode string
	PatternDay int

	Hours Hours

	AuditInfo *AuditInfo // nil outside incremental mode
}

// IsWorking reports whether the assignment represents an actual shift
// (as opposed to a synthesised off day or a leftover unassigned slot).
func (a Assignment) IsWorking() bool {
	return a.Status == StatusAssigned
}
