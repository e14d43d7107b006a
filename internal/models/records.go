package models

import "time"

type ComplianceStatus string

const (
	ComplianceCompliant    ComplianceStatus = "Compliant"
	ComplianceNonCompliant ComplianceStatus = "Non-Compliant"
	ComplianceInReview     ComplianceStatus = "In Review"
)

// ComplianceRecord tracks one operator against one CASR requirement.
type ComplianceRecord struct {
	Base        `bson:",inline"`
	CASRPart    string           `json:"casrPart" bson:"casrPart" validate:"required,casrpart"`
	Requirement string           `json:"requirement" bson:"requirement" validate:"required,max=500"`
	Operator    string           `json:"operator" bson:"operator" validate:"required"`
	Status      ComplianceStatus `json:"status" bson:"status" validate:"required,oneof=Compliant Non-Compliant 'In Review'"`
	DueDate     string           `json:"dueDate,omitempty" bson:"dueDate,omitempty" validate:"omitempty,isodate"`
	Findings    []string         `json:"findings" bson:"findings"`
	Notes       string           `json:"notes" bson:"notes"`
}

type OccurrenceKind string

const (
	OccurrenceAccident OccurrenceKind = "accident"
	OccurrenceIncident OccurrenceKind = "incident"
)

// OccurrenceReport is an accident or incident report.
type OccurrenceReport struct {
	Base                 `bson:",inline"`
	Kind                 OccurrenceKind `json:"kind" bson:"kind" validate:"required,oneof=accident incident"`
	OccurredAt           time.Time      `json:"occurredAt" bson:"occurredAt" validate:"required"`
	Location             string         `json:"location" bson:"location" validate:"required"`
	AircraftRegistration string         `json:"aircraftRegistration" bson:"aircraftRegistration" validate:"required,registration"`
	Operator             string         `json:"operator" bson:"operator" validate:"required"`
	Severity             string         `json:"severity" bson:"severity" validate:"required,oneof=minor serious major fatal"`
	Summary              string         `json:"summary" bson:"summary" validate:"required,max=4000"`
	Status               string         `json:"status" bson:"status" validate:"omitempty,oneof=open investigating closed"`
}

type SanctionKind string

const (
	SanctionWarning    SanctionKind = "warning"
	SanctionFine       SanctionKind = "fine"
	SanctionSuspension SanctionKind = "suspension"
	SanctionRevocation SanctionKind = "revocation"
)

// Sanction is an enforcement action against an operator.
type Sanction struct {
	Base      `bson:",inline"`
	Operator  string       `json:"operator" bson:"operator" validate:"required"`
	CASRPart  string       `json:"casrPart" bson:"casrPart" validate:"required,casrpart"`
	Kind      SanctionKind `json:"kind" bson:"kind" validate:"required,oneof=warning fine suspension revocation"`
	Amount    float64      `json:"amount,omitempty" bson:"amount,omitempty" validate:"required_if=Kind fine,gte=0"`
	IssuedAt  string       `json:"issuedAt" bson:"issuedAt" validate:"required,isodate"`
	Status    string       `json:"status" bson:"status" validate:"omitempty,oneof=active lifted appealed"`
	Reference string       `json:"reference" bson:"reference" validate:"required"`
}
