package handlers

import (
	"strconv"
	"strings"
	"time"

	"casr-tracker/internal/models"
	"casr-tracker/internal/table"
)

var projectTable = table.New(
	table.Column[models.ProjectView]{Key: "name", Label: "Name", Locked: true, Value: func(p models.ProjectView) string { return p.Name }},
	table.Column[models.ProjectView]{Key: "type", Label: "Type", Value: func(p models.ProjectView) string { return string(p.Type) }},
	table.Column[models.ProjectView]{Key: "casrPart", Label: "CASR Part", Value: func(p models.ProjectView) string { return p.CASRPart }},
	table.Column[models.ProjectView]{Key: "status", Label: "Status", Value: func(p models.ProjectView) string { return string(p.DerivedStatus) }},
	table.Column[models.ProjectView]{
		Key: "progress", Label: "Progress",
		Value:   func(p models.ProjectView) string { return strconv.FormatFloat(p.Progress, 'f', 0, 64) + "%" },
		Compare: table.By(func(p models.ProjectView) float64 { return p.Progress }),
	},
	table.Column[models.ProjectView]{Key: "startDate", Label: "Start", Value: func(p models.ProjectView) string { return p.StartDate }},
	table.Column[models.ProjectView]{Key: "endDate", Label: "End", Value: func(p models.ProjectView) string { return p.EndDate }},
	table.Column[models.ProjectView]{Key: "owner", Label: "Owner", Value: func(p models.ProjectView) string { return p.Owner }},
	table.Column[models.ProjectView]{Key: "tags", Label: "Tags", HiddenByDefault: true, Value: func(p models.ProjectView) string { return strings.Join(p.Tags, ", ") }},
)

var complianceTable = table.New(
	table.Column[models.ComplianceRecord]{Key: "casrPart", Label: "CASR Part", Locked: true, Value: func(c models.ComplianceRecord) string { return c.CASRPart }},
	table.Column[models.ComplianceRecord]{Key: "requirement", Label: "Requirement", Value: func(c models.ComplianceRecord) string { return c.Requirement }},
	table.Column[models.ComplianceRecord]{Key: "operator", Label: "Operator", Value: func(c models.ComplianceRecord) string { return c.Operator }},
	table.Column[models.ComplianceRecord]{Key: "status", Label: "Status", Value: func(c models.ComplianceRecord) string { return string(c.Status) }},
	table.Column[models.ComplianceRecord]{Key: "dueDate", Label: "Due", Value: func(c models.ComplianceRecord) string { return c.DueDate }},
	table.Column[models.ComplianceRecord]{
		Key: "findings", Label: "Findings", HiddenByDefault: true,
		Value:   func(c models.ComplianceRecord) string { return strings.Join(c.Findings, "; ") },
		Compare: table.By(func(c models.ComplianceRecord) int { return len(c.Findings) }),
	},
)

var occurrenceTable = table.New(
	table.Column[models.OccurrenceReport]{
		Key: "occurredAt", Label: "Date", Locked: true,
		Value:   func(o models.OccurrenceReport) string { return o.OccurredAt.Format(time.DateOnly) },
		Compare: table.By(func(o models.OccurrenceReport) int64 { return o.OccurredAt.UnixMilli() }),
	},
	table.Column[models.OccurrenceReport]{Key: "kind", Label: "Kind", Value: func(o models.OccurrenceReport) string { return string(o.Kind) }},
	table.Column[models.OccurrenceReport]{Key: "aircraftRegistration", Label: "Registration", Value: func(o models.OccurrenceReport) string { return o.AircraftRegistration }},
	table.Column[models.OccurrenceReport]{Key: "operator", Label: "Operator", Value: func(o models.OccurrenceReport) string { return o.Operator }},
	table.Column[models.OccurrenceReport]{Key: "location", Label: "Location", Value: func(o models.OccurrenceReport) string { return o.Location }},
	table.Column[models.OccurrenceReport]{Key: "severity", Label: "Severity", Value: func(o models.OccurrenceReport) string { return o.Severity }},
	table.Column[models.OccurrenceReport]{Key: "status", Label: "Status", Value: func(o models.OccurrenceReport) string { return o.Status }},
	table.Column[models.OccurrenceReport]{Key: "summary", Label: "Summary", HiddenByDefault: true, Value: func(o models.OccurrenceReport) string { return o.Summary }},
)

var sanctionTable = table.New(
	table.Column[models.Sanction]{Key: "reference", Label: "Reference", Locked: true, Value: func(s models.Sanction) string { return s.Reference }},
	table.Column[models.Sanction]{Key: "operator", Label: "Operator", Value: func(s models.Sanction) string { return s.Operator }},
	table.Column[models.Sanction]{Key: "casrPart", Label: "CASR Part", Value: func(s models.Sanction) string { return s.CASRPart }},
	table.Column[models.Sanction]{Key: "kind", Label: "Kind", Value: func(s models.Sanction) string { return string(s.Kind) }},
	table.Column[models.Sanction]{
		Key: "amount", Label: "Amount",
		Value:   func(s models.Sanction) string { return strconv.FormatFloat(s.Amount, 'f', 0, 64) },
		Compare: table.By(func(s models.Sanction) float64 { return s.Amount }),
	},
	table.Column[models.Sanction]{Key: "issuedAt", Label: "Issued", Value: func(s models.Sanction) string { return s.IssuedAt }},
	table.Column[models.Sanction]{Key: "status", Label: "Status", Value: func(s models.Sanction) string { return s.Status }},
)

var activityTable = table.New(
	table.Column[models.ActivityLog]{
		Key: "timestamp", Label: "When", Locked: true,
		Value:   func(a models.ActivityLog) string { return a.Timestamp.Format(time.RFC3339) },
		Compare: table.By(func(a models.ActivityLog) int64 { return a.Timestamp.UnixMilli() }),
	},
	table.Column[models.ActivityLog]{Key: "actor", Label: "Actor", Value: func(a models.ActivityLog) string { return a.Actor }},
	table.Column[models.ActivityLog]{Key: "activityType", Label: "Type", Value: func(a models.ActivityLog) string { return string(a.ActivityType) }},
	table.Column[models.ActivityLog]{Key: "details", Label: "Details", Value: func(a models.ActivityLog) string { return a.Details }},
)

var userTable = table.New(
	table.Column[models.User]{Key: "name", Label: "Name", Locked: true, Value: func(u models.User) string { return u.Name }},
	table.Column[models.User]{Key: "username", Label: "Username", Value: func(u models.User) string { return u.Username }},
	table.Column[models.User]{Key: "email", Label: "Email", Value: func(u models.User) string { return u.Email }},
	table.Column[models.User]{Key: "role", Label: "Role", Value: func(u models.User) string { return u.Role }},
	table.Column[models.User]{Key: "division", Label: "Division", Value: func(u models.User) string { return u.Division }},
)
