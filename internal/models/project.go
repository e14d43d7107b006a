package models

type ProjectStatus string

const (
	StatusOnTrack   ProjectStatus = "On Track"
	StatusAtRisk    ProjectStatus = "At Risk"
	StatusOffTrack  ProjectStatus = "Off Track"
	StatusCompleted ProjectStatus = "Completed"
)

type ProjectType string

const (
	ProjectRulemaking ProjectType = "Rulemaking"
	ProjectTimKerja   ProjectType = "Tim Kerja"
)

// UserRef is the denormalised user stored on projects.
type UserRef struct {
	ID   string `json:"id" bson:"id" validate:"required"`
	Name string `json:"name" bson:"name"`
}

// Project dates are ISO strings as entered in the forms; they are parsed
// where they are used so malformed values surface to the caller.
type Project struct {
	Base        `bson:",inline"`
	Name        string        `json:"name" bson:"name" validate:"required,min=3,max=120"`
	Description string        `json:"description" bson:"description" validate:"max=2000"`
	Type        ProjectType   `json:"type" bson:"type" validate:"required,oneof=Rulemaking 'Tim Kerja'"`
	CASRPart    string        `json:"casrPart,omitempty" bson:"casrPart,omitempty" validate:"omitempty,casrpart"`
	StartDate   string        `json:"startDate" bson:"startDate" validate:"omitempty,isodate"`
	EndDate     string        `json:"endDate" bson:"endDate" validate:"omitempty,isodate"`
	Status      ProjectStatus `json:"status" bson:"status" validate:"omitempty,oneof='On Track' 'At Risk' 'Off Track' Completed"`
	Team        []UserRef     `json:"team" bson:"team" validate:"dive"`
	Tasks       []Task        `json:"tasks" bson:"tasks" validate:"dive"`
	Tags        []string      `json:"tags" bson:"tags"`
	Owner       string        `json:"owner" bson:"owner"`
}

// ProjectView is a project as returned by the API, with the derived status
// next to the stored one.
type ProjectView struct {
	Project
	DerivedStatus ProjectStatus `json:"derivedStatus"`
	Progress      float64       `json:"progress"`
	StatusError   string        `json:"statusError,omitempty"`
}
