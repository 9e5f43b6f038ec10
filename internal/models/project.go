package models

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	StatusPlanning   ProjectStatus = "planning"
	StatusInProgress ProjectStatus = "in_progress"
	StatusCompleted  ProjectStatus = "completed"
	StatusCancelled  ProjectStatus = "cancelled"
)

var Statuses = []ProjectStatus{StatusPlanning, StatusInProgress, StatusCompleted, StatusCancelled}

// Label returns the display name; values outside the enum are shown as-is.
func (s ProjectStatus) Label() string {
	switch s {
	case StatusPlanning:
		return "Planning"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// Milestone names one of the dated stages a project moves through
type Milestone string

const (
	MilestoneIdea         Milestone = "idea"
	MilestoneIntroduction Milestone = "introduction"
	MilestoneConsultation Milestone = "consultation"
	MilestoneQuote        Milestone = "quote"
	MilestoneContract     Milestone = "contract"
	MilestoneDevelopment  Milestone = "development"
	MilestoneTest         Milestone = "test"
	MilestoneDelivery     Milestone = "delivery"
	MilestoneCompletion   Milestone = "completion"
	MilestoneMaintenance  Milestone = "maintenance"
)

// Milestones in stage order.
var Milestones = []Milestone{
	MilestoneIdea, MilestoneIntroduction, MilestoneConsultation, MilestoneQuote, MilestoneContract,
	MilestoneDevelopment, MilestoneTest, MilestoneDelivery, MilestoneCompletion, MilestoneMaintenance,
}

// Field is the form/JSON field name for the milestone date.
func (m Milestone) Field() string {
	return string(m) + "_date"
}

// MilestoneDates holds the ten stage dates. Shared by reads and writes.
type MilestoneDates struct {
	IdeaDate         *Date `json:"idea_date"`
	IntroductionDate *Date `json:"introduction_date"`
	ConsultationDate *Date `json:"consultation_date"`
	QuoteDate        *Date `json:"quote_date"`
	ContractDate     *Date `json:"contract_date"`
	DevelopmentDate  *Date `json:"development_date"`
	TestDate         *Date `json:"test_date"`
	DeliveryDate     *Date `json:"delivery_date"`
	CompletionDate   *Date `json:"completion_date"`
	MaintenanceDate  *Date `json:"maintenance_date"`
}

func (d *MilestoneDates) slot(m Milestone) **Date {
	switch m {
	case MilestoneIdea:
		return &d.IdeaDate
	case MilestoneIntroduction:
		return &d.IntroductionDate
	case MilestoneConsultation:
		return &d.ConsultationDate
	case MilestoneQuote:
		return &d.QuoteDate
	case MilestoneContract:
		return &d.ContractDate
	case MilestoneDevelopment:
		return &d.DevelopmentDate
	case MilestoneTest:
		return &d.TestDate
	case MilestoneDelivery:
		return &d.DeliveryDate
	case MilestoneCompletion:
		return &d.CompletionDate
	case MilestoneMaintenance:
		return &d.MaintenanceDate
	}
	return nil
}

// Get returns the date for m, nil when unset or unknown.
func (d MilestoneDates) Get(m Milestone) *Date {
	if p := d.slot(m); p != nil {
		return *p
	}
	return nil
}

func (d *MilestoneDates) Set(m Milestone, v *Date) {
	if p := d.slot(m); p != nil {
		*p = v
	}
}

// Project is a client engagement whose profit is shared among participants
type Project struct {
	ID          uint          `json:"id"`
	Name        string        `json:"name"`
	Client      *string       `json:"client"`
	TotalAmount float64       `json:"total_amount"`
	Cost        float64       `json:"cost"`
	Profit      float64       `json:"profit"`
	Status      ProjectStatus `json:"status"`

	MilestoneDates

	StartDate     *Date     `json:"start_date"`
	EndDate       *Date     `json:"end_date"`
	ProgressNotes *string   `json:"progress_notes"`
	ProgressRate  float64   `json:"progress_rate"`
	CurrentStage  *string   `json:"current_stage"`
	Notes         *string   `json:"notes"`
	CreatedAt     Timestamp `json:"created_at"`
	UpdatedAt     Timestamp `json:"updated_at"`
}

// ProjectInput is the create/update payload. Profit is derived server-side and never sent.
type ProjectInput struct {
	Name        string        `json:"name"`
	Client      *string       `json:"client"`
	TotalAmount float64       `json:"total_amount"`
	Cost        float64       `json:"cost"`
	Status      ProjectStatus `json:"status"`

	MilestoneDates

	StartDate     *Date    `json:"start_date"`
	EndDate       *Date    `json:"end_date"`
	ProgressNotes *string  `json:"progress_notes"`
	ProgressRate  *float64 `json:"progress_rate"`
	CurrentStage  *string  `json:"current_stage"`
	Notes         *string  `json:"notes"`
}

// ProjectParticipant is one participant's membership in a project as the backend reports it
type ProjectParticipant struct {
	ParticipantID   uint      `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	ParticipantCode string    `json:"participant_code"`
	ParticipantRole Role      `json:"participant_role"`
	ProfitRate      float64   `json:"profit_rate"`
	JoinedAt        Timestamp `json:"joined_at"`
}

// ProjectParticipantInput attaches a participant. A nil rate means the participant's default.
type ProjectParticipantInput struct {
	ParticipantID uint     `json:"participant_id"`
	ProfitRate    *float64 `json:"profit_rate"`
}
