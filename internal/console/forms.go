package console

import (
	"fmt"
	"strconv"
	"strings"

	"settlement_console/internal/models"
)

// Values is the subset of url.Values the form parsers read.
type Values interface {
	Get(key string) string
}

// ParticipantForm mirrors the participant modal. Fields hold raw input text.
type ParticipantForm struct {
	ID            uint
	Name          string
	Role          models.Role
	ProfitRate    string
	Phone         string
	Email         string
	BankName      string
	AccountNumber string
	Notes         string
}

func NewParticipantForm() ParticipantForm {
	return ParticipantForm{Role: models.RoleRegular}
}

// SelectRole switches the role and pre-fills that role's default rate.
func (f ParticipantForm) SelectRole(role models.Role) ParticipantForm {
	f.Role = role
	f.ProfitRate = formatNumber(role.DefaultProfitRate())
	return f
}

func ParticipantFormFrom(p models.Participant) ParticipantForm {
	return ParticipantForm{
		ID:            p.ID,
		Name:          p.Name,
		Role:          p.Role,
		ProfitRate:    formatNumber(p.DefaultProfitRate),
		Phone:         models.StringValue(p.Phone),
		Email:         models.StringValue(p.Email),
		BankName:      models.StringValue(p.BankName),
		AccountNumber: models.StringValue(p.AccountNumber),
		Notes:         models.StringValue(p.Notes),
	}
}

func ParticipantFormFromValues(v Values) ParticipantForm {
	return ParticipantForm{
		Name:          strings.TrimSpace(v.Get("name")),
		Role:          models.Role(v.Get("role")),
		ProfitRate:    strings.TrimSpace(v.Get("default_profit_rate")),
		Phone:         strings.TrimSpace(v.Get("phone")),
		Email:         strings.TrimSpace(v.Get("email")),
		BankName:      strings.TrimSpace(v.Get("bank_name")),
		AccountNumber: strings.TrimSpace(v.Get("account_number")),
		Notes:         strings.TrimSpace(v.Get("notes")),
	}
}

// Input builds the request payload. A blank rate falls back to the role default;
// anything unparsable is sent as null and left to the backend.
func (f ParticipantForm) Input() models.ParticipantInput {
	role := f.Role
	if role == "" {
		role = models.RoleRegular
	}

	var rate *float64
	if f.ProfitRate == "" {
		r := role.DefaultProfitRate()
		rate = &r
	} else if r, err := strconv.ParseFloat(f.ProfitRate, 64); err == nil {
		rate = &r
	}

	return models.ParticipantInput{
		Name:              f.Name,
		Role:              role,
		DefaultProfitRate: rate,
		Phone:             models.NullableString(f.Phone),
		Email:             models.NullableString(f.Email),
		BankName:          models.NullableString(f.BankName),
		AccountNumber:     models.NullableString(f.AccountNumber),
		Notes:             models.NullableString(f.Notes),
	}
}

// MemberChoice is one row of the project's participant checklist.
type MemberChoice struct {
	ParticipantID uint
	Name          string
	Code          string
	Role          models.Role
	DefaultRate   float64
	Selected      bool
	// Rate is the custom rate typed into the row; blank means the default.
	Rate string
}

func (m MemberChoice) SelectField() string { return fmt.Sprintf("member_%d", m.ParticipantID) }
func (m MemberChoice) RateField() string   { return fmt.Sprintf("member_rate_%d", m.ParticipantID) }

// ProjectForm mirrors the project modal.
type ProjectForm struct {
	ID            uint
	Name          string
	Client        string
	TotalAmount   string
	Cost          string
	Status        models.ProjectStatus
	Dates         map[models.Milestone]string
	StartDate     string
	EndDate       string
	ProgressNotes string
	ProgressRate  string
	CurrentStage  string
	Notes         string
	Members       []MemberChoice
}

func NewProjectForm(participants []models.Participant) ProjectForm {
	return ProjectForm{
		Status:  models.StatusPlanning,
		Dates:   make(map[models.Milestone]string, len(models.Milestones)),
		Members: memberChoices(participants, nil),
	}
}

// ProjectFormFrom populates every field from a fetched record. Null values become "".
func ProjectFormFrom(p models.Project, participants []models.Participant, attached []models.ProjectParticipant) ProjectForm {
	f := ProjectForm{
		ID:            p.ID,
		Name:          p.Name,
		Client:        models.StringValue(p.Client),
		TotalAmount:   formatNumber(p.TotalAmount),
		Cost:          formatNumber(p.Cost),
		Status:        p.Status,
		Dates:         make(map[models.Milestone]string, len(models.Milestones)),
		StartDate:     models.FormatDate(p.StartDate),
		EndDate:       models.FormatDate(p.EndDate),
		ProgressNotes: models.StringValue(p.ProgressNotes),
		ProgressRate:  formatNumber(p.ProgressRate),
		CurrentStage:  models.StringValue(p.CurrentStage),
		Notes:         models.StringValue(p.Notes),
		Members:       memberChoices(participants, attached),
	}
	for _, m := range models.Milestones {
		f.Dates[m] = models.FormatDate(p.Get(m))
	}
	return f
}

func memberChoices(participants []models.Participant, attached []models.ProjectParticipant) []MemberChoice {
	current := make(map[uint]models.ProjectParticipant, len(attached))
	for _, a := range attached {
		current[a.ParticipantID] = a
	}

	choices := make([]MemberChoice, 0, len(participants))
	for _, p := range participants {
		c := MemberChoice{
			ParticipantID: p.ID,
			Name:          p.Name,
			Code:          p.Code,
			Role:          p.Role,
			DefaultRate:   p.DefaultProfitRate,
		}
		if a, ok := current[p.ID]; ok {
			c.Selected = true
			c.Rate = formatNumber(a.ProfitRate)
		}
		choices = append(choices, c)
	}
	return choices
}

// ProjectFormFromValues reads the submitted modal. Checklist rows are matched against participants.
func ProjectFormFromValues(v Values, participants []models.Participant) ProjectForm {
	f := ProjectForm{
		Name:          strings.TrimSpace(v.Get("name")),
		Client:        strings.TrimSpace(v.Get("client")),
		TotalAmount:   strings.TrimSpace(v.Get("total_amount")),
		Cost:          strings.TrimSpace(v.Get("cost")),
		Status:        models.ProjectStatus(v.Get("status")),
		Dates:         make(map[models.Milestone]string, len(models.Milestones)),
		StartDate:     v.Get("start_date"),
		EndDate:       v.Get("end_date"),
		ProgressNotes: strings.TrimSpace(v.Get("progress_notes")),
		ProgressRate:  strings.TrimSpace(v.Get("progress_rate")),
		CurrentStage:  strings.TrimSpace(v.Get("current_stage")),
		Notes:         strings.TrimSpace(v.Get("notes")),
		Members:       memberChoices(participants, nil),
	}
	for _, m := range models.Milestones {
		f.Dates[m] = v.Get(m.Field())
	}
	for i := range f.Members {
		f.Members[i].Selected = v.Get(f.Members[i].SelectField()) != ""
		f.Members[i].Rate = strings.TrimSpace(v.Get(f.Members[i].RateField()))
	}
	return f
}

// Input builds the request payload. Blank amounts are zero; malformed numbers or dates are errors.
func (f ProjectForm) Input() (models.ProjectInput, error) {
	total, err := parseAmount(f.TotalAmount)
	if err != nil {
		return models.ProjectInput{}, fmt.Errorf("total amount: %w", err)
	}
	cost, err := parseAmount(f.Cost)
	if err != nil {
		return models.ProjectInput{}, fmt.Errorf("cost: %w", err)
	}

	status := f.Status
	if status == "" {
		status = models.StatusPlanning
	}

	in := models.ProjectInput{
		Name:          f.Name,
		Client:        models.NullableString(f.Client),
		TotalAmount:   total,
		Cost:          cost,
		Status:        status,
		ProgressNotes: models.NullableString(f.ProgressNotes),
		CurrentStage:  models.NullableString(f.CurrentStage),
		Notes:         models.NullableString(f.Notes),
	}

	for _, m := range models.Milestones {
		d, err := models.ParseNullableDate(f.Dates[m])
		if err != nil {
			return models.ProjectInput{}, fmt.Errorf("%s: %w", m.Field(), err)
		}
		in.Set(m, d)
	}
	if in.StartDate, err = models.ParseNullableDate(f.StartDate); err != nil {
		return models.ProjectInput{}, fmt.Errorf("start_date: %w", err)
	}
	if in.EndDate, err = models.ParseNullableDate(f.EndDate); err != nil {
		return models.ProjectInput{}, fmt.Errorf("end_date: %w", err)
	}

	if f.ProgressRate != "" {
		r, err := strconv.ParseFloat(f.ProgressRate, 64)
		if err != nil {
			return models.ProjectInput{}, fmt.Errorf("progress rate: %w", err)
		}
		in.ProgressRate = &r
	}
	return in, nil
}

func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
