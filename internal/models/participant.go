package models

// Role is a participant's position on a project team
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLead      Role = "lead"
	RoleSenior    Role = "senior"
	RoleRegular   Role = "regular"
	RoleAssistant Role = "assistant"
)

// Roles lists the roles offered in forms, highest share first.
var Roles = []Role{RoleAdmin, RoleLead, RoleSenior, RoleRegular, RoleAssistant}

// DefaultProfitRate returns the percentage pre-filled for a role.
// Unknown roles get the regular rate.
func (r Role) DefaultProfitRate() float64 {
	switch r {
	case RoleAdmin:
		return 30
	case RoleLead:
		return 25
	case RoleSenior:
		return 20
	case RoleAssistant:
		return 10
	default:
		return 15
	}
}

// Label returns the display name for a role, or the raw value if unknown.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleLead:
		return "Lead"
	case RoleSenior:
		return "Senior"
	case RoleRegular:
		return "Regular"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// Participant is a person who can share in project profit.
// The backend assigns ID and Code.
type Participant struct {
	ID                uint      `json:"id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	Role              Role      `json:"role"`
	DefaultProfitRate float64   `json:"default_profit_rate"`
	Phone             *string   `json:"phone"`
	Email             *string   `json:"email"`
	BankName          *string   `json:"bank_name"`
	AccountNumber     *string   `json:"account_number"`
	Notes             *string   `json:"notes"`
	CreatedAt         Timestamp `json:"created_at"`
	UpdatedAt         Timestamp `json:"updated_at"`
}

// ParticipantInput is the create/update payload. Empty optional fields are sent as null.
type ParticipantInput struct {
	Name              string   `json:"name"`
	Role              Role     `json:"role"`
	DefaultProfitRate *float64 `json:"default_profit_rate"`
	Phone             *string  `json:"phone"`
	Email             *string  `json:"email"`
	BankName          *string  `json:"bank_name"`
	AccountNumber     *string  `json:"account_number"`
	Notes             *string  `json:"notes"`
}

// NullableString maps "" to nil.
func NullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue maps nil to "".
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
