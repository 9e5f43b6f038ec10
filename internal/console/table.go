package console

import (
	"settlement_console/internal/models"
)

type CellStyle int

const (
	CellText CellStyle = iota
	CellStrong
	CellBadge
	CellAmount
	CellMuted
)

type Cell struct {
	Text  string
	Style CellStyle
	// Class is the badge variant for CellBadge.
	Class string
}

// Row is a table row. A placeholder row has Span set and a single cell.
type Row struct {
	ID    uint
	Label string
	Cells []Cell
	Span  int
}

func (r Row) Placeholder() bool {
	return r.Span > 0
}

// Table is a rendered list. Columns includes the trailing actions column.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable fills an empty table with one placeholder row spanning every column.
func NewTable(columns []string, emptyText string, rows []Row) Table {
	if len(rows) == 0 {
		rows = []Row{{
			Span:  len(columns),
			Cells: []Cell{{Text: emptyText, Style: CellMuted}},
		}}
	}
	return Table{Columns: columns, Rows: rows}
}

var (
	recentColumns      = []string{"Project", "Client", "Total", "Profit", "Status", ""}
	participantColumns = []string{"Code", "Name", "Role", "Rate", "Phone", "Bank", "Account", ""}
	projectColumns     = []string{"Project", "Client", "Total", "Cost", "Profit", "Status", ""}
)

func RoleBadge(role models.Role) Cell {
	if role == "" {
		role = models.RoleRegular
	}
	return Cell{Text: role.Label(), Style: CellBadge, Class: "role-" + string(role)}
}

func StatusBadge(status models.ProjectStatus) Cell {
	return Cell{Text: status.Label(), Style: CellBadge, Class: "status-" + string(status)}
}

func orDash(s *string) string {
	if v := models.StringValue(s); v != "" {
		return v
	}
	return "-"
}

func recentProjectsTable(projects []models.Project) Table {
	n := min(len(projects), 5)
	rows := make([]Row, 0, n)
	for _, p := range projects[:n] {
		rows = append(rows, Row{
			ID:    p.ID,
			Label: p.Name,
			Cells: []Cell{
				{Text: p.Name, Style: CellStrong},
				{Text: orDash(p.Client)},
				{Text: FormatMoney(p.TotalAmount)},
				{Text: FormatMoney(p.Profit), Style: CellAmount},
				StatusBadge(p.Status),
			},
		})
	}
	return NewTable(recentColumns, "No projects yet.", rows)
}

func participantsTable(participants []models.Participant) Table {
	rows := make([]Row, 0, len(participants))
	for _, p := range participants {
		rows = append(rows, Row{
			ID:    p.ID,
			Label: p.Name,
			Cells: []Cell{
				{Text: p.Code, Style: CellBadge, Class: "code"},
				{Text: p.Name, Style: CellStrong},
				RoleBadge(p.Role),
				{Text: FormatRate(p.DefaultProfitRate), Style: CellBadge, Class: "rate"},
				{Text: orDash(p.Phone)},
				{Text: orDash(p.BankName)},
				{Text: orDash(p.AccountNumber)},
			},
		})
	}
	return NewTable(participantColumns, "No participants yet.", rows)
}

func projectsTable(projects []models.Project) Table {
	rows := make([]Row, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, Row{
			ID:    p.ID,
			Label: p.Name,
			Cells: []Cell{
				{Text: p.Name, Style: CellStrong},
				{Text: orDash(p.Client)},
				{Text: FormatMoney(p.TotalAmount)},
				{Text: FormatMoney(p.Cost)},
				{Text: FormatMoney(p.Profit), Style: CellAmount},
				StatusBadge(p.Status),
			},
		})
	}
	return NewTable(projectColumns, "No projects yet.", rows)
}
