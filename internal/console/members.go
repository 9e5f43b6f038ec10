package console

import (
	"strconv"

	"settlement_console/internal/models"
)

type MemberOpKind int

const (
	OpAttach MemberOpKind = iota
	OpUpdateRate
	OpDetach
)

func (k MemberOpKind) String() string {
	switch k {
	case OpAttach:
		return "attach"
	case OpUpdateRate:
		return "update_rate"
	case OpDetach:
		return "detach"
	}
	return "unknown"
}

// MemberOp is one independent change to a project's participants.
type MemberOp struct {
	Kind          MemberOpKind
	ParticipantID uint
	// Rate is nil for detach, and for attach when no default is known.
	Rate *float64
}

// OpResult records how a MemberOp went. Failures never stop later ops.
type OpResult struct {
	MemberOp
	Err error
}

// PlanMemberOps diffs the checklist against the current membership.
// Selected rows use their custom rate when it parses, else the participant default.
func PlanMemberOps(members []MemberChoice, attached []models.ProjectParticipant) []MemberOp {
	current := make(map[uint]float64, len(attached))
	for _, a := range attached {
		current[a.ParticipantID] = a.ProfitRate
	}

	var ops []MemberOp
	for _, m := range members {
		rate, custom := memberRate(m)
		existing, isMember := current[m.ParticipantID]

		switch {
		case m.Selected && !isMember:
			ops = append(ops, MemberOp{Kind: OpAttach, ParticipantID: m.ParticipantID, Rate: rate})
		case m.Selected && isMember && custom && *rate != existing:
			ops = append(ops, MemberOp{Kind: OpUpdateRate, ParticipantID: m.ParticipantID, Rate: rate})
		case !m.Selected && isMember:
			ops = append(ops, MemberOp{Kind: OpDetach, ParticipantID: m.ParticipantID})
		}
	}
	return ops
}

func memberRate(m MemberChoice) (*float64, bool) {
	if m.Rate != "" {
		if r, err := strconv.ParseFloat(m.Rate, 64); err == nil {
			return &r, true
		}
	}
	if m.DefaultRate > 0 {
		r := m.DefaultRate
		return &r, false
	}
	return nil, false
}
