package models

// SettlementLine is one participant's computed share
type SettlementLine struct {
	ParticipantID   uint    `json:"participant_id"`
	ParticipantName string  `json:"participant_name"`
	ParticipantCode string  `json:"participant_code"`
	ParticipantRole Role    `json:"participant_role"`
	ProfitRate      float64 `json:"profit_rate"`
	Amount          float64 `json:"amount"`
}

// SettlementResult is the backend's breakdown for a project. It is never stored.
type SettlementResult struct {
	ProjectID   uint             `json:"project_id"`
	ProjectName string           `json:"project_name"`
	TotalProfit float64          `json:"total_profit"`
	Lines       []SettlementLine `json:"settlements"`
}

type SettlementRequest struct {
	ProjectID uint `json:"project_id"`
}
