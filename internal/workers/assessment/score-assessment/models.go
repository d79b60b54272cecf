// internal/workers/assessment/score-assessment/models.go
package scoreassessment

import "sentinel-assessment/internal/assessment"

// Input carries the four displayed option labels chosen in the process.
type Input struct {
	Stress   string `json:"stress"`
	Support  string `json:"support"`
	Coping   string `json:"coping"`
	Pressure string `json:"pressure"`
}

type Output struct {
	RiskTotal   int                 `json:"riskTotal"`
	RiskTier    string              `json:"riskTier"`
	Explanation string              `json:"explanation"`
	Answers     []assessment.Answer `json:"answers"`
	OutcomeID   string              `json:"outcomeId,omitempty"`
}

const inputSchema = `{
	"type": "object",
	"properties": {
		"stress":   {"type": "string", "minLength": 1},
		"support":  {"type": "string", "minLength": 1},
		"coping":   {"type": "string", "minLength": 1},
		"pressure": {"type": "string", "minLength": 1}
	},
	"required": ["stress", "support", "coping", "pressure"]
}`
