// internal/assessment/scoring.go
package assessment

import "fmt"

// RiskTier is the coarse classification derived from the total score.
type RiskTier string

const (
	TierLow    RiskTier = "LOW"
	TierMedium RiskTier = "MEDIUM"
	TierHigh   RiskTier = "HIGH"
)

const (
	// HighRiskThreshold is the lowest total classified HIGH.
	HighRiskThreshold = 9
	// MediumRiskThreshold is the lowest total classified MEDIUM.
	MediumRiskThreshold = 5
	// MaxTotal is the largest reachable total: four questions scored 0..3.
	MaxTotal = 12
)

func (t RiskTier) String() string { return string(t) }

// ParseRiskTier accepts the canonical upper-case tier names.
func ParseRiskTier(s string) (RiskTier, error) {
	switch RiskTier(s) {
	case TierLow, TierMedium, TierHigh:
		return RiskTier(s), nil
	default:
		return "", fmt.Errorf("unknown risk tier %q", s)
	}
}

// TierFor classifies a total score.
func TierFor(total int) RiskTier {
	switch {
	case total >= HighRiskThreshold:
		return TierHigh
	case total >= MediumRiskThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// Assessment is one complete set of answers.
type Assessment struct {
	Stress   StressLevel
	Support  SupportLevel
	Coping   CopingStyle
	Pressure PressureLevel
}

// Total is the unweighted sum of the four answer scores.
func (a Assessment) Total() int {
	return a.Stress.Score() + a.Support.Score() + a.Coping.Score() + a.Pressure.Score()
}

// Tier classifies the assessment total.
func (a Assessment) Tier() RiskTier {
	return TierFor(a.Total())
}

// ParseAnswers builds an Assessment from the four displayed option labels.
// The first label that is not one of its question's options is reported.
func ParseAnswers(stress, support, coping, pressure string) (Assessment, error) {
	var (
		a   Assessment
		err error
	)
	if a.Stress, err = ParseStress(stress); err != nil {
		return Assessment{}, err
	}
	if a.Support, err = ParseSupport(support); err != nil {
		return Assessment{}, err
	}
	if a.Coping, err = ParseCoping(coping); err != nil {
		return Assessment{}, err
	}
	if a.Pressure, err = ParsePressure(pressure); err != nil {
		return Assessment{}, err
	}
	return a, nil
}

// Answer is a single scored response, used for display and reports.
type Answer struct {
	Question QuestionID `json:"question"`
	Short    string     `json:"short"`
	Label    string     `json:"label"`
	Score    int        `json:"score"`
}

// Answers lists the responses in questionnaire order.
func (a Assessment) Answers() []Answer {
	return []Answer{
		{Question: QuestionStress, Short: "Stress", Label: a.Stress.String(), Score: a.Stress.Score()},
		{Question: QuestionSupport, Short: "Support", Label: a.Support.String(), Score: a.Support.Score()},
		{Question: QuestionCoping, Short: "Coping", Label: a.Coping.String(), Score: a.Coping.Score()},
		{Question: QuestionPressure, Short: "Pressure", Label: a.Pressure.String(), Score: a.Pressure.Score()},
	}
}

// Result is everything the presentation layer needs to display an outcome.
type Result struct {
	Assessment  Assessment `json:"-"`
	Answers     []Answer   `json:"answers"`
	Total       int        `json:"total"`
	MaxTotal    int        `json:"maxTotal"`
	Tier        RiskTier   `json:"tier"`
	Explanation string     `json:"explanation"`
}

// Score computes total, tier and explanation for an assessment.
func Score(a Assessment) Result {
	total := a.Total()
	return Result{
		Assessment:  a,
		Answers:     a.Answers(),
		Total:       total,
		MaxTotal:    MaxTotal,
		Tier:        TierFor(total),
		Explanation: Explain(a),
	}
}
