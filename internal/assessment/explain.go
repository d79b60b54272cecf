// internal/assessment/explain.go
package assessment

import (
	"fmt"
	"strings"
)

// elevatedScore marks an answer as a contributing factor.
const elevatedScore = 2

var factorNames = map[QuestionID]string{
	QuestionStress:   "frequent emotional strain",
	QuestionSupport:  "limited social support",
	QuestionCoping:   "unhealthy coping strategies",
	QuestionPressure: "heavy academic or work pressure",
}

// ContributingFactors names the questions answered at an elevated score,
// in questionnaire order.
func ContributingFactors(a Assessment) []string {
	var factors []string
	for _, ans := range a.Answers() {
		if ans.Score >= elevatedScore {
			factors = append(factors, factorNames[ans.Question])
		}
	}
	return factors
}

// Explain returns a deterministic plain-text explanation of the score.
func Explain(a Assessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total score %d out of %d.\n", a.Total(), MaxTotal)
	for _, ans := range a.Answers() {
		fmt.Fprintf(&b, "%s: %s (%d)\n", ans.Short, ans.Label, ans.Score)
	}

	factors := ContributingFactors(a)
	if len(factors) == 0 {
		b.WriteString("No elevated contributing factors were reported.")
	} else {
		b.WriteString("Contributing factors: " + strings.Join(factors, ", ") + ".")
	}
	return b.String()
}
