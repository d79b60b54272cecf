// internal/assessment/question.go
package assessment

import (
	apperrors "sentinel-assessment/internal/common/errors"
)

// QuestionID identifies one of the four fixed screening questions.
type QuestionID string

const (
	QuestionStress   QuestionID = "stress"
	QuestionSupport  QuestionID = "support"
	QuestionCoping   QuestionID = "coping"
	QuestionPressure QuestionID = "pressure"
)

// StressLevel answers "how often do you feel mentally overwhelmed".
type StressLevel int

const (
	StressRarely StressLevel = iota
	StressOccasionally
	StressFrequently
	StressAlmostAlways
)

var stressLabels = [...]string{
	"Rarely or never",
	"Occasionally",
	"Frequently",
	"Almost all the time",
}

// SupportLevel answers "do you feel supported". Stronger support scores lower.
type SupportLevel int

const (
	SupportStrong SupportLevel = iota
	SupportSomewhat
	SupportRarely
	SupportNone
)

var supportLabels = [...]string{
	"Yes, strongly",
	"Somewhat",
	"Rarely",
	"Not at all",
}

// CopingStyle answers "how do you usually cope".
type CopingStyle int

const (
	CopingHealthy CopingStyle = iota
	CopingDistraction
	CopingAvoidance
	CopingHarmful
)

var copingLabels = [...]string{
	"Healthy activities (exercise, talking, hobbies)",
	"Distraction (sleep, entertainment)",
	"Avoidance or isolation",
	"Substances or harmful habits",
}

// PressureLevel answers "how manageable do your responsibilities feel".
type PressureLevel int

const (
	PressureVeryManageable PressureLevel = iota
	PressureSomewhatManageable
	PressureOftenStressful
	PressureOverwhelming
)

var pressureLabels = [...]string{
	"Very manageable",
	"Somewhat manageable",
	"Often stressful",
	"Overwhelming",
}

func labelAt(labels []string, i int) string {
	if i < 0 || i >= len(labels) {
		return "unknown"
	}
	return labels[i]
}

func indexOf(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}

func (s StressLevel) Score() int { return int(s) }

func (s StressLevel) String() string { return labelAt(stressLabels[:], int(s)) }

func (s SupportLevel) Score() int { return int(s) }

func (s SupportLevel) String() string { return labelAt(supportLabels[:], int(s)) }

func (c CopingStyle) Score() int { return int(c) }

func (c CopingStyle) String() string { return labelAt(copingLabels[:], int(c)) }

func (p PressureLevel) Score() int { return int(p) }

func (p PressureLevel) String() string { return labelAt(pressureLabels[:], int(p)) }

// ParseStress maps a displayed option label to its StressLevel.
func ParseStress(label string) (StressLevel, error) {
	i := indexOf(stressLabels[:], label)
	if i < 0 {
		return 0, apperrors.NewInvalidAnswerError(string(QuestionStress), label)
	}
	return StressLevel(i), nil
}

// ParseSupport maps a displayed option label to its SupportLevel.
func ParseSupport(label string) (SupportLevel, error) {
	i := indexOf(supportLabels[:], label)
	if i < 0 {
		return 0, apperrors.NewInvalidAnswerError(string(QuestionSupport), label)
	}
	return SupportLevel(i), nil
}

// ParseCoping maps a displayed option label to its CopingStyle.
func ParseCoping(label string) (CopingStyle, error) {
	i := indexOf(copingLabels[:], label)
	if i < 0 {
		return 0, apperrors.NewInvalidAnswerError(string(QuestionCoping), label)
	}
	return CopingStyle(i), nil
}

// ParsePressure maps a displayed option label to its PressureLevel.
func ParsePressure(label string) (PressureLevel, error) {
	i := indexOf(pressureLabels[:], label)
	if i < 0 {
		return 0, apperrors.NewInvalidAnswerError(string(QuestionPressure), label)
	}
	return PressureLevel(i), nil
}

// Question is one entry of the questionnaire as presented to a user.
// Options are ordered from healthiest (score 0) to most concerning (score 3).
type Question struct {
	ID      QuestionID `json:"id"`
	Prompt  string     `json:"prompt"`
	Short   string     `json:"short"`
	Options []string   `json:"options"`
}

// Questions returns the fixed questionnaire in display order.
func Questions() []Question {
	return []Question{
		{
			ID:      QuestionStress,
			Prompt:  "How often do you feel mentally overwhelmed or emotionally drained?",
			Short:   "Stress",
			Options: append([]string(nil), stressLabels[:]...),
		},
		{
			ID:      QuestionSupport,
			Prompt:  "Do you feel supported by friends, family, or people you trust?",
			Short:   "Support",
			Options: append([]string(nil), supportLabels[:]...),
		},
		{
			ID:      QuestionCoping,
			Prompt:  "When under stress, how do you usually cope?",
			Short:   "Coping",
			Options: append([]string(nil), copingLabels[:]...),
		},
		{
			ID:      QuestionPressure,
			Prompt:  "How manageable do your academic or work responsibilities feel?",
			Short:   "Pressure",
			Options: append([]string(nil), pressureLabels[:]...),
		},
	}
}
