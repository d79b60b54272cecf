// internal/report/report.go
package report

import (
	"fmt"

	"sentinel-assessment/internal/assessment"
)

const (
	// Filename is the attachment name offered to the browser.
	Filename = "student_assessment_report.pdf"
	// ContentType of every rendered report.
	ContentType = "application/pdf"
	// Title is the first line of every report.
	Title = "Sentinel-AI Psychological Assessment Report"

	Disclaimer = "This report is intended to assist educators and counselors and does not replace professional psychological assessment."
)

// Recommendations are printed verbatim on every report regardless of tier.
var Recommendations = []string{
	"Maintain a regular sleep schedule and take short breaks during study or work.",
	"Stay in touch with friends, family or other people you trust.",
	"Prefer healthy coping activities such as exercise, hobbies or talking things through.",
	"Break large responsibilities into smaller steps and ask for help early.",
	"If distress persists, reach out to a counselor or a mental health professional.",
}

// Report is the input to rendering: a tier and its explanation.
// Two reports with equal fields render to identical bytes.
type Report struct {
	Tier        assessment.RiskTier
	Explanation string
}

// New builds a report from a scoring result.
func New(result assessment.Result) Report {
	return Report{
		Tier:        result.Tier,
		Explanation: result.Explanation,
	}
}

// RGB is an 8-bit colour triple.
type RGB struct {
	R, G, B int
}

var accents = map[assessment.RiskTier]RGB{
	assessment.TierLow:    {R: 0x22, G: 0xc5, B: 0x5e}, // #22c55e
	assessment.TierMedium: {R: 0xf5, G: 0x9e, B: 0x0b}, // #f59e0b
	assessment.TierHigh:   {R: 0xef, G: 0x44, B: 0x44}, // #ef4444
}

// AccentFor returns the tier colour; unknown tiers render in slate.
func AccentFor(tier assessment.RiskTier) RGB {
	if c, ok := accents[tier]; ok {
		return c
	}
	return RGB{R: 0x1e, G: 0x29, B: 0x3b}
}

// Hex formats the colour for HTML.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
