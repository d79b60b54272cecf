// internal/report/renderer.go
package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"sentinel-assessment/internal/common/config"
	apperrors "sentinel-assessment/internal/common/errors"
)

const (
	coreFamily = "Helvetica"
	lineHeight = 6.0
)

// Renderer turns a Report into PDF bytes. It holds no per-request state and
// is safe for concurrent use.
type Renderer struct {
	cfg      config.ReportConfig
	now      func() time.Time
	compress bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock pins the document creation date. Equal clocks give equal bytes.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// WithCompression toggles page stream compression.
func WithCompression(enabled bool) Option {
	return func(r *Renderer) {
		r.compress = enabled
	}
}

// NewRenderer creates a renderer. The default clock is the current UTC day,
// so repeated renders of one report within a day are byte-identical.
func NewRenderer(cfg config.ReportConfig, opts ...Option) *Renderer {
	r := &Renderer{
		cfg:      cfg,
		compress: cfg.Compress,
		now: func() time.Time {
			return time.Now().UTC().Truncate(24 * time.Hour)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fingerprint identifies the settings that change the rendered bytes,
// including the creation day stamped by the clock.
func (r *Renderer) Fingerprint() string {
	return strings.Join([]string{
		r.cfg.FontDir,
		r.cfg.FontFamily,
		r.cfg.RegularFont,
		r.cfg.BoldFont,
		r.cfg.Author,
		strconv.FormatBool(r.compress),
		r.now().UTC().Format("2006-01-02"),
	}, "\x00")
}

// fontSet is the family and text translator used for one document.
type fontSet struct {
	family    string
	translate func(string) string
}

// loadFonts registers the configured TrueType fonts, or falls back to the
// core font when no font directory is configured. Font files are read on
// every render so a restored file takes effect without a restart.
func (r *Renderer) loadFonts(pdf *fpdf.Fpdf) (fontSet, error) {
	if r.cfg.FontDir == "" {
		return fontSet{
			family:    coreFamily,
			translate: pdf.UnicodeTranslatorFromDescriptor(""),
		}, nil
	}

	regularPath := filepath.Join(r.cfg.FontDir, r.cfg.RegularFont)
	regular, err := os.ReadFile(regularPath)
	if err != nil {
		return fontSet{}, apperrors.NewResourceUnavailableError(regularPath, err)
	}

	bold := regular
	if r.cfg.BoldFont != "" {
		boldPath := filepath.Join(r.cfg.FontDir, r.cfg.BoldFont)
		if bold, err = os.ReadFile(boldPath); err != nil {
			return fontSet{}, apperrors.NewResourceUnavailableError(boldPath, err)
		}
	}

	pdf.AddUTF8FontFromBytes(r.cfg.FontFamily, "", regular)
	pdf.AddUTF8FontFromBytes(r.cfg.FontFamily, "B", bold)
	if err := pdf.Error(); err != nil {
		return fontSet{}, apperrors.NewResourceUnavailableError(r.cfg.FontDir, err)
	}

	return fontSet{
		family:    r.cfg.FontFamily,
		translate: func(s string) string { return s },
	}, nil
}

// Render produces the PDF document for rep.
func (r *Renderer) Render(rep Report) ([]byte, error) {
	created := r.now()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetCompression(r.compress)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	fonts, err := r.loadFonts(pdf)
	if err != nil {
		return nil, err
	}
	tr := fonts.translate

	pdf.SetTitle(Title, true)
	pdf.SetCreator("sentinel-assessment", true)
	if r.cfg.Author != "" {
		pdf.SetAuthor(r.cfg.Author, true)
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fonts.family, "", 8)
		pdf.SetTextColor(100, 116, 139)
		pdf.CellFormat(0, 5, tr(Disclaimer), "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 5, tr("Page "+strconv.Itoa(pdf.PageNo())+"/{nb}"), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	// title
	pdf.SetFont(fonts.family, "B", 16)
	pdf.SetTextColor(15, 23, 42)
	pdf.CellFormat(0, 10, tr(Title), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// tier line, tier name in its accent colour
	pdf.SetFont(fonts.family, "B", 13)
	label := tr("Risk Level: ")
	pdf.CellFormat(pdf.GetStringWidth(label)+1, 8, label, "", 0, "L", false, 0, "")
	accent := AccentFor(rep.Tier)
	pdf.SetTextColor(accent.R, accent.G, accent.B)
	pdf.CellFormat(0, 8, tr(string(rep.Tier)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// explanation
	pdf.SetTextColor(30, 41, 59)
	section(pdf, fonts, "Assessment Summary")
	pdf.SetFont(fonts.family, "", 11)
	for _, line := range strings.Split(rep.Explanation, "\n") {
		pdf.MultiCell(0, lineHeight, tr(line), "", "L", false)
	}
	pdf.Ln(4)

	// recommendations
	section(pdf, fonts, "Recommendations")
	pdf.SetFont(fonts.family, "", 11)
	for _, rec := range Recommendations {
		pdf.MultiCell(0, lineHeight, tr("- "+rec), "", "L", false)
	}

	if err := pdf.Error(); err != nil {
		return nil, apperrors.NewReportRenderFailedError(err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperrors.NewReportRenderFailedError(err)
	}
	return buf.Bytes(), nil
}

func section(pdf *fpdf.Fpdf, fonts fontSet, heading string) {
	pdf.SetFont(fonts.family, "B", 12)
	pdf.CellFormat(0, 8, fonts.translate(heading), "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}
