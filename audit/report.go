package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bitbucket.org/jjfidc/boletos_backend/models"
	"bitbucket.org/jjfidc/boletos_backend/utils"
	"github.com/xuri/excelize/v2"
)

// WriteApprovedReport exports the run's approved slips to an xlsx under dir.
// Returns "" with no error when nothing was approved.
func WriteApprovedReport(r *Run, dir string) (string, error) {
	var approved []*SlipAudit
	for _, s := range r.Slips() {
		if s.Status == models.StatusApproved {
			approved = append(approved, s)
		}
	}
	if len(approved) == 0 {
		return "", nil
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	if _, err := f.NewSheet(sheet); err != nil {
		return "", err
	}

	f.SetCellValue(sheet, "A1", "File")
	f.SetCellValue(sheet, "B1", "Invoice")
	f.SetCellValue(sheet, "C1", "Installment")
	f.SetCellValue(sheet, "D1", "MatchTier")
	f.SetCellValue(sheet, "E1", "Score")
	f.SetCellValue(sheet, "F1", "Recipients")
	f.SetCellValue(sheet, "G1", "EmailSent")
	f.SetCellValue(sheet, "H1", "Timestamp")

	for i, s := range approved {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+row, s.FileRef)
		f.SetCellValue(sheet, "B"+row, s.Invoice)
		if s.Installment > 0 {
			f.SetCellValue(sheet, "C"+row, s.Installment)
		}
		f.SetCellValue(sheet, "D"+row, string(s.Tier))
		f.SetCellValue(sheet, "E"+row, s.Score)
		f.SetCellValue(sheet, "F"+row, strings.Join(s.Recipients, "; "))
		f.SetCellValue(sheet, "G"+row, s.EmailSent)
		f.SetCellValue(sheet, "H"+row, s.Timestamp.Format(time.RFC3339))
	}

	path := filepath.Join(dir, fmt.Sprintf("audit_approved_%s.xlsx", r.ID))
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}

// WriteRejectedReport exports the run's rejected slips, with the failing
// layer breakdown, to an xlsx under dir.
func WriteRejectedReport(r *Run, dir string) (string, error) {
	var rejected []*SlipAudit
	for _, s := range r.Slips() {
		if s.Status == models.StatusRejected {
			rejected = append(rejected, s)
		}
	}
	if len(rejected) == 0 {
		return "", nil
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	if _, err := f.NewSheet(sheet); err != nil {
		return "", err
	}

	f.SetCellValue(sheet, "A1", "File")
	f.SetCellValue(sheet, "B1", "Reason")
	f.SetCellValue(sheet, "C1", "FailedLayer")
	f.SetCellValue(sheet, "D1", "MatchTier")
	f.SetCellValue(sheet, "E1", "Rationale")
	f.SetCellValue(sheet, "F1", "Timestamp")

	for i, s := range rejected {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+row, s.FileRef)
		f.SetCellValue(sheet, "B"+row, s.Reason)
		f.SetCellValue(sheet, "C"+row, failedLayer(s))
		f.SetCellValue(sheet, "D"+row, string(s.Tier))
		f.SetCellValue(sheet, "E"+row, strings.Join(s.Rationale, ", "))
		f.SetCellValue(sheet, "F"+row, s.Timestamp.Format(time.RFC3339))
	}

	path := filepath.Join(dir, fmt.Sprintf("audit_rejected_%s.xlsx", r.ID))
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}

func failedLayer(s *SlipAudit) string {
	for _, layer := range s.Layers {
		if layer.Outcome != nil && !*layer.Outcome {
			return layer.Layer
		}
	}
	return ""
}

type jsonReport struct {
	ID          string                `json:"id"`
	Mode        string                `json:"mode"`
	StartedAt   time.Time             `json:"startedAt"`
	FinishedAt  time.Time             `json:"finishedAt"`
	Total       int                   `json:"total"`
	Approved    int                   `json:"approved"`
	Rejected    int                   `json:"rejected"`
	SuccessRate float64               `json:"successRate"`
	Layers      map[string]LayerTally `json:"layers"`
	Slips       []*SlipAudit          `json:"slips"`
	Critical    []CriticalError       `json:"critical,omitempty"`
	Warnings    []Warning             `json:"warnings,omitempty"`
}

// WriteJSONReport dumps the complete run, machine-readable, under dir.
func WriteJSONReport(r *Run, dir string) (string, error) {
	report := jsonReport{
		ID:          r.ID,
		Mode:        r.Mode,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Total:       len(r.Slips()),
		Approved:    r.Approved(),
		Rejected:    r.Rejected(),
		SuccessRate: r.SuccessRate(),
		Layers:      r.LayerStats(),
		Slips:       r.Slips(),
		Critical:    r.CriticalErrors(),
		Warnings:    r.Warnings(),
	}
	path := filepath.Join(dir, fmt.Sprintf("audit_run_%s.json", r.ID))
	if err := utils.WriteJSONFile(path, report); err != nil {
		return "", err
	}
	return path, nil
}

// WriteCriticalErrorLog writes a plain-text log of the run's critical
// errors under dir, "" when there were none.
func WriteCriticalErrorLog(r *Run, dir string) (string, error) {
	critical := r.CriticalErrors()
	if len(critical) == 0 {
		return "", nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run %s (%s)\n", r.ID, r.Mode)
	for _, c := range critical {
		fmt.Fprintf(&sb, "[%s] %s", c.Timestamp.Format("2006-01-02 15:04:05"), c.Message)
		if c.FileRef != "" {
			fmt.Fprintf(&sb, " (%s)", c.FileRef)
		}
		sb.WriteString("\n")
	}
	path := filepath.Join(dir, fmt.Sprintf("critical_errors_%s.txt", r.ID))
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return "", err
	}
	return path, nil
}
