package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bitbucket.org/jjfidc/boletos_backend/models"
	"bitbucket.org/jjfidc/boletos_backend/utils"
)

func sampleRun() *Run {
	run := NewRun("preview")
	run.AddSlip(&SlipAudit{
		FileRef: "ok.pdf",
		Status:  models.StatusApproved,
		Tier:    models.TierDirectNumber,
		Invoice: "310926",
		Layers: []models.LayerResult{
			{Layer: models.LayerInvoiceFound, Outcome: utils.NewTrue()},
			{Layer: models.LayerTaxID, Outcome: utils.NewTrue()},
			{Layer: models.LayerPayerName, Outcome: nil},
			{Layer: models.LayerAmount, Outcome: utils.NewTrue()},
			{Layer: models.LayerRecipientEmail, Outcome: utils.NewTrue()},
		},
	})
	run.AddSlip(&SlipAudit{
		FileRef: "bad.pdf",
		Status:  models.StatusRejected,
		Reason:  "amount mismatch: slip R$ 1,00 vs invoice total R$ 2,00",
		Tier:    models.TierTotalScore,
		Layers: []models.LayerResult{
			{Layer: models.LayerInvoiceFound, Outcome: utils.NewTrue()},
			{Layer: models.LayerTaxID, Outcome: utils.NewTrue()},
			{Layer: models.LayerPayerName, Outcome: nil},
			{Layer: models.LayerAmount, Outcome: utils.NewFalse()},
			{Layer: models.LayerRecipientEmail, Outcome: nil},
		},
	})
	run.AddCriticalError("group blocked: missing note 310740", "ACME")
	run.Finalize()
	return run
}

func TestRunTallies(t *testing.T) {
	run := sampleRun()

	if run.Approved() != 1 || run.Rejected() != 1 {
		t.Fatalf("tallies = %d/%d", run.Approved(), run.Rejected())
	}
	if run.SuccessRate() != 0.5 {
		t.Fatalf("success rate = %v", run.SuccessRate())
	}

	stats := run.LayerStats()
	if stats[models.LayerAmount].Pass != 1 || stats[models.LayerAmount].Fail != 1 {
		t.Fatalf("amount layer tally = %+v", stats[models.LayerAmount])
	}
	if tally, ok := stats[models.LayerPayerName]; ok && (tally.Pass != 0 || tally.Fail != 0) {
		t.Fatalf("not-evaluated layers must count toward neither: %+v", tally)
	}
}

func TestWriteJSONReport(t *testing.T) {
	run := sampleRun()
	dir := t.TempDir()

	path, err := WriteJSONReport(run, dir)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	for _, want := range []string{run.ID, "ok.pdf", "bad.pdf", "missing note 310740"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("report missing %q", want)
		}
	}
}

func TestWriteCriticalErrorLog(t *testing.T) {
	run := sampleRun()
	dir := t.TempDir()

	path, err := WriteCriticalErrorLog(run, dir)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "missing note 310740") {
		t.Fatalf("log content wrong:\n%s", data)
	}

	empty := NewRun("preview")
	path, err = WriteCriticalErrorLog(empty, dir)
	if err != nil || path != "" {
		t.Fatalf("no critical errors must write nothing, got (%q, %v)", path, err)
	}
}

func TestWriteExcelReports(t *testing.T) {
	run := sampleRun()
	dir := t.TempDir()

	approved, err := WriteApprovedReport(run, dir)
	if err != nil {
		t.Fatalf("approved: %v", err)
	}
	if filepath.Ext(approved) != ".xlsx" {
		t.Fatalf("approved path = %q", approved)
	}
	rejected, err := WriteRejectedReport(run, dir)
	if err != nil {
		t.Fatalf("rejected: %v", err)
	}
	if _, err := os.Stat(rejected); err != nil {
		t.Fatalf("rejected report not on disk: %v", err)
	}

	empty := NewRun("preview")
	if path, err := WriteApprovedReport(empty, dir); err != nil || path != "" {
		t.Fatalf("empty run must write no approved report, got (%q, %v)", path, err)
	}
}
