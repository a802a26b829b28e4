package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bitbucket.org/jjfidc/boletos_backend/audit"
	"bitbucket.org/jjfidc/boletos_backend/config"
	"bitbucket.org/jjfidc/boletos_backend/dispatch"
	"bitbucket.org/jjfidc/boletos_backend/extract"
	"bitbucket.org/jjfidc/boletos_backend/models"
	"bitbucket.org/jjfidc/boletos_backend/nfe"
	"bitbucket.org/jjfidc/boletos_backend/utils"
	"bitbucket.org/jjfidc/boletos_backend/workflow"
)

func main() {
	notesDir := flag.String("notes", "", "Optional: NFe XML directory (default from config)")
	inboxDir := flag.String("inbox", "", "Optional: slip text directory (default from config)")
	auditDir := flag.String("audit", "", "Optional: audit output directory (default from config)")
	flag.Parse()

	if *notesDir == "" {
		*notesDir = config.InvoiceNotesDir()
	}
	if *inboxDir == "" {
		*inboxDir = config.SlipsInboxDir()
	}
	if *auditDir == "" {
		*auditDir = config.AuditDir()
	}
	if err := config.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "prepare folders: %v\n", err)
		os.Exit(1)
	}

	logger := config.GetLogger()

	records, err := nfe.IndexDirectory(*notesDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "index notes: %v\n", err)
		os.Exit(1)
	}
	idx, err := models.BuildInvoiceIndex(records, models.DuplicatePolicy(config.DuplicateInvoicePolicy()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "build invoice index: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Indexed %d invoice(s) from %s\n", idx.Len(), *notesDir)

	slips, err := loadSlips(*inboxDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load slips: %v\n", err)
		os.Exit(1)
	}
	if len(slips) == 0 {
		fmt.Println("no slips to process")
		return
	}
	fmt.Printf("Loaded %d slip(s) from %s\n", len(slips), *inboxDir)

	pool, err := buildSupportingPool(*notesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build supporting pool: %v\n", err)
		os.Exit(1)
	}

	mode := "production"
	if config.PreviewMode() {
		mode = "preview"
	}
	run := audit.NewRun(mode)

	result := workflow.ProcessBatchWorkflow(logger, run, workflow.BatchInput{
		Index: idx,
		Slips: slips,
		Pool:  pool,
	})

	dispatcher := &dispatch.PreviewDispatcher{Dir: *auditDir, Logger: logger}
	sent := 0
	for _, group := range result.Groups {
		if group.Blocked() {
			fmt.Printf("BLOCKED %s: %s\n", group.PayerDisplay, group.Resolution.BlockReason)
			continue
		}
		packet, err := dispatch.BuildPacket(group)
		if err != nil {
			config.LogError(logger, "send-slips", "main", "packet composition failed", group.PayerDisplay, err)
			continue
		}
		if err := dispatcher.Dispatch(packet); err != nil {
			config.LogError(logger, "send-slips", "main", "dispatch failed", group.PayerDisplay, err)
			continue
		}
		if !config.PreviewMode() {
			if err := dispatch.MoveSentSlips(logger, packet, config.SentSlipsDir()); err != nil {
				config.LogError(logger, "send-slips", "main", "move sent slips", group.PayerDisplay, err)
			}
		}
		sent++
	}

	run.Finalize()
	writeReports(run, *auditDir)

	fmt.Printf("Done: %d approved, %d rejected, %d group(s), %d blocked, %d packet(s) rendered\n",
		result.Stats.Approved, result.Stats.Rejected, result.Stats.GroupsTotal, result.Stats.GroupsBlocked, sent)
}

// loadSlips reads the pre-extracted slip texts (.txt) from the inbox. The
// slip's FileRef points at the sibling PDF when one exists, so downstream
// attachment and move operations act on the real document.
func loadSlips(dir string) ([]*models.SlipRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var slips []*models.SlipRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		fileRef := path
		pdf := strings.TrimSuffix(path, filepath.Ext(path)) + ".pdf"
		if _, err := os.Stat(pdf); err == nil {
			fileRef = pdf
		}
		slips = append(slips, extract.BuildSlip(fileRef, string(data)))
	}
	return slips, nil
}

// buildSupportingPool catalogs the note files available for attachment:
// XMLs contribute their parsed identity, PDFs only their file-name digits.
func buildSupportingPool(dir string) ([]models.SupportingDoc, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var pool []models.SupportingDoc
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".xml" && ext != ".pdf" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc := models.SupportingDoc{
			FileRef: path,
			Digits:  utils.DigitsOnly(entry.Name()),
		}
		if ext == ".xml" {
			if rec, err := nfe.ReadInvoice(path); err == nil {
				doc.TaxID = rec.TaxID
				doc.AmountCents = rec.TotalAmountCents
			}
		}
		pool = append(pool, doc)
	}
	return pool, nil
}

func writeReports(run *audit.Run, dir string) {
	writers := []func(*audit.Run, string) (string, error){
		audit.WriteApprovedReport,
		audit.WriteRejectedReport,
		audit.WriteJSONReport,
		audit.WriteCriticalErrorLog,
	}
	for _, w := range writers {
		path, err := w(run, dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "write report: %v\n", err)
			continue
		}
		if path != "" {
			fmt.Printf("Report: %s\n", path)
		}
	}
}
