package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"bitbucket.org/jjfidc/boletos_backend/config"
	"bitbucket.org/jjfidc/boletos_backend/extract"
	"bitbucket.org/jjfidc/boletos_backend/models"
	"bitbucket.org/jjfidc/boletos_backend/nfe"
	"bitbucket.org/jjfidc/boletos_backend/utils"
	"bitbucket.org/jjfidc/boletos_backend/workflow"
)

var (
	forbiddenChars = regexp.MustCompile(`[\\/*?:"<>|]`)
	multiSpace     = regexp.MustCompile(`\s+`)
)

func main() {
	notesDir := flag.String("notes", "", "Optional: NFe XML directory (default from config)")
	inboxDir := flag.String("inbox", "", "Optional: slip text directory (default from config)")
	outDir := flag.String("out", "", "Optional: renamed output directory (default from config)")
	dryRun := flag.Bool("dry-run", false, "Print the renames without copying anything")
	flag.Parse()

	if *notesDir == "" {
		*notesDir = config.InvoiceNotesDir()
	}
	if *inboxDir == "" {
		*inboxDir = config.SlipsInboxDir()
	}
	if *outDir == "" {
		*outDir = config.RenamedSlipsDir()
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

	entries, err := os.ReadDir(*inboxDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read inbox: %v\n", err)
		os.Exit(1)
	}
	if !*dryRun {
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "prepare output folder: %v\n", err)
			os.Exit(1)
		}
	}

	renamed, skipped := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		path := filepath.Join(*inboxDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", entry.Name(), err)
			skipped++
			continue
		}

		fileRef := path
		pdf := strings.TrimSuffix(path, filepath.Ext(path)) + ".pdf"
		if _, err := os.Stat(pdf); err == nil {
			fileRef = pdf
		}
		slip := extract.BuildSlip(fileRef, string(data))
		match := workflow.ProcessMatchWorkflow(idx, logger, slip)

		newName := renamedFileName(slip, match) + filepath.Ext(fileRef)
		fmt.Printf("%s -> %s\n", filepath.Base(fileRef), newName)
		if *dryRun {
			renamed++
			continue
		}
		if err := copyFile(fileRef, filepath.Join(*outDir, newName)); err != nil {
			fmt.Fprintf(os.Stderr, "copy %s: %v\n", entry.Name(), err)
			skipped++
			continue
		}
		renamed++
	}

	fmt.Printf("Renamed %d slip(s), %d skipped\n", renamed, skipped)
}

// renamedFileName builds "PAYER - NF nnnnnn - DD-MM - R$ v". Missing
// fields fall back to explicit SEM_ markers so the operator can spot them
// in the folder listing.
func renamedFileName(slip *models.SlipRecord, match *models.MatchResult) string {
	payer := safeFileName(slip.PayerName)
	if payer == "" {
		payer = "SEM_PAGADOR"
	}

	number := ""
	if match.Matched() {
		number = models.ShortInvoiceKey(match.Invoice.InvoiceNumber)
	}
	if number == "" {
		number = models.ShortInvoiceKey(slip.DeclaredInvoiceNumber)
	}
	if number == "" {
		number = "SEM_NOTA"
	}

	due := "SEM_VENCIMENTO"
	if parts := strings.Split(slip.DueDate, "-"); len(parts) == 3 {
		due = parts[2] + "-" + parts[1]
	}

	value := "SEM_VALOR"
	if slip.AmountCents > 0 {
		value = utils.CentsToBRL(slip.AmountCents)
	}

	return fmt.Sprintf("%s - NF %s - %s - R$ %s", payer, number, due, value)
}

func safeFileName(name string) string {
	name = forbiddenChars.ReplaceAllString(name, "-")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
