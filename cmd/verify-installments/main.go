package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"bitbucket.org/jjfidc/boletos_backend/config"
	"bitbucket.org/jjfidc/boletos_backend/models"
	"bitbucket.org/jjfidc/boletos_backend/nfe"
	"bitbucket.org/jjfidc/boletos_backend/utils"
)

var renamedNumberPattern = regexp.MustCompile(`NF (\d+)`)

// Compares the installment count each NFe declares with the slips actually
// present in the renamed folder and reports the shortfall per invoice.
func main() {
	notesDir := flag.String("notes", "", "Optional: NFe XML directory (default from config)")
	slipsDir := flag.String("slips", "", "Optional: renamed slips directory (default from config)")
	flag.Parse()

	if *notesDir == "" {
		*notesDir = config.InvoiceNotesDir()
	}
	if *slipsDir == "" {
		*slipsDir = config.RenamedSlipsDir()
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

	slipsPerInvoice, err := countSlips(*slipsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read slips folder: %v\n", err)
		os.Exit(1)
	}

	expectedTotal, presentTotal := 0, 0
	var missingCents int64
	gaps := 0

	for _, inv := range idx.All() {
		short := models.ShortInvoiceKey(inv.InvoiceNumber)
		expected := len(inv.Installments)
		if expected == 0 {
			expected = 1
		}
		present := slipsPerInvoice[short]
		expectedTotal += expected
		presentTotal += present

		if present >= expected {
			continue
		}
		gaps++
		fmt.Printf("Invoice %s - %s\n", short, inv.PayerName)
		fmt.Printf("  declared: %d installment(s) | on disk: %d | missing: %d\n",
			expected, present, expected-present)
		if inv.HasInstallments() {
			for _, inst := range inv.Installments {
				fmt.Printf("    %d. due %s | R$ %s\n", inst.Sequence, inst.DueDate, utils.CentsToBRL(inst.AmountCents))
			}
			// Assume the trailing installments are the ones missing.
			for _, inst := range inv.Installments[present:] {
				missingCents += inst.AmountCents
			}
		} else {
			missingCents += inv.TotalAmountCents
		}
	}

	fmt.Printf("\nTotals: %d installment(s) declared, %d slip(s) on disk\n", expectedTotal, presentTotal)
	if gaps == 0 {
		fmt.Println("no missing installments")
		return
	}
	fmt.Printf("%d invoice(s) with missing installments, R$ %s not covered\n", gaps, utils.CentsToBRL(missingCents))
}

func countSlips(dir string) (map[string]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		if m := renamedNumberPattern.FindStringSubmatch(entry.Name()); m != nil {
			counts[models.ShortInvoiceKey(m[1])]++
		}
	}
	return counts, nil
}
