package workflow

import (
	"io"
	"testing"

	"bitbucket.org/jjfidc/boletos_backend/models"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func buildTestIndex(t *testing.T, records []*models.InvoiceRecord) *models.InvoiceIndex {
	t.Helper()
	idx, err := models.BuildInvoiceIndex(records, models.DuplicateLastWins)
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	return idx
}

func matcherFixtures() []*models.InvoiceRecord {
	return []*models.InvoiceRecord{
		{
			InvoiceNumber:    "000310926",
			TaxID:            "12345678000190",
			PayerName:        "PADARIA CENTRAL LTDA",
			TotalAmountCents: 222120,
			Installments: []models.Installment{
				{Sequence: 1, DueDate: "2026-01-17", AmountCents: 111060},
				{Sequence: 2, DueDate: "2026-02-17", AmountCents: 111060},
			},
			RecipientEmails: []string{"financeiro@padariacentral.com.br"},
		},
		{
			InvoiceNumber:    "000310740",
			TaxID:            "98765432000110",
			PayerName:        "TRANSPORTADORA JOAQUIM PEREIRA",
			TotalAmountCents: 60608,
			Installments: []models.Installment{
				{Sequence: 1, DueDate: "2026-03-05", AmountCents: 60608},
			},
			RecipientEmails: []string{"joaquim@tjp.com.br"},
		},
	}
}

func TestMatchByDeclaredNumberWithInstallment(t *testing.T) {
	idx := buildTestIndex(t, matcherFixtures())
	slip := &models.SlipRecord{
		FileRef:               "boleto1.pdf",
		DeclaredInvoiceNumber: "310926",
		DueDate:               "2026-02-17",
		AmountCents:           111060,
	}

	m := ProcessMatchWorkflow(idx, testLogger(), slip)
	if m.Tier != models.TierDirectNumber {
		t.Fatalf("tier = %s, want %s", m.Tier, models.TierDirectNumber)
	}
	if m.Invoice.InvoiceNumber != "000310926" {
		t.Fatalf("invoice = %s", m.Invoice.InvoiceNumber)
	}
	if m.Installment == nil || m.Installment.Sequence != 2 {
		t.Fatalf("installment = %+v, want sequence 2", m.Installment)
	}
}

func TestMatchByDeclaredNumberSingleInstallmentFallback(t *testing.T) {
	idx := buildTestIndex(t, matcherFixtures())
	// Due date matches no installment, but the invoice has exactly one.
	slip := &models.SlipRecord{
		FileRef:               "boleto2.pdf",
		DeclaredInvoiceNumber: "310740",
		DueDate:               "2026-04-01",
	}

	m := ProcessMatchWorkflow(idx, testLogger(), slip)
	if m.Tier != models.TierDirectNumber {
		t.Fatalf("tier = %s", m.Tier)
	}
	if m.Installment == nil || m.Installment.Sequence != 1 {
		t.Fatalf("single installment must be assumed, got %+v", m.Installment)
	}
	if !hasReason(m.Rationale, ReasonSingleInstallment) {
		t.Fatalf("rationale missing %s: %v", ReasonSingleInstallment, m.Rationale)
	}
}

func TestMatchByInstallmentExactPair(t *testing.T) {
	idx := buildTestIndex(t, matcherFixtures())
	slip := &models.SlipRecord{
		FileRef:     "boleto3.pdf",
		TaxID:       "12345678000190",
		DueDate:     "2026-01-17",
		AmountCents: 111060,
	}

	m := ProcessMatchWorkflow(idx, testLogger(), slip)
	if m.Tier != models.TierDuplicateScore {
		t.Fatalf("tier = %s, want %s", m.Tier, models.TierDuplicateScore)
	}
	if m.Score != 100 {
		t.Fatalf("score = %d, want 100", m.Score)
	}
	if m.Installment == nil || m.Installment.Sequence != 1 {
		t.Fatalf("installment = %+v", m.Installment)
	}
}

func TestMatchByTotalAmountAccepted(t *testing.T) {
	idx := buildTestIndex(t, matcherFixtures())
	// Tax id (+50) and total amount (+40): 90, above threshold.
	slip := &models.SlipRecord{
		FileRef:     "boleto4.pdf",
		TaxID:       "98765432000110",
		AmountCents: 60608,
		DueDate:     "2026-09-09",
	}

	m := ProcessMatchWorkflow(idx, testLogger(), slip)
	if m.Tier != models.TierTotalScore {
		t.Fatalf("tier = %s, want %s", m.Tier, models.TierTotalScore)
	}
	if m.Score != 90 {
		t.Fatalf("score = %d, want 90", m.Score)
	}
	if m.Invoice.InvoiceNumber != "000310740" {
		t.Fatalf("invoice = %s", m.Invoice.InvoiceNumber)
	}
}

func TestMatchByTotalAmountBelowThreshold(t *testing.T) {
	idx := buildTestIndex(t, matcherFixtures())
	// Tax id (+50) and a weak name similarity (+15): 65, below 70.
	slip := &models.SlipRecord{
		FileRef:     "boleto5.pdf",
		TaxID:       "12345678000190",
		PayerName:   "PADARIA CENTRAL XYZW",
		AmountCents: 999999,
	}

	m := ProcessMatchWorkflow(idx, testLogger(), slip)
	if m.Matched() {
		t.Fatalf("score 65 must not match, got tier %s score %d", m.Tier, m.Score)
	}
	if m.Score != 65 {
		t.Fatalf("score = %d, want 65", m.Score)
	}
}

func TestMatchAtExactThreshold(t *testing.T) {
	idx := buildTestIndex(t, matcherFixtures())
	// Total amount (+40) and identical name (+30): exactly 70, accepted.
	slip := &models.SlipRecord{
		FileRef:     "boleto6.pdf",
		PayerName:   "PADARIA CENTRAL LTDA",
		AmountCents: 222120,
	}

	m := ProcessMatchWorkflow(idx, testLogger(), slip)
	if !m.Matched() || m.Score != 70 {
		t.Fatalf("score 70 must be accepted, got tier %s score %d", m.Tier, m.Score)
	}
}

func TestDeclaredNumberOutranksScoredMatch(t *testing.T) {
	idx := buildTestIndex(t, matcherFixtures())
	// Declared number points at 310926 while tax id and amount point at
	// 310740. The declared identity must win, with the conflict on record.
	slip := &models.SlipRecord{
		FileRef:               "boleto7.pdf",
		DeclaredInvoiceNumber: "310926",
		TaxID:                 "98765432000110",
		DueDate:               "2026-03-05",
		AmountCents:           60608,
	}

	m := ProcessMatchWorkflow(idx, testLogger(), slip)
	if m.Tier != models.TierDirectNumber {
		t.Fatalf("tier = %s, declared must win", m.Tier)
	}
	if m.Invoice.InvoiceNumber != "000310926" {
		t.Fatalf("invoice = %s", m.Invoice.InvoiceNumber)
	}
	if !hasReason(m.Rationale, ReasonDeclaredWins) {
		t.Fatalf("conflict must be recorded in rationale: %v", m.Rationale)
	}
}

func TestScoredTieBreakIsStable(t *testing.T) {
	records := []*models.InvoiceRecord{
		{InvoiceNumber: "000310200", TaxID: "11111111000111", TotalAmountCents: 50000},
		{InvoiceNumber: "000310100", TaxID: "11111111000111", TotalAmountCents: 50000},
	}
	idx := buildTestIndex(t, records)
	slip := &models.SlipRecord{
		FileRef:     "boleto8.pdf",
		TaxID:       "11111111000111",
		AmountCents: 50000,
	}

	first := ProcessMatchWorkflow(idx, testLogger(), slip)
	if first.Invoice.InvoiceNumber != "000310100" {
		t.Fatalf("tie must resolve to the lowest invoice number, got %s", first.Invoice.InvoiceNumber)
	}
	for i := 0; i < 5; i++ {
		again := ProcessMatchWorkflow(idx, testLogger(), slip)
		if again.Invoice.InvoiceNumber != first.Invoice.InvoiceNumber {
			t.Fatalf("matching must be deterministic, run %d picked %s", i, again.Invoice.InvoiceNumber)
		}
	}
}

func TestNoMatchAtAll(t *testing.T) {
	idx := buildTestIndex(t, matcherFixtures())
	slip := &models.SlipRecord{FileRef: "boleto9.pdf", AmountCents: 1}

	m := ProcessMatchWorkflow(idx, testLogger(), slip)
	if m.Matched() {
		t.Fatalf("evidence-free slip must not match, got %s", m.Tier)
	}
	if m.Tier != models.TierNone {
		t.Fatalf("tier = %s, want %s", m.Tier, models.TierNone)
	}
}

func hasReason(rationale []string, reason string) bool {
	for _, r := range rationale {
		if r == reason {
			return true
		}
	}
	return false
}
