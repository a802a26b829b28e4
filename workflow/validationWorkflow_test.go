package workflow

import (
	"strings"
	"testing"

	"bitbucket.org/jjfidc/boletos_backend/models"
)

func approvableFixture() (*models.SlipRecord, *models.MatchResult) {
	inv := &models.InvoiceRecord{
		InvoiceNumber:    "000310926",
		TaxID:            "12345678000190",
		PayerName:        "PADARIA CENTRAL LTDA",
		TotalAmountCents: 222120,
		Installments: []models.Installment{
			{Sequence: 1, DueDate: "2026-01-17", AmountCents: 111060},
		},
		RecipientEmails: []string{"financeiro@padariacentral.com.br"},
	}
	slip := &models.SlipRecord{
		FileRef:               "boleto.pdf",
		DeclaredInvoiceNumber: "310926",
		TaxID:                 "12345678000190",
		PayerName:             "PADARIA CENTRAL LTDA",
		DueDate:               "2026-01-17",
		AmountCents:           111060,
	}
	match := &models.MatchResult{
		Invoice:     inv,
		Installment: &inv.Installments[0],
		Tier:        models.TierDirectNumber,
	}
	return slip, match
}

func assertFiveLayers(t *testing.T, outcome *models.ValidationOutcome) {
	t.Helper()
	if len(outcome.Layers) != 5 {
		t.Fatalf("outcome must carry exactly 5 layer entries, got %d", len(outcome.Layers))
	}
	expected := []string{
		models.LayerInvoiceFound, models.LayerTaxID, models.LayerPayerName,
		models.LayerAmount, models.LayerRecipientEmail,
	}
	for i, name := range expected {
		if outcome.Layers[i].Layer != name {
			t.Fatalf("layer %d = %s, want %s", i, outcome.Layers[i].Layer, name)
		}
	}
}

func TestValidationApproved(t *testing.T) {
	slip, match := approvableFixture()

	outcome := ProcessValidationWorkflow(testLogger(), slip, match)
	if !outcome.Approved() {
		t.Fatalf("expected approval, got %s (%s)", outcome.Status, outcome.RejectionReason)
	}
	assertFiveLayers(t, outcome)
	for _, layer := range outcome.Layers {
		if layer.Outcome == nil || !*layer.Outcome {
			t.Fatalf("layer %s must pass, got %+v", layer.Layer, layer)
		}
	}
}

func TestValidationRejectsWhenNoMatch(t *testing.T) {
	slip := &models.SlipRecord{FileRef: "boleto.pdf"}
	match := &models.MatchResult{Tier: models.TierNone}

	outcome := ProcessValidationWorkflow(testLogger(), slip, match)
	if outcome.Approved() {
		t.Fatalf("unmatched slip must be rejected")
	}
	assertFiveLayers(t, outcome)

	l1 := outcome.Layer(models.LayerInvoiceFound)
	if l1.Outcome == nil || *l1.Outcome {
		t.Fatalf("L1 must fail, got %+v", l1)
	}
	for _, name := range []string{models.LayerTaxID, models.LayerPayerName, models.LayerAmount, models.LayerRecipientEmail} {
		if entry := outcome.Layer(name); entry.Outcome != nil {
			t.Fatalf("layer %s after a rejection must be not-evaluated, got %+v", name, entry)
		}
	}
}

func TestValidationRejectsDeclaredNumberDisagreement(t *testing.T) {
	slip, match := approvableFixture()
	slip.DeclaredInvoiceNumber = "310740"

	outcome := ProcessValidationWorkflow(testLogger(), slip, match)
	if outcome.Approved() {
		t.Fatalf("declared/resolved number disagreement must reject")
	}
	l1 := outcome.Layer(models.LayerInvoiceFound)
	if l1.Outcome == nil || *l1.Outcome {
		t.Fatalf("L1 must carry the failure, got %+v", l1)
	}
}

func TestValidationRejectsTaxIDMismatch(t *testing.T) {
	slip, match := approvableFixture()
	slip.TaxID = "98765432000110"

	outcome := ProcessValidationWorkflow(testLogger(), slip, match)
	if outcome.Approved() {
		t.Fatalf("tax id mismatch must reject")
	}
	assertFiveLayers(t, outcome)
	if l2 := outcome.Layer(models.LayerTaxID); l2.Outcome == nil || *l2.Outcome {
		t.Fatalf("L2 must fail, got %+v", l2)
	}
	if l4 := outcome.Layer(models.LayerAmount); l4.Outcome != nil {
		t.Fatalf("L4 after L2 rejection must be not-evaluated")
	}
}

func TestValidationTaxIDNotEvaluableWhenMissing(t *testing.T) {
	slip, match := approvableFixture()
	slip.TaxID = ""

	outcome := ProcessValidationWorkflow(testLogger(), slip, match)
	if !outcome.Approved() {
		t.Fatalf("missing tax id on one side must not reject: %s", outcome.RejectionReason)
	}
	if l2 := outcome.Layer(models.LayerTaxID); l2.Outcome != nil {
		t.Fatalf("L2 must be not-evaluable, got %+v", l2)
	}
}

func TestValidationWeakNameIsAdvisoryOnly(t *testing.T) {
	slip, match := approvableFixture()
	slip.PayerName = "PADARIA CENTRAL XYZW"

	outcome := ProcessValidationWorkflow(testLogger(), slip, match)
	if !outcome.Approved() {
		t.Fatalf("weak name similarity must not reject by default: %s", outcome.RejectionReason)
	}
	l3 := outcome.Layer(models.LayerPayerName)
	if l3.Outcome == nil || *l3.Outcome {
		t.Fatalf("L3 must record the weak similarity, got %+v", l3)
	}
	if !strings.Contains(l3.Detail, "advisory") {
		t.Fatalf("L3 detail must flag the advisory outcome, got %q", l3.Detail)
	}
}

func TestValidationRejectsAmountMismatch(t *testing.T) {
	slip, match := approvableFixture()
	slip.AmountCents = 111061 // one cent over, zero tolerance

	outcome := ProcessValidationWorkflow(testLogger(), slip, match)
	if outcome.Approved() {
		t.Fatalf("amount outside tolerance must reject")
	}
	if l4 := outcome.Layer(models.LayerAmount); l4.Outcome == nil || *l4.Outcome {
		t.Fatalf("L4 must fail, got %+v", l4)
	}
}

func TestValidationAmountAgainstTotalWithoutInstallment(t *testing.T) {
	slip, match := approvableFixture()
	match.Installment = nil
	slip.AmountCents = match.Invoice.TotalAmountCents

	outcome := ProcessValidationWorkflow(testLogger(), slip, match)
	if !outcome.Approved() {
		t.Fatalf("amount equal to the invoice total must pass: %s", outcome.RejectionReason)
	}
}

func TestValidationRejectsMissingRecipientEmail(t *testing.T) {
	slip, match := approvableFixture()
	match.Invoice.RecipientEmails = nil
	match.Invoice.InvalidEmails = []string{"financeiro@padariacentral"}

	outcome := ProcessValidationWorkflow(testLogger(), slip, match)
	if outcome.Approved() {
		t.Fatalf("invoice without a valid recipient must reject")
	}
	l5 := outcome.Layer(models.LayerRecipientEmail)
	if l5.Outcome == nil || *l5.Outcome {
		t.Fatalf("L5 must fail, got %+v", l5)
	}
	if !strings.Contains(l5.Detail, "invalid") {
		t.Fatalf("L5 detail must mention the invalid addresses, got %q", l5.Detail)
	}
}
