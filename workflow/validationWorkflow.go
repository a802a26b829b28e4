package workflow

import (
	"fmt"

	"bitbucket.org/jjfidc/boletos_backend/config"
	"bitbucket.org/jjfidc/boletos_backend/models"
	"bitbucket.org/jjfidc/boletos_backend/utils"
	"github.com/sirupsen/logrus"
)

// ProcessValidationWorkflow turns a tentative match into an approve/reject
// decision. The five layers run strictly in order; a hard rejection
// short-circuits the rest, which are still recorded as not-evaluated so the
// outcome always carries exactly five layer entries.
func ProcessValidationWorkflow(logger *logrus.Logger, slip *models.SlipRecord, match *models.MatchResult) *models.ValidationOutcome {
	v := &validation{outcome: &models.ValidationOutcome{Status: models.StatusApproved}}

	v.layerInvoiceFound(slip, match)
	v.layerTaxID(slip, match)
	v.layerPayerName(slip, match)
	v.layerAmount(slip, match)
	v.layerRecipientEmail(match)

	if v.outcome.Status == models.StatusRejected {
		logger.WithFields(logrus.Fields{
			"slip":   slip.FileRef,
			"reason": v.outcome.RejectionReason,
		}).Info("slip rejected")
	}
	return v.outcome
}

type validation struct {
	outcome  *models.ValidationOutcome
	rejected bool
}

func (v *validation) record(layer string, outcome *bool, detail string) {
	v.outcome.Layers = append(v.outcome.Layers, models.LayerResult{
		Layer:   layer,
		Outcome: outcome,
		Detail:  detail,
	})
}

func (v *validation) reject(layer string, err error, detail string) {
	v.record(layer, utils.NewFalse(), detail)
	v.rejected = true
	v.outcome.Status = models.StatusRejected
	v.outcome.RejectionReason = fmt.Sprintf("%s: %s", err.Error(), detail)
}

func (v *validation) skip(layer string) bool {
	if v.rejected {
		v.record(layer, nil, "not evaluated")
		return true
	}
	return false
}

// L1: an invoice must have been resolved, and when the slip declared a
// number itself the resolved invoice must carry exactly that identity.
func (v *validation) layerInvoiceFound(slip *models.SlipRecord, match *models.MatchResult) {
	if !match.Matched() {
		v.reject(models.LayerInvoiceFound, utils.ErrorInvoiceNotFound,
			fmt.Sprintf("no invoice resolved for %s", slip.FileRef))
		return
	}
	inv := match.Invoice
	if slip.DeclaredInvoiceNumber != "" && !sameInvoiceNumber(slip.DeclaredInvoiceNumber, inv.InvoiceNumber) {
		v.reject(models.LayerInvoiceFound, utils.ErrorIdentityMismatch,
			fmt.Sprintf("slip declares %s, resolved invoice is %s", slip.DeclaredInvoiceNumber, inv.InvoiceNumber))
		return
	}
	v.record(models.LayerInvoiceFound, utils.NewTrue(),
		fmt.Sprintf("invoice %s resolved via %s", inv.InvoiceNumber, match.Tier))
}

// L2: tax ids must be byte-equal when both sides carry one.
func (v *validation) layerTaxID(slip *models.SlipRecord, match *models.MatchResult) {
	if v.skip(models.LayerTaxID) {
		return
	}
	if slip.TaxID == "" || match.Invoice.TaxID == "" {
		v.record(models.LayerTaxID, nil, "tax id not available on both sides")
		return
	}
	if slip.TaxID != match.Invoice.TaxID {
		v.reject(models.LayerTaxID, utils.ErrorIdentityMismatch,
			fmt.Sprintf("slip %s vs invoice %s", utils.FormatTaxID(slip.TaxID), utils.FormatTaxID(match.Invoice.TaxID)))
		return
	}
	v.record(models.LayerTaxID, utils.NewTrue(), "tax id match "+utils.FormatTaxID(slip.TaxID))
}

// L3: payer-name similarity. Advisory by default — a weak similarity is
// logged, not rejected — unless the NameLayerBlocks config flag is set.
func (v *validation) layerPayerName(slip *models.SlipRecord, match *models.MatchResult) {
	if v.skip(models.LayerPayerName) {
		return
	}
	if slip.PayerName == "" || match.Invoice.PayerName == "" {
		v.record(models.LayerPayerName, nil, "payer name not available on both sides")
		return
	}
	similarity := utils.NameSimilarity(slip.PayerName, match.Invoice.PayerName)
	detail := fmt.Sprintf("similarity %.0f%%", similarity*100)
	if similarity >= config.NameStrongThreshold() {
		v.record(models.LayerPayerName, utils.NewTrue(), detail+" (strong)")
		return
	}
	if config.NameLayerBlocks() {
		v.reject(models.LayerPayerName, utils.ErrorIdentityMismatch, detail)
		return
	}
	v.record(models.LayerPayerName, utils.NewFalse(), detail+" (weak, advisory only)")
}

// L4: amount delta against the matched installment when one was resolved,
// otherwise against the invoice total.
func (v *validation) layerAmount(slip *models.SlipRecord, match *models.MatchResult) {
	if v.skip(models.LayerAmount) {
		return
	}
	expected := match.Invoice.TotalAmountCents
	source := "invoice total"
	if match.Installment != nil {
		expected = match.Installment.AmountCents
		source = fmt.Sprintf("installment %d", match.Installment.Sequence)
	}
	if slip.AmountCents <= 0 || expected <= 0 {
		v.record(models.LayerAmount, nil, "amount not available on both sides")
		return
	}
	delta := slip.AmountCents - expected
	if delta < 0 {
		delta = -delta
	}
	tolerance := config.AmountToleranceCents()
	detail := fmt.Sprintf("delta R$ %s against %s (tolerance R$ %s)",
		utils.CentsToBRL(delta), source, utils.CentsToBRL(tolerance))
	if delta > tolerance {
		v.reject(models.LayerAmount, utils.ErrorAmountMismatch,
			fmt.Sprintf("slip R$ %s vs %s R$ %s", utils.CentsToBRL(slip.AmountCents), source, utils.CentsToBRL(expected)))
		return
	}
	v.record(models.LayerAmount, utils.NewTrue(), detail)
}

// L5: the invoice must carry at least one validated recipient email.
func (v *validation) layerRecipientEmail(match *models.MatchResult) {
	if v.skip(models.LayerRecipientEmail) {
		return
	}
	if len(match.Invoice.RecipientEmails) == 0 {
		detail := "no valid recipient email on invoice"
		if n := len(match.Invoice.InvalidEmails); n > 0 {
			detail = fmt.Sprintf("%d email(s) present but invalid", n)
		}
		v.reject(models.LayerRecipientEmail, utils.ErrorIncompleteRecipient, detail)
		return
	}
	v.record(models.LayerRecipientEmail, utils.NewTrue(),
		fmt.Sprintf("%d valid recipient email(s)", len(match.Invoice.RecipientEmails)))
}

func sameInvoiceNumber(declared, actual string) bool {
	if declared == actual {
		return true
	}
	ds, as := models.ShortInvoiceKey(declared), models.ShortInvoiceKey(actual)
	return ds != "" && ds == as
}
