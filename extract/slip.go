package extract

import (
	"bitbucket.org/jjfidc/boletos_backend/models"
)

// BuildSlip runs the full extraction pipeline over one slip's text: detect
// the beneficiary fund, apply its extractor, and fall back to the file name
// for the invoice number when the body carries none.
func BuildSlip(fileRef, text string) *models.SlipRecord {
	fund := DetectFund(text)
	ex := ForFund(fund)

	slip := &models.SlipRecord{
		FileRef:   fileRef,
		Vendor:    fund,
		PayerName: ex.Payer(text),
		DueDate:   ex.DueDate(text),
		TaxID:     PayerTaxID(text),
	}
	if cents, ok := ex.Amount(text); ok {
		slip.AmountCents = cents
	}

	slip.DeclaredInvoiceNumber = InvoiceNumberFromText(text)
	if slip.DeclaredInvoiceNumber == "" {
		slip.DeclaredInvoiceNumber = InvoiceNumberFromFileName(fileRef)
	}
	return slip
}
