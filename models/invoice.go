package models

// Installment is one scheduled partial payment of an invoice. DueDate is
// ISO YYYY-MM-DD, the format NFe <dVenc> carries.
type Installment struct {
	Sequence    int    `json:"sequence"`
	DueDate     string `json:"dueDate"`
	AmountCents int64  `json:"amountCents"`
}

// InvoiceRecord is one fiscal document, built once per batch when the
// invoice index is loaded and immutable afterwards.
type InvoiceRecord struct {
	InvoiceNumber    string        `json:"invoiceNumber"`
	TaxID            string        `json:"taxId"` // digits only, 11 or 14
	PayerName        string        `json:"payerName"`
	TotalAmountCents int64         `json:"totalAmountCents"`
	Installments     []Installment `json:"installments,omitempty"`
	RecipientEmails  []string      `json:"recipientEmails,omitempty"`
	InvalidEmails    []string      `json:"invalidEmails,omitempty"`
	SourceRef        string        `json:"sourceRef,omitempty"`
}

func (inv *InvoiceRecord) HasInstallments() bool {
	return len(inv.Installments) > 0
}

// InstallmentByDueDate returns the installment due on the given ISO date,
// or nil when none matches.
func (inv *InvoiceRecord) InstallmentByDueDate(dueDate string) *Installment {
	if dueDate == "" {
		return nil
	}
	for i := range inv.Installments {
		if inv.Installments[i].DueDate == dueDate {
			return &inv.Installments[i]
		}
	}
	return nil
}
