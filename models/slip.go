package models

// SlipRecord is one payment slip as handed over by the extraction
// collaborator: fields already normalized (tax id digits-only, amount in
// cents, due date ISO). Optional fields are zero-valued when extraction
// could not produce them; that is an absent value, not an error.
type SlipRecord struct {
	FileRef               string `json:"fileRef"`
	DeclaredInvoiceNumber string `json:"declaredInvoiceNumber,omitempty"`
	TaxID                 string `json:"taxId,omitempty"`
	PayerName             string `json:"payerName,omitempty"`
	DueDate               string `json:"dueDate,omitempty"`
	AmountCents           int64  `json:"amountCents"`
	Vendor                string `json:"vendor,omitempty"` // extraction profile (fund) that produced the fields
}
