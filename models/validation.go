package models

type ValidationStatus string

const (
	StatusApproved ValidationStatus = "APPROVED"
	StatusRejected ValidationStatus = "REJECTED"
)

// Validation layer names, in execution order.
const (
	LayerInvoiceFound   = "L1_INVOICE_FOUND"
	LayerTaxID          = "L2_TAX_ID"
	LayerPayerName      = "L3_PAYER_NAME"
	LayerAmount         = "L4_AMOUNT"
	LayerRecipientEmail = "L5_RECIPIENT_EMAIL"
)

// LayerResult records one validation layer. Outcome nil means the layer was
// not evaluable (or was skipped after a hard rejection) — that is not a
// failure.
type LayerResult struct {
	Layer   string `json:"layer"`
	Outcome *bool  `json:"outcome"`
	Detail  string `json:"detail"`
}

// ValidationOutcome is produced once per slip and never mutated afterwards.
// Layers always holds exactly five entries, one per layer, in order.
type ValidationOutcome struct {
	Status          ValidationStatus `json:"status"`
	Layers          []LayerResult    `json:"layers"`
	RejectionReason string           `json:"rejectionReason,omitempty"`
}

func (o *ValidationOutcome) Approved() bool {
	return o != nil && o.Status == StatusApproved
}

// Layer returns the result entry for the named layer, or nil.
func (o *ValidationOutcome) Layer(name string) *LayerResult {
	for i := range o.Layers {
		if o.Layers[i].Layer == name {
			return &o.Layers[i]
		}
	}
	return nil
}
