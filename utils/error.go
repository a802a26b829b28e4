package utils

import "errors"

var (
	ErrorRecordNotFound = errors.New("record not found")

	// Matching / validation failures. Each one is scoped to a single slip;
	// only ErrorAttachmentMissing escalates to block a whole dispatch group.
	ErrorInvoiceNotFound            = errors.New("invoice not found")
	ErrorIdentityMismatch           = errors.New("identity mismatch between slip and invoice")
	ErrorAmountMismatch             = errors.New("amount mismatch")
	ErrorIncompleteRecipient        = errors.New("no valid recipient email")
	ErrorAttachmentMissing          = errors.New("supporting document not found")
	ErrorAttachmentIdentityMismatch = errors.New("supporting document tax id mismatch")

	ErrorDuplicateInvoiceNumber = errors.New("duplicate invoice number")
)
