package models

import (
	"fmt"
	"sort"

	"bitbucket.org/jjfidc/boletos_backend/utils"
)

// DuplicatePolicy selects how the index treats a duplicate invoice number.
// Corrected notes commonly reuse a number, so last-wins is the default; the
// stricter policies exist for batches where a duplicate means bad input.
type DuplicatePolicy string

const (
	DuplicateLastWins  DuplicatePolicy = "last-wins"
	DuplicateFirstWins DuplicatePolicy = "first-wins"
	DuplicateReject    DuplicatePolicy = "reject-duplicate"
)

// InvoiceIndex is the batch's read-only lookup structure over invoice
// records: by invoice number (full and 6-digit short key) and by tax id.
// Iteration order is stable: ascending invoice number.
type InvoiceIndex struct {
	byNumber   map[string]*InvoiceRecord
	byShortKey map[string]*InvoiceRecord
	byTaxID    map[string][]*InvoiceRecord
	ordered    []*InvoiceRecord
}

// ShortInvoiceKey is the 6-digit short form of an invoice number (its last
// six digits), the key slips and file names commonly carry.
func ShortInvoiceKey(number string) string {
	digits := utils.DigitsOnly(number)
	if len(digits) < 6 {
		return ""
	}
	return digits[len(digits)-6:]
}

func BuildInvoiceIndex(records []*InvoiceRecord, policy DuplicatePolicy) (*InvoiceIndex, error) {
	idx := &InvoiceIndex{
		byNumber:   make(map[string]*InvoiceRecord, len(records)),
		byShortKey: make(map[string]*InvoiceRecord, len(records)),
		byTaxID:    map[string][]*InvoiceRecord{},
	}
	for _, rec := range records {
		if rec == nil || rec.InvoiceNumber == "" {
			continue
		}
		if _, exists := idx.byNumber[rec.InvoiceNumber]; exists {
			switch policy {
			case DuplicateFirstWins:
				continue
			case DuplicateReject:
				return nil, fmt.Errorf("%w: %s", utils.ErrorDuplicateInvoiceNumber, rec.InvoiceNumber)
			}
			// last-wins: replace the earlier record everywhere
			idx.remove(rec.InvoiceNumber)
		}
		idx.byNumber[rec.InvoiceNumber] = rec
		if short := ShortInvoiceKey(rec.InvoiceNumber); short != "" {
			idx.byShortKey[short] = rec
		}
		if rec.TaxID != "" {
			idx.byTaxID[rec.TaxID] = append(idx.byTaxID[rec.TaxID], rec)
		}
		idx.ordered = append(idx.ordered, rec)
	}
	sort.Slice(idx.ordered, func(i, j int) bool {
		return idx.ordered[i].InvoiceNumber < idx.ordered[j].InvoiceNumber
	})
	for _, candidates := range idx.byTaxID {
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].InvoiceNumber < candidates[j].InvoiceNumber
		})
	}
	return idx, nil
}

func (x *InvoiceIndex) remove(number string) {
	old := x.byNumber[number]
	delete(x.byNumber, number)
	if short := ShortInvoiceKey(number); short != "" && x.byShortKey[short] == old {
		delete(x.byShortKey, short)
	}
	if old != nil && old.TaxID != "" {
		candidates := x.byTaxID[old.TaxID]
		for i, c := range candidates {
			if c == old {
				x.byTaxID[old.TaxID] = append(candidates[:i:i], candidates[i+1:]...)
				break
			}
		}
	}
	for i, c := range x.ordered {
		if c == old {
			x.ordered = append(x.ordered[:i:i], x.ordered[i+1:]...)
			break
		}
	}
}

// LookupByNumber resolves a declared invoice number: exact key first, then
// the 6-digit short key.
func (x *InvoiceIndex) LookupByNumber(number string) *InvoiceRecord {
	if number == "" {
		return nil
	}
	if rec, ok := x.byNumber[number]; ok {
		return rec
	}
	if short := ShortInvoiceKey(number); short != "" {
		if rec, ok := x.byShortKey[short]; ok {
			return rec
		}
	}
	return nil
}

// CandidatesByTaxID returns the invoices sharing a tax id, sorted by
// invoice number. Possibly empty.
func (x *InvoiceIndex) CandidatesByTaxID(taxID string) []*InvoiceRecord {
	if taxID == "" {
		return nil
	}
	return x.byTaxID[taxID]
}

// All returns every indexed record sorted by invoice number.
func (x *InvoiceIndex) All() []*InvoiceRecord {
	return x.ordered
}

func (x *InvoiceIndex) Len() int {
	return len(x.ordered)
}
