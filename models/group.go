package models

import (
	"sort"
	"strings"
)

// GroupKey aggregates approved slips that dispatch together: same recipient
// email set, same normalized payer identity.
type GroupKey struct {
	Recipients string // validated emails joined with "; ", original order
	Payer      string // normalized payer name
}

// ApprovedPair is one approved slip together with the invoice (and, when
// resolved, the installment) it was reconciled against.
type ApprovedPair struct {
	Slip        *SlipRecord
	Invoice     *InvoiceRecord
	Installment *Installment
	Outcome     *ValidationOutcome
}

// DocumentGroup is the unit of downstream dispatch. Built incrementally as
// slips are approved, finalized once per batch; maps to at most one packet.
type DocumentGroup struct {
	Key          GroupKey
	PayerDisplay string
	TaxID        string // from the first slip carrying one
	AmountCents  int64  // from the first approved slip, used by the attachment gate
	Pairs        []ApprovedPair
	Funds        []string
	requiredDocs map[string]struct{}
	Resolution   *AttachmentResolution
}

func NewDocumentGroup(key GroupKey, payerDisplay string) *DocumentGroup {
	return &DocumentGroup{
		Key:          key,
		PayerDisplay: payerDisplay,
		requiredDocs: map[string]struct{}{},
	}
}

func (g *DocumentGroup) Add(pair ApprovedPair) {
	g.Pairs = append(g.Pairs, pair)
	g.requiredDocs[pair.Invoice.InvoiceNumber] = struct{}{}
	if g.TaxID == "" && pair.Slip.TaxID != "" {
		g.TaxID = pair.Slip.TaxID
	}
	if g.AmountCents == 0 && pair.Slip.AmountCents > 0 {
		g.AmountCents = pair.Slip.AmountCents
	}
	if pair.Slip.Vendor != "" {
		g.Funds = append(g.Funds, pair.Slip.Vendor)
	}
}

// RequiredDocs lists the invoice numbers whose supporting documents must
// all be present before the group may dispatch, sorted for determinism.
func (g *DocumentGroup) RequiredDocs() []string {
	docs := make([]string, 0, len(g.requiredDocs))
	for d := range g.requiredDocs {
		docs = append(docs, d)
	}
	sort.Strings(docs)
	return docs
}

func (g *DocumentGroup) RecipientList() []string {
	if g.Key.Recipients == "" {
		return nil
	}
	parts := strings.Split(g.Key.Recipients, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DominantFund picks the group's fund: the most frequent one across its
// slips, first-seen winning ties. Falls back to "" when no slip carried one.
func (g *DocumentGroup) DominantFund() string {
	counts := map[string]int{}
	best := ""
	for _, f := range g.Funds {
		counts[f]++
		if best == "" || counts[f] > counts[best] {
			best = f
		}
	}
	return best
}

func (g *DocumentGroup) Blocked() bool {
	return g.Resolution != nil && g.Resolution.Blocked
}

// SupportingDoc is one candidate supporting file from the pool, with its
// fields already normalized by the extraction side. TaxID "" and
// AmountCents 0 mean unknown.
type SupportingDoc struct {
	FileRef     string `json:"fileRef"`
	Digits      string `json:"digits"` // digits derived from the file name
	TaxID       string `json:"taxId,omitempty"`
	AmountCents int64  `json:"amountCents,omitempty"`
}

// AttachmentFinding records the gate's verdict on one matched supporting
// file. Nil pointers mean the check was not evaluable.
type AttachmentFinding struct {
	FileRef  string `json:"fileRef"`
	DocBase  string `json:"docBase"`
	NumberOK bool   `json:"numberOk"`
	TaxIDOK  *bool  `json:"taxIdOk"`
	AmountOK *bool  `json:"amountOk"`
	Attached bool   `json:"attached"`
	Detail   string `json:"detail,omitempty"`
}

// AttachmentResolution is the attachment gate's output for one group.
type AttachmentResolution struct {
	Confirmed   []SupportingDoc     `json:"confirmed,omitempty"`
	Bases       []string            `json:"bases,omitempty"`
	Findings    []AttachmentFinding `json:"findings,omitempty"`
	MissingDocs []string            `json:"missingDocs,omitempty"`
	Blocked     bool                `json:"blocked"`
	BlockReason string              `json:"blockReason,omitempty"`
}
