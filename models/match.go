package models

// MatchTier is the evidence strength that resolved a slip to an invoice.
type MatchTier string

const (
	TierDirectNumber   MatchTier = "DIRECT_NUMBER"
	TierDuplicateScore MatchTier = "DUPLICATE_SCORE"
	TierTotalScore     MatchTier = "TOTAL_SCORE"
	TierNone           MatchTier = "NONE"
)

// MatchResult is produced fresh per slip and consumed immediately by the
// validator. Invoice and Installment are non-owning references into the
// invoice index. Score is only meaningful for the scored tiers.
type MatchResult struct {
	Invoice     *InvoiceRecord
	Installment *Installment
	Tier        MatchTier
	Score       int
	Rationale   []string
}

func (m *MatchResult) Matched() bool {
	return m != nil && m.Tier != TierNone && m.Invoice != nil
}
