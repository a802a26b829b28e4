package workflow

import (
	"fmt"

	"bitbucket.org/jjfidc/boletos_backend/config"
	"bitbucket.org/jjfidc/boletos_backend/models"
	"bitbucket.org/jjfidc/boletos_backend/utils"
	"github.com/sirupsen/logrus"
)

// Rationale tags emitted by the matcher.
const (
	ReasonDeclaredNumber        = "DECLARED_NUMBER"
	ReasonDeclaredNumberUnknown = "DECLARED_NUMBER_UNKNOWN"
	ReasonInstallmentDueDate    = "INSTALLMENT_DUE_DATE"
	ReasonSingleInstallment     = "SINGLE_INSTALLMENT"
	ReasonDuplicateExact        = "DUPLICATE_EXACT"
	ReasonTaxIDMatch            = "TAX_ID_MATCH"
	ReasonTotalAmountMatch      = "TOTAL_AMOUNT_MATCH"
	ReasonDeclaredWins          = "DECLARED_WINS"
)

// ProcessMatchWorkflow resolves a slip to its best match, trying
// progressively weaker evidence: declared invoice number, exact
// installment (duplicate) match, then weighted total-amount scoring.
// Deterministic for an unchanged index.
func ProcessMatchWorkflow(idx *models.InvoiceIndex, logger *logrus.Logger, slip *models.SlipRecord) *models.MatchResult {
	direct := matchByDeclaredNumber(idx, slip)
	scored := matchByScore(idx, slip)

	if direct.Matched() {
		// Explicitly declared identity outranks inferred identity.
		if scored.Matched() && scored.Invoice.InvoiceNumber != direct.Invoice.InvoiceNumber {
			direct.Rationale = append(direct.Rationale,
				fmt.Sprintf("SCORED_DISAGREES(%s)", scored.Invoice.InvoiceNumber),
				ReasonDeclaredWins)
			logger.WithFields(logrus.Fields{
				"slip":     slip.FileRef,
				"declared": direct.Invoice.InvoiceNumber,
				"scored":   scored.Invoice.InvoiceNumber,
			}).Warn("declared invoice number disagrees with scored match, declared wins")
		}
		return direct
	}

	if scored.Matched() && slip.DeclaredInvoiceNumber != "" {
		scored.Rationale = append([]string{ReasonDeclaredNumberUnknown}, scored.Rationale...)
	}
	// When no tier resolved, scored still carries the best score seen, which
	// the audit trail wants for near-miss diagnosis.
	return scored
}

func matchByDeclaredNumber(idx *models.InvoiceIndex, slip *models.SlipRecord) *models.MatchResult {
	if slip.DeclaredInvoiceNumber == "" {
		return &models.MatchResult{Tier: models.TierNone}
	}
	inv := idx.LookupByNumber(slip.DeclaredInvoiceNumber)
	if inv == nil {
		return &models.MatchResult{Tier: models.TierNone}
	}

	result := &models.MatchResult{
		Invoice:   inv,
		Tier:      models.TierDirectNumber,
		Rationale: []string{ReasonDeclaredNumber},
	}
	if inv.HasInstallments() {
		if inst := inv.InstallmentByDueDate(slip.DueDate); inst != nil {
			result.Installment = inst
			result.Rationale = append(result.Rationale, ReasonInstallmentDueDate)
		} else if len(inv.Installments) == 1 {
			result.Installment = &inv.Installments[0]
			result.Rationale = append(result.Rationale, ReasonSingleInstallment)
		}
		// Otherwise the amount layer validates against the invoice total.
	}
	return result
}

// matchByScore runs the two scored tiers: an exact installment match wins
// outright with score 100; otherwise candidates accumulate weighted
// evidence and the best one is accepted above the configured threshold.
func matchByScore(idx *models.InvoiceIndex, slip *models.SlipRecord) *models.MatchResult {
	if dup := matchByInstallment(idx, slip); dup.Matched() {
		return dup
	}
	return matchByTotalAmount(idx, slip)
}

func matchByInstallment(idx *models.InvoiceIndex, slip *models.SlipRecord) *models.MatchResult {
	if slip.TaxID == "" || slip.DueDate == "" || slip.AmountCents <= 0 {
		return &models.MatchResult{Tier: models.TierNone}
	}
	for _, inv := range idx.CandidatesByTaxID(slip.TaxID) {
		for i := range inv.Installments {
			inst := &inv.Installments[i]
			if inst.DueDate == slip.DueDate && inst.AmountCents == slip.AmountCents {
				// First exact pair wins outright.
				return &models.MatchResult{
					Invoice:     inv,
					Installment: inst,
					Tier:        models.TierDuplicateScore,
					Score:       100,
					Rationale: []string{
						ReasonDuplicateExact,
						fmt.Sprintf("DUE_%s", inst.DueDate),
						fmt.Sprintf("AMOUNT_%s", utils.CentsToBRL(inst.AmountCents)),
					},
				}
			}
		}
	}
	return &models.MatchResult{Tier: models.TierNone}
}

func matchByTotalAmount(idx *models.InvoiceIndex, slip *models.SlipRecord) *models.MatchResult {
	strong := config.NameStrongThreshold()
	weak := config.NameWeakThreshold()

	best := &models.MatchResult{Tier: models.TierNone}
	for _, inv := range idx.All() {
		score := 0
		var reasons []string

		if slip.TaxID != "" && inv.TaxID != "" && slip.TaxID == inv.TaxID {
			score += 50
			reasons = append(reasons, ReasonTaxIDMatch)
		}
		if slip.AmountCents > 0 && inv.TotalAmountCents > 0 && slip.AmountCents == inv.TotalAmountCents {
			score += 40
			reasons = append(reasons, ReasonTotalAmountMatch)
		}
		if slip.PayerName != "" && inv.PayerName != "" {
			similarity := utils.NameSimilarity(slip.PayerName, inv.PayerName)
			if similarity >= strong {
				score += 30
				reasons = append(reasons, fmt.Sprintf("NAME_MATCH_%.0f%%", similarity*100))
			} else if similarity >= weak {
				score += 15
				reasons = append(reasons, fmt.Sprintf("NAME_SIMILAR_%.0f%%", similarity*100))
			}
		}

		// Strictly greater keeps the first-seen candidate on ties; All()
		// iterates in ascending invoice-number order, so ranking is stable.
		if score > best.Score {
			best = &models.MatchResult{
				Invoice:   inv,
				Tier:      models.TierTotalScore,
				Score:     score,
				Rationale: reasons,
			}
		}
	}

	if best.Invoice == nil || best.Score < config.ScoreAcceptThreshold() {
		return &models.MatchResult{Tier: models.TierNone, Score: best.Score}
	}
	return best
}
