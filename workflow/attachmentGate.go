package workflow

import (
	"fmt"
	"sort"
	"strings"

	"bitbucket.org/jjfidc/boletos_backend/config"
	"bitbucket.org/jjfidc/boletos_backend/models"
	"bitbucket.org/jjfidc/boletos_backend/utils"
	"github.com/sirupsen/logrus"
)

// ProcessAttachmentGate verifies that every document the group requires has
// a concrete supporting file in the pool and that each file is consistent
// with the group's identity. All-or-nothing on presence: one missing
// document blocks the whole group, because a partially-attached dispatch is
// worse than none. A tax-id mismatch only excludes the offending file; an
// amount mismatch only warns.
func ProcessAttachmentGate(logger *logrus.Logger, group *models.DocumentGroup, pool []models.SupportingDoc) *models.AttachmentResolution {
	res := &models.AttachmentResolution{}

	required := group.RequiredDocs()
	baseSet := map[string]struct{}{}
	for _, doc := range required {
		if base := docBase(doc); base != "" {
			baseSet[base] = struct{}{}
		}
	}
	for base := range baseSet {
		res.Bases = append(res.Bases, base)
	}
	sort.Strings(res.Bases)

	if len(required) > 0 && len(res.Bases) == 0 {
		res.Blocked = true
		res.BlockReason = fmt.Sprintf("%s: no usable document identifiers in %v",
			utils.ErrorAttachmentMissing.Error(), required)
		return res
	}

	// Presence pass: every base must match at least one pool file.
	type candidate struct {
		doc  models.SupportingDoc
		base string
	}
	var candidates []candidate
	for _, base := range res.Bases {
		found := false
		for _, doc := range pool {
			if strings.Contains(doc.Digits, base) {
				candidates = append(candidates, candidate{doc: doc, base: base})
				found = true
				break
			}
		}
		if !found {
			res.MissingDocs = append(res.MissingDocs, base)
		}
	}
	if len(res.MissingDocs) > 0 {
		res.Blocked = true
		res.BlockReason = fmt.Sprintf("%s: %s",
			utils.ErrorAttachmentMissing.Error(), strings.Join(res.MissingDocs, ", "))
		logger.WithFields(logrus.Fields{
			"payer":   group.PayerDisplay,
			"missing": res.MissingDocs,
		}).Error("supporting documents missing, group blocked")
		return res
	}

	// Consistency pass over the matched files.
	seen := map[string]struct{}{}
	for _, c := range candidates {
		finding := models.AttachmentFinding{
			FileRef:  c.doc.FileRef,
			DocBase:  c.base,
			NumberOK: true,
		}

		if group.TaxID != "" && c.doc.TaxID != "" {
			if c.doc.TaxID != group.TaxID {
				finding.TaxIDOK = utils.NewFalse()
				finding.Detail = fmt.Sprintf("%s: file %s vs group %s",
					utils.ErrorAttachmentIdentityMismatch.Error(),
					utils.FormatTaxID(c.doc.TaxID), utils.FormatTaxID(group.TaxID))
				res.Findings = append(res.Findings, finding)
				logger.WithFields(logrus.Fields{
					"file":  c.doc.FileRef,
					"payer": group.PayerDisplay,
				}).Error("supporting document tax id diverges, file excluded")
				continue
			}
			finding.TaxIDOK = utils.NewTrue()
		}

		if group.AmountCents > 0 && c.doc.AmountCents > 0 {
			delta := c.doc.AmountCents - group.AmountCents
			if delta < 0 {
				delta = -delta
			}
			if delta <= config.AttachmentToleranceCents() {
				finding.AmountOK = utils.NewTrue()
			} else {
				finding.AmountOK = utils.NewFalse()
				finding.Detail = fmt.Sprintf("amount differs: file R$ %s vs group R$ %s",
					utils.CentsToBRL(c.doc.AmountCents), utils.CentsToBRL(group.AmountCents))
				logger.WithFields(logrus.Fields{
					"file":  c.doc.FileRef,
					"delta": delta,
				}).Warn("supporting document amount differs, attaching anyway")
			}
		}

		finding.Attached = true
		res.Findings = append(res.Findings, finding)
		if _, dup := seen[c.doc.FileRef]; !dup {
			seen[c.doc.FileRef] = struct{}{}
			res.Confirmed = append(res.Confirmed, c.doc)
		}
	}

	return res
}

// docBase derives the 6-digit base identifier the pool files are matched
// against: the same short key the invoice index and the renamed file names
// carry, so a note filed under its short number is always found.
func docBase(doc string) string {
	return models.ShortInvoiceKey(doc)
}
