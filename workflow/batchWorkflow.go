package workflow

import (
	"sort"
	"strings"

	"bitbucket.org/jjfidc/boletos_backend/audit"
	"bitbucket.org/jjfidc/boletos_backend/models"
	"bitbucket.org/jjfidc/boletos_backend/utils"
	"github.com/sirupsen/logrus"
)

// BatchInput is everything one reconciliation run consumes: the prebuilt
// invoice index, the slips to reconcile and the supporting-document pool.
type BatchInput struct {
	Index *models.InvoiceIndex
	Slips []*models.SlipRecord
	Pool  []models.SupportingDoc
}

// BatchStats summarizes one run.
type BatchStats struct {
	Total         int                        `json:"total"`
	Approved      int                        `json:"approved"`
	Rejected      int                        `json:"rejected"`
	GroupsTotal   int                        `json:"groupsTotal"`
	GroupsBlocked int                        `json:"groupsBlocked"`
	Layers        map[string]audit.LayerTally `json:"layers"`
}

// BatchResult carries the per-slip outcomes plus the dispatch-ready groups.
type BatchResult struct {
	Groups   []*models.DocumentGroup
	Outcomes map[string]*models.ValidationOutcome // by slip FileRef
	Stats    BatchStats
}

// ProcessBatchWorkflow reconciles every slip against the index, then gates
// each resulting dispatch group against the supporting-document pool. One
// slip failing never stops the batch; its rejection is recorded and the
// loop moves on. Group order and membership are deterministic for the same
// input.
func ProcessBatchWorkflow(logger *logrus.Logger, run *audit.Run, in BatchInput) *BatchResult {
	result := &BatchResult{
		Outcomes: map[string]*models.ValidationOutcome{},
		Stats:    BatchStats{Total: len(in.Slips)},
	}
	groups := map[models.GroupKey]*models.DocumentGroup{}

	for _, slip := range in.Slips {
		match := ProcessMatchWorkflow(in.Index, logger, slip)
		outcome := ProcessValidationWorkflow(logger, slip, match)
		result.Outcomes[slip.FileRef] = outcome

		entry := &audit.SlipAudit{
			FileRef:   slip.FileRef,
			Status:    outcome.Status,
			Reason:    outcome.RejectionReason,
			Tier:      match.Tier,
			Score:     match.Score,
			Rationale: match.Rationale,
			Layers:    outcome.Layers,
		}
		if match.Matched() {
			entry.Invoice = match.Invoice.InvoiceNumber
			entry.Recipients = match.Invoice.RecipientEmails
			if match.Installment != nil {
				entry.Installment = match.Installment.Sequence
			}
		}
		run.AddSlip(entry)

		if !outcome.Approved() {
			result.Stats.Rejected++
			continue
		}
		result.Stats.Approved++

		key := groupKeyFor(match.Invoice)
		group, ok := groups[key]
		if !ok {
			group = models.NewDocumentGroup(key, utils.NormalizePayerName(match.Invoice.PayerName))
			groups[key] = group
		}
		group.Add(models.ApprovedPair{
			Slip:        slip,
			Invoice:     match.Invoice,
			Installment: match.Installment,
			Outcome:     outcome,
		})
	}

	// Gate runs once per group, after every slip has been placed.
	for _, key := range sortedGroupKeys(groups) {
		group := groups[key]
		group.Resolution = ProcessAttachmentGate(logger, group, in.Pool)
		if group.Blocked() {
			result.Stats.GroupsBlocked++
			run.AddCriticalError(group.Resolution.BlockReason, group.PayerDisplay)
		}
		for _, finding := range group.Resolution.Findings {
			if finding.AmountOK != nil && !*finding.AmountOK {
				run.AddWarning(finding.Detail, finding.FileRef)
			}
		}
		result.Groups = append(result.Groups, group)
	}
	result.Stats.GroupsTotal = len(result.Groups)
	result.Stats.Layers = run.LayerStats()

	logger.WithFields(logrus.Fields{
		"total":         result.Stats.Total,
		"approved":      result.Stats.Approved,
		"rejected":      result.Stats.Rejected,
		"groups":        result.Stats.GroupsTotal,
		"groupsBlocked": result.Stats.GroupsBlocked,
	}).Info("batch reconciliation finished")
	return result
}

func groupKeyFor(inv *models.InvoiceRecord) models.GroupKey {
	return models.GroupKey{
		Recipients: strings.Join(inv.RecipientEmails, "; "),
		Payer:      utils.NormalizePayerName(inv.PayerName),
	}
}

func sortedGroupKeys(groups map[models.GroupKey]*models.DocumentGroup) []models.GroupKey {
	keys := make([]models.GroupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Payer != keys[j].Payer {
			return keys[i].Payer < keys[j].Payer
		}
		return keys[i].Recipients < keys[j].Recipients
	})
	return keys
}
