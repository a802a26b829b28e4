package nfe

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"bitbucket.org/jjfidc/boletos_backend/config"
	"bitbucket.org/jjfidc/boletos_backend/models"
	"bitbucket.org/jjfidc/boletos_backend/utils"
	"github.com/sirupsen/logrus"
)

// Wire structs for the NFe layout (namespace
// http://www.portalfiscal.inf.br/nfe). Issued notes usually arrive wrapped
// in nfeProc; some tools export the bare NFe element instead, so parsing
// tries both roots.
type nfeProc struct {
	XMLName xml.Name `xml:"nfeProc"`
	NFe     nfeNode  `xml:"NFe"`
}

type nfeNode struct {
	XMLName xml.Name `xml:"NFe"`
	InfNFe  infNFe   `xml:"infNFe"`
}

type infNFe struct {
	Number       string    `xml:"ide>nNF"`
	Dest         dest      `xml:"dest"`
	Total        string    `xml:"total>ICMSTot>vNF"`
	Installments []dupNode `xml:"cobr>dup"`
}

type dest struct {
	CNPJ  string `xml:"CNPJ"`
	CPF   string `xml:"CPF"`
	Name  string `xml:"xNome"`
	Email string `xml:"email"`
}

type dupNode struct {
	Sequence string `xml:"nDup"`
	DueDate  string `xml:"dVenc"`
	Amount   string `xml:"vDup"`
}

var emailSeparators = regexp.MustCompile(`[;,]`)
var sequencePattern = regexp.MustCompile(`\d+`)

// ReadInvoice parses one NFe XML file into an invoice record. A note
// without a number or a payer name is unusable and returns
// utils.ErrorRecordNotFound.
func ReadInvoice(path string) (*models.InvoiceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseInvoice(data, path)
}

func parseInvoice(data []byte, sourceRef string) (*models.InvoiceRecord, error) {
	var inf infNFe

	var proc nfeProc
	if err := xml.Unmarshal(data, &proc); err == nil && proc.NFe.InfNFe.Number != "" {
		inf = proc.NFe.InfNFe
	} else {
		var bare nfeNode
		if err := xml.Unmarshal(data, &bare); err != nil {
			return nil, err
		}
		inf = bare.InfNFe
	}

	if inf.Number == "" || strings.TrimSpace(inf.Dest.Name) == "" {
		return nil, utils.ErrorRecordNotFound
	}

	rec := &models.InvoiceRecord{
		InvoiceNumber: strings.TrimSpace(inf.Number),
		PayerName:     strings.TrimSpace(inf.Dest.Name),
		SourceRef:     sourceRef,
	}

	// CNPJ takes precedence; destination is a person only when no company
	// id is present.
	if id := utils.NormalizeTaxID(inf.Dest.CNPJ); id != "" {
		rec.TaxID = id
	} else if id := utils.NormalizeTaxID(inf.Dest.CPF); id != "" {
		rec.TaxID = id
	}

	if cents, ok := utils.AmountToCents(inf.Total); ok {
		rec.TotalAmountCents = cents
	}

	for _, dup := range inf.Installments {
		cents, ok := utils.AmountToCents(dup.Amount)
		if !ok {
			continue
		}
		rec.Installments = append(rec.Installments, models.Installment{
			Sequence:    parseSequence(dup.Sequence, len(rec.Installments)+1),
			DueDate:     utils.NormalizeDueDate(dup.DueDate),
			AmountCents: cents,
		})
	}

	rec.RecipientEmails, rec.InvalidEmails = splitEmails(inf.Dest.Email)
	return rec, nil
}

// splitEmails separates the dest email field (often several addresses
// jammed into one tag) into validated recipients, capped by config.
// Everything not taken as a recipient, malformed or merely over the cap,
// is returned so the audit trail keeps it.
func splitEmails(raw string) (valid, rejected []string) {
	max := config.MaxRecipientEmails()
	for _, part := range emailSeparators.Split(raw, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if utils.IsValidEmail(part) && len(valid) < max {
			valid = append(valid, strings.ToLower(part))
			continue
		}
		rejected = append(rejected, part)
	}
	return valid, rejected
}

func parseSequence(raw string, fallback int) int {
	m := sequencePattern.FindString(raw)
	if m == "" {
		return fallback
	}
	n, err := strconv.Atoi(m)
	if err != nil || n == 0 {
		return fallback
	}
	return n
}

// IndexDirectory reads every XML under dir into invoice records. Files that
// fail to parse are logged and skipped; one bad note must not sink the
// whole index.
func IndexDirectory(dir string, logger *logrus.Logger) ([]*models.InvoiceRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var records []*models.InvoiceRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		rec, err := ReadInvoice(path)
		if err != nil {
			config.LogError(logger, "nfe", "IndexDirectory", "skipping unreadable note", entry.Name(), err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
