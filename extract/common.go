package extract

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"bitbucket.org/jjfidc/boletos_backend/config"
	"bitbucket.org/jjfidc/boletos_backend/utils"
)

// Extractor pulls the reconciliation fields out of one slip's text. Each
// beneficiary fund lays its slips out differently, so extraction is
// per-fund with shared fallbacks.
type Extractor interface {
	Fund() string
	Payer(text string) string
	DueDate(text string) string
	Amount(text string) (int64, bool)
}

// ForFund returns the extractor for a fund name, defaulting to the CAPITAL
// layout for unknown funds.
func ForFund(fund string) Extractor {
	switch strings.ToUpper(strings.TrimSpace(fund)) {
	case "NOVAX":
		return novaxExtractor{}
	case "CREDVALE":
		return credvaleExtractor{}
	case "SQUID":
		return squidExtractor{}
	default:
		return capitalExtractor{}
	}
}

// DetectFund scans the slip text for each fund's keywords. Longer keywords
// are checked first so "CAPITAL RS FIDC" wins over a bare "CAPITAL RS".
func DetectFund(text string) string {
	u := strings.ToUpper(text)

	type kw struct {
		fund    string
		keyword string
	}
	var keywords []kw
	for name, profile := range config.FundProfiles() {
		for _, k := range profile.Keywords {
			keywords = append(keywords, kw{fund: name, keyword: strings.ToUpper(k)})
		}
	}
	sort.Slice(keywords, func(i, j int) bool {
		if len(keywords[i].keyword) != len(keywords[j].keyword) {
			return len(keywords[i].keyword) > len(keywords[j].keyword)
		}
		return keywords[i].keyword < keywords[j].keyword
	})

	for _, k := range keywords {
		if strings.Contains(u, k.keyword) {
			return k.fund
		}
	}
	return config.DefaultFund()
}

var (
	fileNumberDashPattern  = regexp.MustCompile(`\d+-0?(\d{6})`)
	fileNumberPlainPattern = regexp.MustCompile(`^0?(\d{6})`)

	docNumberNextLinePattern = regexp.MustCompile(`(?is)N[uú]mero\s+do\s+Documento.*?\n\s*(\d{6}[/\d]*)`)
	docNumberSameLinePattern = regexp.MustCompile(`(?i)N[uú]mero\s+(?:do\s+)?Documento[:\s]*(\d+)`)
	docNumberSymbolPattern   = regexp.MustCompile(`(?i)n[ºo°]?\.?\s+do\s+documento[:\s]*(\d{6})`)

	fallbackNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Nosso\s+N[uú]mero[:\s]*(?:\d+-)?(\d{6,})`),
		regexp.MustCompile(`(?i)Seu\s+N[uú]mero[:\s]*(\d{6,})`),
		regexp.MustCompile(`(?i)N[ºo°]\.?\s*Doc(?:umento)?[:\s]*(\d{6,})`),
		regexp.MustCompile(`(?i)Nota\s+Fiscal[:\s]*(\d{6,})`),
		regexp.MustCompile(`(?i)NF[:\s]*(\d{6,})`),
	}

	brlValuePattern    = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})*,\d{2}$`)
	valueDocPatterns   = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\(=\)\s*Valor\s+(?:do\s+)?Documento\s*[:\s]*(?:R\$\s*)?([\d\.,]+)`),
		regexp.MustCompile(`(?i)Valor\s+(?:do\s+)?Documento\s*[:\s]*(?:R\$\s*)?([\d\.,]+)`),
	}
	docLineValuePattern = regexp.MustCompile(`\d{6}[/\d]*\s+\d{2}/\d{2}/\d{4}\s+([\d\.,]+)`)
	dueLineValuePattern = regexp.MustCompile(`\d{2}/\d{2}/\d{4}\s+([\d\.,]+)`)
	currencyPattern     = regexp.MustCompile(`R\$\s*([\d\.,]+)`)

	dueDatePattern = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})`)

	payerCNPJPattern = regexp.MustCompile(`(\d{2}[\.\s]?\d{3}[\.\s]?\d{3}[/\s]?\d{4}[-\s]?\d{2})`)
	payerCPFPattern  = regexp.MustCompile(`(\d{3}\.\d{3}\.\d{3}-\d{2})`)

	payerSectionPattern = regexp.MustCompile(`(?is)Pagador[:\s]+(.*?)(?:Instru[cç][oõ]es|Autentica[cç][aã]o|Demonstrativo|Sacador|C[oó]digo de Baixa|Benefici[aá]rio Final|$)`)

	payerCutPattern   = regexp.MustCompile(`(?i),|CNPJ|CPF|Beneficiario`)
	payerTrailPattern = regexp.MustCompile(`\s*-\s*\d{2,3}[\.\s]*\d{3}[\.\s]*\d{3}[/-]?\d{0,4}-?\d{0,2}.*$`)
)

// InvoiceNumberFromFileName reads the 6-digit invoice number off the file
// name ("3-0310740.pdf", "310740.xml"). Empty when the name carries none.
func InvoiceNumberFromFileName(fileRef string) string {
	name := filepath.Base(fileRef)
	if m := fileNumberDashPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	if m := fileNumberPlainPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return ""
}

// InvoiceNumberFromText reads the invoice number from the slip body. The
// document-number field is the authoritative source; weaker labels are
// fallbacks. Always returns 6 digits or "".
func InvoiceNumberFromText(text string) string {
	if m := docNumberNextLinePattern.FindStringSubmatch(text); m != nil {
		if n := firstSixDigits(m[1]); n != "" {
			return n
		}
	}
	if m := docNumberSameLinePattern.FindStringSubmatch(text); m != nil {
		if n := firstSixDigits(m[1]); n != "" {
			return n
		}
	}
	if m := docNumberSymbolPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	for _, p := range fallbackNumberPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if n := firstSixDigits(m[1]); n != "" {
				return n
			}
		}
	}
	return ""
}

func firstSixDigits(raw string) string {
	raw = strings.SplitN(raw, "/", 2)[0]
	if len(raw) < 6 {
		return ""
	}
	return raw[:6]
}

// PayerTaxID pulls the payer's CNPJ/CPF out of the slip. It prefers the
// payer section in the second half of the text, where the bank compensation
// sheet lives, then widens the search.
func PayerTaxID(text string) string {
	halves := []string{text[len(text)/2:], text}
	for _, scope := range halves {
		section := scope
		if m := payerSectionPattern.FindStringSubmatch(scope); m != nil {
			section = m[1]
		}
		if m := payerCNPJPattern.FindStringSubmatch(section); m != nil {
			if id := utils.NormalizeTaxID(m[1]); len(id) == 14 {
				return id
			}
		}
		if m := payerCPFPattern.FindStringSubmatch(section); m != nil {
			if id := utils.NormalizeTaxID(m[1]); len(id) == 11 {
				return id
			}
		}
	}
	return ""
}

// robustAmount tries the slip's value fields in order of reliability: the
// document-value field, the document line, any date-value line, then any
// currency-prefixed figure.
func robustAmount(text string) (int64, bool) {
	for _, p := range valueDocPatterns {
		if m := p.FindStringSubmatch(text); m != nil && brlValuePattern.MatchString(m[1]) {
			return utils.AmountToCents(m[1])
		}
	}
	if m := docLineValuePattern.FindStringSubmatch(text); m != nil && brlValuePattern.MatchString(m[1]) {
		return utils.AmountToCents(m[1])
	}
	if m := dueLineValuePattern.FindStringSubmatch(text); m != nil && brlValuePattern.MatchString(m[1]) {
		return utils.AmountToCents(m[1])
	}
	if m := currencyPattern.FindStringSubmatch(text); m != nil && brlValuePattern.MatchString(m[1]) {
		return utils.AmountToCents(m[1])
	}
	return 0, false
}

// dueDateNear finds the first DD/MM/YYYY on the "Vencimento" line or the
// line right after it, normalized to ISO.
func dueDateNear(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.Contains(strings.ToUpper(line), "VENCIMENTO") {
			continue
		}
		if m := dueDatePattern.FindStringSubmatch(line); m != nil {
			return utils.NormalizeDueDate(m[1])
		}
		if i+1 < len(lines) {
			if m := dueDatePattern.FindStringSubmatch(lines[i+1]); m != nil {
				return utils.NormalizeDueDate(m[1])
			}
		}
	}
	return ""
}

// cutAfterTaxID trims the payer line down to the bare name, dropping the
// CNPJ/CPF and everything after it.
func cutAfterTaxID(name string) string {
	if loc := payerCutPattern.FindStringIndex(name); loc != nil {
		name = name[:loc[0]]
	}
	name = payerTrailPattern.ReplaceAllString(name, "")
	return strings.Trim(name, " -")
}

// payerFromNextLine handles the layouts where "Pagador" sits alone on its
// own line and the name follows on the next.
func payerFromNextLine(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "Pagador" || i+1 >= len(lines) {
			continue
		}
		next := strings.TrimSpace(lines[i+1])
		// A barcode line right under the label means this was the wrong
		// "Pagador" occurrence.
		if barcodePattern.MatchString(next) {
			continue
		}
		if name := cutAfterTaxID(next); name != "" {
			return name
		}
	}
	return ""
}

var barcodePattern = regexp.MustCompile(`^\d{5}\.\d{5}\s+\d{5}`)
