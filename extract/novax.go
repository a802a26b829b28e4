package extract

import (
	"regexp"
	"strings"

	"bitbucket.org/jjfidc/boletos_backend/utils"
)

var (
	novaxPayerPattern = regexp.MustCompile(`(?i)Pagador:\s*([A-Z0-9][A-Z0-9\s.\-&]+?)(?:\s+CNPJ[/\s]|\s+CPF)`)
	novaxDuePattern   = regexp.MustCompile(`(?i)Vencimento\s+(\d{2}/\d{2}/\d{4})`)
	compactWhitespace = regexp.MustCompile(`\s+`)
)

// novaxExtractor handles the NOVAX layout, where the header fields sit on
// one line ("Pagador: NOME CNPJ/ CPF : ..."). Matching runs over
// whitespace-compacted text because the PDF breaks lines mid-field.
type novaxExtractor struct{}

func (novaxExtractor) Fund() string { return "NOVAX" }

func (novaxExtractor) Payer(text string) string {
	compact := compactWhitespace.ReplaceAllString(text, " ")
	if m := novaxPayerPattern.FindStringSubmatch(compact); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func (novaxExtractor) DueDate(text string) string {
	compact := compactWhitespace.ReplaceAllString(text, " ")
	if m := novaxDuePattern.FindStringSubmatch(compact); m != nil {
		return utils.NormalizeDueDate(m[1])
	}
	return ""
}

func (novaxExtractor) Amount(text string) (int64, bool) {
	return robustAmount(text)
}
