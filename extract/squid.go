package extract

import "regexp"

var squidPayerPattern = regexp.MustCompile(`(?im)Pagador\s*\n\s*([A-ZÀ-Ú][A-ZÀ-Ú\s.\-&]+?)\s*-\s*(?:CNPJ|CPF)`)

// squidExtractor handles the SQUID layout: "Pagador" alone on its line,
// name on the next, terminated by "- CNPJ:".
type squidExtractor struct{}

func (squidExtractor) Fund() string { return "SQUID" }

func (squidExtractor) Payer(text string) string {
	if name := payerFromNextLine(text); name != "" {
		return name
	}
	if m := squidPayerPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func (squidExtractor) DueDate(text string) string {
	return dueDateNear(text)
}

func (squidExtractor) Amount(text string) (int64, bool) {
	return robustAmount(text)
}
