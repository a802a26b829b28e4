package extract

import (
	"strings"
)

// capitalExtractor handles the CAPITAL RS layout: the payer name sits on
// the line after the "Pagador" label. Also the fallback layout for
// undetected funds.
type capitalExtractor struct{}

func (capitalExtractor) Fund() string { return "CAPITAL" }

func (capitalExtractor) Payer(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.Contains(line, "Pagador") && i+1 < len(lines) {
			if name := cutAfterTaxID(strings.TrimSpace(lines[i+1])); name != "" {
				return name
			}
		}
	}
	return ""
}

func (capitalExtractor) DueDate(text string) string {
	return dueDateNear(text)
}

func (capitalExtractor) Amount(text string) (int64, bool) {
	return robustAmount(text)
}
