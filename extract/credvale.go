package extract

// credvaleExtractor handles the CREDVALE layout. Same label-on-own-line
// structure as SQUID, but the payer line ends in "- EPP - <cnpj>" without
// the CNPJ label.
type credvaleExtractor struct{}

func (credvaleExtractor) Fund() string { return "CREDVALE" }

func (credvaleExtractor) Payer(text string) string {
	if name := payerFromNextLine(text); name != "" {
		return name
	}
	if m := squidPayerPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func (credvaleExtractor) DueDate(text string) string {
	return dueDateNear(text)
}

func (credvaleExtractor) Amount(text string) (int64, bool) {
	return robustAmount(text)
}
