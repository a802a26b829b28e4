package config

import "strings"

// FundProfile describes one FIDC (credit-rights investment fund) that can
// appear as the beneficiary of a slip. The keywords drive beneficiary
// detection over the slip text; CC emails ride along on dispatch.
type FundProfile struct {
	Name     string
	FullName string
	TaxID    string
	CCEmails []string
	Keywords []string
}

var fundProfiles = map[string]FundProfile{
	"CAPITAL": {
		Name:     "CAPITAL",
		FullName: "CAPITAL RS FIDC NP MULTISSETORIAL",
		TaxID:    "12.910.463/0001-70",
		CCEmails: []string{"adm@jotajota.net.br"},
		Keywords: []string{"CAPITAL RS", "CAPITAL RS FIDC"},
	},
	"NOVAX": {
		Name:     "NOVAX",
		FullName: "Novax Fundo de Invest. Em Dir. Cred.",
		TaxID:    "28.879.551/0001-96",
		CCEmails: []string{"adm@jotajota.net.br", "controladoria@novaxfidc.com.br"},
		Keywords: []string{"NOVAX", "NOVAX FIDC", "NOVAX FUNDO"},
	},
	"CREDVALE": {
		Name:     "CREDVALE",
		FullName: "CREDVALE FUNDO DE INVESTIMENTO EM DIREITOS CREDITORIOS MULTISSETORIAL",
		TaxID:    "28.194.817/0001-67",
		CCEmails: []string{"adm@jotajota.net.br", "nichole@credvalefidc.com.br"},
		Keywords: []string{"CREDVALE", "CREDVALE FUNDO", "CREDVALE FIDC"},
	},
	"SQUID": {
		Name:     "SQUID",
		FullName: "SQUID FUNDO DE INVESTIMENTO EM DIREITOS CREDITORIOS",
		TaxID:    "28.849.641/0001-34",
		CCEmails: []string{"adm@jotajota.net.br"},
		Keywords: []string{"SQUID", "SQUID FIDC", "SQUID FUNDO"},
	},
}

func FundProfiles() map[string]FundProfile {
	return fundProfiles
}

// DefaultFund is used when beneficiary detection finds no keyword.
func DefaultFund() string {
	name := strings.ToUpper(envString("DEFAULT_FUND", "CAPITAL"))
	if _, ok := fundProfiles[name]; !ok {
		return "CAPITAL"
	}
	return name
}

// FundProfileFor returns the profile for name, falling back to the default
// fund for unknown names.
func FundProfileFor(name string) FundProfile {
	if p, ok := fundProfiles[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return p
	}
	return fundProfiles[DefaultFund()]
}
