package dispatch

import (
	"fmt"
	"html/template"
	"strings"

	"bitbucket.org/jjfidc/boletos_backend/config"
	"bitbucket.org/jjfidc/boletos_backend/models"
	"bitbucket.org/jjfidc/boletos_backend/utils"
)

var bodyTemplate = template.Must(template.New("packet").Parse(`<html>
<body style="font-family:Calibri,Arial,sans-serif; font-size:13.5px;">
<p>Boa tarde,</p>
<p>Prezado cliente,<br><b>{{.Payer}}</b>,</p>
<p>Enviamos anexo o(s) seu(s) boleto(s) emitido(s) conforme a(as) nota(as): {{.Invoices}}</p>
{{range .Lines}}<p>Valor: R$ {{.Amount}}, Vencimento: {{.DueDate}}</p>
{{end}}<p>O(s) boleto(s) est&aacute;(&atilde;o) com benefici&aacute;rio nominal a <b>{{.FundName}}</b>, CNPJ: <b>{{.FundTaxID}}</b>.</p>
<p>Vide boleto(s) e nota(s) em anexo.<br>Favor confirmar recebimento.</p>
<p>Em caso de d&uacute;vidas, nossa equipe permanece &agrave; disposi&ccedil;&atilde;o para esclarecimentos.</p>
<p>Atenciosamente,<br><b>Equipe de Cobran&ccedil;a</b></p>
</body>
</html>
`))

type bodyLine struct {
	Amount  string
	DueDate string
}

type bodyData struct {
	Payer     string
	Invoices  string
	Lines     []bodyLine
	FundName  string
	FundTaxID string
}

// RenderBody produces the HTML body for one group's packet.
func RenderBody(group *models.DocumentGroup, fund config.FundProfile) (string, error) {
	invoices := strings.Join(group.RequiredDocs(), ", ")
	if invoices == "" {
		invoices = "anexas"
	}

	data := bodyData{
		Payer:     group.PayerDisplay,
		Invoices:  invoices,
		FundName:  fund.FullName,
		FundTaxID: fund.TaxID,
	}
	for _, pair := range group.Pairs {
		data.Lines = append(data.Lines, bodyLine{
			Amount:  utils.CentsToBRL(pair.Slip.AmountCents),
			DueDate: displayDueDate(pair.Slip.DueDate),
		})
	}

	var sb strings.Builder
	if err := bodyTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Subject lists the invoice numbers the packet covers.
func Subject(group *models.DocumentGroup) string {
	return fmt.Sprintf("Boleto e Nota Fiscal (%s)", strings.Join(group.RequiredDocs(), ", "))
}

// displayDueDate converts ISO back to the DD/MM/YYYY the recipient expects.
func displayDueDate(iso string) string {
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return iso
	}
	return fmt.Sprintf("%s/%s/%s", parts[2], parts[1], parts[0])
}
