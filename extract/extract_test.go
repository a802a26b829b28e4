package extract

import (
	"testing"
)

const capitalSlipText = `CAPITAL RS FIDC NP MULTISSETORIAL
Vencimento 17/02/2026
Número do Documento
310926/004
(=) Valor Documento 2.221,20
Pagador
PADARIA CENTRAL LTDA, CNPJ: 12.345.678/0001-90
Instruções
Não receber após o vencimento`

const novaxSlipText = `NOVAX FUNDO DE INVEST. EM DIR. CRED.
Vencimento 05/03/2026
Numero do Documento: 310740
Valor do Documento: R$ 606,08
Pagador: TRANSPORTADORA JOAQUIM PEREIRA CNPJ/ CPF : 98.765.432/0001-10
Autenticação mecânica`

const squidSlipText = `SQUID FUNDO DE INVESTIMENTO EM DIREITOS CREDITORIOS
Vencimento
10/04/2026
Numero do Documento: 310018
Valor do Documento: 1.500,00
Pagador
ACME COMERCIO LTDA - CNPJ: 11.222.333/0001-44
Sacador`

func TestDetectFund(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"capital", capitalSlipText, "CAPITAL"},
		{"novax", novaxSlipText, "NOVAX"},
		{"squid", squidSlipText, "SQUID"},
		{"credvale", "Boleto CREDVALE FIDC cobrança", "CREDVALE"},
		{"unknown defaults", "banco qualquer sem beneficiario", "CAPITAL"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectFund(tc.text); got != tc.expected {
				t.Fatalf("DetectFund = %s, want %s", got, tc.expected)
			}
		})
	}
}

func TestInvoiceNumberFromFileName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"3-0310740.xml", "310740"},
		{"3-310740.pdf", "310740"},
		{"310018.pdf", "310018"},
		{"0310018.pdf", "310018"},
		{"/inbox/3-0310740.pdf", "310740"},
		{"boleto.pdf", ""},
	}
	for _, tc := range tests {
		if got := InvoiceNumberFromFileName(tc.input); got != tc.expected {
			t.Fatalf("InvoiceNumberFromFileName(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestInvoiceNumberFromText(t *testing.T) {
	if got := InvoiceNumberFromText(capitalSlipText); got != "310926" {
		t.Fatalf("multiline document number = %q", got)
	}
	if got := InvoiceNumberFromText(novaxSlipText); got != "310740" {
		t.Fatalf("same-line document number = %q", got)
	}
	if got := InvoiceNumberFromText("NF: 310018 em anexo"); got != "310018" {
		t.Fatalf("NF fallback = %q", got)
	}
	if got := InvoiceNumberFromText("sem numero aqui"); got != "" {
		t.Fatalf("no number must yield empty, got %q", got)
	}
}

func TestCapitalExtractor(t *testing.T) {
	ex := ForFund("CAPITAL")
	if got := ex.Payer(capitalSlipText); got != "PADARIA CENTRAL LTDA" {
		t.Fatalf("payer = %q", got)
	}
	if got := ex.DueDate(capitalSlipText); got != "2026-02-17" {
		t.Fatalf("due date = %q", got)
	}
	cents, ok := ex.Amount(capitalSlipText)
	if !ok || cents != 222120 {
		t.Fatalf("amount = (%d, %v)", cents, ok)
	}
}

func TestNovaxExtractor(t *testing.T) {
	ex := ForFund("NOVAX")
	if got := ex.Payer(novaxSlipText); got != "TRANSPORTADORA JOAQUIM PEREIRA" {
		t.Fatalf("payer = %q", got)
	}
	if got := ex.DueDate(novaxSlipText); got != "2026-03-05" {
		t.Fatalf("due date = %q", got)
	}
	cents, ok := ex.Amount(novaxSlipText)
	if !ok || cents != 60608 {
		t.Fatalf("amount = (%d, %v)", cents, ok)
	}
}

func TestSquidExtractor(t *testing.T) {
	ex := ForFund("SQUID")
	if got := ex.Payer(squidSlipText); got != "ACME COMERCIO LTDA" {
		t.Fatalf("payer = %q", got)
	}
	if got := ex.DueDate(squidSlipText); got != "2026-04-10" {
		t.Fatalf("due date = %q", got)
	}
	cents, ok := ex.Amount(squidSlipText)
	if !ok || cents != 150000 {
		t.Fatalf("amount = (%d, %v)", cents, ok)
	}
}

func TestPayerTaxID(t *testing.T) {
	if got := PayerTaxID(capitalSlipText); got != "12345678000190" {
		t.Fatalf("capital tax id = %q", got)
	}
	if got := PayerTaxID(novaxSlipText); got != "98765432000110" {
		t.Fatalf("novax tax id = %q", got)
	}
	if got := PayerTaxID("sem cnpj nenhum"); got != "" {
		t.Fatalf("missing tax id must yield empty, got %q", got)
	}
}

func TestBuildSlip(t *testing.T) {
	slip := BuildSlip("boletos/3-0310926.pdf", capitalSlipText)
	if slip.Vendor != "CAPITAL" {
		t.Fatalf("vendor = %s", slip.Vendor)
	}
	if slip.DeclaredInvoiceNumber != "310926" {
		t.Fatalf("declared number = %s", slip.DeclaredInvoiceNumber)
	}
	if slip.PayerName != "PADARIA CENTRAL LTDA" {
		t.Fatalf("payer = %s", slip.PayerName)
	}
	if slip.TaxID != "12345678000190" {
		t.Fatalf("tax id = %s", slip.TaxID)
	}
	if slip.DueDate != "2026-02-17" {
		t.Fatalf("due date = %s", slip.DueDate)
	}
	if slip.AmountCents != 222120 {
		t.Fatalf("amount = %d", slip.AmountCents)
	}

	fromName := BuildSlip("boletos/3-0310740.pdf", "texto sem campos")
	if fromName.DeclaredInvoiceNumber != "310740" {
		t.Fatalf("file-name fallback = %s", fromName.DeclaredInvoiceNumber)
	}
}
