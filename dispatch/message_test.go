package dispatch

import (
	"strings"
	"testing"

	"bitbucket.org/jjfidc/boletos_backend/config"
	"bitbucket.org/jjfidc/boletos_backend/models"
)

func packetGroup() *models.DocumentGroup {
	key := models.GroupKey{Recipients: "financeiro@acme.com.br; fiscal@acme.com.br", Payer: "ACME COMERCIO LTDA"}
	group := models.NewDocumentGroup(key, "ACME COMERCIO LTDA")
	group.Add(models.ApprovedPair{
		Slip: &models.SlipRecord{
			FileRef:     "boleto_310926.pdf",
			TaxID:       "11222333000144",
			AmountCents: 111060,
			DueDate:     "2026-01-17",
			Vendor:      "NOVAX",
		},
		Invoice: &models.InvoiceRecord{InvoiceNumber: "310926"},
	})
	group.Resolution = &models.AttachmentResolution{
		Confirmed: []models.SupportingDoc{{FileRef: "nota_310926.xml", Digits: "310926"}},
	}
	return group
}

func TestRenderBody(t *testing.T) {
	group := packetGroup()
	fund := config.FundProfileFor("NOVAX")

	body, err := RenderBody(group, fund)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"ACME COMERCIO LTDA",
		"310926",
		"Valor: R$ 1.110,60",
		"Vencimento: 17/01/2026",
		fund.FullName,
		fund.TaxID,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestSubjectListsInvoices(t *testing.T) {
	group := packetGroup()
	if got := Subject(group); got != "Boleto e Nota Fiscal (310926)" {
		t.Fatalf("subject = %q", got)
	}
}

func TestBuildPacket(t *testing.T) {
	group := packetGroup()

	p, err := BuildPacket(group)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(p.To) != 2 || p.To[0] != "financeiro@acme.com.br" {
		t.Fatalf("to = %v", p.To)
	}
	wantCC := config.FundProfileFor("NOVAX").CCEmails
	if len(p.CC) != len(wantCC) {
		t.Fatalf("cc = %v, want %v", p.CC, wantCC)
	}
	// Slip first, supporting note after.
	if len(p.Attachments) != 2 || p.Attachments[0] != "boleto_310926.pdf" || p.Attachments[1] != "nota_310926.xml" {
		t.Fatalf("attachments = %v", p.Attachments)
	}
}

func TestBuildPacketRefusesBlockedGroup(t *testing.T) {
	group := packetGroup()
	group.Resolution.Blocked = true

	if _, err := BuildPacket(group); err == nil {
		t.Fatalf("blocked group must not produce a packet")
	}
}

func TestBuildPacketRefusesEmptyRecipients(t *testing.T) {
	group := packetGroup()
	group.Key.Recipients = ""

	if _, err := BuildPacket(group); err == nil {
		t.Fatalf("group without recipients must not produce a packet")
	}
}
