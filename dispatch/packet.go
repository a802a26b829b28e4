package dispatch

import (
	"bitbucket.org/jjfidc/boletos_backend/config"
	"bitbucket.org/jjfidc/boletos_backend/models"
	"bitbucket.org/jjfidc/boletos_backend/utils"
)

// Packet is one composed outbound message: recipients, rendered body and
// the full attachment list (the group's slips plus its confirmed
// supporting documents).
type Packet struct {
	To          []string
	CC          []string
	Subject     string
	HTMLBody    string
	Attachments []string
	Group       *models.DocumentGroup
}

// BuildPacket composes the packet for a group that passed the attachment
// gate. Blocked or empty groups return ErrorAttachmentMissing /
// ErrorIncompleteRecipient instead of a half-built packet.
func BuildPacket(group *models.DocumentGroup) (*Packet, error) {
	if group.Blocked() {
		return nil, utils.ErrorAttachmentMissing
	}
	to := group.RecipientList()
	if len(to) == 0 {
		return nil, utils.ErrorIncompleteRecipient
	}

	fund := config.FundProfileFor(group.DominantFund())
	body, err := RenderBody(group, fund)
	if err != nil {
		return nil, err
	}

	p := &Packet{
		To:       to,
		CC:       fund.CCEmails,
		Subject:  Subject(group),
		HTMLBody: body,
		Group:    group,
	}
	for _, pair := range group.Pairs {
		p.Attachments = append(p.Attachments, pair.Slip.FileRef)
	}
	if group.Resolution != nil {
		for _, doc := range group.Resolution.Confirmed {
			p.Attachments = append(p.Attachments, doc.FileRef)
		}
	}
	return p, nil
}
