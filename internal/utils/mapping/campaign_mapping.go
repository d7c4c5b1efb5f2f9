package mapping

import (
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/models"
)

// ToDomainCampaign converts a model Campaign to a domain Campaign
func ToDomainCampaign(m models.Campaign) domain.Campaign {
	return domain.Campaign{
		ID:                  m.CampaignID,
		RegieID:             m.RegieID,
		Label:               m.Label,
		DateStart:           m.DateStart,
		DateEnd:             m.DateEnd,
		DatePublication:     m.DatePublication,
		DatePaymentDeadline: m.DatePaymentDeadline,
		DateDue:             m.DateDue,
		DateDebit:           m.DateDebit,
		AdjustmentCampaign:  m.AdjustmentCampaign,
		PrimaryCampaignID:   m.PrimaryCampaignID,
		InjectedLines:       domain.InjectedLinesMode(m.InjectedLines),
	}
}

// ToDomainPool converts a model Pool with its campaign to a domain Pool
func ToDomainPool(m models.Pool, campaign models.Campaign) domain.Pool {
	return domain.Pool{
		ID:        m.PoolID,
		Campaign:  ToDomainCampaign(campaign),
		Status:    domain.PoolStatus(m.Status),
		Draft:     m.Draft,
		CreatedAt: m.CreatedAt,
	}
}

// ToDomainAgenda converts a model Agenda to a domain Agenda
func ToDomainAgenda(m models.Agenda) domain.Agenda {
	return domain.Agenda{
		Slug:            m.Slug,
		Label:           m.Label,
		PartialBookings: m.PartialBookings,
	}
}

// ToDomainCheckType converts a model CheckType to a domain CheckType
func ToDomainCheckType(m models.CheckType) domain.CheckType {
	return domain.CheckType{
		Slug:               m.Slug,
		Group:              m.GroupSlug,
		Label:              m.Label,
		Kind:               m.Kind,
		UnexpectedPresence: m.UnexpectedPresence,
	}
}

// ToDomainInjectedLine converts a model InjectedLine to a domain InjectedLine
func ToDomainInjectedLine(m models.InjectedLine) domain.InjectedLine {
	return domain.InjectedLine{
		ID:               m.InjectedLineID,
		RegieID:          m.RegieID,
		EventDate:        m.EventDate,
		Slug:             m.Slug,
		Label:            m.Label,
		Amount:           m.Amount,
		UserExternalID:   m.UserExternalID,
		PayerExternalID:  m.PayerExternalID,
		PayerFirstName:   m.PayerFirstName,
		PayerLastName:    m.PayerLastName,
		PayerAddress:     m.PayerAddress,
		PayerDirectDebit: m.PayerDirectDebit,
	}
}
