package mapping

import (
	"encoding/json"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/models"
)

// ToModelDraftJournalLine converts a domain JournalLine to a model DraftJournalLine
func ToModelDraftJournalLine(d domain.JournalLine) (models.DraftJournalLine, error) {
	event, err := json.Marshal(d.Event)
	if err != nil {
		return models.DraftJournalLine{}, err
	}
	booking, err := json.Marshal(d.Booking)
	if err != nil {
		return models.DraftJournalLine{}, err
	}
	pricingData, err := json.Marshal(d.PricingData)
	if err != nil {
		return models.DraftJournalLine{}, err
	}
	return models.DraftJournalLine{
		LineID:             d.ID,
		Seq:                d.Seq,
		EventDate:          d.EventDate,
		Slug:               d.Slug,
		Label:              d.Label,
		Description:        d.Description,
		Quantity:           d.Quantity,
		QuantityType:       d.QuantityType,
		Amount:             d.Amount,
		UserExternalID:     d.UserExternalID,
		UserFirstName:      d.UserFirstName,
		UserLastName:       d.UserLastName,
		PayerExternalID:    d.PayerExternalID,
		PayerFirstName:     d.Payer.FirstName,
		PayerLastName:      d.Payer.LastName,
		PayerAddress:       d.Payer.Address,
		PayerEmail:         d.Payer.Email,
		PayerPhone:         d.Payer.Phone,
		PayerDirectDebit:   d.Payer.DirectDebit,
		Event:              event,
		Booking:            booking,
		PricingData:        pricingData,
		Status:             string(d.Status),
		ErrorStatus:        d.ErrorStatus,
		PoolID:             d.PoolID,
		FromInjectedLineID: d.FromInjectedLineID,
	}, nil
}

// ToDomainDraftJournalLine converts a model DraftJournalLine to a domain JournalLine
func ToDomainDraftJournalLine(m models.DraftJournalLine) (domain.JournalLine, error) {
	line := domain.JournalLine{
		ID:              m.LineID,
		Seq:             m.Seq,
		EventDate:       m.EventDate,
		Slug:            m.Slug,
		Label:           m.Label,
		Description:     m.Description,
		Quantity:        m.Quantity,
		QuantityType:    m.QuantityType,
		Amount:          m.Amount,
		UserExternalID:  m.UserExternalID,
		UserFirstName:   m.UserFirstName,
		UserLastName:    m.UserLastName,
		PayerExternalID: m.PayerExternalID,
		Payer: domain.PayerData{
			FirstName:   m.PayerFirstName,
			LastName:    m.PayerLastName,
			Address:     m.PayerAddress,
			Email:       m.PayerEmail,
			Phone:       m.PayerPhone,
			DirectDebit: m.PayerDirectDebit,
		},
		Status:             domain.LineStatus(m.Status),
		ErrorStatus:        m.ErrorStatus,
		PoolID:             m.PoolID,
		FromInjectedLineID: m.FromInjectedLineID,
	}
	if len(m.Event) > 0 {
		if err := json.Unmarshal(m.Event, &line.Event); err != nil {
			return domain.JournalLine{}, err
		}
	}
	if len(m.Booking) > 0 {
		if err := json.Unmarshal(m.Booking, &line.Booking); err != nil {
			return domain.JournalLine{}, err
		}
	}
	if len(m.PricingData) > 0 {
		if err := json.Unmarshal(m.PricingData, &line.PricingData); err != nil {
			return domain.JournalLine{}, err
		}
	}
	return line, nil
}
