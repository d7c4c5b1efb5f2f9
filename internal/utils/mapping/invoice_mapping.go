package mapping

import (
	"encoding/json"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/models"
)

// ToModelDraftInvoice converts a domain DraftInvoice to a model DraftInvoice
func ToModelDraftInvoice(d domain.DraftInvoice) models.DraftInvoice {
	return models.DraftInvoice{
		InvoiceID:           d.ID,
		Label:               d.Label,
		DatePublication:     d.DatePublication,
		DatePaymentDeadline: d.DatePaymentDeadline,
		DateDue:             d.DateDue,
		DateDebit:           d.DateDebit,
		RegieID:             d.RegieID,
		PayerExternalID:     d.PayerExternalID,
		PayerFirstName:      d.Payer.FirstName,
		PayerLastName:       d.Payer.LastName,
		PayerAddress:        d.Payer.Address,
		PayerEmail:          d.Payer.Email,
		PayerPhone:          d.Payer.Phone,
		PayerDirectDebit:    d.Payer.DirectDebit,
		PoolID:              d.PoolID,
		Origin:              d.Origin,
	}
}

// ToModelDraftInvoiceLine converts a domain DraftInvoiceLine to a model DraftInvoiceLine
func ToModelDraftInvoiceLine(d domain.DraftInvoiceLine) (models.DraftInvoiceLine, error) {
	details, err := json.Marshal(d.Details)
	if err != nil {
		return models.DraftInvoiceLine{}, err
	}
	return models.DraftInvoiceLine{
		InvoiceLineID:  d.ID,
		InvoiceID:      d.InvoiceID,
		EventDate:      d.EventDate,
		Label:          d.Label,
		Quantity:       d.Quantity,
		UnitAmount:     d.UnitAmount,
		Details:        details,
		EventSlug:      d.EventSlug,
		EventLabel:     d.EventLabel,
		AgendaSlug:     d.AgendaSlug,
		ActivityLabel:  d.ActivityLabel,
		Description:    d.Description,
		AccountingCode: d.AccountingCode,
		UserExternalID: d.UserExternalID,
		UserFirstName:  d.UserFirstName,
		UserLastName:   d.UserLastName,
		PoolID:         d.PoolID,
	}, nil
}
