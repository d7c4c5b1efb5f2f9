package mapping

import (
	"encoding/json"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/models"
)

// ToDomainInvoicingElementLine converts a model InvoicingElementLine to a
// domain InvoicingElementLine
func ToDomainInvoicingElementLine(m models.InvoicingElementLine) (domain.InvoicingElementLine, error) {
	line := domain.InvoicingElementLine{
		Kind:             domain.InvoicingElementKind(m.Kind),
		EventSlug:        m.EventSlug,
		UnitAmount:       m.UnitAmount,
		TotalAmount:      m.TotalAmount,
		PayerExternalID:  m.PayerExternalID,
		ElementNumber:    m.ElementNumber,
		ElementCreatedAt: m.ElementCreatedAt,
	}
	if len(m.Dates) > 0 {
		if err := json.Unmarshal(m.Dates, &line.Dates); err != nil {
			return domain.InvoicingElementLine{}, err
		}
	}
	if len(m.AdjustmentRefs) > 0 {
		if err := json.Unmarshal(m.AdjustmentRefs, &line.AdjustmentRefs); err != nil {
			return domain.InvoicingElementLine{}, err
		}
	}
	return line, nil
}
