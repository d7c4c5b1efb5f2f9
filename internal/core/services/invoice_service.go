package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
	portssvc "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/services"
)

const (
	descBookedHours = "@booked-hours@"

	labelBookingRegularization      = "Booking (regularization)"
	labelCancellationRegularization = "Cancellation (regularization)"
)

// invoiceGeneratorSvc aggregates a pool's draft journal lines into per-payer
// draft invoices. Lines of recurring events sharing the same grouping key
// collapse into one invoice line; one-off events get a line each.
type invoiceGeneratorSvc struct {
	repos  portsrepo.RepositoryProvider
	logger *slog.Logger
}

// NewInvoiceGeneratorService creates the invoice generator.
func NewInvoiceGeneratorService(repos portsrepo.RepositoryProvider, logger *slog.Logger) portssvc.InvoiceGeneratorSvcFacade {
	return &invoiceGeneratorSvc{repos: repos, logger: logger}
}

var _ portssvc.InvoiceGeneratorSvcFacade = (*invoiceGeneratorSvc)(nil)

// groupKey identifies journal lines that collapse into one invoice line.
type groupKey struct {
	UserExternalID   string
	Agenda           string
	PrimaryEvent     string
	Status           string
	CheckType        string
	CheckTypeGroup   string
	AdjustmentReason string
	Amount           string
	QuantityType     string
	AccountingCode   string
}

func (k groupKey) opposite() groupKey {
	other := k
	if k.AdjustmentReason == domain.ReasonMissingBooking {
		other.AdjustmentReason = domain.ReasonMissingCancellation
	} else {
		other.AdjustmentReason = domain.ReasonMissingBooking
	}
	return other
}

func groupKeyFor(line domain.JournalLine) groupKey {
	key := groupKey{
		UserExternalID: line.UserExternalID,
		Agenda:         line.Event.Agenda,
		PrimaryEvent:   line.Event.PrimaryEvent,
		Amount:         line.Amount.String(),
		QuantityType:   line.QuantityType,
	}
	if line.PricingData.Computed != nil {
		details := line.PricingData.Computed.BookingDetails
		key.Status = details.Status
		key.CheckType = details.CheckType
		key.CheckTypeGroup = details.CheckTypeGroup
		key.AccountingCode = line.PricingData.Computed.AccountingCode
	}
	if line.PricingData.Adjustment != nil {
		key.AdjustmentReason = line.PricingData.Adjustment.Reason
	}
	return key
}

// payerBucket keeps the lines of one payer in arrival order.
type payerBucket struct {
	payerExternalID string
	payer           domain.PayerData
	lines           []domain.JournalLine
}

// GenerateInvoicesFromLines builds one draft invoice per payer from the
// pool's successful draft journal lines, optionally restricted to the given
// payers. Generation stops without invoices if the pool leaves the running
// state.
func (s *invoiceGeneratorSvc) GenerateInvoicesFromLines(ctx context.Context, pool domain.Pool, payerExternalIDs []string) ([]domain.DraftInvoice, error) {
	allLines, err := s.repos.DraftJournalLineRepo.ListDraftLinesByPool(ctx, pool.ID, payerExternalIDs)
	if err != nil {
		return nil, fmt.Errorf("listing draft lines of pool %s: %w", pool.ID, err)
	}

	var buckets []*payerBucket
	byPayer := make(map[string]*payerBucket)
	for _, line := range allLines {
		if line.Status != domain.LineStatusSuccess {
			continue
		}
		bucket, ok := byPayer[line.PayerExternalID]
		if !ok {
			bucket = &payerBucket{payerExternalID: line.PayerExternalID, payer: line.Payer}
			byPayer[line.PayerExternalID] = bucket
			buckets = append(buckets, bucket)
		}
		bucket.lines = append(bucket.lines, line)
	}

	agendas, err := s.repos.CampaignRepo.FindAgendas(ctx)
	if err != nil {
		return nil, err
	}
	agendasBySlug := make(map[string]domain.Agenda, len(agendas))
	for _, agenda := range agendas {
		agendasBySlug[agenda.Slug] = agenda
	}
	checkTypes, err := s.repos.CampaignRepo.FindCheckTypes(ctx)
	if err != nil {
		return nil, err
	}

	var invoices []domain.DraftInvoice
	for _, bucket := range buckets {
		running, err := s.repos.CampaignRepo.IsPoolRunning(ctx, pool.ID)
		if err != nil {
			return nil, err
		}
		if !running {
			s.logger.Info("pool left running state, stopping invoice generation", slog.String("pool", pool.ID))
			return nil, nil
		}
		invoiceLines := s.buildInvoiceLines(pool, bucket.lines, agendasBySlug, checkTypes)
		if len(invoiceLines) == 0 {
			continue
		}

		invoice := domain.DraftInvoice{
			ID: uuid.NewString(),
			Label: fmt.Sprintf("Invoice from %s to %s",
				pool.Campaign.DateStart.Format("02/01/2006"),
				pool.Campaign.DateEnd.AddDate(0, 0, -1).Format("02/01/2006")),
			DatePublication:     pool.Campaign.DatePublication,
			DatePaymentDeadline: pool.Campaign.DatePaymentDeadline,
			DateDue:             pool.Campaign.DateDue,
			RegieID:             pool.Campaign.RegieID,
			PayerExternalID:     bucket.payerExternalID,
			Payer:               bucket.payer,
			PoolID:              pool.ID,
			Origin:              "campaign",
			Lines:               invoiceLines,
		}
		if bucket.payer.DirectDebit {
			debit := pool.Campaign.DateDebit
			invoice.DateDebit = &debit
		}
		if err := s.repos.DraftInvoiceRepo.SaveDraftInvoice(ctx, &invoice); err != nil {
			return nil, fmt.Errorf("saving draft invoice for payer %s: %w", bucket.payerExternalID, err)
		}
		invoices = append(invoices, invoice)
	}
	return invoices, nil
}

// lineIgnored filters out lines carrying no billable amount by construction:
// not-booked and cancelled decisions, and prepaid plain presences of
// adjustment campaigns.
func lineIgnored(pool domain.Pool, line domain.JournalLine) bool {
	details := line.PricingData.BookingDetails()
	if details.Status == domain.BookingStatusNotBooked || details.Status == domain.BookingStatusCancelled {
		return true
	}
	if pool.Campaign.AdjustmentCampaign && details.Status == domain.BookingStatusPresence && details.CheckType == "" {
		return true
	}
	return false
}

func (s *invoiceGeneratorSvc) buildInvoiceLines(pool domain.Pool, lines []domain.JournalLine, agendasBySlug map[string]domain.Agenda, checkTypes domain.CheckTypeIndex) []domain.DraftInvoiceLine {
	grouped := make(map[groupKey][]domain.JournalLine)
	var order []groupKey
	var otherLines []domain.JournalLine
	for _, line := range lines {
		if lineIgnored(pool, line) {
			continue
		}
		if line.Event.PrimaryEvent == "" {
			// not a recurring event
			otherLines = append(otherLines, line)
			continue
		}
		key := groupKeyFor(line)
		if key.AdjustmentReason == domain.ReasonMissingBooking || key.AdjustmentReason == domain.ReasonMissingCancellation {
			// a missing-booking and a missing-cancellation for the same
			// occurrence cancel out and are both dropped
			if removeOppositeLine(grouped, key.opposite(), line.EventDate) {
				continue
			}
		}
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], line)
	}

	var invoiceLines []domain.DraftInvoiceLine
	for _, key := range order {
		journalLines := grouped[key]
		if len(journalLines) == 0 {
			continue
		}
		sort.SliceStable(journalLines, func(i, j int) bool {
			return journalLines[i].Seq < journalLines[j].Seq
		})
		first := journalLines[0]

		quantity := decimal.Zero
		dates := make([]string, 0, len(journalLines))
		lineIDs := make([]string, 0, len(journalLines))
		for _, li := range journalLines {
			quantity = quantity.Add(li.Quantity)
			dates = append(dates, li.EventDate.Format(isoDate))
			lineIDs = append(lineIDs, li.ID)
		}
		sort.Strings(dates)
		if key.QuantityType == domain.QuantityMinutes {
			quantity = quantity.Div(decimal.NewFromInt(60))
		}

		description := ""
		adjustmentReason := ""
		if first.Description != "" {
			description = first.Description
			if description == descBookedHours {
				description = fmt.Sprintf("%s booked hours for the period", formatQuantity(quantity))
			}
		} else if len(dates) > 0 {
			switch key.AdjustmentReason {
			case domain.ReasonMissingBooking:
				adjustmentReason = labelBookingRegularization
			case domain.ReasonMissingCancellation:
				adjustmentReason = labelCancellationRegularization
			}
			description = formatDayMonthList(dates)
		}

		checkTypeLabel := adjustmentReason
		if checkTypeLabel == "" {
			checkTypeLabel = key.CheckType
			if ct, ok := checkTypes.Find(domain.BookingDetails{
				Status:         key.Status,
				CheckType:      key.CheckType,
				CheckTypeGroup: key.CheckTypeGroup,
			}); ok {
				checkTypeLabel = ct.Label
			}
		}

		agenda, hasAgenda := agendasBySlug[key.Agenda]
		eventLabel := first.Event.Label
		if eventLabel == "" {
			eventLabel = first.Label
		}
		invoiceLines = append(invoiceLines, domain.DraftInvoiceLine{
			ID:         uuid.NewString(),
			EventDate:  pool.Campaign.DateStart,
			Label:      first.Label,
			Quantity:   quantity,
			UnitAmount: first.Amount,
			Details: domain.InvoiceLineDetails{
				Agenda:          key.Agenda,
				PrimaryEvent:    key.PrimaryEvent,
				Status:          key.Status,
				CheckType:       key.CheckType,
				CheckTypeGroup:  key.CheckTypeGroup,
				CheckTypeLabel:  checkTypeLabel,
				Dates:           dates,
				EventTime:       first.Event.StartDatetime.Format("15:04:05"),
				PartialBookings: hasAgenda && agenda.PartialBookings,
			},
			EventSlug:      key.Agenda + "@" + key.PrimaryEvent,
			EventLabel:     eventLabel,
			AgendaSlug:     key.Agenda,
			ActivityLabel:  agenda.Label,
			Description:    description,
			AccountingCode: key.AccountingCode,
			UserExternalID: first.UserExternalID,
			UserFirstName:  first.UserFirstName,
			UserLastName:   first.UserLastName,
			PoolID:         pool.ID,
			JournalLineIDs: lineIDs,
		})
	}

	for _, line := range otherLines {
		agendaSlug := ""
		if slug, _, found := strings.Cut(line.Slug, "@"); found {
			agendaSlug = slug
		}
		agenda := agendasBySlug[agendaSlug]
		description := ""
		if line.PricingData.Adjustment != nil {
			switch line.PricingData.Adjustment.Reason {
			case domain.ReasonMissingBooking:
				description = labelBookingRegularization
			case domain.ReasonMissingCancellation:
				description = labelCancellationRegularization
			}
		}
		eventLabel := line.Event.Label
		if eventLabel == "" {
			eventLabel = line.Label
		}
		invoiceLines = append(invoiceLines, domain.DraftInvoiceLine{
			ID:             uuid.NewString(),
			EventDate:      line.EventDate,
			Label:          line.Label,
			Quantity:       line.Quantity,
			UnitAmount:     line.Amount,
			EventSlug:      line.Slug,
			EventLabel:     eventLabel,
			AgendaSlug:     agendaSlug,
			ActivityLabel:  agenda.Label,
			Description:    description,
			UserExternalID: line.UserExternalID,
			UserFirstName:  line.UserFirstName,
			UserLastName:   line.UserLastName,
			PoolID:         pool.ID,
			JournalLineIDs: []string{line.ID},
		})
	}
	return invoiceLines
}

// removeOppositeLine drops from the opposite group the line covering the
// same event date, reporting whether one was found.
func removeOppositeLine(grouped map[groupKey][]domain.JournalLine, other groupKey, eventDate time.Time) bool {
	otherLines := grouped[other]
	for i, otherLine := range otherLines {
		if otherLine.EventDate.Format(isoDate) == eventDate.Format(isoDate) {
			grouped[other] = append(otherLines[:i], otherLines[i+1:]...)
			return true
		}
	}
	return false
}

// formatQuantity renders a decimal without trailing decimals when whole.
func formatQuantity(q decimal.Decimal) string {
	if q.IsInteger() {
		return strconv.FormatInt(q.IntPart(), 10)
	}
	return q.String()
}

// formatDayMonthList turns sorted ISO dates into a "dd/mm, dd/mm" listing.
func formatDayMonthList(dates []string) string {
	parts := make([]string, 0, len(dates))
	for _, d := range dates {
		if len(d) == len(isoDate) {
			parts = append(parts, d[8:10]+"/"+d[5:7])
		} else {
			parts = append(parts, d)
		}
	}
	return strings.Join(parts, ", ")
}
