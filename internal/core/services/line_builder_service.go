package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/apperrors"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
	portssvc "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/services"
)

// unknownPayer is recorded on error lines built before payer resolution.
const unknownPayer = "unknown"

// lineBuilderSvc builds the journal lines of a pool run for one user at a
// time: baseline pricing lines, plus reconciliation corrections for
// adjustment campaigns and comparison corrections for corrective campaigns.
type lineBuilderSvc struct {
	repos      portsrepo.RepositoryProvider
	pricing    portssvc.PricingProvider
	payers     portssvc.PayerResolver
	bookings   portssvc.BookingsProvider
	invoiceGen portssvc.InvoiceGeneratorSvcFacade
	logger     *slog.Logger

	existing *existingLinesSvc
	previous *previousCampaignSvc

	// seq numbers every built line; ordering of a pool's lines on later
	// reads follows it.
	seq atomic.Int64
}

// NewLineBuilderService creates the line builder.
func NewLineBuilderService(repos portsrepo.RepositoryProvider, pricing portssvc.PricingProvider, payers portssvc.PayerResolver, bookings portssvc.BookingsProvider, invoiceGen portssvc.InvoiceGeneratorSvcFacade, logger *slog.Logger) portssvc.LineBuilderSvcFacade {
	return &lineBuilderSvc{
		repos:      repos,
		pricing:    pricing,
		payers:     payers,
		bookings:   bookings,
		invoiceGen: invoiceGen,
		logger:     logger,
		existing:   newExistingLinesService(repos.InvoicingElementRepo),
		previous:   newPreviousCampaignService(repos.JournalLineRepo),
	}
}

var _ portssvc.LineBuilderSvcFacade = (*lineBuilderSvc)(nil)

// GetLinesForUser fetches the user's check statuses over the campaign
// period and builds the journal lines.
func (s *lineBuilderSvc) GetLinesForUser(ctx context.Context, pool domain.Pool, agendas []domain.Agenda, user domain.User, cache *domain.PayerDataCache) ([]domain.JournalLine, error) {
	if len(agendas) == 0 {
		return nil, nil
	}
	slugs := make([]string, 0, len(agendas))
	for _, agenda := range agendas {
		slugs = append(slugs, agenda.Slug)
	}
	entries, err := s.bookings.GetCheckStatus(ctx, slugs, user.ExternalID, pool.Campaign.DateStart, pool.Campaign.DateEnd)
	if err != nil {
		return nil, fmt.Errorf("fetching check statuses for user %s: %w", user.ExternalID, err)
	}
	return s.buildLinesForUser(ctx, pool, agendas, user, cache, entries)
}

// correctiveGates holds the once-per-user decisions controlling the primary
// amounts check of the first corrective campaign.
type correctiveGates struct {
	firstCorrective       bool
	pricingChangedHandled bool
}

func (s *lineBuilderSvc) correctiveGatesFor(ctx context.Context, campaign domain.Campaign) (correctiveGates, error) {
	var gates correctiveGates
	if campaign.PrimaryCampaignID == nil || !campaign.AdjustmentCampaign {
		return gates, nil
	}
	others, err := s.repos.CampaignRepo.HasOtherCorrectiveCampaigns(ctx, *campaign.PrimaryCampaignID, campaign.ID)
	if err != nil {
		return gates, err
	}
	gates.firstCorrective = !others
	if !gates.firstCorrective {
		return gates, nil
	}
	handled, err := s.repos.JournalLineRepo.HasPricingChangedLines(ctx, *campaign.PrimaryCampaignID)
	if err != nil {
		return gates, err
	}
	gates.pricingChangedHandled = handled
	return gates, nil
}

// buildLinesForUser computes and persists the journal lines for one user
// from the given check status entries. All index lookups happen up front so
// the whole user is processed against one consistent snapshot.
func (s *lineBuilderSvc) buildLinesForUser(ctx context.Context, pool domain.Pool, agendas []domain.Agenda, user domain.User, cache *domain.PayerDataCache, entries []domain.CheckStatusEntry) ([]domain.JournalLine, error) {
	if len(agendas) == 0 {
		return nil, nil
	}
	campaign := pool.Campaign

	agendasBySlug := make(map[string]domain.Agenda, len(agendas))
	for _, agenda := range agendas {
		agendasBySlug[agenda.Slug] = agenda
	}
	checkTypes, err := s.repos.CampaignRepo.FindCheckTypes(ctx)
	if err != nil {
		return nil, err
	}

	var existingLines domain.ExistingLines
	if campaign.AdjustmentCampaign {
		events := make([]domain.Event, 0, len(entries))
		for _, entry := range entries {
			events = append(events, entry.Event)
		}
		existingLines, err = s.existing.GetExistingLinesForUser(ctx, campaign.RegieID, campaign.DateStart, campaign.DateEnd, user.ExternalID, events)
		if err != nil {
			return nil, err
		}
	}

	var previousLines map[string]map[string]domain.JournalLine
	if campaign.IsCorrective() {
		previousLines, err = s.previous.GetPreviousCampaignJournalLinesForUser(ctx, pool, user.ExternalID, entries)
		if err != nil {
			return nil, err
		}
	}

	resolvedErrors, err := s.resolvedErrorsFor(ctx, pool, user.ExternalID)
	if err != nil {
		return nil, err
	}
	gates, err := s.correctiveGatesFor(ctx, campaign)
	if err != nil {
		return nil, err
	}

	var lines []domain.JournalLine
	for _, entry := range entries {
		eventDate := entry.Event.Date()
		eventSlug := entry.Event.EventSlug()
		agenda := agendasBySlug[entry.Event.Agenda]

		quantity := decimal.NewFromInt(1)
		quantityType := domain.QuantityUnits
		if agenda.PartialBookings {
			quantity = decimal.NewFromInt(entry.Booking.ComputedDuration)
			quantityType = domain.QuantityMinutes
		}

		var previousLine *domain.JournalLine
		if byDate, ok := previousLines[eventSlug]; ok {
			if line, ok := byDate[eventDate.Format(isoDate)]; ok {
				previousLine = &line
			}
		}

		built, err := s.buildEntryLines(ctx, pool, checkTypes, agenda, entry, user, cache, quantity, quantityType, existingLines, previousLine, gates)
		if err != nil {
			errLine := s.errorLine(pool, entry, user, quantity, quantityType, resolvedErrors, err)
			lines = append(lines, errLine)
			continue
		}
		lines = append(lines, built...)
	}

	injected, err := s.injectedLines(ctx, pool, user, cache)
	if err != nil {
		return nil, err
	}
	lines = append(lines, injected...)

	if err := s.repos.DraftJournalLineRepo.BulkCreateDraftLines(ctx, lines); err != nil {
		return nil, fmt.Errorf("persisting draft lines for user %s: %w", user.ExternalID, err)
	}
	return lines, nil
}

// buildEntryLines resolves payer and pricing for one check status entry and
// routes to the campaign-kind specific builder. Collaborator failures are
// returned to the caller, which records an error line.
func (s *lineBuilderSvc) buildEntryLines(ctx context.Context, pool domain.Pool, checkTypes domain.CheckTypeIndex, agenda domain.Agenda, entry domain.CheckStatusEntry, user domain.User, cache *domain.PayerDataCache, quantity decimal.Decimal, quantityType string, existingLines domain.ExistingLines, previousLine *domain.JournalLine, gates correctiveGates) ([]domain.JournalLine, error) {
	campaign := pool.Campaign

	payerExternalID, err := s.payers.GetPayerExternalID(ctx, campaign.RegieID, user.ExternalID, entry.Booking)
	if err != nil {
		return nil, err
	}
	payerData, err := cache.GetOrResolve(payerExternalID, func() (domain.PayerData, error) {
		return s.payers.GetPayerData(ctx, campaign.RegieID, payerExternalID)
	})
	if err != nil {
		return nil, err
	}
	pricing, err := s.pricing.GetPricingDataForEvent(ctx, agenda, entry, user.ExternalID, payerExternalID)
	if err != nil {
		return nil, err
	}

	template := domain.JournalLine{
		EventDate:       entry.Event.Date(),
		Slug:            entry.Event.EventSlug(),
		Label:           entry.Event.Label,
		Quantity:        quantity,
		QuantityType:    quantityType,
		UserExternalID:  user.ExternalID,
		UserFirstName:   user.FirstName,
		UserLastName:    user.LastName,
		PayerExternalID: payerExternalID,
		Payer:           payerData,
		Event:           entry.Event,
		Booking:         entry.Booking,
		Status:          domain.LineStatusSuccess,
	}
	factory := &lineFactory{pool: pool, payers: s.payers, cache: cache, template: template, seq: &s.seq}

	if campaign.IsCorrective() && agenda.PartialBookings {
		// partial bookings are billed incrementally and never corrected here
		return nil, nil
	}

	if campaign.IsCorrective() && previousLine != nil {
		lines := factory.compareJournalLines(ctx, pricing, *previousLine)
		if campaign.AdjustmentCampaign && gates.firstCorrective && !gates.pricingChangedHandled {
			lines = append(lines, factory.checkPrimaryCampaignAmounts(ctx, checkTypes, *previousLine, existingLines)...)
		}
		return lines, nil
	}

	var lines []domain.JournalLine
	status := pricing.BookingDetails.Status
	if agenda.PartialBookings && (status == domain.BookingStatusPresence || status == domain.BookingStatusAbsence) {
		lines, err = s.buildPartialBookingLines(ctx, factory, checkTypes, agenda, entry, user, payerExternalID, pricing)
		if err != nil {
			return nil, err
		}
	} else {
		lines = []domain.JournalLine{factory.nominalLine(pricing)}
	}
	if campaign.AdjustmentCampaign && !agenda.PartialBookings {
		lines = append(lines, s.buildAdjustmentLines(ctx, factory, checkTypes, entry, payerExternalID, pricing, existingLines)...)
	}
	return lines, nil
}

// buildAdjustmentLines reconciles the existing chain of the event occurrence
// against the new decision and materializes the corrections.
func (s *lineBuilderSvc) buildAdjustmentLines(ctx context.Context, factory *lineFactory, checkTypes domain.CheckTypeIndex, entry domain.CheckStatusEntry, payerExternalID string, pricing domain.ComputedPricing, existingLines domain.ExistingLines) []domain.JournalLine {
	final, ok := TerminalStateFor(pricing, checkTypes)
	if !ok {
		return nil
	}
	currentPricing := pricing.Pricing
	if final == TerminalBooked {
		currentPricing = pricing.InitialPricing()
	}
	links := existingLines.ChainFor(entry.Event.CombinedSlug(), entry.Event.Date().Format(isoDate))

	var lines []domain.JournalLine
	for _, adj := range ReconcileChain(final, currentPricing, payerExternalID, links) {
		lines = append(lines, factory.correctionLine(ctx, adj))
	}
	return lines
}

// buildPartialBookingLines bills partial bookings: booked hours first, then
// overtaking, then the check-type reduction or surcharge.
func (s *lineBuilderSvc) buildPartialBookingLines(ctx context.Context, factory *lineFactory, checkTypes domain.CheckTypeIndex, agenda domain.Agenda, entry domain.CheckStatusEntry, user domain.User, payerExternalID string, pricing domain.ComputedPricing) ([]domain.JournalLine, error) {
	details := pricing.BookingDetails
	checkType, hasCheckType := checkTypes.Find(details)

	normalPricing := pricing
	if details.Status != domain.BookingStatusPresence || details.CheckType != "" {
		// price a plain presence to isolate the check-type modifier
		normalEntry := entry
		normalEntry.CheckStatus = domain.CheckStatus{Status: domain.BookingStatusPresence}
		var err error
		normalPricing, err = s.pricing.GetPricingDataForEvent(ctx, agenda, normalEntry, user.ExternalID, payerExternalID)
		if err != nil {
			return nil, err
		}
	}

	var lines []domain.JournalLine
	if entry.Booking.AdjustedDuration > 0 {
		booked := factory.template
		booked.Label = agenda.Label
		booked.Description = "@booked-hours@"
		booked.Amount = normalPricing.Pricing
		booked.Quantity = decimal.NewFromInt(entry.Booking.AdjustedDuration)
		booked.PricingData = domain.PricingData{Computed: &normalPricing}
		lines = append(lines, factory.stamp(booked))

		if entry.Booking.ComputedDuration > entry.Booking.AdjustedDuration {
			overtaking := factory.template
			overtakingEvent := entry.Event
			if overtakingEvent.PrimaryEvent != "" {
				overtakingEvent.PrimaryEvent += "::overtaking"
			}
			overtaking.Event = overtakingEvent
			overtaking.Label = "Overtaking"
			overtaking.Description = "@overtaking@"
			overtaking.Amount = normalPricing.Pricing
			overtaking.Quantity = decimal.NewFromInt(entry.Booking.ComputedDuration - entry.Booking.AdjustedDuration)
			overtaking.PricingData = domain.PricingData{Computed: &normalPricing}
			lines = append(lines, factory.stamp(overtaking))
		}

		diffPricing := pricing.Pricing.Sub(normalPricing.Pricing)
		if !diffPricing.IsZero() {
			diff := factory.template
			diff.Label = ""
			if hasCheckType {
				diff.Label = checkType.Label
			} else if details.Status == domain.BookingStatusAbsence {
				diff.Label = "Absence"
			}
			diffEvent := entry.Event
			if diffEvent.PrimaryEvent != "" {
				diffEvent.PrimaryEvent += fmt.Sprintf(":%s:%s", details.Status, details.CheckType)
			}
			diff.Event = diffEvent
			diff.Amount = diffPricing.Abs()
			quantity := decimal.NewFromInt(entry.Booking.ComputedDuration)
			if diffPricing.IsNegative() {
				quantity = quantity.Neg()
			}
			diff.Quantity = quantity
			diff.PricingData = domain.PricingData{Computed: &pricing}
			lines = append(lines, factory.stamp(diff))
		}
		return lines, nil
	}

	// no booking at all
	noBooking := factory.template
	if hasCheckType {
		noBooking.Label = checkType.Label
	} else if details.Status == domain.BookingStatusPresence {
		noBooking.Label = "Presence without booking"
	}
	noBooking.Amount = pricing.Pricing
	noBooking.PricingData = domain.PricingData{Computed: &pricing}
	return append(lines, factory.stamp(noBooking)), nil
}

// errorLine records a collaborator failure for one entry: zero amount,
// degraded status, error details persisted for later replay. A pricing model
// missing for the date is a warning, since pricings may cover only part of
// the period.
func (s *lineBuilderSvc) errorLine(pool domain.Pool, entry domain.CheckStatusEntry, user domain.User, quantity decimal.Decimal, quantityType string, resolvedErrors map[string]domain.JournalLine, cause error) domain.JournalLine {
	eventSlug := entry.Event.EventSlug()
	status := domain.LineStatusError
	var notFound *apperrors.PricingNotFoundError
	if errors.As(cause, &notFound) {
		status = domain.LineStatusWarning
	}
	errorStatus := ""
	if resolved, ok := resolvedErrors[eventSlug]; ok {
		errorStatus = resolved.ErrorStatus
	}
	line := domain.JournalLine{
		ID:              uuid.NewString(),
		Seq:             s.seq.Add(1),
		EventDate:       entry.Event.Date(),
		Slug:            eventSlug,
		Label:           entry.Event.Label,
		Amount:          decimal.Zero,
		Quantity:        quantity,
		QuantityType:    quantityType,
		UserExternalID:  user.ExternalID,
		UserFirstName:   user.FirstName,
		UserLastName:    user.LastName,
		PayerExternalID: unknownPayer,
		Event:           entry.Event,
		Booking:         entry.Booking,
		PricingData: domain.PricingData{Err: &domain.ErrorDetails{
			Kind:    apperrors.ErrorKind(cause),
			Details: apperrors.ErrorDetails(cause),
		}},
		Status:      status,
		ErrorStatus: errorStatus,
		PoolID:      pool.ID,
	}
	s.logger.Warn("journal line in error",
		slog.String("pool", pool.ID),
		slog.String("user", user.ExternalID),
		slog.String("slug", eventSlug),
		slog.String("kind", apperrors.ErrorKind(cause)))
	return line
}

// resolvedErrorsFor returns, by slug, the previous pool's error lines whose
// error status was already set (resolved or ignored), so reruns keep it.
func (s *lineBuilderSvc) resolvedErrorsFor(ctx context.Context, pool domain.Pool, userExternalID string) (map[string]domain.JournalLine, error) {
	previousPool, err := s.repos.CampaignRepo.FindPreviousPool(ctx, pool.Campaign.ID, pool.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if previousPool == nil {
		return nil, nil
	}
	return s.repos.DraftJournalLineRepo.FindResolvedErrors(ctx, previousPool.ID, userExternalID)
}

// injectedLines picks up externally injected charges not yet invoiced.
func (s *lineBuilderSvc) injectedLines(ctx context.Context, pool domain.Pool, user domain.User, cache *domain.PayerDataCache) ([]domain.JournalLine, error) {
	campaign := pool.Campaign
	if campaign.InjectedLines == "" || campaign.InjectedLines == domain.InjectedLinesNone {
		return nil, nil
	}
	injected, err := s.repos.InjectedLineRepo.FindBillableInjectedLines(ctx, campaign, user.ExternalID)
	if err != nil {
		return nil, err
	}
	var lines []domain.JournalLine
	for _, il := range injected {
		il := il
		payerData, err := cache.GetOrResolve(il.PayerExternalID, func() (domain.PayerData, error) {
			return domain.PayerData{
				FirstName:   il.PayerFirstName,
				LastName:    il.PayerLastName,
				Address:     il.PayerAddress,
				DirectDebit: il.PayerDirectDebit,
			}, nil
		})
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.JournalLine{
			ID:                 uuid.NewString(),
			Seq:                s.seq.Add(1),
			EventDate:          il.EventDate,
			Slug:               il.Slug,
			Label:              il.Label,
			Amount:             il.Amount,
			Quantity:           decimal.NewFromInt(1),
			QuantityType:       domain.QuantityUnits,
			UserExternalID:     user.ExternalID,
			UserFirstName:      user.FirstName,
			UserLastName:       user.LastName,
			PayerExternalID:    il.PayerExternalID,
			Payer:              payerData,
			Status:             domain.LineStatusSuccess,
			PoolID:             pool.ID,
			FromInjectedLineID: &il.ID,
		})
	}
	return lines, nil
}

// ReplayError recomputes the lines of a single errored user/event and
// regenerates the draft invoices of the affected payers.
func (s *lineBuilderSvc) ReplayError(ctx context.Context, errorLine domain.JournalLine) ([]domain.DraftInvoice, error) {
	agendaSlug, _, found := strings.Cut(errorLine.Slug, "@")
	if !found {
		return nil, fmt.Errorf("line slug %q has no agenda part: %w", errorLine.Slug, apperrors.ErrNotFound)
	}
	agenda, err := s.repos.CampaignRepo.FindAgendaBySlug(ctx, agendaSlug)
	if err != nil {
		return nil, err
	}
	pool, err := s.repos.CampaignRepo.FindPool(ctx, errorLine.PoolID)
	if err != nil {
		return nil, err
	}

	eventDate := errorLine.EventDate
	entries, err := s.bookings.GetCheckStatus(ctx, []string{agendaSlug}, errorLine.UserExternalID, eventDate, eventDate.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	filtered := entries[:0]
	for _, entry := range entries {
		if entry.Event.EventSlug() != errorLine.Slug {
			continue
		}
		if !entry.Event.Date().Equal(eventDate) {
			continue
		}
		filtered = append(filtered, entry)
	}

	oldLines, err := s.repos.DraftJournalLineRepo.DeleteDraftLines(ctx, pool.ID, errorLine.UserExternalID, eventDate, errorLine.Slug)
	if err != nil {
		return nil, err
	}
	payerSet := make(map[string]struct{})
	for _, line := range oldLines {
		payerSet[line.PayerExternalID] = struct{}{}
	}

	user := domain.User{
		ExternalID: errorLine.UserExternalID,
		FirstName:  errorLine.UserFirstName,
		LastName:   errorLine.UserLastName,
	}
	newLines, err := s.buildLinesForUser(ctx, *pool, []domain.Agenda{*agenda}, user, domain.NewPayerDataCache(), filtered)
	if err != nil {
		return nil, err
	}
	for _, line := range newLines {
		payerSet[line.PayerExternalID] = struct{}{}
	}
	payers := make([]string, 0, len(payerSet))
	for payer := range payerSet {
		payers = append(payers, payer)
	}

	if err := s.repos.DraftInvoiceRepo.DeleteDraftInvoicesForPayers(ctx, pool.ID, payers); err != nil {
		return nil, err
	}
	return s.invoiceGen.GenerateInvoicesFromLines(ctx, *pool, payers)
}
