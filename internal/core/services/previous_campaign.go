package services

import (
	"context"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
)

// previousCampaignSvc indexes the journal lines of the previous campaign in
// a corrective lineage: for each event occurrence, the most recent line of
// the primary campaign or of any earlier corrective campaign.
type previousCampaignSvc struct {
	journalLineRepo portsrepo.JournalLineReader
}

func newPreviousCampaignService(journalLineRepo portsrepo.JournalLineReader) *previousCampaignSvc {
	return &previousCampaignSvc{journalLineRepo: journalLineRepo}
}

// GetPreviousCampaignJournalLinesForUser returns the previous campaign's
// lines indexed by combined event slug and ISO date. Lines with empty
// pricing data are placeholders and are skipped.
func (s *previousCampaignSvc) GetPreviousCampaignJournalLinesForUser(ctx context.Context, pool domain.Pool, userExternalID string, entries []domain.CheckStatusEntry) (map[string]map[string]domain.JournalLine, error) {
	if pool.Campaign.PrimaryCampaignID == nil {
		return nil, nil
	}

	slugSet := make(map[string]struct{}, len(entries))
	slugs := make([]string, 0, len(entries))
	for _, entry := range entries {
		slug := entry.Event.EventSlug()
		if _, ok := slugSet[slug]; ok {
			continue
		}
		slugSet[slug] = struct{}{}
		slugs = append(slugs, slug)
	}

	lines, err := s.journalLineRepo.FindPreviousCampaignLines(ctx, *pool.Campaign.PrimaryCampaignID, userExternalID, slugs)
	if err != nil {
		return nil, err
	}

	history := make(map[string]map[string]domain.JournalLine)
	for _, line := range lines {
		if line.PricingData.IsZero() {
			continue
		}
		if history[line.Slug] == nil {
			history[line.Slug] = make(map[string]domain.JournalLine)
		}
		date := line.EventDate.Format(isoDate)
		if _, ok := history[line.Slug][date]; ok {
			// repository returns most recent first per (slug, date)
			continue
		}
		history[line.Slug][date] = line
	}
	return history, nil
}
