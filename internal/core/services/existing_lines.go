package services

import (
	"context"
	"sort"
	"time"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
)

const isoDate = "2006-01-02"

// existingLinesSvc rebuilds, from persisted invoice and credit lines, the
// booking/cancellation chain of every event occurrence already invoiced for
// a user.
type existingLinesSvc struct {
	elementRepo portsrepo.InvoicingElementReader
}

func newExistingLinesService(elementRepo portsrepo.InvoicingElementReader) *existingLinesSvc {
	return &existingLinesSvc{elementRepo: elementRepo}
}

// GetExistingLinesForUser returns chains indexed by combined event slug and
// ISO date, covering the events of the given check status entries over
// [dateMin, dateMax). Missing keys mean an empty chain.
func (s *existingLinesSvc) GetExistingLinesForUser(ctx context.Context, regieID int64, dateMin, dateMax time.Time, userExternalID string, events []domain.Event) (domain.ExistingLines, error) {
	slugSet := make(map[string]struct{}, len(events))
	slugs := make([]string, 0, len(events))
	for _, event := range events {
		slug := event.CombinedSlug()
		if _, ok := slugSet[slug]; ok {
			continue
		}
		slugSet[slug] = struct{}{}
		slugs = append(slugs, slug)
	}
	if len(slugs) == 0 {
		return domain.ExistingLines{}, nil
	}

	rows, err := s.elementRepo.FindInvoicingElementLines(ctx, regieID, dateMin, dateMax, userExternalID, slugs)
	if err != nil {
		return nil, err
	}
	return buildChains(rows, dateMin.Format(isoDate), dateMax.Format(isoDate)), nil
}

// datedRow is one invoicing element line pinned to one of its covered dates,
// annotated with the creation time of the element it follows, for ordering.
type datedRow struct {
	row               domain.InvoicingElementLine
	previousCreatedAt time.Time
}

// buildChains groups rows per (slug, date), orders each group by the
// creation time of the element each line follows, and classifies every line
// as a booking or cancellation link.
func buildChains(rows []domain.InvoicingElementLine, dateMin, dateMax string) domain.ExistingLines {
	grouped := make(map[string]map[string][]domain.InvoicingElementLine)
	elementCreatedAt := make(map[string]time.Time)
	for _, row := range rows {
		seen := make(map[string]struct{}, len(row.Dates))
		for _, date := range row.Dates {
			if _, ok := seen[date]; ok {
				continue
			}
			seen[date] = struct{}{}
			if date < dateMin || date >= dateMax {
				continue
			}
			if grouped[row.EventSlug] == nil {
				grouped[row.EventSlug] = make(map[string][]domain.InvoicingElementLine)
			}
			grouped[row.EventSlug][date] = append(grouped[row.EventSlug][date], row)
			elementCreatedAt[row.ElementNumber] = row.ElementCreatedAt
		}
	}

	history := make(domain.ExistingLines, len(grouped))
	for slug, dates := range grouped {
		history[slug] = make(map[string]domain.Chain, len(dates))
		for date, lines := range dates {
			dated := make([]datedRow, 0, len(lines))
			for _, line := range lines {
				dated = append(dated, datedRow{row: line, previousCreatedAt: previousElementCreatedAt(line, date, elementCreatedAt)})
			}
			sort.SliceStable(dated, func(i, j int) bool {
				if !dated[i].previousCreatedAt.Equal(dated[j].previousCreatedAt) {
					return dated[i].previousCreatedAt.Before(dated[j].previousCreatedAt)
				}
				return dated[i].row.ElementCreatedAt.Before(dated[j].row.ElementCreatedAt)
			})
			chain := make(domain.Chain, 0, len(dated))
			for _, d := range dated {
				chain = append(chain, d.row.AsLink())
			}
			history[slug][date] = chain
		}
	}
	return history
}

// previousElementCreatedAt resolves the ordering anchor of a line for one
// date. A line repairing a gap before element X must sort just before X,
// and a line repairing a gap after element Y sorts at Y's creation time;
// plain lines sort at their own element's creation time.
func previousElementCreatedAt(line domain.InvoicingElementLine, date string, elements map[string]time.Time) time.Time {
	ref := line.AdjustmentRefs[date]
	if ref.Before != "" {
		if at, ok := elements[ref.Before]; ok {
			return at
		}
		return line.ElementCreatedAt
	}
	if ref.After != "" {
		if at, ok := elements[ref.After]; ok {
			return at.Add(-time.Millisecond)
		}
		return line.ElementCreatedAt
	}
	return line.ElementCreatedAt
}
