package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/domain"
)

func elementLine(kind domain.InvoicingElementKind, number string, createdAt time.Time, amount float64, dates ...string) domain.InvoicingElementLine {
	return domain.InvoicingElementLine{
		Kind:             kind,
		EventSlug:        "school@lunch",
		Dates:            dates,
		UnitAmount:       decimal.NewFromFloat(amount),
		TotalAmount:      decimal.NewFromFloat(amount),
		PayerExternalID:  "payer:1",
		ElementNumber:    number,
		ElementCreatedAt: createdAt,
	}
}

func TestBuildChains_GroupingAndClassification(t *testing.T) {
	t0 := time.Date(2023, 3, 1, 10, 0, 0, 0, time.UTC)

	invoice := elementLine(domain.ElementInvoice, "F-1", t0, 10, "2023-03-06", "2023-03-07")
	credit := elementLine(domain.ElementCredit, "A-1", t0.Add(time.Hour), 10, "2023-03-06")

	chains := buildChains([]domain.InvoicingElementLine{invoice, credit}, "2023-03-01", "2023-04-01")

	chain := chains.ChainFor("school@lunch", "2023-03-06")
	require.Len(t, chain, 2)
	assert.True(t, chain[0].Booked)
	assert.Equal(t, "F-1", chain[0].InvoicingElementNumber)
	assert.False(t, chain[1].Booked)
	assert.Equal(t, "A-1", chain[1].InvoicingElementNumber)

	// the second covered date only carries the booking
	chain = chains.ChainFor("school@lunch", "2023-03-07")
	require.Len(t, chain, 1)
	assert.True(t, chain[0].Booked)
}

func TestBuildChains_DateRangeFilter(t *testing.T) {
	t0 := time.Date(2023, 3, 1, 10, 0, 0, 0, time.UTC)
	invoice := elementLine(domain.ElementInvoice, "F-1", t0, 10, "2023-02-28", "2023-03-06", "2023-04-01")

	chains := buildChains([]domain.InvoicingElementLine{invoice}, "2023-03-01", "2023-04-01")

	assert.Nil(t, chains.ChainFor("school@lunch", "2023-02-28"))
	assert.Nil(t, chains.ChainFor("school@lunch", "2023-04-01"))
	assert.Len(t, chains.ChainFor("school@lunch", "2023-03-06"), 1)
}

func TestBuildChains_NegativeInvoiceLineIsCancellation(t *testing.T) {
	t0 := time.Date(2023, 3, 1, 10, 0, 0, 0, time.UTC)
	line := elementLine(domain.ElementInvoice, "F-1", t0, 10, "2023-03-06")
	line.TotalAmount = decimal.NewFromInt(-10)
	line.UnitAmount = decimal.NewFromInt(-10)

	chains := buildChains([]domain.InvoicingElementLine{line}, "2023-03-01", "2023-04-01")

	chain := chains.ChainFor("school@lunch", "2023-03-06")
	require.Len(t, chain, 1)
	assert.False(t, chain[0].Booked)
	assert.True(t, chain[0].UnitAmount.Equal(decimal.NewFromInt(10)))
}

func TestBuildChains_AdjustmentRefOrdering(t *testing.T) {
	t0 := time.Date(2023, 3, 1, 10, 0, 0, 0, time.UTC)

	// the original booking and cancellation
	first := elementLine(domain.ElementInvoice, "F-1", t0, 10, "2023-03-06")
	second := elementLine(domain.ElementCredit, "A-1", t0.Add(2*time.Hour), 10, "2023-03-06")

	// a later regularization repairing a gap before F-1: despite being
	// created last, it must sort ahead of the plain lines
	repair := elementLine(domain.ElementInvoice, "F-9", t0.Add(48*time.Hour), 8, "2023-03-06")
	repair.TotalAmount = decimal.NewFromInt(-8)
	repair.AdjustmentRefs = map[string]domain.AdjustmentRef{
		"2023-03-06": {After: "F-1"},
	}

	chains := buildChains([]domain.InvoicingElementLine{first, second, repair}, "2023-03-01", "2023-04-01")

	chain := chains.ChainFor("school@lunch", "2023-03-06")
	require.Len(t, chain, 3)
	assert.Equal(t, "F-9", chain[0].InvoicingElementNumber)
	assert.Equal(t, "F-1", chain[1].InvoicingElementNumber)
	assert.Equal(t, "A-1", chain[2].InvoicingElementNumber)
}

func TestPreviousElementCreatedAt(t *testing.T) {
	t0 := time.Date(2023, 3, 1, 10, 0, 0, 0, time.UTC)
	elements := map[string]time.Time{"F-1": t0}

	plain := elementLine(domain.ElementInvoice, "F-2", t0.Add(time.Hour), 10, "2023-03-06")
	assert.Equal(t, t0.Add(time.Hour), previousElementCreatedAt(plain, "2023-03-06", elements))

	before := plain
	before.AdjustmentRefs = map[string]domain.AdjustmentRef{"2023-03-06": {Before: "F-1"}}
	assert.Equal(t, t0, previousElementCreatedAt(before, "2023-03-06", elements))

	after := plain
	after.AdjustmentRefs = map[string]domain.AdjustmentRef{"2023-03-06": {After: "F-1"}}
	assert.Equal(t, t0.Add(-time.Millisecond), previousElementCreatedAt(after, "2023-03-06", elements))

	// unknown reference falls back to the line's own creation time
	dangling := plain
	dangling.AdjustmentRefs = map[string]domain.AdjustmentRef{"2023-03-06": {Before: "F-404"}}
	assert.Equal(t, t0.Add(time.Hour), previousElementCreatedAt(dangling, "2023-03-06", elements))
}
