package services

import (
	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
	portssvc "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/services"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, pricing portssvc.PricingProvider, payers portssvc.PayerResolver, bookings portssvc.BookingsProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Initialize the invoice generator first since the line builder replays
	// errors through it
	container.InvoiceGenerator = NewInvoiceGeneratorService(repos, cfg.Logger())

	container.LineBuilder = NewLineBuilderService(
		repos,
		pricing,
		payers,
		bookings,
		container.InvoiceGenerator,
		cfg.Logger(),
	)

	container.CampaignRunner = NewCampaignRunnerService(
		repos,
		bookings,
		container.LineBuilder,
		container.InvoiceGenerator,
		cfg.CampaignConcurrency,
		cfg.Logger(),
	)

	return container
}
