package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used by the job handlers and the entrypoint.
type ServiceContainer struct {
	LineBuilder      LineBuilderSvcFacade
	InvoiceGenerator InvoiceGeneratorSvcFacade
	CampaignRunner   CampaignRunnerSvcFacade
}
