package common

const (
	// AppName is the name of the application
	AppName = "property-scraper-service"

	// SourceName names the scraped site in archive paths.
	SourceName = "fincaraiz"
)
