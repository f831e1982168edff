package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing pubs.yml, invalid values)
	ExitDataError   = 3 // Data error (unformattable records, unreadable tables or output)
	ExitFetchError  = 4 // Crossref error (rate limit, network, failure budget spent)
)
