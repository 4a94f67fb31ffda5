package app

// Clock-injecting constructors for the external test package.
var (
	NewHistoryServiceWithClock  = newHistoryService
	NewExchangeServiceWithClock = newExchangeService
)
