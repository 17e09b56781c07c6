package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the quotes database
	DefaultDatabasePath = "./quotebuy.db"
)

// Defaults for the price of one quote.
const (
	DefaultAmountCents = 100
	DefaultCurrency    = "usd"
	DefaultDescription = "Quote"
)
