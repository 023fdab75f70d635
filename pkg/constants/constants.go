// Package constants provides shared constants for the loan-calculator application.
package constants

// DateTimeLayout is the format expected for scenario start dates and is also
// the month label format used in output.
const DateTimeLayout = "2006-01"

// ReportDateLayout is the date format used in exported report file names.
const ReportDateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPlaces is the number of decimal places used for currency rounding
	DecimalPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PeriodSolveTolerance absorbs floating point noise when rounding a solved
	// number of months up to a whole month.
	PeriodSolveTolerance = 1e-9

	// MaxAmount is the largest accepted loan amount
	MaxAmount = 1e15

	// MaxPeriodMonths is the longest accepted loan term (100 years)
	MaxPeriodMonths = 1200

	// MaxAnnualRate is the highest accepted annual interest rate, in percent
	MaxAnnualRate = 100.0

	// MaxInsuranceRate is the highest accepted monthly insurance rate, in percent
	MaxInsuranceRate = 100.0
)

// Repayment types
const (
	// RepaymentTypeAnnuity is the equal-payment convention
	RepaymentTypeAnnuity = "annuity"

	// RepaymentTypeLinear is the equal-principal convention
	RepaymentTypeLinear = "linear"

	// RepaymentTypeBoth requests both conventions side by side
	RepaymentTypeBoth = "both"
)

// Early repayment effects
const (
	// EffectAmount keeps the term and lowers the installment
	EffectAmount = "amount"

	// EffectPeriod keeps the installment and shortens the term
	EffectPeriod = "period"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatPDF writes one PDF report per schedule
	OutputFormatPDF = "pdf"
)

// DefaultCurrency is the currency used when none is configured.
const DefaultCurrency = "RON"

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultStoreDriver is the saved loan data backend used when none is configured
	DefaultStoreDriver = "memory"
)
