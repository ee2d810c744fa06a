// Package constants provides shared constants for the valuecalc application.
package constants

// Parameter provenance values.
const (
	// ProvidedByUser marks a parameter whose value is entered by the end user
	ProvidedByUser = "user"

	// ProvidedByCompany marks a parameter whose value is fixed by the solution author
	ProvidedByCompany = "company"
)

// Parameter display types.
const (
	DisplaySimple   = "simple"
	DisplayDropdown = "dropdown"
	DisplayFilter   = "filter"
	DisplayRange    = "range"
)

// Request payload parameter types as understood by the calculation service.
const (
	PayloadTypeUser        = "USER"
	PayloadTypeCompany     = "COMPANY"
	PayloadTypeCalculation = "CALCULATION"
)

// FilterNameHint is the substring (case-insensitive) identifying the filter
// parameter that steers dropdown resolution.
const FilterNameHint = "country"

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON prints the raw result map
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides, e.g. VALUECALC_SERVICE_BASEURL
	EnvPrefix = "VALUECALC"
)

// Calculation service defaults
const (
	// DefaultServiceBaseURL is the local development address of the calculation service
	DefaultServiceBaseURL = "http://localhost:8000"

	// CalculatePath is the calculation endpoint relative to the base URL
	CalculatePath = "/api/v1/calculate"

	// DefaultServiceTimeoutSeconds bounds a single calculation request
	DefaultServiceTimeoutSeconds = 30

	// MaxResponseBytes caps how much of a service response is read (10 MB)
	MaxResponseBytes int64 = 10 << 20
)

// Storage defaults
const (
	// DefaultStorePath is where the sqlite solution store lives
	DefaultStorePath = "data/valuecalc.db"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// ResultTolerance is the tolerance used when comparing calculated values.
const ResultTolerance = 1e-9
