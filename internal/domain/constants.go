package domain

const (
	DefaultAutoRevealOutput           = true
	DefaultObservabilityListenAddress = "0.0.0.0:9090"
	DefaultReloadDebounceMillis       = 200

	// StatusSeverityOK is the highest severity still considered success.
	StatusSeverityOK = 0

	// BeanCategoryUnknown is the sentinel category for a discovered bean
	// that could not be classified as any known server kind.
	BeanCategoryUnknown = "UNKNOWN"
)
