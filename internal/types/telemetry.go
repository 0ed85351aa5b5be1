package types

// Telemetry metric names for CloudWatch.
const (
	// Metric Names
	MetricAPILatency      = "APILatency"
	MetricAPIRequestCount = "APIRequestCount"
	MetricPollTick        = "PollTick"
	MetricPollLatency     = "PollLatency"
	MetricWindowSize      = "WindowSize"

	// Dimension Keys
	DimService  = "Service"
	DimEndpoint = "Endpoint"
	DimMethod   = "Method"
	DimStatus   = "Status"
	DimOutcome  = "Outcome"

	// Metric Namespace
	MetricNamespace = "EnvMonitor"
)

// Poll tick outcomes, used as the Outcome dimension.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeMalformed = "malformed"
)
