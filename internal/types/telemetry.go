package types

// Telemetry metric names for CloudWatch.
// All components MUST use these constants.
const (
	// Metric Names
	MetricPredictionRunCompleted = "PredictionRunCompleted"
	MetricTrailsPredicted        = "TrailsPredicted"
	MetricRunDuration            = "RunDuration"
	MetricWeatherRefreshFailures = "WeatherRefreshFailures"
	MetricTrailsByCondition      = "TrailsByCondition"

	// Dimension Keys
	DimCondition = "Condition"

	// Metric Namespace
	MetricNamespace = "Trailcast"
)

// EventTypeRunCompleted tags run-completed messages on the events queue.
const EventTypeRunCompleted = "prediction_run.completed"
