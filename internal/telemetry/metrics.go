// Package telemetry publishes envmonitor request and poll metrics to
// CloudWatch.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"envmonitor/internal/config"
	"envmonitor/internal/types"
)

// publishTimeout bounds a single PutMetricData call.
const publishTimeout = 2 * time.Second

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Recorder is the full metrics surface used by the envmonitor binaries.
type Recorder interface {
	RecordRequest(method, endpoint, status string, duration time.Duration)
	RecordTick(ctx context.Context, outcome string, duration time.Duration, windowSize int)
}

var (
	_ Recorder = (*CloudWatchMetrics)(nil)
	_ Recorder = Noop{}
)

// CloudWatchMetrics emits:
//   - APIRequestCount, APILatency: Dims {Service, Endpoint, Method, Status}
//   - PollTick: Dims {Service, Outcome}
//   - PollLatency, WindowSize: Dims {Service}
//
// Publish failures are logged and never returned; metrics must not break
// the request or poll path.
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	service   string
	logger    *slog.Logger
}

// NewCloudWatchMetrics creates a recorder publishing under namespace. An
// empty namespace selects types.MetricNamespace.
func NewCloudWatchMetrics(client CloudWatchClient, namespace, service string, logger *slog.Logger) *CloudWatchMetrics {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	return &CloudWatchMetrics{
		client:    client,
		namespace: namespace,
		service:   service,
		logger:    logger,
	}
}

// NewCloudWatchClient loads the default AWS configuration for cfg.Region.
// EndpointURL overrides the service endpoint (LocalStack).
func NewCloudWatchClient(ctx context.Context, cfg config.MetricsConfig) (*cloudwatch.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}
	}), nil
}

// RecordRequest implements core.MetricsCollector.
func (m *CloudWatchMetrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	dims := []cwtypes.Dimension{
		m.serviceDim(),
		dim(types.DimEndpoint, endpoint),
		dim(types.DimMethod, method),
		dim(types.DimStatus, status),
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	m.put(ctx, "failed to record request metrics",
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricAPIRequestCount),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: dims,
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricAPILatency),
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Dimensions: dims,
		},
	)
}

// RecordTick records the outcome and latency of one poll tick along with the
// window size after it.
func (m *CloudWatchMetrics) RecordTick(ctx context.Context, outcome string, duration time.Duration, windowSize int) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	m.put(ctx, "failed to record poll metrics",
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricPollTick),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: []cwtypes.Dimension{m.serviceDim(), dim(types.DimOutcome, outcome)},
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricPollLatency),
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Dimensions: []cwtypes.Dimension{m.serviceDim()},
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricWindowSize),
			Value:      aws.Float64(float64(windowSize)),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: []cwtypes.Dimension{m.serviceDim()},
		},
	)
}

func (m *CloudWatchMetrics) put(ctx context.Context, failMsg string, data ...cwtypes.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error(failMsg, "error", err.Error(), "namespace", m.namespace)
	}
}

func (m *CloudWatchMetrics) serviceDim() cwtypes.Dimension {
	return dim(types.DimService, m.service)
}

func dim(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

// Noop discards all metrics. It is used when METRICS_ENABLED is false.
type Noop struct{}

func (Noop) RecordRequest(string, string, string, time.Duration) {}

func (Noop) RecordTick(context.Context, string, time.Duration, int) {}
