package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "FIRMS/Retrieval"
	cloudwatchTimeoutSeconds = 5
)

// Client wraps a CloudWatch client and a Sentry span recorder for
// ingest/query metrics. CloudWatch is only reachable in production;
// Sentry spans run wherever sentry.Init was called, so local/dev runs
// still get performance tracing even with CloudWatch disabled.
type Client struct {
	client      *cloudwatch.Client
	enabled     bool
	environment string
	sentry      *SentryMetrics
}

// NewClient creates a new CloudWatch+Sentry metrics client. CloudWatch
// is only enabled in production; everywhere else it degrades to a safe
// no-op and only the Sentry side (if initialized) records anything.
func NewClient(ctx context.Context, environment string) (*Client, error) {
	sentryMetrics := NewSentryMetrics()

	if environment != "production" {
		log.Printf("CloudWatch metrics: disabled (environment: %s)", environment)
		return &Client{enabled: false, environment: environment, sentry: sentryMetrics}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false, environment: environment, sentry: sentryMetrics}, nil
	}

	client := cloudwatch.NewFromConfig(cfg)
	log.Printf("CloudWatch metrics: enabled (namespace: %s)", namespace)

	return &Client{
		client:      client,
		enabled:     true,
		environment: environment,
		sentry:      sentryMetrics,
	}, nil
}

// RecordIngest records the outcome and duration of a single add_piece
// call, both as CloudWatch custom metrics and as a Sentry performance
// span.
func (m *Client) RecordIngest(ctx context.Context, piecePath string, pieceCount int, duration time.Duration, success bool) {
	m.sentry.RecordIngest(ctx, piecePath, duration, success)

	if !m.enabled {
		return
	}

	go func() {
		bgCtx := context.Background()
		metricName := "IngestSuccess"
		if !success {
			metricName = "IngestFailure"
		}

		dimensions := []types.Dimension{
			{Name: aws.String("Environment"), Value: aws.String(m.environment)},
		}

		if err := m.putMetric(bgCtx, metricName, 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("failed to record %s metric: %v", metricName, err)
		}
		if err := m.putMetric(bgCtx, "IngestDuration", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("failed to record IngestDuration metric: %v", err)
		}
		if err := m.putMetric(bgCtx, "IngestPieceCount", float64(pieceCount), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("failed to record IngestPieceCount metric: %v", err)
		}
	}()
}

// RecordQuery records per-grader query latency and a per-grader count
// (recorded as QueryStemMatches; the serve query handler passes the
// number of ranked results), both as CloudWatch custom metrics and as a
// Sentry performance span.
func (m *Client) RecordQuery(ctx context.Context, graderName string, stemMatches int, duration time.Duration) {
	m.sentry.RecordQuery(ctx, graderName, stemMatches, duration)

	if !m.enabled {
		return
	}

	go func() {
		bgCtx := context.Background()
		dimensions := []types.Dimension{
			{Name: aws.String("Grader"), Value: aws.String(graderName)},
			{Name: aws.String("Environment"), Value: aws.String(m.environment)},
		}

		if err := m.putMetric(bgCtx, "QueryLatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("failed to record QueryLatency metric: %v", err)
		}
		if err := m.putMetric(bgCtx, "QueryStemMatches", float64(stemMatches), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("failed to record QueryStemMatches metric: %v", err)
		}
	}()
}

// RecordCorpusSize records the current count of indexed pieces, both
// as a CloudWatch custom metric and as a Sentry custom metric event.
func (m *Client) RecordCorpusSize(size int) {
	m.sentry.RecordCustomMetric("CorpusSize", map[string]interface{}{"size": size, "environment": m.environment})

	if !m.enabled {
		return
	}

	go func() {
		ctx := context.Background()
		dimensions := []types.Dimension{
			{Name: aws.String("Environment"), Value: aws.String(m.environment)},
		}
		if err := m.putMetric(ctx, "CorpusSize", float64(size), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("failed to record CorpusSize metric: %v", err)
		}
	}()
}

// putMetric sends a metric to CloudWatch.
func (m *Client) putMetric(
	_ context.Context,
	metricName string,
	value float64,
	unit types.StandardUnit,
	dimensions []types.Dimension,
) error {
	if !m.enabled || m.client == nil {
		return nil
	}

	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dimensions,
			},
		},
	})

	return err
}
