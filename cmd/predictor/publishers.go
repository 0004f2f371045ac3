package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"trailcast/internal/scheduler"
	"trailcast/internal/types"
)

// --- Metric Publisher Implementation ---

// cloudwatchAPI is the subset of the CloudWatch SDK client used here.
type cloudwatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// liveMetricPublisher implements scheduler.MetricPublisher on CloudWatch.
type liveMetricPublisher struct {
	client    cloudwatchAPI
	namespace string
}

// PublishRunStats emits the run heartbeat, its size and duration, failed
// weather refreshes, and one TrailsByCondition datum per label.
// PredictionRunCompleted is the heartbeat the missed-run alarm watches.
func (p *liveMetricPublisher) PublishRunStats(ctx context.Context, run types.PredictionRun, regionsFailed int) error {
	data := []cwTypes.MetricDatum{
		{
			MetricName: aws.String(types.MetricPredictionRunCompleted),
			Value:      aws.Float64(1),
			Unit:       cwTypes.StandardUnitCount,
		},
		{
			MetricName: aws.String(types.MetricTrailsPredicted),
			Value:      aws.Float64(float64(run.TrailCount)),
			Unit:       cwTypes.StandardUnitCount,
		},
		{
			MetricName: aws.String(types.MetricRunDuration),
			Value:      aws.Float64(float64(run.DurationMs)),
			Unit:       cwTypes.StandardUnitMilliseconds,
		},
		{
			MetricName: aws.String(types.MetricWeatherRefreshFailures),
			Value:      aws.Float64(float64(regionsFailed)),
			Unit:       cwTypes.StandardUnitCount,
		},
	}
	for _, c := range types.AllConditions {
		data = append(data, cwTypes.MetricDatum{
			MetricName: aws.String(types.MetricTrailsByCondition),
			Value:      aws.Float64(float64(run.Summary[c])),
			Unit:       cwTypes.StandardUnitCount,
			Dimensions: []cwTypes.Dimension{
				{Name: aws.String(types.DimCondition), Value: aws.String(string(c))},
			},
		})
	}

	_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(p.namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("failed to publish run metrics: %w", err)
	}
	return nil
}

// --- Event Publisher Implementation ---

// sqsAPI is the subset of the SQS SDK client used here.
type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// liveEventPublisher implements scheduler.EventPublisher on SQS.
type liveEventPublisher struct {
	client   sqsAPI
	queueURL string
}

// PublishRunCompleted sends the event as a JSON message body.
func (p *liveEventPublisher) PublishRunCompleted(ctx context.Context, event scheduler.RunCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal run-completed event: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(types.EventTypeRunCompleted),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SQS SendMessage failed: %w", err)
	}
	return nil
}
