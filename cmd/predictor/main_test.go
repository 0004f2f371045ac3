package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/time/rate"

	"trailcast/internal/config"
	"trailcast/internal/scheduler"
	"trailcast/internal/types"
)

// --- Mock CloudWatch API ---

type mockCloudWatchAPI struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *mockCloudWatchAPI) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.inputs = append(m.inputs, params)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

// --- Mock SQS API ---

type mockSQSAPI struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (m *mockSQSAPI) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.inputs = append(m.inputs, params)
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func sampleRun() types.PredictionRun {
	summary := types.NewSummary()
	summary[types.ConditionRideable] = 40
	summary[types.ConditionMuddy] = 3
	return types.PredictionRun{
		ID:          "run-1",
		PredictedAt: time.Date(2024, time.July, 10, 12, 0, 0, 0, time.UTC),
		TrailCount:  43,
		Summary:     summary,
		DurationMs:  812,
	}
}

func TestLiveMetricPublisher(t *testing.T) {
	cw := &mockCloudWatchAPI{}
	p := &liveMetricPublisher{client: cw, namespace: "Trailcast"}

	require.NoError(t, p.PublishRunStats(context.Background(), sampleRun(), 2))
	require.Len(t, cw.inputs, 1)
	in := cw.inputs[0]
	assert.Equal(t, "Trailcast", aws.ToString(in.Namespace))
	assert.Len(t, in.MetricData, 4+len(types.AllConditions))

	values := map[string]float64{}
	for _, d := range in.MetricData {
		name := aws.ToString(d.MetricName)
		if len(d.Dimensions) == 1 {
			name += "/" + aws.ToString(d.Dimensions[0].Value)
		}
		values[name] = aws.ToFloat64(d.Value)
	}
	assert.Equal(t, 1.0, values["PredictionRunCompleted"])
	assert.Equal(t, 43.0, values["TrailsPredicted"])
	assert.Equal(t, 812.0, values["RunDuration"])
	assert.Equal(t, 2.0, values["WeatherRefreshFailures"])
	assert.Equal(t, 40.0, values["TrailsByCondition/rideable"])
	assert.Equal(t, 0.0, values["TrailsByCondition/snow"])
	assert.Equal(t, cwTypes.StandardUnitMilliseconds, in.MetricData[2].Unit)
}

func TestLiveMetricPublisher_Error(t *testing.T) {
	p := &liveMetricPublisher{client: &mockCloudWatchAPI{err: errors.New("throttled")}, namespace: "Trailcast"}
	err := p.PublishRunStats(context.Background(), sampleRun(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestLiveEventPublisher(t *testing.T) {
	q := &mockSQSAPI{}
	p := &liveEventPublisher{client: q, queueURL: "https://sqs.us-west-2.amazonaws.com/123/run-events"}
	run := sampleRun()

	err := p.PublishRunCompleted(context.Background(), scheduler.RunCompletedEvent{
		RunID:       run.ID,
		PredictedAt: run.PredictedAt,
		TrailCount:  run.TrailCount,
		Summary:     run.Summary,
		ArchiveKey:  "predictions/2024/07/10/run-1.json.zst",
	})
	require.NoError(t, err)
	require.Len(t, q.inputs, 1)

	in := q.inputs[0]
	assert.Equal(t, p.queueURL, aws.ToString(in.QueueUrl))
	assert.Equal(t, "prediction_run.completed", aws.ToString(in.MessageAttributes["event_type"].StringValue))

	var event scheduler.RunCompletedEvent
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &event))
	assert.Equal(t, "run-1", event.RunID)
	assert.Equal(t, 40, event.Summary[types.ConditionRideable])
	assert.Equal(t, "predictions/2024/07/10/run-1.json.zst", event.ArchiveKey)

	p.client = &mockSQSAPI{err: errors.New("queue does not exist")}
	assert.Error(t, p.PublishRunCompleted(context.Background(), scheduler.RunCompletedEvent{RunID: "x"}))
}

func TestReadLocalPayload(t *testing.T) {
	payload, err := readLocalPayload(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, payload.ReferenceTime)
	assert.False(t, payload.DryRun)

	payload, err = readLocalPayload(strings.NewReader(`{"reference_time":"2024-07-10T18:00:00Z","dry_run":true}`))
	require.NoError(t, err)
	require.NotNil(t, payload.ReferenceTime)
	assert.True(t, payload.ReferenceTime.Equal(time.Date(2024, time.July, 10, 18, 0, 0, 0, time.UTC)))
	assert.True(t, payload.DryRun)

	_, err = readLocalPayload(strings.NewReader(`{"dry_run":`))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()
	assert.True(t, newLogger("debug").Enabled(ctx, slog.LevelDebug))
	assert.False(t, newLogger("info").Enabled(ctx, slog.LevelDebug))
	assert.False(t, newLogger("error").Enabled(ctx, slog.LevelWarn))
	assert.True(t, newLogger("bogus").Enabled(ctx, slog.LevelInfo))
}

func TestNewWeatherLimiter(t *testing.T) {
	assert.Nil(t, newWeatherLimiter(config.WeatherConfig{RequestsPerSecond: 0, Burst: 2}))

	l := newWeatherLimiter(config.WeatherConfig{RequestsPerSecond: 2.5, Burst: 0})
	require.NotNil(t, l)
	assert.Equal(t, rate.Limit(2.5), l.Limit())
	assert.Equal(t, 1, l.Burst())
}
