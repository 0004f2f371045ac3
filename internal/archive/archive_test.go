package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailcast/internal/types"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func sampleRun() (types.PredictionRun, []types.Prediction) {
	at := time.Date(2024, time.July, 10, 12, 30, 0, 0, time.UTC)
	summary := types.NewSummary()
	summary[types.ConditionRideable] = 1
	summary[types.ConditionClosed] = 1

	run := types.PredictionRun{
		ID:          "8c1f8a7e-51a4-4f0c-9f6d-0f3f0c3f8d11",
		PredictedAt: at,
		WindowStart: time.Date(2024, time.July, 4, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC),
		TrailCount:  2,
		Summary:     summary,
		DurationMs:  412,
	}
	predictions := []types.Prediction{
		{TrailID: "a", Condition: types.ConditionRideable, Confidence: 80, HoursSinceRain: 90, EffectiveDryHours: 30, PredictedAt: at,
			Factors: types.Factors{Region: "denver", WeatherRegion: "denver", BaseDryHours: 48, AccessRule: types.AccessRuleNone}},
		{TrailID: "b", Condition: types.ConditionClosed, Confidence: 100, PredictedAt: at,
			Factors: types.Factors{Region: "boulder", WeatherRegion: "boulder", AccessRule: types.AccessRulePermanent}},
	}
	return run, predictions
}

func TestKey(t *testing.T) {
	run, _ := sampleRun()
	assert.Equal(t, "predictions/2024/07/10/8c1f8a7e-51a4-4f0c-9f6d-0f3f0c3f8d11.json.zst", Key(run))

	// Dated in UTC whatever the run's location.
	denver := time.FixedZone("MDT", -6*3600)
	run.PredictedAt = time.Date(2024, time.July, 10, 20, 0, 0, 0, denver)
	assert.Equal(t, "predictions/2024/07/11/8c1f8a7e-51a4-4f0c-9f6d-0f3f0c3f8d11.json.zst", Key(run))
}

func TestPut_RoundTrip(t *testing.T) {
	client := &fakeS3{}
	archiver := NewS3Archiver(client, "trailcast-archive", nil)
	run, predictions := sampleRun()

	key, err := archiver.Put(context.Background(), run, predictions)
	require.NoError(t, err)
	assert.Equal(t, Key(run), key)

	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "trailcast-archive", aws.ToString(in.Bucket))
	assert.Equal(t, key, aws.ToString(in.Key))
	assert.Equal(t, "zstd", aws.ToString(in.ContentEncoding))
	assert.Equal(t, "2", in.Metadata["trail-count"])

	doc, err := Decode(bytes.NewReader(client.bodies[0]))
	require.NoError(t, err)
	assert.Equal(t, run.ID, doc.Run.ID)
	assert.True(t, run.PredictedAt.Equal(doc.Run.PredictedAt))
	assert.Equal(t, run.Summary, doc.Run.Summary)
	require.Len(t, doc.Predictions, 2)
	assert.Equal(t, predictions[0].Factors, doc.Predictions[0].Factors)
	assert.Equal(t, types.ConditionClosed, doc.Predictions[1].Condition)
}

func TestPut_ReusesPooledEncoder(t *testing.T) {
	client := &fakeS3{}
	archiver := NewS3Archiver(client, "bucket", nil)
	run, predictions := sampleRun()

	for range 3 {
		_, err := archiver.Put(context.Background(), run, predictions)
		require.NoError(t, err)
	}
	require.Len(t, client.bodies, 3)
	assert.Equal(t, client.bodies[0], client.bodies[2])
}

func TestPut_UploadFailure(t *testing.T) {
	archiver := NewS3Archiver(&fakeS3{err: errors.New("access denied")}, "bucket", nil)
	run, predictions := sampleRun()

	_, err := archiver.Put(context.Background(), run, predictions)
	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalArchive, appErr.Code)
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not zstd at all")))
	assert.Error(t, err)

	plain, err := Encode(Document{}, nil)
	require.NoError(t, err)
	doc, err := Decode(bytes.NewReader(plain))
	require.NoError(t, err)
	assert.Empty(t, doc.Predictions)
}
