// Package archive stores a compressed copy of every prediction run in S3 so
// that runs can be replayed or audited after the database rows are replaced.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/zstd"

	"trailcast/internal/types"
)

const (
	contentType     = "application/json"
	contentEncoding = "zstd"
)

// s3API is the subset of the S3 client used by the archiver.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Document is the archived form of one run.
type Document struct {
	Run         types.PredictionRun `json:"run"`
	Predictions []types.Prediction  `json:"predictions"`
}

// S3Archiver writes zstd-compressed run documents to a bucket.
type S3Archiver struct {
	client s3API
	bucket string
	logger *slog.Logger

	encoderPool sync.Pool
}

// NewS3Archiver creates an archiver for bucket.
func NewS3Archiver(client s3API, bucket string, logger *slog.Logger) *S3Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Archiver{
		client: client,
		bucket: bucket,
		logger: logger,
		encoderPool: sync.Pool{
			New: func() any {
				e, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
				if err != nil {
					panic(fmt.Sprintf("failed to create zstd encoder: %v", err))
				}
				return e
			},
		},
	}
}

// Key returns the object key for a run: predictions/YYYY/MM/DD/<run_id>.json.zst,
// dated by the run's prediction time in UTC.
func Key(run types.PredictionRun) string {
	return fmt.Sprintf("predictions/%s/%s.json.zst", run.PredictedAt.UTC().Format("2006/01/02"), run.ID)
}

// Put archives the run and returns the object key written.
func (a *S3Archiver) Put(ctx context.Context, run types.PredictionRun, predictions []types.Prediction) (string, error) {
	enc := a.encoderPool.Get().(*zstd.Encoder)
	body, err := Encode(Document{Run: run, Predictions: predictions}, enc)
	a.encoderPool.Put(enc)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalArchive, "failed to encode run archive", err)
	}

	key := Key(run)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(a.bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(body),
		ContentType:     aws.String(contentType),
		ContentEncoding: aws.String(contentEncoding),
		Metadata: map[string]string{
			"run-id":      run.ID,
			"trail-count": fmt.Sprint(run.TrailCount),
		},
	})
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalArchive,
			fmt.Sprintf("failed to upload %s to bucket %s", key, a.bucket), err)
	}

	a.logger.InfoContext(ctx, "archived prediction run",
		"run_id", run.ID, "bucket", a.bucket, "key", key, "bytes", len(body))
	return key, nil
}

// Encode serialises doc as JSON and compresses it with enc. A nil enc uses
// a one-off encoder.
func Encode(doc Document, enc *zstd.Encoder) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("archive: marshal document: %w", err)
	}
	if enc == nil {
		enc, err = zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("archive: create encoder: %w", err)
		}
		defer enc.Close()
	}
	return enc.EncodeAll(raw, make([]byte, 0, len(raw)/4)), nil
}

// Decode reads a document written by Put.
func Decode(r io.Reader) (*Document, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("archive: create decoder: %w", err)
	}
	defer dec.Close()

	var doc Document
	if err := json.NewDecoder(dec).Decode(&doc); err != nil {
		return nil, fmt.Errorf("archive: decode document: %w", err)
	}
	return &doc, nil
}
