// Package s3store is a blob store over S3 (or an S3-compatible endpoint
// such as MinIO), erasure-coding each upload across a configurable number
// of data and parity shards before it leaves the process: up to
// ParityShards missing or unreadable shard objects in the bucket do not
// lose the file. Shards that are present but corrupted are not detected.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/reedsolomon"

	"github.com/mauritsl/restapir"
)

// Config configures the S3 (or S3-compatible) endpoint and the erasure
// coding shape.
type Config struct {
	HostEndpointURL string
	Region          string
	Username        string
	Password        string
	Bucket          string
	// DataShards and ParityShards default to 4 and 2 when both are zero.
	DataShards   int
	ParityShards int
}

// Store is an erasure-coded blob store over a single S3 bucket.
type Store struct {
	client       *s3.Client
	bucket       string
	dataShards   int
	parityShards int
	encoder      reedsolomon.Encoder
}

// Connect builds a Store from Config, matching the teacher's minio/S3
// client construction (static credentials, explicit endpoint override).
func Connect(config Config) (*Store, error) {
	dataShards, parityShards := config.DataShards, config.ParityShards
	if dataShards == 0 && parityShards == 0 {
		dataShards, parityShards = 4, 2
	}
	enc, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, restapir.Newf(restapir.Unknown, "s3store: building erasure encoder: %v", err)
	}
	client := s3.NewFromConfig(aws.Config{Region: config.Region}, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(config.HostEndpointURL)
		o.Credentials = credentials.NewStaticCredentialsProvider(config.Username, config.Password, "")
		o.UsePathStyle = true
	})
	return &Store{
		client:       client,
		bucket:       config.Bucket,
		dataShards:   dataShards,
		parityShards: parityShards,
		encoder:      enc,
	}, nil
}

// Put erasure-codes data into DataShards+ParityShards objects named
// "<key>/shard-N" plus a "<key>/meta" object recording the original size,
// and uploads all of them.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	shards, err := s.encoder.Split(data)
	if err != nil {
		return restapir.Newf(restapir.Unknown, "s3store: splitting %q: %v", key, err)
	}
	if err := s.encoder.Encode(shards); err != nil {
		return restapir.Newf(restapir.Unknown, "s3store: encoding parity for %q: %v", key, err)
	}

	for i, shard := range shards {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(shardKey(key, i)),
			Body:   bytes.NewReader(shard),
		})
		if err != nil {
			return restapir.Newf(restapir.Unknown, "s3store: uploading shard %d of %q: %v", i, key, err)
		}
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(metaKey(key)),
		Body:   bytes.NewReader([]byte(fmt.Sprintf("%d", len(data)))),
	})
	if err != nil {
		return restapir.Newf(restapir.Unknown, "s3store: uploading metadata for %q: %v", key, err)
	}
	return nil
}

// Get downloads key's shards, tolerating up to ParityShards missing or
// unreadable ones, reconstructs the original byte stream and returns it.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	total := s.dataShards + s.parityShards
	shards := make([][]byte, total)

	for i := 0; i < total; i++ {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(shardKey(key, i)),
		})
		if err != nil {
			continue
		}
		data, err := io.ReadAll(out.Body)
		out.Body.Close()
		if err != nil {
			continue
		}
		shards[i] = data
	}

	if err := s.encoder.Reconstruct(shards); err != nil {
		return nil, restapir.Newf(restapir.Unknown, "s3store: reconstructing %q: %v", key, err)
	}

	size, err := s.readSize(ctx, key)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.encoder.Join(&buf, shards, size); err != nil {
		return nil, restapir.Newf(restapir.Unknown, "s3store: joining shards for %q: %v", key, err)
	}
	return buf.Bytes(), nil
}

func (s *Store) readSize(ctx context.Context, key string) (int, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(metaKey(key)),
	})
	if err != nil {
		return 0, restapir.Newf(restapir.Unknown, "s3store: reading metadata for %q: %v", key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return 0, restapir.Newf(restapir.Unknown, "s3store: reading metadata for %q: %v", key, err)
	}
	var size int
	if _, err := fmt.Sscanf(string(data), "%d", &size); err != nil {
		return 0, restapir.Newf(restapir.Unknown, "s3store: parsing metadata for %q: %v", key, err)
	}
	return size, nil
}

// Delete removes key's metadata and shard objects.
func (s *Store) Delete(ctx context.Context, key string) error {
	total := s.dataShards + s.parityShards
	for i := 0; i < total; i++ {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(shardKey(key, i)),
		})
		if err != nil {
			return restapir.Newf(restapir.Unknown, "s3store: deleting shard %d of %q: %v", i, key, err)
		}
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(metaKey(key)),
	})
	if err != nil {
		return restapir.Newf(restapir.Unknown, "s3store: deleting metadata for %q: %v", key, err)
	}
	return nil
}

func shardKey(key string, i int) string {
	return fmt.Sprintf("%s/shard-%d", key, i)
}

func metaKey(key string) string {
	return fmt.Sprintf("%s/meta", key)
}
