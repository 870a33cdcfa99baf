package treestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/cyphera/cyphera-airdrop/internal/logger"
)

// S3API is the subset of the S3 client the archive uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Archive stores documents in one bucket under an optional prefix.
type Archive struct {
	client S3API
	bucket string
	prefix string
	log    *logger.StructuredLogger
}

func NewArchive(client S3API, bucket, prefix string) *Archive {
	return &Archive{
		client: client,
		bucket: bucket,
		prefix: prefix,
		log:    logger.NewStructuredLogger(logger.ComponentTreeStore),
	}
}

// NewS3Client builds a path-style client so LocalStack endpoints work.
func NewS3Client(cfg aws.Config) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
}

// Put uploads doc and returns its s3:// URI, suitable as a campaign metadata
// pointer.
func (a *Archive) Put(ctx context.Context, doc *Document) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode tree document")
	}

	key := Key(a.prefix, doc.Root)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"merkle-root": doc.Root.Hex(),
			"claims":      fmt.Sprint(len(doc.Claims)),
		},
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to upload tree %s", doc.Root.Hex())
	}

	uri := fmt.Sprintf("s3://%s/%s", a.bucket, key)
	a.log.WithFields(map[string]interface{}{
		"root":   doc.Root.Hex(),
		"claims": len(doc.Claims),
		"uri":    uri,
	}).Info("Tree document archived")
	return uri, nil
}

// Get downloads the document for root and checks it still verifies.
func (a *Archive) Get(ctx context.Context, root common.Hash) (*Document, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(Key(a.prefix, root)),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch tree %s", root.Hex())
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read tree document")
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode tree document")
	}
	if doc.Root != root {
		return nil, fmt.Errorf("tree document root %s does not match %s", doc.Root.Hex(), root.Hex())
	}
	if err := doc.Verify(); err != nil {
		return nil, err
	}
	return &doc, nil
}
