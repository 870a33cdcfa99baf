package treestore_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cyphera/cyphera-airdrop/internal/logger"
	"github.com/cyphera/cyphera-airdrop/internal/merkle"
	"github.com/cyphera/cyphera-airdrop/internal/mocks"
	"github.com/cyphera/cyphera-airdrop/internal/testutil"
	"github.com/cyphera/cyphera-airdrop/internal/treestore"
)

func init() {
	logger.InitLogger("test")
}

func entitlements(t *testing.T) []merkle.Entitlement {
	t.Helper()
	recipients := testutil.Recipients(t)
	out := make([]merkle.Entitlement, len(recipients))
	for i, r := range recipients {
		out[i] = merkle.Entitlement{Account: r.Address, Amount: r.Amount}
	}
	return out
}

func TestBuildDocument(t *testing.T) {
	es := entitlements(t)
	doc, err := treestore.BuildDocument(es)
	require.NoError(t, err)
	require.Len(t, doc.Claims, len(es))
	require.NoError(t, doc.Verify())

	total := new(big.Int)
	for i, e := range es {
		total.Add(total, e.Amount)
		assert.Equal(t, e.Account, doc.Claims[i].Account)
		assert.Equal(t, e.Leaf(), doc.Claims[i].Leaf)
	}
	assert.Equal(t, total.String(), doc.Total)

	claims := doc.ClaimsFor(es[1].Account)
	require.Len(t, claims, 1)
	assert.Equal(t, es[1].Amount.String(), claims[0].Amount)
	assert.Empty(t, doc.ClaimsFor(testutil.Outsider))

	t.Run("tampered amount fails verification", func(t *testing.T) {
		doc.Claims[0].Amount = "1"
		assert.ErrorIs(t, doc.Verify(), merkle.ErrInvalidMerkleProof)
		doc.Claims[0].Amount = "x"
		assert.Error(t, doc.Verify())
	})

	_, err = treestore.BuildDocument(nil)
	assert.ErrorIs(t, err, merkle.ErrEmptyTree)
}

func TestKey(t *testing.T) {
	root := common.HexToHash("0x01")
	assert.Equal(t, root.Hex()+".json", treestore.Key("", root))
	assert.Equal(t, "trees/"+root.Hex()+".json", treestore.Key("trees", root))
	assert.Equal(t, "trees/"+root.Hex()+".json", treestore.Key("trees/", root))
}

func TestArchive_PutAndGet(t *testing.T) {
	ctx := context.Background()
	doc, err := treestore.BuildDocument(entitlements(t))
	require.NoError(t, err)

	client := mocks.NewMockS3APIForTest(t)
	archive := treestore.NewArchive(client, "airdrop-trees", "trees")
	wantKey := treestore.Key("trees", doc.Root)

	var stored []byte
	client.EXPECT().
		PutObject(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			assert.Equal(t, "airdrop-trees", aws.ToString(in.Bucket))
			assert.Equal(t, wantKey, aws.ToString(in.Key))
			assert.Equal(t, doc.Root.Hex(), in.Metadata["merkle-root"])
			var err error
			stored, err = io.ReadAll(in.Body)
			return &s3.PutObjectOutput{}, err
		})

	uri, err := archive.Put(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, "s3://airdrop-trees/"+wantKey, uri)

	client.EXPECT().
		GetObject(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			assert.Equal(t, wantKey, aws.ToString(in.Key))
			return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(stored))}, nil
		})

	got, err := archive.Get(ctx, doc.Root)
	require.NoError(t, err)
	assert.Equal(t, doc.Root, got.Root)
	assert.Equal(t, doc.Claims, got.Claims)
}

func TestArchive_GetRejectsBadDocuments(t *testing.T) {
	ctx := context.Background()
	doc, err := treestore.BuildDocument(entitlements(t))
	require.NoError(t, err)

	serve := func(client *mocks.MockS3API, body []byte, err error) {
		client.EXPECT().GetObject(ctx, gomock.Any()).DoAndReturn(
			func(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				if err != nil {
					return nil, err
				}
				return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
			})
	}

	t.Run("missing object", func(t *testing.T) {
		client := mocks.NewMockS3APIForTest(t)
		serve(client, nil, errors.New("NoSuchKey"))
		_, err := treestore.NewArchive(client, "b", "").Get(ctx, doc.Root)
		assert.ErrorContains(t, err, "NoSuchKey")
	})

	t.Run("not json", func(t *testing.T) {
		client := mocks.NewMockS3APIForTest(t)
		serve(client, []byte("{"), nil)
		_, err := treestore.NewArchive(client, "b", "").Get(ctx, doc.Root)
		assert.Error(t, err)
	})

	t.Run("root mismatch", func(t *testing.T) {
		client := mocks.NewMockS3APIForTest(t)
		body, err := json.Marshal(doc)
		require.NoError(t, err)
		serve(client, body, nil)
		_, err = treestore.NewArchive(client, "b", "").Get(ctx, common.HexToHash("0xbeef"))
		assert.ErrorContains(t, err, "does not match")
	})

	t.Run("tampered claim", func(t *testing.T) {
		client := mocks.NewMockS3APIForTest(t)
		tampered := *doc
		tampered.Claims = append([]treestore.Claim(nil), doc.Claims...)
		tampered.Claims[0].Amount = "1"
		body, err := json.Marshal(&tampered)
		require.NoError(t, err)
		serve(client, body, nil)
		_, err = treestore.NewArchive(client, "b", "").Get(ctx, doc.Root)
		assert.ErrorIs(t, err, merkle.ErrInvalidMerkleProof)
	})
}
