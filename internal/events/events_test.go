package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cyphera/cyphera-airdrop/internal/airdrop"
	"github.com/cyphera/cyphera-airdrop/internal/chain"
	"github.com/cyphera/cyphera-airdrop/internal/events"
	"github.com/cyphera/cyphera-airdrop/internal/factory"
	"github.com/cyphera/cyphera-airdrop/internal/mocks"
	"github.com/cyphera/cyphera-airdrop/internal/token"
	"github.com/cyphera/cyphera-airdrop/internal/vesting"
)

var (
	tokenAddr = common.HexToAddress("0x0000000000000000000000000000000000007070")
	alice     = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob       = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func transferLogs(n int) []chain.Log {
	logs := make([]chain.Log, n)
	for i := range logs {
		logs[i] = chain.Log{
			ID:        uuid.New(),
			Index:     uint64(i),
			Address:   tokenAddr,
			Timestamp: 1_700_000_000,
			Event:     token.Transfer{From: alice, To: bob, Value: big.NewInt(int64(i + 1))},
		}
	}
	return logs
}

func records(t *testing.T, n int) []events.Record {
	t.Helper()
	rs, err := events.NewRecords(31337, transferLogs(n))
	require.NoError(t, err)
	return rs
}

var fastRetry = events.RetryConfig{
	MaxRetries:      2,
	InitialInterval: time.Millisecond,
	MaxInterval:     time.Millisecond,
	MaxElapsedTime:  time.Second,
}

func TestNewRecord(t *testing.T) {
	l := transferLogs(1)[0]
	r, err := events.NewRecord(31337, l)
	require.NoError(t, err)

	assert.Equal(t, l.ID, r.ID)
	assert.Equal(t, int64(31337), r.ChainID)
	assert.Equal(t, "Transfer", r.Name)
	assert.Equal(t, tokenAddr, r.Contract)
	assert.JSONEq(t, `{"from":"`+strings.ToLower(alice.Hex())+`","to":"`+strings.ToLower(bob.Hex())+`","value":"1"}`, string(r.Payload))

	_, err = events.NewRecord(1, chain.Log{})
	assert.Error(t, err)
}

func TestNewRecord_AmountsAreDecimalStrings(t *testing.T) {
	// 10^24 base units, far beyond the exact integer range of a float64
	huge, ok := new(big.Int).SetString("1000000000000000000000001", 10)
	require.True(t, ok)

	cases := []struct {
		name  string
		event chain.Event
		field string
	}{
		{"Transfer", token.Transfer{From: alice, To: bob, Value: huge}, "value"},
		{"Approval", token.Approval{Owner: alice, Spender: bob, Value: huge}, "value"},
		{"TokensRedeemed", airdrop.TokensRedeemed{Account: alice, Amount: huge}, "amount"},
		{"CampaignCreated", factory.CampaignCreated{Campaign: bob, Token: tokenAddr, TotalAmount: huge}, "totalAmount"},
		{"TokensWithdrawn", factory.TokensWithdrawn{Owner: alice, Amount: huge}, "amount"},
		{"TokenLockCreated", vesting.TokenLockCreated{TokenLock: bob, Beneficiary: alice, ManagedAmount: huge}, "managedAmount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := events.NewRecord(31337, chain.Log{ID: uuid.New(), Address: tokenAddr, Event: tc.event})
			require.NoError(t, err)

			var fields map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(r.Payload, &fields))
			assert.Equal(t, `"1000000000000000000000001"`, string(fields[tc.field]))
		})
	}

	r, err := events.NewRecord(31337, chain.Log{ID: uuid.New(), Address: tokenAddr, Event: token.Transfer{From: alice, To: bob}})
	require.NoError(t, err)
	assert.Contains(t, string(r.Payload), `"value":"0"`)
}

func TestQueryMatches(t *testing.T) {
	r := records(t, 3)[1]
	other := bob
	one, two := uint64(1), uint64(0)

	assert.True(t, events.Query{}.Matches(r))
	assert.True(t, events.Query{Contract: &tokenAddr, Name: "Transfer", AfterIndex: &two}.Matches(r))
	assert.False(t, events.Query{Contract: &other}.Matches(r))
	assert.False(t, events.Query{Name: "Approval"}.Matches(r))
	assert.False(t, events.Query{AfterIndex: &one}.Matches(r))
}

func TestDecodeRecord(t *testing.T) {
	sqsAPI := mocks.NewMockSQSAPIForTest(t)
	var body string
	sqsAPI.EXPECT().
		SendMessageBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *sqs.SendMessageBatchInput, _ ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error) {
			body = aws.ToString(in.Entries[0].MessageBody)
			return &sqs.SendMessageBatchOutput{}, nil
		})

	want := records(t, 1)
	require.NoError(t, events.NewSQSPublisher(sqsAPI, "queue", 10, fastRetry).Publish(context.Background(), want))

	got, err := events.DecodeRecord(body)
	require.NoError(t, err)
	assert.Equal(t, want[0], got)

	_, err = events.DecodeRecord("not json")
	assert.Error(t, err)
	_, err = events.DecodeRecord(`{"id":"` + uuid.NewString() + `"}`)
	assert.Error(t, err)
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := events.NewLogSink(zap.New(core))

	require.NoError(t, sink.Publish(context.Background(), transferLogs(2)))
	require.Equal(t, 2, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "Transfer", fields["event_name"])
	assert.Equal(t, tokenAddr.Hex(), fields["contract"])
}

func TestSQSPublisher_Batches(t *testing.T) {
	sqsAPI := mocks.NewMockSQSAPIForTest(t)
	var sizes []int

	sqsAPI.EXPECT().
		SendMessageBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *sqs.SendMessageBatchInput, _ ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error) {
			assert.Equal(t, "https://sqs.local/events", aws.ToString(in.QueueUrl))
			attr := in.Entries[0].MessageAttributes["EventName"]
			assert.Equal(t, "Transfer", aws.ToString(attr.StringValue))
			sizes = append(sizes, len(in.Entries))
			return &sqs.SendMessageBatchOutput{}, nil
		}).
		Times(2)

	p := events.NewSQSPublisher(sqsAPI, "https://sqs.local/events", 0, fastRetry)
	require.NoError(t, p.Publish(context.Background(), records(t, 12)))
	assert.Equal(t, []int{10, 2}, sizes)
}

func TestSQSPublisher_RetriesFailedEntries(t *testing.T) {
	sqsAPI := mocks.NewMockSQSAPIForTest(t)

	gomock.InOrder(
		sqsAPI.EXPECT().
			SendMessageBatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in *sqs.SendMessageBatchInput, _ ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error) {
				require.Len(t, in.Entries, 3)
				return &sqs.SendMessageBatchOutput{
					Failed: []types.BatchResultErrorEntry{{Id: aws.String("1"), Code: aws.String("InternalError")}},
				}, nil
			}),
		sqsAPI.EXPECT().
			SendMessageBatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in *sqs.SendMessageBatchInput, _ ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error) {
				require.Len(t, in.Entries, 1)
				assert.Equal(t, strconv.Itoa(1), aws.ToString(in.Entries[0].Id))
				return &sqs.SendMessageBatchOutput{}, nil
			}),
	)

	p := events.NewSQSPublisher(sqsAPI, "queue", 10, fastRetry)
	require.NoError(t, p.Publish(context.Background(), records(t, 3)))
}

func TestSQSPublisher_Failures(t *testing.T) {
	t.Run("sender fault is not retried", func(t *testing.T) {
		sqsAPI := mocks.NewMockSQSAPIForTest(t)
		sqsAPI.EXPECT().
			SendMessageBatch(gomock.Any(), gomock.Any()).
			Return(&sqs.SendMessageBatchOutput{
				Failed: []types.BatchResultErrorEntry{{Id: aws.String("0"), SenderFault: true, Message: aws.String("too big")}},
			}, nil).
			Times(1)

		err := events.NewSQSPublisher(sqsAPI, "queue", 10, fastRetry).Publish(context.Background(), records(t, 1))
		assert.ErrorContains(t, err, "too big")
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		sqsAPI := mocks.NewMockSQSAPIForTest(t)
		sqsAPI.EXPECT().
			SendMessageBatch(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("throttled")).
			Times(int(fastRetry.MaxRetries) + 1)

		err := events.NewSQSPublisher(sqsAPI, "queue", 10, fastRetry).Publish(context.Background(), records(t, 1))
		assert.ErrorContains(t, err, "throttled")
	})
}

func TestDispatcher_DeliversToEveryPublisher(t *testing.T) {
	first := mocks.NewMockPublisherForTest(t)
	second := mocks.NewMockPublisherForTest(t)
	logs := transferLogs(2)
	want, err := events.NewRecords(31337, logs)
	require.NoError(t, err)

	first.EXPECT().Publish(gomock.Any(), want).Return(nil)
	second.EXPECT().Publish(gomock.Any(), want).Return(nil)

	d := events.NewDispatcher(31337, 2, 4, first, second)
	d.Start()
	require.NoError(t, d.Publish(context.Background(), logs))
	d.Stop()

	assert.Zero(t, d.Pending())
	assert.ErrorIs(t, d.Publish(context.Background(), logs), events.ErrDispatcherStopped)
}

func TestDispatcher_ParksAndRetriesFailedDelivery(t *testing.T) {
	healthy := mocks.NewMockPublisherForTest(t)
	flaky := mocks.NewMockPublisherForTest(t)

	healthy.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	gomock.InOrder(
		flaky.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("connection refused")),
		flaky.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil),
	)

	d := events.NewDispatcher(31337, 1, 1, healthy, flaky)
	d.Start()
	require.NoError(t, d.Publish(context.Background(), transferLogs(1)))
	d.Stop()

	assert.Zero(t, d.Pending())
}

func TestDispatcher_DropsOldestParkedBatchAtCapacity(t *testing.T) {
	down := mocks.NewMockPublisherForTest(t)
	var mu sync.Mutex
	var seen []uint64
	down.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rs []events.Record) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, rs[0].Index)
			return errors.New("connection refused")
		}).
		Times(7)

	d := events.NewDispatcher(31337, 1, 8, down)
	d.SetMaxPending(2)
	for _, l := range transferLogs(5) {
		require.NoError(t, d.Publish(context.Background(), []chain.Log{l}))
	}
	d.Start()
	d.Stop()

	// five first attempts, then one retry of each batch still parked
	assert.Equal(t, []uint64{0, 1, 2, 3, 4, 3, 4}, seen)
	assert.Equal(t, 2, d.Pending())
}

func TestDispatcher_AsChainSink(t *testing.T) {
	pub := mocks.NewMockPublisherForTest(t)
	pub.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rs []events.Record) error {
			if assert.Len(t, rs, 1) {
				assert.Equal(t, "Pinged", rs[0].Name)
			}
			return nil
		})

	d := events.NewDispatcher(1, 1, 1, pub)
	d.Start()

	c := chain.New(big.NewInt(1), chain.NewManualClock(10), chain.WithSink(d))
	_, err := c.Execute(context.Background(), alice, func(call *chain.Call) error {
		call.Emit(tokenAddr, pinged{})
		return nil
	})
	require.NoError(t, err)
	d.Stop()
}

func TestEmailNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("ignores unselected events", func(t *testing.T) {
		emails := mocks.NewMockEmailAPIForTest(t)
		n := events.NewEmailNotifier(emails, "airdrop@example.com", []string{"ops@example.com"})
		require.NoError(t, n.Publish(ctx, records(t, 3)))
	})

	t.Run("mails selected events", func(t *testing.T) {
		emails := mocks.NewMockEmailAPIForTest(t)
		rs := records(t, 3)
		rs[1].Name = "CampaignCreated"
		rs[2].Name = "TokensWithdrawn"

		emails.EXPECT().
			Send(gomock.Any()).
			DoAndReturn(func(req *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
				assert.Equal(t, "[airdrop] CampaignCreated and 1 more", req.Subject)
				assert.Equal(t, []string{"ops@example.com"}, req.To)
				assert.Contains(t, req.Html, "TokensWithdrawn")
				assert.NotContains(t, req.Html, "<td>Transfer</td>")
				assert.Equal(t, rs[1].ID.String(), req.Headers["X-Entity-Ref-ID"])
				return &resend.SendEmailResponse{Id: "email-1"}, nil
			})

		n := events.NewEmailNotifier(emails, "airdrop@example.com", []string{"ops@example.com"})
		require.NoError(t, n.Publish(ctx, rs))
	})

	t.Run("custom selection and send failure", func(t *testing.T) {
		emails := mocks.NewMockEmailAPIForTest(t)
		emails.EXPECT().Send(gomock.Any()).Return(nil, errors.New("rate limited"))

		n := events.NewEmailNotifier(emails, "airdrop@example.com", []string{"ops@example.com"}, "Transfer")
		assert.ErrorContains(t, n.Publish(ctx, records(t, 1)), "rate limited")
	})
}

func sqsMessages(t *testing.T, rs []events.Record) []lambdaevents.SQSMessage {
	t.Helper()
	sqsAPI := mocks.NewMockSQSAPIForTest(t)
	var msgs []lambdaevents.SQSMessage
	sqsAPI.EXPECT().
		SendMessageBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *sqs.SendMessageBatchInput, _ ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error) {
			for _, e := range in.Entries {
				msgs = append(msgs, lambdaevents.SQSMessage{MessageId: "msg-" + aws.ToString(e.Id), Body: aws.ToString(e.MessageBody)})
			}
			return &sqs.SendMessageBatchOutput{}, nil
		})
	require.NoError(t, events.NewSQSPublisher(sqsAPI, "queue", 10, fastRetry).Publish(context.Background(), rs))
	return msgs
}

func TestIndexer_HandleSQSEvent(t *testing.T) {
	ctx := context.Background()
	rs := records(t, 2)
	msgs := sqsMessages(t, rs)
	poison := lambdaevents.SQSMessage{MessageId: "poison", Body: "{"}

	t.Run("stores decoded records and reports poison messages", func(t *testing.T) {
		store := mocks.NewMockPublisherForTest(t)
		store.EXPECT().Publish(ctx, rs).Return(nil)

		resp, err := events.NewIndexer(store).HandleSQSEvent(ctx, lambdaevents.SQSEvent{Records: append(msgs, poison)})
		require.NoError(t, err)
		require.Len(t, resp.BatchItemFailures, 1)
		assert.Equal(t, "poison", resp.BatchItemFailures[0].ItemIdentifier)
	})

	t.Run("store failure fails every decoded message", func(t *testing.T) {
		store := mocks.NewMockPublisherForTest(t)
		store.EXPECT().Publish(ctx, gomock.Any()).Return(errors.New("connection refused"))

		resp, err := events.NewIndexer(store).HandleSQSEvent(ctx, lambdaevents.SQSEvent{Records: msgs})
		require.NoError(t, err)
		assert.Len(t, resp.BatchItemFailures, 2)
	})

	t.Run("nothing decodable", func(t *testing.T) {
		store := mocks.NewMockPublisherForTest(t)
		resp, err := events.NewIndexer(store).HandleSQSEvent(ctx, lambdaevents.SQSEvent{Records: []lambdaevents.SQSMessage{poison}})
		require.NoError(t, err)
		assert.Len(t, resp.BatchItemFailures, 1)
	})
}

type pinged struct{}

func (pinged) EventName() string { return "Pinged" }

func TestRedisStreamPublisher(t *testing.T) {
	ctx := context.Background()
	_, err := events.NewRedisClient(ctx, "not-a-url")
	assert.Error(t, err)

	url := os.Getenv("EVENTS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("EVENTS_TEST_REDIS_URL not set")
	}
	client, err := events.NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	stream := "airdrop-test-" + uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), stream) })

	rs := records(t, 3)
	p := events.NewRedisStreamPublisher(client, stream, 0)
	require.NoError(t, p.Publish(ctx, rs))
	require.NoError(t, p.Publish(ctx, nil))

	entries, err := client.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, rs[0].ID.String(), entries[0].Values["id"])
	assert.Equal(t, "Transfer", entries[2].Values["name"])
	assert.Equal(t, "2", entries[2].Values["index"])
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("EVENTS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("EVENTS_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := events.OpenPool(ctx, dsn, 2)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, events.Migrate(ctx, pool))

	chainID := time.Now().UnixNano()
	rs, err := events.NewRecords(chainID, transferLogs(3))
	require.NoError(t, err)

	store := events.NewPostgresStore(pool)
	require.NoError(t, store.Publish(ctx, rs))
	require.NoError(t, store.Publish(ctx, rs), "duplicates are ignored")

	got, err := store.List(ctx, events.Query{Contract: &tokenAddr, Name: "Transfer", Limit: 1000})
	require.NoError(t, err)

	var mine []events.Record
	for _, r := range got {
		if r.ChainID == chainID {
			mine = append(mine, r)
		}
	}
	require.Len(t, mine, 3)
	assert.Equal(t, rs[0].ID, mine[0].ID)
	assert.JSONEq(t, string(rs[2].Payload), string(mine[2].Payload))
}
