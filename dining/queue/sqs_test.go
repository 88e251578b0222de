package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
)

const testQueueURL = "https://sqs.us-east-1.amazonaws.com/123456789012/dining-requests"

type fakeSQS struct {
	sendErr    error
	receiveOut *sqs.ReceiveMessageOutput
	receiveErr error
	deleteErr  error

	sent     []*sqs.SendMessageInput
	received []*sqs.ReceiveMessageInput
	deleted  []*sqs.DeleteMessageInput
}

func (f *fakeSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.sent = append(f.sent, in)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.received = append(f.received, in)
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	if f.receiveOut == nil {
		return &sqs.ReceiveMessageOutput{}, nil
	}
	return f.receiveOut, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, in)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &sqs.DeleteMessageOutput{}, nil
}

func TestNewSQSQueueRequiresURL(t *testing.T) {
	t.Parallel()

	_, err := NewSQSQueue(&fakeSQS{}, "  ")
	if !errors.Is(err, contractx.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSQSQueueSend(t *testing.T) {
	t.Parallel()

	api := &fakeSQS{}
	q, err := NewSQSQueue(api, testQueueURL)
	if err != nil {
		t.Fatalf("NewSQSQueue() error = %v", err)
	}
	if err := q.Send(context.Background(), []byte(`{"Cuisine":"Italian"}`)); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(api.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(api.sent))
	}
	if aws.ToString(api.sent[0].QueueUrl) != testQueueURL {
		t.Fatalf("queue url = %s", aws.ToString(api.sent[0].QueueUrl))
	}
	if aws.ToString(api.sent[0].MessageBody) != `{"Cuisine":"Italian"}` {
		t.Fatalf("body = %s", aws.ToString(api.sent[0].MessageBody))
	}
}

func TestSQSQueueReceiveClampsAndMaps(t *testing.T) {
	t.Parallel()

	api := &fakeSQS{receiveOut: &sqs.ReceiveMessageOutput{
		Messages: []sqstypes.Message{
			{MessageId: aws.String("id-1"), ReceiptHandle: aws.String("rh-1"), Body: aws.String("b1")},
			{MessageId: aws.String("id-2"), ReceiptHandle: aws.String("rh-2"), Body: aws.String("b2")},
		},
	}}
	q, err := NewSQSQueue(api, testQueueURL)
	if err != nil {
		t.Fatalf("NewSQSQueue() error = %v", err)
	}

	msgs, err := q.Receive(context.Background(), 50, time.Minute)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if got := api.received[0].MaxNumberOfMessages; got != 10 {
		t.Fatalf("MaxNumberOfMessages = %d, want 10", got)
	}
	if got := api.received[0].WaitTimeSeconds; got != 20 {
		t.Fatalf("WaitTimeSeconds = %d, want 20", got)
	}
	if len(msgs) != 2 || msgs[1].ID != "id-2" || msgs[1].ReceiptHandle != "rh-2" || msgs[1].Body != "b2" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

func TestSQSQueueReceiveError(t *testing.T) {
	t.Parallel()

	q, err := NewSQSQueue(&fakeSQS{receiveErr: errors.New("throttled")}, testQueueURL)
	if err != nil {
		t.Fatalf("NewSQSQueue() error = %v", err)
	}
	_, err = q.Receive(context.Background(), 10, 5*time.Second)
	if !errors.Is(err, contractx.ErrQueueReceive) {
		t.Fatalf("expected ErrQueueReceive, got %v", err)
	}
}

func TestSQSQueueDeleteUsesReceiptHandle(t *testing.T) {
	t.Parallel()

	api := &fakeSQS{}
	q, err := NewSQSQueue(api, testQueueURL)
	if err != nil {
		t.Fatalf("NewSQSQueue() error = %v", err)
	}
	if err := q.Delete(context.Background(), contractx.QueueMessage{ID: "id-1", ReceiptHandle: "rh-1"}); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if aws.ToString(api.deleted[0].ReceiptHandle) != "rh-1" {
		t.Fatalf("receipt handle = %s", aws.ToString(api.deleted[0].ReceiptHandle))
	}

	if err := q.Delete(context.Background(), contractx.QueueMessage{ID: "id-2"}); !errors.Is(err, contractx.ErrQueueDelete) {
		t.Fatalf("expected ErrQueueDelete for missing receipt handle, got %v", err)
	}
}
