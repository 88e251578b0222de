package queue

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
)

const (
	maxSQSBatch       = 10
	maxSQSWaitSeconds = 20
)

// SQSAPI is the subset of the SQS client used here.
type SQSAPI interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type SQSQueue struct {
	api      SQSAPI
	queueURL string
}

var (
	_ contractx.RequestQueue  = (*SQSQueue)(nil)
	_ contractx.QueueConsumer = (*SQSQueue)(nil)
)

func NewSQSQueue(api SQSAPI, queueURL string) (*SQSQueue, error) {
	if api == nil {
		return nil, errors.New("sqs client is required")
	}
	queueURL = strings.TrimRight(strings.TrimSpace(queueURL), "/")
	if queueURL == "" {
		return nil, fmt.Errorf("%w: sqs queue url is required", contractx.ErrNotConfigured)
	}
	if _, err := url.ParseRequestURI(queueURL); err != nil {
		return nil, fmt.Errorf("invalid sqs queue url: %w", err)
	}
	return &SQSQueue{api: api, queueURL: queueURL}, nil
}

func NewSQSQueueFromConfig(awsCfg aws.Config, queueURL string) (*SQSQueue, error) {
	return NewSQSQueue(sqs.NewFromConfig(awsCfg), queueURL)
}

func (q *SQSQueue) Send(ctx context.Context, body []byte) error {
	_, err := q.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("sqs send: %w", err)
	}
	return nil
}

func (q *SQSQueue) Receive(ctx context.Context, max int, wait time.Duration) ([]contractx.QueueMessage, error) {
	out, err := q.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: int32(clamp(max, 1, maxSQSBatch)),
		WaitTimeSeconds:     int32(clamp(int(wait/time.Second), 0, maxSQSWaitSeconds)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contractx.ErrQueueReceive, err)
	}

	msgs := make([]contractx.QueueMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, contractx.QueueMessage{
			ID:            aws.ToString(m.MessageId),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			Body:          aws.ToString(m.Body),
		})
	}
	return msgs, nil
}

func (q *SQSQueue) Delete(ctx context.Context, msg contractx.QueueMessage) error {
	if msg.ReceiptHandle == "" {
		return fmt.Errorf("%w: message %s has no receipt handle", contractx.ErrQueueDelete, msg.ID)
	}
	_, err := q.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(msg.ReceiptHandle),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", contractx.ErrQueueDelete, err)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
