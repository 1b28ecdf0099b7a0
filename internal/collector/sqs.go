package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"

	"github.com/finopsbridge/engine/internal/logging"
)

// CollectSQS enumerates SQS queues. Per-queue attribute fetch failures
// fall back to a bare record (§4.4).
func CollectSQS(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := sqs.New(sess)
	logger := logging.For("resource-sync")

	urlsOut, err := svc.ListQueuesWithContext(ctx, &sqs.ListQueuesInput{})
	if err != nil {
		return nil, fmt.Errorf("list queues: %w", err)
	}

	var out []ResourceRecord
	for _, url := range urlsOut.QueueUrls {
		queueURL := aws.StringValue(url)
		name := queueNameFromURL(queueURL)
		rec := ResourceRecord{ResourceID: queueURL, Service: "SQS", Name: &name, Metadata: map[string]interface{}{}}

		attrs, err := svc.GetQueueAttributesWithContext(ctx, &sqs.GetQueueAttributesInput{
			QueueUrl:       url,
			AttributeNames: aws.StringSlice([]string{"All"}),
		})
		if err != nil {
			logger.WithError(err).WithField("queue", name).Warn("failed to fetch queue attributes")
			out = append(out, rec)
			continue
		}
		if arn, ok := attrs.Attributes["QueueArn"]; ok {
			rec.ARN = arn
		}
		if v, ok := attrs.Attributes["ApproximateNumberOfMessages"]; ok {
			rec.Metadata["approximate_messages"] = aws.StringValue(v)
		}
		out = append(out, rec)
	}
	return out, nil
}

func queueNameFromURL(url string) string {
	for i := len(url) - 1; i >= 0; i-- {
		if url[i] == '/' {
			return url[i+1:]
		}
	}
	return url
}
