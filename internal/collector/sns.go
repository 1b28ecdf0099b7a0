package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"
)

// CollectSNS enumerates SNS topics.
func CollectSNS(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := sns.New(sess)

	var out []ResourceRecord
	err := svc.ListTopicsPagesWithContext(ctx, &sns.ListTopicsInput{}, func(page *sns.ListTopicsOutput, lastPage bool) bool {
		for _, t := range page.Topics {
			arn := aws.StringValue(t.TopicArn)
			out = append(out, ResourceRecord{
				ResourceID: arn,
				ARN:        t.TopicArn,
				Service:    "SNS",
				Name:       stringPtrOrNil(topicNameFromArn(arn)),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return out, nil
}

func topicNameFromArn(arn string) string {
	for i := len(arn) - 1; i >= 0; i-- {
		if arn[i] == ':' {
			return arn[i+1:]
		}
	}
	return arn
}
