package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudformation"
)

// CollectCloudFormation enumerates CloudFormation stacks, excluding
// those in DELETE_COMPLETE (AWS retains a record of deleted stacks for
// a period; they are not live resources).
func CollectCloudFormation(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := cloudformation.New(sess)

	var out []ResourceRecord
	err := svc.DescribeStacksPagesWithContext(ctx, &cloudformation.DescribeStacksInput{}, func(page *cloudformation.DescribeStacksOutput, lastPage bool) bool {
		for _, s := range page.Stacks {
			status := aws.StringValue(s.StackStatus)
			if status == cloudformation.StackStatusDeleteComplete {
				continue
			}
			name := aws.StringValue(s.StackName)
			out = append(out, ResourceRecord{
				ResourceID: aws.StringValue(s.StackId),
				Service:    "CloudFormation",
				Name:       &name,
				State:      &status,
				Tags:       cfnTagsToMap(s.Tags),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("describe stacks: %w", err)
	}
	return out, nil
}

func cfnTagsToMap(tags []*cloudformation.Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		if t.Key == nil {
			continue
		}
		v := ""
		if t.Value != nil {
			v = *t.Value
		}
		m[*t.Key] = v
	}
	return m
}
