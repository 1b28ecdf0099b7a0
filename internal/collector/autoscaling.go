package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/autoscaling"
)

// CollectAutoScaling enumerates Auto Scaling groups.
func CollectAutoScaling(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := autoscaling.New(sess)

	var out []ResourceRecord
	err := svc.DescribeAutoScalingGroupsPagesWithContext(ctx, &autoscaling.DescribeAutoScalingGroupsInput{}, func(page *autoscaling.DescribeAutoScalingGroupsOutput, lastPage bool) bool {
		for _, g := range page.AutoScalingGroups {
			name := aws.StringValue(g.AutoScalingGroupName)
			out = append(out, ResourceRecord{
				ResourceID: name,
				ARN:        g.AutoScalingGroupARN,
				Service:    "AutoScaling",
				Name:       &name,
				Metadata: map[string]interface{}{
					"desired_capacity": aws.Int64Value(g.DesiredCapacity),
					"min_size":         aws.Int64Value(g.MinSize),
					"max_size":         aws.Int64Value(g.MaxSize),
					"instance_count":   len(g.Instances),
				},
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("describe autoscaling groups: %w", err)
	}
	return out, nil
}
