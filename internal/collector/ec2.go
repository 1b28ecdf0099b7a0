package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
)

// CollectEC2 enumerates EC2 instances, emitting one ResourceRecord per
// instance regardless of state.
func CollectEC2(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := ec2.New(sess)

	var out []ResourceRecord
	err := svc.DescribeInstancesPagesWithContext(ctx, &ec2.DescribeInstancesInput{}, func(page *ec2.DescribeInstancesOutput, lastPage bool) bool {
		for _, res := range page.Reservations {
			for _, inst := range res.Instances {
				state := aws.StringValue(inst.State.Name)
				instanceType := aws.StringValue(inst.InstanceType)
				out = append(out, ResourceRecord{
					ResourceID: aws.StringValue(inst.InstanceId),
					Service:    "EC2",
					Type:       &instanceType,
					Name:       stringPtrOrNil(tagValue(inst.Tags, "Name")),
					Tags:       tagsToMap(inst.Tags),
					State:      &state,
					Metadata: map[string]interface{}{
						"availability_zone": aws.StringValue(inst.Placement.AvailabilityZone),
						"launch_time":       inst.LaunchTime,
						"vpc_id":            aws.StringValue(inst.VpcId),
					},
				})
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("describe instances: %w", err)
	}
	return out, nil
}
