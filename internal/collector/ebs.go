package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
)

// CollectEBS enumerates EBS volumes.
func CollectEBS(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := ec2.New(sess)

	var out []ResourceRecord
	err := svc.DescribeVolumesPagesWithContext(ctx, &ec2.DescribeVolumesInput{}, func(page *ec2.DescribeVolumesOutput, lastPage bool) bool {
		for _, v := range page.Volumes {
			volType := aws.StringValue(v.VolumeType)
			state := aws.StringValue(v.State)
			out = append(out, ResourceRecord{
				ResourceID: aws.StringValue(v.VolumeId),
				Service:    "EBS",
				Type:       &volType,
				Name:       stringPtrOrNil(tagValue(v.Tags, "Name")),
				Tags:       tagsToMap(v.Tags),
				State:      &state,
				Metadata: map[string]interface{}{
					"size_gib":    aws.Int64Value(v.Size),
					"attached":    len(v.Attachments) > 0,
					"create_time": v.CreateTime,
				},
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("describe volumes: %w", err)
	}
	return out, nil
}
