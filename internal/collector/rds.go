package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/rds"
)

// CollectRDS enumerates RDS DB instances.
func CollectRDS(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := rds.New(sess)

	var out []ResourceRecord
	err := svc.DescribeDBInstancesPagesWithContext(ctx, &rds.DescribeDBInstancesInput{}, func(page *rds.DescribeDBInstancesOutput, lastPage bool) bool {
		for _, d := range page.DBInstances {
			class := aws.StringValue(d.DBInstanceClass)
			status := aws.StringValue(d.DBInstanceStatus)
			name := aws.StringValue(d.DBInstanceIdentifier)
			var arn *string
			if d.DBInstanceArn != nil {
				arn = d.DBInstanceArn
			}
			out = append(out, ResourceRecord{
				ResourceID: name,
				ARN:        arn,
				Service:    "RDS",
				Type:       &class,
				Name:       &name,
				State:      &status,
				Metadata: map[string]interface{}{
					"engine":             aws.StringValue(d.Engine),
					"multi_az":           aws.BoolValue(d.MultiAZ),
					"allocated_storage":  aws.Int64Value(d.AllocatedStorage),
				},
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("describe db instances: %w", err)
	}
	return out, nil
}
