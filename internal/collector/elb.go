package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/elbv2"
)

// CollectELB enumerates ALB/NLB load balancers and, for each, its target
// groups (both emitted as `service=ELB` records with distinct `type`).
func CollectELB(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := elbv2.New(sess)

	var out []ResourceRecord
	err := svc.DescribeLoadBalancersPagesWithContext(ctx, &elbv2.DescribeLoadBalancersInput{}, func(page *elbv2.DescribeLoadBalancersOutput, lastPage bool) bool {
		for _, lb := range page.LoadBalancers {
			typ := aws.StringValue(lb.Type)
			name := aws.StringValue(lb.LoadBalancerName)
			state := aws.StringValue(lb.State.Code)
			arn := lb.LoadBalancerArn
			out = append(out, ResourceRecord{
				ResourceID: name,
				ARN:        arn,
				Service:    "ELB",
				Type:       &typ,
				Name:       &name,
				State:      &state,
				Metadata: map[string]interface{}{
					"scheme": aws.StringValue(lb.Scheme),
					"vpc_id": aws.StringValue(lb.VpcId),
				},
			})

			tgOut, err := svc.DescribeTargetGroupsWithContext(ctx, &elbv2.DescribeTargetGroupsInput{LoadBalancerArn: lb.LoadBalancerArn})
			if err != nil {
				continue
			}
			for _, tg := range tgOut.TargetGroups {
				tgType := "target-group"
				tgName := aws.StringValue(tg.TargetGroupName)
				out = append(out, ResourceRecord{
					ResourceID: tgName,
					ARN:        tg.TargetGroupArn,
					Service:    "ELB",
					Type:       &tgType,
					Name:       &tgName,
					Metadata: map[string]interface{}{
						"load_balancer": name,
						"port":          aws.Int64Value(tg.Port),
					},
				})
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("describe load balancers: %w", err)
	}
	return out, nil
}
