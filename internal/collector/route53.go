package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/route53"
)

// CollectRoute53 enumerates Route53 hosted zones.
func CollectRoute53(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := route53.New(sess)

	var out []ResourceRecord
	err := svc.ListHostedZonesPagesWithContext(ctx, &route53.ListHostedZonesInput{}, func(page *route53.ListHostedZonesOutput, lastPage bool) bool {
		for _, z := range page.HostedZones {
			name := aws.StringValue(z.Name)
			out = append(out, ResourceRecord{
				ResourceID: aws.StringValue(z.Id),
				Service:    "Route53",
				Name:       &name,
				Metadata: map[string]interface{}{
					"record_set_count": aws.Int64Value(z.ResourceRecordSetCount),
					"private_zone":     z.Config != nil && aws.BoolValue(z.Config.PrivateZone),
				},
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list hosted zones: %w", err)
	}
	return out, nil
}
