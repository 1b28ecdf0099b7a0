package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudfront"
)

// CollectCloudFront enumerates CloudFront distributions.
func CollectCloudFront(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := cloudfront.New(sess)

	var out []ResourceRecord
	err := svc.ListDistributionsPagesWithContext(ctx, &cloudfront.ListDistributionsInput{}, func(page *cloudfront.ListDistributionsOutput, lastPage bool) bool {
		if page.DistributionList == nil {
			return true
		}
		for _, d := range page.DistributionList.Items {
			id := aws.StringValue(d.Id)
			state := aws.StringValue(d.Status)
			enabled := aws.BoolValue(d.Enabled)
			out = append(out, ResourceRecord{
				ResourceID: id,
				ARN:        d.ARN,
				Service:    "CloudFront",
				Name:       stringPtrOrNil(aws.StringValue(d.DomainName)),
				State:      &state,
				Metadata: map[string]interface{}{
					"enabled":      enabled,
					"price_class":  aws.StringValue(d.PriceClass),
				},
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list distributions: %w", err)
	}
	return out, nil
}
