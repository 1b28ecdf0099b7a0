package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/finopsbridge/engine/internal/logging"
)

// CollectS3 enumerates S3 buckets. Per-bucket enrichment (region lookup)
// failures fall back to defaults rather than failing the whole record
// (§4.4).
func CollectS3(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := s3.New(sess)
	logger := logging.For("resource-sync")

	listOut, err := svc.ListBucketsWithContext(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	var out []ResourceRecord
	for _, b := range listOut.Buckets {
		name := aws.StringValue(b.Name)

		region := "us-east-1"
		loc, err := svc.GetBucketLocationWithContext(ctx, &s3.GetBucketLocationInput{Bucket: aws.String(name)})
		if err != nil {
			logger.WithError(err).WithField("bucket", name).Warn("failed to fetch bucket location, using default region")
		} else if loc.LocationConstraint != nil {
			region = aws.StringValue(loc.LocationConstraint)
		}

		out = append(out, ResourceRecord{
			ResourceID: name,
			Service:    "S3",
			Name:       &name,
			Metadata: map[string]interface{}{
				"region":       region,
				"creation_date": b.CreationDate,
			},
		})
	}
	return out, nil
}
