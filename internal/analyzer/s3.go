package analyzer

import "fmt"

// S3Descriptor is the heuristic-3 input shape.
type S3Descriptor struct {
	ResourceID       string
	StorageClass     string
	LastAccessedDays int
	SizeGB           float64
}

// AnalyzeS3Lifecycle emits S3_LIFECYCLE for standard-class buckets that
// have not been accessed in over 90 days, sizing savings at the
// standard→glacier spread discounted by the conservative factor.
func AnalyzeS3Lifecycle(descriptors []S3Descriptor) []Recommendation {
	var out []Recommendation
	for _, d := range descriptors {
		if d.StorageClass != "STANDARD" {
			continue
		}
		if d.LastAccessedDays <= 90 {
			continue
		}

		savings := d.SizeGB * (0.023 - 0.004) * 0.6

		out = append(out, Recommendation{
			Type:                    TypeS3Lifecycle,
			ResourceID:              d.ResourceID,
			Description:             fmt.Sprintf("Bucket %s (%.1f GB) has not been accessed in %d days; apply a lifecycle rule to transition to Glacier.", d.ResourceID, d.SizeGB, d.LastAccessedDays),
			EstimatedMonthlySavings: round2(savings),
			Confidence:              ConfidenceMedium,
			Metadata: map[string]interface{}{
				"size_gb":            d.SizeGB,
				"last_accessed_days": d.LastAccessedDays,
			},
		})
	}
	return out
}
