package analyzer

import (
	"fmt"
	"time"
)

// EBSDescriptor is the heuristic-2 input shape. Now is injected
// explicitly — this is the one heuristic the spec allows a clock read,
// and even then only via an argument, never time.Now() internally.
type EBSDescriptor struct {
	ResourceID   string
	State        string
	Attached     bool
	CreateTime   time.Time
	SizeGiB      int
	PricePerGiB  float64
}

// AnalyzeEBSOrphan emits EBS_ORPHAN for unattached, available volumes
// older than 7 days.
func AnalyzeEBSOrphan(descriptors []EBSDescriptor, now time.Time) []Recommendation {
	var out []Recommendation
	for _, d := range descriptors {
		if d.State != "available" {
			continue
		}
		if d.Attached {
			continue
		}
		age := now.Sub(d.CreateTime)
		if age <= 7*24*time.Hour {
			continue
		}

		savings := float64(d.SizeGiB) * d.PricePerGiB

		out = append(out, Recommendation{
			Type:                    TypeEBSOrphan,
			ResourceID:              d.ResourceID,
			Description:             fmt.Sprintf("Volume %s (%d GiB) has been unattached for %.0f days; delete or snapshot and remove.", d.ResourceID, d.SizeGiB, age.Hours()/24),
			EstimatedMonthlySavings: round2(savings),
			Confidence:              ConfidenceHigh,
			Metadata: map[string]interface{}{
				"size_gib":  d.SizeGiB,
				"age_days":  age.Hours() / 24,
			},
		})
	}
	return out
}
