package analyzer

import "fmt"

// EIPDescriptor is the heuristic-7 input shape.
type EIPDescriptor struct {
	ResourceID    string
	AssociationID string
}

// AnalyzeEIPUnassociated emits EIP_UNASSOCIATED for addresses with no
// association.
func AnalyzeEIPUnassociated(descriptors []EIPDescriptor) []Recommendation {
	var out []Recommendation
	for _, d := range descriptors {
		if d.AssociationID != "" {
			continue
		}

		out = append(out, Recommendation{
			Type:                    TypeEIPUnassociated,
			ResourceID:              d.ResourceID,
			Description:             fmt.Sprintf("Elastic IP %s is not associated with any resource; release it to stop the idle charge.", d.ResourceID),
			EstimatedMonthlySavings: round2(0.005 * 730),
			Confidence:              ConfidenceHigh,
			Metadata:                map[string]interface{}{},
		})
	}
	return out
}
