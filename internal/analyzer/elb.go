package analyzer

import "fmt"

// ELBDescriptor is the heuristic-6 input shape, shared by the no-targets
// (6a) and no-traffic (6b) rules.
type ELBDescriptor struct {
	ResourceID         string
	Name               string
	State              string
	Hourly             float64
	TotalTargetCount   int
	RequestCountPerDay float64
}

// AnalyzeELBNoTargets emits ELB_NO_TARGETS for active load balancers
// with zero registered targets.
func AnalyzeELBNoTargets(descriptors []ELBDescriptor) []Recommendation {
	var out []Recommendation
	for _, d := range descriptors {
		if d.State != "active" {
			continue
		}
		if d.TotalTargetCount != 0 {
			continue
		}

		name := d.Name
		if name == "" {
			name = d.ResourceID
		}

		out = append(out, Recommendation{
			Type:                    TypeELBNoTargets,
			ResourceID:              d.ResourceID,
			Description:             fmt.Sprintf("Load balancer %s has no registered targets; consider deleting it.", name),
			EstimatedMonthlySavings: round2(d.Hourly * 730),
			Confidence:              ConfidenceHigh,
			Metadata: map[string]interface{}{
				"total_target_count": d.TotalTargetCount,
			},
		})
	}
	return out
}

// AnalyzeELBNoTraffic emits ELB_NO_TRAFFIC for active load balancers
// with registered targets but zero observed requests.
func AnalyzeELBNoTraffic(descriptors []ELBDescriptor) []Recommendation {
	var out []Recommendation
	for _, d := range descriptors {
		if d.State != "active" {
			continue
		}
		if d.TotalTargetCount <= 0 {
			continue
		}
		if d.RequestCountPerDay != 0 {
			continue
		}

		name := d.Name
		if name == "" {
			name = d.ResourceID
		}

		out = append(out, Recommendation{
			Type:                    TypeELBNoTraffic,
			ResourceID:              d.ResourceID,
			Description:             fmt.Sprintf("Load balancer %s has registered targets but zero observed requests; verify it is still in use.", name),
			EstimatedMonthlySavings: round2(d.Hourly * 730),
			Confidence:              ConfidenceMedium,
			Metadata: map[string]interface{}{
				"total_target_count":   d.TotalTargetCount,
				"request_count_per_day": d.RequestCountPerDay,
			},
		})
	}
	return out
}
