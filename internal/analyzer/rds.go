package analyzer

import "fmt"

// RDSDescriptor is the heuristic-4 input shape.
type RDSDescriptor struct {
	ResourceID      string
	InstanceClass   string
	Status          string
	CurrentHourly   float64
	AvgCPU          float64
	AvgConnections  float64
}

// AnalyzeRDSDownSize emits RDS_DOWN_SIZE for available instances with
// low CPU and connection counts.
func AnalyzeRDSDownSize(descriptors []RDSDescriptor) []Recommendation {
	var out []Recommendation
	for _, d := range descriptors {
		if d.Status != "available" {
			continue
		}
		if d.AvgCPU >= 15 || d.AvgConnections >= 10 {
			continue
		}

		confidence := ConfidenceMedium
		if d.AvgCPU < 5 && d.AvgConnections < 3 {
			confidence = ConfidenceHigh
		}

		savings := d.CurrentHourly * 730 * 0.5 * 0.6

		out = append(out, Recommendation{
			Type:                    TypeRDSDownSize,
			ResourceID:              d.ResourceID,
			Description:             fmt.Sprintf("Database %s (%s) has averaged %.2f%% CPU and %.1f connections; consider downsizing the instance class.", d.ResourceID, d.InstanceClass, d.AvgCPU, d.AvgConnections),
			EstimatedMonthlySavings: round2(savings),
			Confidence:              confidence,
			Metadata: map[string]interface{}{
				"instance_class":  d.InstanceClass,
				"avg_cpu":         d.AvgCPU,
				"avg_connections": d.AvgConnections,
			},
		})
	}
	return out
}
