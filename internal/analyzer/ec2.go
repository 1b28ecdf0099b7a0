package analyzer

import "fmt"

// EC2Descriptor is the heuristic-1 input shape: a running instance plus
// its observed 14-day CPU window.
type EC2Descriptor struct {
	ResourceID    string
	Name          string
	State         string
	InstanceType  string
	CurrentHourly float64
	PeriodDays    int
	AvgCPU        float64
}

// AnalyzeEC2DownSize emits EC2_DOWN_SIZE for running instances that have
// been observed for at least 14 days with average CPU under 10%.
func AnalyzeEC2DownSize(descriptors []EC2Descriptor) []Recommendation {
	var out []Recommendation
	for _, d := range descriptors {
		if d.State != "running" {
			continue
		}
		if d.PeriodDays < 14 {
			continue
		}
		if d.AvgCPU >= 10 {
			continue
		}

		confidence := ConfidenceMedium
		if d.AvgCPU < 5 {
			confidence = ConfidenceHigh
		}

		savings := d.CurrentHourly * 730 * 0.5 * 0.6
		name := d.Name
		if name == "" {
			name = d.ResourceID
		}

		out = append(out, Recommendation{
			Type:                    TypeEC2DownSize,
			ResourceID:              d.ResourceID,
			Description:             fmt.Sprintf("Instance %s (%s) has averaged %.2f%% CPU over %d days; consider downsizing to a smaller instance type.", name, d.InstanceType, d.AvgCPU, d.PeriodDays),
			EstimatedMonthlySavings: round2(savings),
			Confidence:              confidence,
			Metadata: map[string]interface{}{
				"instance_type": d.InstanceType,
				"avg_cpu":       d.AvgCPU,
				"period_days":   d.PeriodDays,
			},
		})
	}
	return out
}
