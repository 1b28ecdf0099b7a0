package analyzer

import "fmt"

// NATGatewayDescriptor is the heuristic-8 input shape.
type NATGatewayDescriptor struct {
	ResourceID            string
	State                 string
	BytesProcessedPerDay  int64
	Fixed                 float64
	DataTransferPerGB     float64
}

const bytesPerGB = 1 << 30

// AnalyzeNATGatewayIdle emits NAT_GW_IDLE for available gateways
// processing under 1 GB/day.
func AnalyzeNATGatewayIdle(descriptors []NATGatewayDescriptor) []Recommendation {
	var out []Recommendation
	for _, d := range descriptors {
		if d.State != "available" {
			continue
		}
		gbPerDay := float64(d.BytesProcessedPerDay) / bytesPerGB
		if gbPerDay >= 1 {
			continue
		}

		dataTransfer := gbPerDay * 30 * d.DataTransferPerGB
		savings := d.Fixed*730 + dataTransfer

		out = append(out, Recommendation{
			Type:                    TypeNATGWIdle,
			ResourceID:              d.ResourceID,
			Description:             fmt.Sprintf("NAT gateway %s is processing only %.3f GB/day; consider removing it if no longer needed.", d.ResourceID, gbPerDay),
			EstimatedMonthlySavings: round2(savings),
			Confidence:              ConfidenceMedium,
			Metadata: map[string]interface{}{
				"bytes_processed_per_day": d.BytesProcessedPerDay,
			},
		})
	}
	return out
}
