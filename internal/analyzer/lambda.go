package analyzer

import (
	"fmt"
	"math"

	"github.com/finopsbridge/engine/internal/pricing"
)

// LambdaDescriptor is the heuristic-5 input shape, shared by both the
// unused (5a) and oversized (5b) rules.
type LambdaDescriptor struct {
	ResourceID            string
	FunctionName          string
	MemoryMB              int
	TimeoutSec            int
	AvgInvocationsPerDay  float64
	AvgDurationMs         float64
	PricePerGBSecond      float64
}

// AnalyzeLambdaUnused emits LAMBDA_UNUSED for functions with zero
// observed invocations.
func AnalyzeLambdaUnused(descriptors []LambdaDescriptor) []Recommendation {
	var out []Recommendation
	for _, d := range descriptors {
		if d.AvgInvocationsPerDay != 0 {
			continue
		}

		memoryGB := float64(d.MemoryMB) / 1024
		savings := memoryGB * float64(d.TimeoutSec) * 100 * d.PricePerGBSecond * 30

		name := d.FunctionName
		if name == "" {
			name = d.ResourceID
		}

		out = append(out, Recommendation{
			Type:                    TypeLambdaUnused,
			ResourceID:              d.ResourceID,
			Description:             fmt.Sprintf("Function %s has had zero invocations in the observation window; consider removing it.", name),
			EstimatedMonthlySavings: round2(savings),
			Confidence:              ConfidenceHigh,
			Metadata: map[string]interface{}{
				"memory_mb":   d.MemoryMB,
				"timeout_sec": d.TimeoutSec,
			},
		})
	}
	return out
}

// AnalyzeLambdaOversized emits LAMBDA_OVERSIZED for invoked functions
// provisioned well above what their observed duration needs, suppressing
// recommendations worth less than $0.50/month.
func AnalyzeLambdaOversized(descriptors []LambdaDescriptor) []Recommendation {
	var out []Recommendation
	for _, d := range descriptors {
		if d.AvgInvocationsPerDay <= 0 {
			continue
		}
		if d.MemoryMB < 512 {
			continue
		}
		if d.AvgDurationMs >= 100 {
			continue
		}

		rightsizedMB := int(math.Ceil(float64(d.MemoryMB) / 3))
		if rightsizedMB < 128 {
			rightsizedMB = 128
		}

		currentGBs := pricing.LambdaMonthlyGBSeconds(d.AvgInvocationsPerDay, d.AvgDurationMs, d.MemoryMB)
		rightsizedGBs := pricing.LambdaMonthlyGBSeconds(d.AvgInvocationsPerDay, d.AvgDurationMs, rightsizedMB)
		savings := (currentGBs - rightsizedGBs) * d.PricePerGBSecond
		if savings <= 0.50 {
			continue
		}

		name := d.FunctionName
		if name == "" {
			name = d.ResourceID
		}

		out = append(out, Recommendation{
			Type:                    TypeLambdaOversized,
			ResourceID:              d.ResourceID,
			Description:             fmt.Sprintf("Function %s is provisioned at %dMB but averages %.1fms duration; consider reducing memory to ~%dMB.", name, d.MemoryMB, d.AvgDurationMs, rightsizedMB),
			EstimatedMonthlySavings: round2(savings),
			Confidence:              ConfidenceMedium,
			Metadata: map[string]interface{}{
				"current_memory_mb":    d.MemoryMB,
				"rightsized_memory_mb": rightsizedMB,
				"avg_duration_ms":      d.AvgDurationMs,
			},
		})
	}
	return out
}
