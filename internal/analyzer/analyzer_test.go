package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeEC2DownSize_BoundaryPeriodDays(t *testing.T) {
	under := []EC2Descriptor{{ResourceID: "i-1", State: "running", PeriodDays: 13, AvgCPU: 2, CurrentHourly: 0.1}}
	assert.Empty(t, AnalyzeEC2DownSize(under))

	atBoundaryMedium := []EC2Descriptor{{ResourceID: "i-2", State: "running", PeriodDays: 14, AvgCPU: 9.999, CurrentHourly: 0.1}}
	recs := AnalyzeEC2DownSize(atBoundaryMedium)
	assert.Len(t, recs, 1)
	assert.Equal(t, ConfidenceMedium, recs[0].Confidence)

	high := []EC2Descriptor{{ResourceID: "i-3", State: "running", PeriodDays: 14, AvgCPU: 4.999, CurrentHourly: 0.1}}
	recs = AnalyzeEC2DownSize(high)
	assert.Len(t, recs, 1)
	assert.Equal(t, ConfidenceHigh, recs[0].Confidence)
}

func TestAnalyzeEC2DownSize_NonRunningSkipped(t *testing.T) {
	d := []EC2Descriptor{{ResourceID: "i-4", State: "stopped", PeriodDays: 30, AvgCPU: 1}}
	assert.Empty(t, AnalyzeEC2DownSize(d))
}

func TestAnalyzeEBSOrphan_BoundaryDays(t *testing.T) {
	now := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)

	exactlySeven := []EBSDescriptor{{ResourceID: "vol-1", State: "available", Attached: false, CreateTime: now.Add(-7 * 24 * time.Hour), SizeGiB: 100, PricePerGiB: 0.10}}
	assert.Empty(t, AnalyzeEBSOrphan(exactlySeven, now))

	eightDays := []EBSDescriptor{{ResourceID: "vol-2", State: "available", Attached: false, CreateTime: now.Add(-8 * 24 * time.Hour), SizeGiB: 500, PricePerGiB: 0.10}}
	recs := AnalyzeEBSOrphan(eightDays, now)
	assert.Len(t, recs, 1)
	assert.Equal(t, 50.00, recs[0].EstimatedMonthlySavings)
	assert.Equal(t, ConfidenceHigh, recs[0].Confidence)
}

func TestAnalyzeEBSOrphan_AttachedSkipped(t *testing.T) {
	now := time.Now()
	d := []EBSDescriptor{{ResourceID: "vol-3", State: "available", Attached: true, CreateTime: now.Add(-30 * 24 * time.Hour), SizeGiB: 100, PricePerGiB: 0.10}}
	assert.Empty(t, AnalyzeEBSOrphan(d, now))
}

func TestAnalyzeS3Lifecycle(t *testing.T) {
	d := []S3Descriptor{{ResourceID: "company-logs-archive", StorageClass: "STANDARD", LastAccessedDays: 120, SizeGB: 1200000000000.0 / float64(1<<30)}}
	recs := AnalyzeS3Lifecycle(d)
	assert.Len(t, recs, 1)
	expected := (1200000000000.0 / float64(1<<30)) * (0.023 - 0.004) * 0.6
	assert.InDelta(t, round2(expected), recs[0].EstimatedMonthlySavings, 1e-9)
}

func TestAnalyzeS3Lifecycle_GlacierSkipped(t *testing.T) {
	d := []S3Descriptor{{ResourceID: "b1", StorageClass: "GLACIER", LastAccessedDays: 400, SizeGB: 10}}
	assert.Empty(t, AnalyzeS3Lifecycle(d))
}

func TestAnalyzeRDSDownSize(t *testing.T) {
	d := []RDSDescriptor{{ResourceID: "db-1", Status: "available", AvgCPU: 4, AvgConnections: 2, CurrentHourly: 0.2}}
	recs := AnalyzeRDSDownSize(d)
	assert.Len(t, recs, 1)
	assert.Equal(t, ConfidenceHigh, recs[0].Confidence)
}

func TestAnalyzeRDSDownSize_MediumConfidence(t *testing.T) {
	d := []RDSDescriptor{{ResourceID: "db-2", Status: "available", AvgCPU: 8, AvgConnections: 5, CurrentHourly: 0.2}}
	recs := AnalyzeRDSDownSize(d)
	assert.Len(t, recs, 1)
	assert.Equal(t, ConfidenceMedium, recs[0].Confidence)
}

func TestAnalyzeLambdaUnused(t *testing.T) {
	d := []LambdaDescriptor{{ResourceID: "fn-1", AvgInvocationsPerDay: 0, MemoryMB: 128, TimeoutSec: 5, PricePerGBSecond: 0.0000166667}}
	recs := AnalyzeLambdaUnused(d)
	assert.Len(t, recs, 1)
	assert.Equal(t, TypeLambdaUnused, recs[0].Type)
}

func TestAnalyzeLambdaOversized(t *testing.T) {
	d := []LambdaDescriptor{{ResourceID: "fn-2", AvgInvocationsPerDay: 100000, MemoryMB: 1024, AvgDurationMs: 50, PricePerGBSecond: 0.0000166667}}
	recs := AnalyzeLambdaOversized(d)
	assert.Len(t, recs, 1)
	assert.Equal(t, TypeLambdaOversized, recs[0].Type)
	assert.Greater(t, recs[0].EstimatedMonthlySavings, 0.50)
}

func TestAnalyzeLambdaOversized_SmallSavingsSuppressed(t *testing.T) {
	d := []LambdaDescriptor{{ResourceID: "fn-3", AvgInvocationsPerDay: 10, MemoryMB: 512, AvgDurationMs: 50, PricePerGBSecond: 0.0000166667}}
	assert.Empty(t, AnalyzeLambdaOversized(d))
}

func TestAnalyzeELB_ProvisioningSkipped(t *testing.T) {
	d := []ELBDescriptor{{ResourceID: "alb-1", State: "provisioning", TotalTargetCount: 0}}
	assert.Empty(t, AnalyzeELBNoTargets(d))
	assert.Empty(t, AnalyzeELBNoTraffic(d))
}

func TestAnalyzeELBNoTargets(t *testing.T) {
	d := []ELBDescriptor{{ResourceID: "alb-2", State: "active", Hourly: 0.0225, TotalTargetCount: 0}}
	recs := AnalyzeELBNoTargets(d)
	assert.Len(t, recs, 1)
	assert.Equal(t, ConfidenceHigh, recs[0].Confidence)
}

func TestAnalyzeELBNoTraffic(t *testing.T) {
	d := []ELBDescriptor{{ResourceID: "alb-3", State: "active", Hourly: 0.0225, TotalTargetCount: 2, RequestCountPerDay: 0}}
	recs := AnalyzeELBNoTraffic(d)
	assert.Len(t, recs, 1)
	assert.Equal(t, ConfidenceMedium, recs[0].Confidence)
}

func TestAnalyzeEIPUnassociated(t *testing.T) {
	d := []EIPDescriptor{{ResourceID: "eip-1", AssociationID: ""}, {ResourceID: "eip-2", AssociationID: "eipassoc-1"}}
	recs := AnalyzeEIPUnassociated(d)
	assert.Len(t, recs, 1)
	assert.Equal(t, "eip-1", recs[0].ResourceID)
}

func TestAnalyzeNATGatewayIdle(t *testing.T) {
	d := []NATGatewayDescriptor{{ResourceID: "nat-1", State: "available", BytesProcessedPerDay: 0, Fixed: 0.045, DataTransferPerGB: 0.045}}
	recs := AnalyzeNATGatewayIdle(d)
	assert.Len(t, recs, 1)
}

func TestAnalyzersAreDeterministicAndOrderPreserving(t *testing.T) {
	d := []EIPDescriptor{{ResourceID: "eip-a"}, {ResourceID: "eip-b"}, {ResourceID: "eip-c"}}
	r1 := AnalyzeEIPUnassociated(d)
	r2 := AnalyzeEIPUnassociated(d)
	assert.Equal(t, r1, r2)
	assert.Equal(t, []string{"eip-a", "eip-b", "eip-c"}, []string{r1[0].ResourceID, r1[1].ResourceID, r1[2].ResourceID})
}
