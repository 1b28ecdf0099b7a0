package cloudclient

import (
	"context"
	"time"
)

// mockFactory hands out a fresh MockClient per workspace, all seeded with
// the same deterministic fixture set.
type mockFactory struct {
	seed int64
}

// NewMockFactory returns the deterministic in-memory Factory used for
// tests and MOCK_MODE=true.
func NewMockFactory(seed int64) Factory {
	return &mockFactory{seed: seed}
}

func (f *mockFactory) NewClient(roleArn, region string) (Client, error) {
	return NewMockClient(f.seed), nil
}

// MockClient returns fixed synthetic fixtures. Given the same seed it
// produces byte-identical output across runs — the seed is recorded but
// does not change the fixtures (every seed yields the same set), which is
// what makes the "idempotent rerun" property hold trivially.
type MockClient struct {
	seed int64
	now  time.Time
}

// NewMockClient constructs a deterministic client. now is pinned at
// construction time so repeated calls within one job run see a stable
// "age" for time-sensitive fixtures (e.g. the orphaned EBS volume).
func NewMockClient(seed int64) *MockClient {
	return &MockClient{seed: seed, now: fixtureNow}
}

// fixtureNow anchors every fixture's relative timestamps. It is a fixed
// point in time, not time.Now(), so fixture output never drifts between
// runs — required for the deterministic-mock contract in §4.3.
var fixtureNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func (c *MockClient) TestConnection(ctx context.Context) error { return nil }

func (c *MockClient) ListEC2Instances(ctx context.Context) ([]EC2Instance, error) {
	return []EC2Instance{
		{InstanceID: "i-0a1b2c3d4e5f00001", Name: "web-1", InstanceType: "t3.micro", State: "running"},
		{InstanceID: "i-0a1b2c3d4e5f00002", Name: "web-2", InstanceType: "m5.large", State: "running"},
		{InstanceID: "i-0a1b2c3d4e5f00003", Name: "batch-1", InstanceType: "c5.large", State: "stopped"},
		{InstanceID: "i-0a1b2c3d4e5f00004", Name: "idle-worker", InstanceType: "t3.medium", State: "running"},
	}, nil
}

func (c *MockClient) GetEC2CPUMetrics(ctx context.Context, instanceIDs []string) ([]CPUMetric, error) {
	fixtures := map[string]CPUMetric{
		"i-0a1b2c3d4e5f00001": {Average: 42.0, Maximum: 70.0, PeriodDays: 14},
		"i-0a1b2c3d4e5f00002": {Average: 55.5, Maximum: 88.0, PeriodDays: 14},
		"i-0a1b2c3d4e5f00004": {Average: 3.2, Maximum: 9.0, PeriodDays: 14},
	}
	var out []CPUMetric
	for _, id := range instanceIDs {
		m, ok := fixtures[id]
		if !ok {
			m = CPUMetric{Average: 50.0, Maximum: 60.0, PeriodDays: 14}
		}
		m.InstanceID = id
		out = append(out, m)
	}
	return out, nil
}

func (c *MockClient) ListEBSVolumes(ctx context.Context) ([]EBSVolume, error) {
	return []EBSVolume{
		{
			VolumeID: "vol-0a1b2c3d4e5f00001", VolumeType: "gp3", SizeGiB: 100,
			State: "in-use", Attached: true, CreateTime: c.now.AddDate(0, -3, 0),
		},
		{
			VolumeID: "vol-0a1b2c3d4e5f00002", VolumeType: "gp2", SizeGiB: 500,
			State: "available", Attached: false, CreateTime: c.now.AddDate(0, 0, -10),
		},
	}, nil
}

func (c *MockClient) ListS3Buckets(ctx context.Context) ([]S3Bucket, error) {
	return []S3Bucket{
		{Name: "app-assets", StorageClass: "STANDARD", SizeBytes: 5 * (1 << 30), LastAccessedDays: 2},
		{Name: "company-logs-archive", StorageClass: "STANDARD", SizeBytes: 1200000000000, LastAccessedDays: 120},
	}, nil
}

func (c *MockClient) ListRDSInstances(ctx context.Context) ([]RDSInstance, error) {
	return []RDSInstance{
		{InstanceID: "db-prod-primary", InstanceClass: "db.m5.xlarge", Status: "available", AvgCPU: 45.0, AvgConnections: 25.0},
		{InstanceID: "db-prod-replica", InstanceClass: "db.m5.large", Status: "available", AvgCPU: 7.0, AvgConnections: 4.0},
	}, nil
}

func (c *MockClient) ListLambdaFunctions(ctx context.Context) ([]LambdaFunction, error) {
	return []LambdaFunction{
		{FunctionName: "process-webhook", MemoryMB: 256, TimeoutSec: 10, AvgInvocationsPerDay: 5000, AvgDurationMs: 80},
		{FunctionName: "legacy-batch-job", MemoryMB: 512, TimeoutSec: 30, AvgInvocationsPerDay: 0, AvgDurationMs: 0},
		{FunctionName: "image-resize", MemoryMB: 1024, TimeoutSec: 15, AvgInvocationsPerDay: 100000, AvgDurationMs: 45},
	}, nil
}

func (c *MockClient) ListLoadBalancers(ctx context.Context) ([]LoadBalancer, error) {
	return []LoadBalancer{
		{Arn: "arn:aws:elasticloadbalancing:us-east-1:123456789012:loadbalancer/app/prod-alb/abc", Name: "prod-alb", State: "active", TotalTargetCount: 4, RequestCountPerDay: 150000},
		{Arn: "arn:aws:elasticloadbalancing:us-east-1:123456789012:loadbalancer/app/stale-alb/def", Name: "stale-alb", State: "active", TotalTargetCount: 0, RequestCountPerDay: 0},
		{Arn: "arn:aws:elasticloadbalancing:us-east-1:123456789012:loadbalancer/app/quiet-alb/ghi", Name: "quiet-alb", State: "active", TotalTargetCount: 2, RequestCountPerDay: 0},
		{Arn: "arn:aws:elasticloadbalancing:us-east-1:123456789012:loadbalancer/app/new-alb/jkl", Name: "new-alb", State: "provisioning", TotalTargetCount: 0, RequestCountPerDay: 0},
	}, nil
}

func (c *MockClient) ListNatGateways(ctx context.Context) ([]NATGateway, error) {
	return []NATGateway{
		{NatGatewayID: "nat-0a1b2c3d4e5f00001", State: "available", BytesProcessedPerDay: 500 * (1 << 30)},
		{NatGatewayID: "nat-0a1b2c3d4e5f00002", State: "available", BytesProcessedPerDay: 200 * 1024 * 1024},
	}, nil
}

func (c *MockClient) ListElasticIPs(ctx context.Context) ([]ElasticIP, error) {
	return []ElasticIP{
		{AllocationID: "eipalloc-0a1b2c3d4e5f00001", AssociationID: "eipassoc-0a1b2c3d4e5f00001", PublicIP: "203.0.113.10"},
		{AllocationID: "eipalloc-0a1b2c3d4e5f00002", AssociationID: "", PublicIP: "203.0.113.11"},
	}, nil
}

func (c *MockClient) GetCostData(ctx context.Context) (CostSummary, error) {
	return CostSummary{
		MonthlyUSD: 4820.55,
		ByService: map[string]float64{
			"Amazon Elastic Compute Cloud - Compute": 2100.00,
			"Amazon Relational Database Service":     1450.25,
			"Amazon Simple Storage Service":          620.30,
			"AWS Lambda":                              150.00,
			"Amazon Virtual Private Cloud":            500.00,
		},
	}, nil
}
