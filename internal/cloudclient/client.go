// Package cloudclient defines the engine's analysis-path capability set
// (§4.3): a small set of asynchronous, paginated-internally operations
// that list resources and metrics for the heuristic analyzers to
// consume. It is distinct from internal/collector, which produces the
// broader inventory records persisted as Resource rows.
package cloudclient

import (
	"context"
	"time"
)

// EC2Instance is an analysis-path EC2 descriptor.
type EC2Instance struct {
	InstanceID   string
	Name         string
	InstanceType string
	State        string
}

// CPUMetric is the 14-day CPU utilization summary for one instance.
type CPUMetric struct {
	InstanceID string
	Average    float64
	Maximum    float64
	PeriodDays int
}

// EBSVolume is an analysis-path EBS descriptor.
type EBSVolume struct {
	VolumeID   string
	VolumeType string
	SizeGiB    int
	State      string
	Attached   bool
	CreateTime time.Time
}

// S3Bucket is an analysis-path S3 descriptor.
type S3Bucket struct {
	Name             string
	StorageClass     string
	SizeBytes        int64
	LastAccessedDays int
}

// RDSInstance is an analysis-path RDS descriptor.
type RDSInstance struct {
	InstanceID     string
	InstanceClass  string
	Status         string
	AvgCPU         float64
	AvgConnections float64
}

// LambdaFunction is an analysis-path Lambda descriptor.
type LambdaFunction struct {
	FunctionName         string
	MemoryMB             int
	TimeoutSec           int
	AvgInvocationsPerDay float64
	AvgDurationMs        float64
}

// LoadBalancer is an analysis-path ELB/ALB/NLB descriptor.
type LoadBalancer struct {
	Arn                string
	Name               string
	State              string
	TotalTargetCount   int
	RequestCountPerDay float64
}

// NATGateway is an analysis-path NAT gateway descriptor.
type NATGateway struct {
	NatGatewayID         string
	State                string
	BytesProcessedPerDay int64
}

// ElasticIP is an analysis-path Elastic IP descriptor.
type ElasticIP struct {
	AllocationID  string
	AssociationID string
	PublicIP      string
}

// CostSummary is the output of getCostData. Both fields are monthly
// averages — see SPEC_FULL.md §9 for why the two are kept consistent.
type CostSummary struct {
	MonthlyUSD float64
	ByService  map[string]float64
}

// Client is the analysis-path capability set. Every method returns a
// complete result on success; there is no partial-result contract.
type Client interface {
	ListEC2Instances(ctx context.Context) ([]EC2Instance, error)
	GetEC2CPUMetrics(ctx context.Context, instanceIDs []string) ([]CPUMetric, error)
	ListEBSVolumes(ctx context.Context) ([]EBSVolume, error)
	ListS3Buckets(ctx context.Context) ([]S3Bucket, error)
	ListRDSInstances(ctx context.Context) ([]RDSInstance, error)
	ListLambdaFunctions(ctx context.Context) ([]LambdaFunction, error)
	ListLoadBalancers(ctx context.Context) ([]LoadBalancer, error)
	ListNatGateways(ctx context.Context) ([]NATGateway, error)
	ListElasticIPs(ctx context.Context) ([]ElasticIP, error)
	GetCostData(ctx context.Context) (CostSummary, error)
	TestConnection(ctx context.Context) error
}

// Factory constructs a Client for one workspace. Implementations must
// not share credentials across workspaces — each call gets its own
// instance (§5, §9).
type Factory interface {
	NewClient(roleArn, region string) (Client, error)
}
