// Package collector implements the engine's resource-inventory fan-out:
// sixteen per-service collectors, each producing broad, metadata-rich
// ResourceRecords, dispatched in a bounded parallel sweep (§4.4).
package collector

import (
	"context"

	"github.com/aws/aws-sdk-go/aws/session"
)

// ResourceRecord is the collector layer's unified output shape — richer
// than the cloudclient analysis-path descriptors, intended to become a
// store.Resource row.
type ResourceRecord struct {
	ResourceID           string
	ARN                  *string
	Service              string
	Type                 *string
	Name                 *string
	Tags                 map[string]string
	State                *string
	EstimatedMonthlyCost *float64
	Metadata             map[string]interface{}
}

// Func is a single service collector: workspaceContext (an assumed-role
// AWS session) in, a list of records out.
type Func func(ctx context.Context, sess *session.Session) ([]ResourceRecord, error)

// Collector pairs a service's human name (used in dispatcher error
// strings) with its collection function.
type Collector struct {
	Service string
	Run     Func
}

// All returns the sixteen registered collectors in the fixed dispatch
// order the batching and ordering guarantees (§4.4, §5) are defined
// against.
func All() []Collector {
	return []Collector{
		{Service: "EC2", Run: CollectEC2},
		{Service: "EBS", Run: CollectEBS},
		{Service: "S3", Run: CollectS3},
		{Service: "RDS", Run: CollectRDS},
		{Service: "Lambda", Run: CollectLambda},
		{Service: "ELB", Run: CollectELB},
		{Service: "CloudFront", Run: CollectCloudFront},
		{Service: "VPC", Run: CollectVPC},
		{Service: "AutoScaling", Run: CollectAutoScaling},
		{Service: "ElasticBeanstalk", Run: CollectElasticBeanstalk},
		{Service: "DynamoDB", Run: CollectDynamoDB},
		{Service: "SNS", Run: CollectSNS},
		{Service: "SQS", Run: CollectSQS},
		{Service: "Route53", Run: CollectRoute53},
		{Service: "IAM", Run: CollectIAM},
		{Service: "CloudFormation", Run: CollectCloudFormation},
	}
}
