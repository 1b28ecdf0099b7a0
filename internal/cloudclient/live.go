package cloudclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials/stscreds"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/costexplorer"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/elbv2"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/rds"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/sts"

	"github.com/finopsbridge/engine/internal/logging"
)

const sessionName = "finops-engine"
const assumeRoleDuration = time.Hour
const metricWindowDays = 14

var log = logging.For("resource-sync")

// liveFactory builds one LiveClient per workspace, each with its own
// credential cache — credentials are never shared across workspaces
// (§5, §9).
type liveFactory struct{}

// NewLiveFactory returns the AWS-backed Factory.
func NewLiveFactory() Factory {
	return &liveFactory{}
}

func (f *liveFactory) NewClient(roleArn, region string) (Client, error) {
	if region == "" {
		region = "us-east-1"
	}
	return &LiveClient{roleArn: roleArn, region: region}, nil
}

// LiveClient is the AWS-backed implementation of Client. It assumes the
// workspace's cross-account role on first use and reuses the resulting
// session for every subsequent call until the caller is recycled.
type LiveClient struct {
	roleArn string
	region  string

	once    sync.Once
	initErr error
	sess    *session.Session
}

func (c *LiveClient) session() (*session.Session, error) {
	c.once.Do(func() {
		c.sess, c.initErr = AssumeRoleSession(c.roleArn, c.region)
	})
	return c.sess, c.initErr
}

// AssumeRoleSession assumes roleArn and returns a session good for
// assumeRoleDuration. It is exported so internal/jobrunner can build the
// *session.Session the collector sweep needs without duplicating the
// STS dance the analysis path already performs.
func AssumeRoleSession(roleArn, region string) (*session.Session, error) {
	if region == "" {
		region = "us-east-1"
	}
	base, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("create base session: %w", err)
	}
	creds := stscreds.NewCredentials(base, roleArn, func(p *stscreds.AssumeRoleProvider) {
		p.RoleSessionName = sessionName
		p.Duration = assumeRoleDuration
	})
	assumed, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: creds,
	})
	if err != nil {
		return nil, fmt.Errorf("assume role %s: %w", roleArn, err)
	}
	return assumed, nil
}

func (c *LiveClient) TestConnection(ctx context.Context) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	_, err = sts.New(sess).GetCallerIdentityWithContext(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("test connection: %w", err)
	}
	return nil
}

func (c *LiveClient) ListEC2Instances(ctx context.Context) ([]EC2Instance, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	svc := ec2.New(sess)

	var out []EC2Instance
	err = svc.DescribeInstancesPagesWithContext(ctx, &ec2.DescribeInstancesInput{
		Filters: []*ec2.Filter{
			{Name: aws.String("instance-state-name"), Values: aws.StringSlice([]string{"running", "stopped"})},
		},
	}, func(page *ec2.DescribeInstancesOutput, lastPage bool) bool {
		for _, res := range page.Reservations {
			for _, inst := range res.Instances {
				out = append(out, EC2Instance{
					InstanceID:   aws.StringValue(inst.InstanceId),
					Name:         ec2Name(inst.Tags),
					InstanceType: aws.StringValue(inst.InstanceType),
					State:        aws.StringValue(inst.State.Name),
				})
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("describe instances: %w", err)
	}
	return out, nil
}

func (c *LiveClient) GetEC2CPUMetrics(ctx context.Context, instanceIDs []string) ([]CPUMetric, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	svc := cloudwatch.New(sess)

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -metricWindowDays)

	var out []CPUMetric
	for _, id := range instanceIDs {
		result, err := svc.GetMetricStatisticsWithContext(ctx, &cloudwatch.GetMetricStatisticsInput{
			Namespace:  aws.String("AWS/EC2"),
			MetricName: aws.String("CPUUtilization"),
			Dimensions: []*cloudwatch.Dimension{
				{Name: aws.String("InstanceId"), Value: aws.String(id)},
			},
			StartTime:  aws.Time(start),
			EndTime:    aws.Time(end),
			Period:     aws.Int64(int64(metricWindowDays * 24 * 3600)),
			Statistics: aws.StringSlice([]string{"Average", "Maximum"}),
		})
		if err != nil {
			return nil, fmt.Errorf("get metric statistics for %s: %w", id, err)
		}
		var avg, max float64
		if len(result.Datapoints) > 0 {
			avg = aws.Float64Value(result.Datapoints[0].Average)
			max = aws.Float64Value(result.Datapoints[0].Maximum)
		}
		out = append(out, CPUMetric{InstanceID: id, Average: avg, Maximum: max, PeriodDays: metricWindowDays})
	}
	return out, nil
}

func (c *LiveClient) ListEBSVolumes(ctx context.Context) ([]EBSVolume, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	svc := ec2.New(sess)

	var out []EBSVolume
	err = svc.DescribeVolumesPagesWithContext(ctx, &ec2.DescribeVolumesInput{}, func(page *ec2.DescribeVolumesOutput, lastPage bool) bool {
		for _, v := range page.Volumes {
			out = append(out, EBSVolume{
				VolumeID:   aws.StringValue(v.VolumeId),
				VolumeType: aws.StringValue(v.VolumeType),
				SizeGiB:    int(aws.Int64Value(v.Size)),
				State:      aws.StringValue(v.State),
				Attached:   len(v.Attachments) > 0,
				CreateTime: aws.TimeValue(v.CreateTime),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("describe volumes: %w", err)
	}
	return out, nil
}

func (c *LiveClient) ListS3Buckets(ctx context.Context) ([]S3Bucket, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	svc := s3.New(sess)

	listOut, err := svc.ListBucketsWithContext(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	var out []S3Bucket
	for _, b := range listOut.Buckets {
		name := aws.StringValue(b.Name)
		var sizeBytes int64
		var objCount int
		_ = svc.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{Bucket: aws.String(name)}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
			for _, obj := range page.Contents {
				sizeBytes += aws.Int64Value(obj.Size)
				objCount++
			}
			return true
		})
		out = append(out, S3Bucket{
			Name:             name,
			StorageClass:     "STANDARD",
			SizeBytes:        sizeBytes,
			LastAccessedDays: 0,
		})
	}
	return out, nil
}

func (c *LiveClient) ListRDSInstances(ctx context.Context) ([]RDSInstance, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	svc := rds.New(sess)

	var out []RDSInstance
	err = svc.DescribeDBInstancesPagesWithContext(ctx, &rds.DescribeDBInstancesInput{}, func(page *rds.DescribeDBInstancesOutput, lastPage bool) bool {
		for _, d := range page.DBInstances {
			out = append(out, RDSInstance{
				InstanceID:    aws.StringValue(d.DBInstanceIdentifier),
				InstanceClass: aws.StringValue(d.DBInstanceClass),
				Status:        aws.StringValue(d.DBInstanceStatus),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("describe db instances: %w", err)
	}
	return out, nil
}

func (c *LiveClient) ListLambdaFunctions(ctx context.Context) ([]LambdaFunction, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	svc := lambda.New(sess)

	var out []LambdaFunction
	err = svc.ListFunctionsPagesWithContext(ctx, &lambda.ListFunctionsInput{}, func(page *lambda.ListFunctionsOutput, lastPage bool) bool {
		for _, fn := range page.Functions {
			out = append(out, LambdaFunction{
				FunctionName: aws.StringValue(fn.FunctionName),
				MemoryMB:     int(aws.Int64Value(fn.MemorySize)),
				TimeoutSec:   int(aws.Int64Value(fn.Timeout)),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list functions: %w", err)
	}
	return out, nil
}

func (c *LiveClient) ListLoadBalancers(ctx context.Context) ([]LoadBalancer, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	svc := elbv2.New(sess)

	var lbs []LoadBalancer
	err = svc.DescribeLoadBalancersPagesWithContext(ctx, &elbv2.DescribeLoadBalancersInput{}, func(page *elbv2.DescribeLoadBalancersOutput, lastPage bool) bool {
		for _, lb := range page.LoadBalancers {
			lbs = append(lbs, LoadBalancer{
				Arn:   aws.StringValue(lb.LoadBalancerArn),
				Name:  aws.StringValue(lb.LoadBalancerName),
				State: aws.StringValue(lb.State.Code),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("describe load balancers: %w", err)
	}

	for i := range lbs {
		tgOut, err := svc.DescribeTargetGroupsWithContext(ctx, &elbv2.DescribeTargetGroupsInput{LoadBalancerArn: aws.String(lbs[i].Arn)})
		if err != nil {
			log.WithError(err).Warn("failed to describe target groups")
			continue
		}
		var total int
		for _, tg := range tgOut.TargetGroups {
			healthOut, err := svc.DescribeTargetHealthWithContext(ctx, &elbv2.DescribeTargetHealthInput{TargetGroupArn: tg.TargetGroupArn})
			if err != nil {
				continue
			}
			total += len(healthOut.TargetHealthDescriptions)
		}
		lbs[i].TotalTargetCount = total
	}
	return lbs, nil
}

func (c *LiveClient) ListNatGateways(ctx context.Context) ([]NATGateway, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	svc := ec2.New(sess)

	var out []NATGateway
	err = svc.DescribeNatGatewaysPagesWithContext(ctx, &ec2.DescribeNatGatewaysInput{}, func(page *ec2.DescribeNatGatewaysOutput, lastPage bool) bool {
		for _, gw := range page.NatGateways {
			out = append(out, NATGateway{
				NatGatewayID: aws.StringValue(gw.NatGatewayId),
				State:        aws.StringValue(gw.State),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("describe nat gateways: %w", err)
	}
	return out, nil
}

func (c *LiveClient) ListElasticIPs(ctx context.Context) ([]ElasticIP, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}
	svc := ec2.New(sess)

	result, err := svc.DescribeAddressesWithContext(ctx, &ec2.DescribeAddressesInput{})
	if err != nil {
		return nil, fmt.Errorf("describe addresses: %w", err)
	}

	var out []ElasticIP
	for _, addr := range result.Addresses {
		out = append(out, ElasticIP{
			AllocationID:  aws.StringValue(addr.AllocationId),
			AssociationID: aws.StringValue(addr.AssociationId),
			PublicIP:      aws.StringValue(addr.PublicIp),
		})
	}
	return out, nil
}

func (c *LiveClient) GetCostData(ctx context.Context) (CostSummary, error) {
	sess, err := c.session()
	if err != nil {
		return CostSummary{}, err
	}
	svc := costexplorer.New(sess)

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	result, err := svc.GetCostAndUsageWithContext(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &costexplorer.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(now.Format("2006-01-02")),
		},
		Granularity: aws.String("MONTHLY"),
		Metrics:     []*string{aws.String("BlendedCost")},
		GroupBy: []*costexplorer.GroupDefinition{
			{Type: aws.String("DIMENSION"), Key: aws.String("SERVICE")},
		},
	})
	if err != nil {
		return CostSummary{}, fmt.Errorf("get cost and usage: %w", err)
	}

	// Both totalMonthly and byService are monthly averages over the
	// returned period — see SPEC_FULL.md §9 for why this is deliberate.
	byService := map[string]float64{}
	var total float64
	periods := len(result.ResultsByTime)
	if periods == 0 {
		periods = 1
	}
	for _, period := range result.ResultsByTime {
		for _, group := range period.Groups {
			if len(group.Keys) == 0 {
				continue
			}
			service := *group.Keys[0]
			amount := parseAmount(group.Metrics["BlendedCost"])
			byService[service] += amount / float64(periods)
			total += amount
		}
	}

	return CostSummary{
		MonthlyUSD: total / float64(periods),
		ByService:  byService,
	}, nil
}

func parseAmount(metric *costexplorer.MetricValue) float64 {
	if metric == nil || metric.Amount == nil {
		return 0
	}
	var v float64
	fmt.Sscanf(*metric.Amount, "%f", &v)
	return v
}

func ec2Name(tags []*ec2.Tag) string {
	for _, t := range tags {
		if aws.StringValue(t.Key) == "Name" {
			return aws.StringValue(t.Value)
		}
	}
	return ""
}
