package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/elasticbeanstalk"
)

// CollectElasticBeanstalk enumerates Elastic Beanstalk applications and
// their environments, emitted as distinct records sharing
// service=ElasticBeanstalk.
func CollectElasticBeanstalk(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := elasticbeanstalk.New(sess)
	var out []ResourceRecord

	appsOut, err := svc.DescribeApplicationsWithContext(ctx, &elasticbeanstalk.DescribeApplicationsInput{})
	if err != nil {
		return nil, fmt.Errorf("describe applications: %w", err)
	}
	for _, app := range appsOut.Applications {
		typ := "application"
		name := aws.StringValue(app.ApplicationName)
		out = append(out, ResourceRecord{
			ResourceID: name,
			Service:    "ElasticBeanstalk",
			Type:       &typ,
			Name:       &name,
		})
	}

	envsOut, err := svc.DescribeEnvironmentsWithContext(ctx, &elasticbeanstalk.DescribeEnvironmentsInput{})
	if err != nil {
		return nil, fmt.Errorf("describe environments: %w", err)
	}
	for _, env := range envsOut.Environments {
		typ := "environment"
		name := aws.StringValue(env.EnvironmentName)
		status := aws.StringValue(env.Status)
		out = append(out, ResourceRecord{
			ResourceID: aws.StringValue(env.EnvironmentId),
			ARN:        env.EnvironmentArn,
			Service:    "ElasticBeanstalk",
			Type:       &typ,
			Name:       &name,
			State:      &status,
			Metadata:   map[string]interface{}{"application_name": aws.StringValue(env.ApplicationName)},
		})
	}

	return out, nil
}
