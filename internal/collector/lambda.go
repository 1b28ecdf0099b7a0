package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/lambda"
)

// CollectLambda enumerates Lambda functions.
func CollectLambda(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := lambda.New(sess)

	var out []ResourceRecord
	err := svc.ListFunctionsPagesWithContext(ctx, &lambda.ListFunctionsInput{}, func(page *lambda.ListFunctionsOutput, lastPage bool) bool {
		for _, fn := range page.Functions {
			runtime := aws.StringValue(fn.Runtime)
			name := aws.StringValue(fn.FunctionName)
			arn := fn.FunctionArn
			out = append(out, ResourceRecord{
				ResourceID: name,
				ARN:        arn,
				Service:    "Lambda",
				Type:       &runtime,
				Name:       &name,
				Metadata: map[string]interface{}{
					"memory_mb":   aws.Int64Value(fn.MemorySize),
					"timeout_sec": aws.Int64Value(fn.Timeout),
				},
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list functions: %w", err)
	}
	return out, nil
}
