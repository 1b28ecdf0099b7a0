package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// CollectDynamoDB enumerates DynamoDB tables. Per-table describe
// failures fall back to a bare record rather than failing the sweep.
func CollectDynamoDB(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := dynamodb.New(sess)

	var names []string
	err := svc.ListTablesPagesWithContext(ctx, &dynamodb.ListTablesInput{}, func(page *dynamodb.ListTablesOutput, lastPage bool) bool {
		for _, n := range page.TableNames {
			names = append(names, aws.StringValue(n))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	var out []ResourceRecord
	for _, name := range names {
		rec := ResourceRecord{ResourceID: name, Service: "DynamoDB", Name: &name, Metadata: map[string]interface{}{}}

		desc, err := svc.DescribeTableWithContext(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
		if err != nil || desc.Table == nil {
			out = append(out, rec)
			continue
		}
		status := aws.StringValue(desc.Table.TableStatus)
		rec.ARN = desc.Table.TableArn
		rec.State = &status
		rec.Metadata["item_count"] = aws.Int64Value(desc.Table.ItemCount)
		rec.Metadata["size_bytes"] = aws.Int64Value(desc.Table.TableSizeBytes)
		if desc.Table.BillingModeSummary != nil {
			rec.Metadata["billing_mode"] = aws.StringValue(desc.Table.BillingModeSummary.BillingMode)
		}
		out = append(out, rec)
	}
	return out, nil
}
