package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/iam"
)

// maxIAMRoles caps the number of roles enumerated for performance —
// large accounts can carry thousands of roles, most inherited from
// service-linked defaults.
const maxIAMRoles = 200

// CollectIAM enumerates IAM roles (bounded at maxIAMRoles), users, and
// customer-managed policies, all emitted as service=IAM records.
func CollectIAM(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := iam.New(sess)
	var out []ResourceRecord

	rolesSeen := 0
	err := svc.ListRolesPagesWithContext(ctx, &iam.ListRolesInput{}, func(page *iam.ListRolesOutput, lastPage bool) bool {
		for _, r := range page.Roles {
			if rolesSeen >= maxIAMRoles {
				return false
			}
			typ := "role"
			name := aws.StringValue(r.RoleName)
			out = append(out, ResourceRecord{
				ResourceID: name,
				ARN:        r.Arn,
				Service:    "IAM",
				Type:       &typ,
				Name:       &name,
				Metadata:   map[string]interface{}{"create_date": r.CreateDate},
			})
			rolesSeen++
		}
		return rolesSeen < maxIAMRoles
	})
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	err = svc.ListUsersPagesWithContext(ctx, &iam.ListUsersInput{}, func(page *iam.ListUsersOutput, lastPage bool) bool {
		for _, u := range page.Users {
			typ := "user"
			name := aws.StringValue(u.UserName)
			out = append(out, ResourceRecord{
				ResourceID: name,
				ARN:        u.Arn,
				Service:    "IAM",
				Type:       &typ,
				Name:       &name,
				Metadata:   map[string]interface{}{"create_date": u.CreateDate},
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	err = svc.ListPoliciesPagesWithContext(ctx, &iam.ListPoliciesInput{Scope: aws.String("Local")}, func(page *iam.ListPoliciesOutput, lastPage bool) bool {
		for _, p := range page.Policies {
			typ := "policy"
			name := aws.StringValue(p.PolicyName)
			out = append(out, ResourceRecord{
				ResourceID: name,
				ARN:        p.Arn,
				Service:    "IAM",
				Type:       &typ,
				Name:       &name,
				Metadata:   map[string]interface{}{"attachment_count": aws.Int64Value(p.AttachmentCount)},
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}

	return out, nil
}
