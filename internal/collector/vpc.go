package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
)

// CollectVPC enumerates VPCs, subnets, security groups, NAT gateways,
// internet gateways, and elastic IPs — all emitted as distinct records
// sharing service=VPC, distinguished by Type.
func CollectVPC(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
	svc := ec2.New(sess)
	var out []ResourceRecord

	vpcsOut, err := svc.DescribeVpcsWithContext(ctx, &ec2.DescribeVpcsInput{})
	if err != nil {
		return nil, fmt.Errorf("describe vpcs: %w", err)
	}
	for _, v := range vpcsOut.Vpcs {
		typ := "vpc"
		state := aws.StringValue(v.State)
		out = append(out, ResourceRecord{
			ResourceID: aws.StringValue(v.VpcId),
			Service:    "VPC",
			Type:       &typ,
			Name:       stringPtrOrNil(tagValue(v.Tags, "Name")),
			Tags:       tagsToMap(v.Tags),
			State:      &state,
			Metadata:   map[string]interface{}{"cidr_block": aws.StringValue(v.CidrBlock)},
		})
	}

	subnetsOut, err := svc.DescribeSubnetsWithContext(ctx, &ec2.DescribeSubnetsInput{})
	if err != nil {
		return nil, fmt.Errorf("describe subnets: %w", err)
	}
	for _, s := range subnetsOut.Subnets {
		typ := "subnet"
		state := aws.StringValue(s.State)
		out = append(out, ResourceRecord{
			ResourceID: aws.StringValue(s.SubnetId),
			Service:    "VPC",
			Type:       &typ,
			Name:       stringPtrOrNil(tagValue(s.Tags, "Name")),
			Tags:       tagsToMap(s.Tags),
			State:      &state,
			Metadata: map[string]interface{}{
				"vpc_id":            aws.StringValue(s.VpcId),
				"availability_zone": aws.StringValue(s.AvailabilityZone),
			},
		})
	}

	sgsOut, err := svc.DescribeSecurityGroupsWithContext(ctx, &ec2.DescribeSecurityGroupsInput{})
	if err != nil {
		return nil, fmt.Errorf("describe security groups: %w", err)
	}
	for _, sg := range sgsOut.SecurityGroups {
		typ := "security-group"
		name := aws.StringValue(sg.GroupName)
		out = append(out, ResourceRecord{
			ResourceID: aws.StringValue(sg.GroupId),
			Service:    "VPC",
			Type:       &typ,
			Name:       &name,
			Tags:       tagsToMap(sg.Tags),
			Metadata:   map[string]interface{}{"vpc_id": aws.StringValue(sg.VpcId)},
		})
	}

	natOut, err := svc.DescribeNatGatewaysWithContext(ctx, &ec2.DescribeNatGatewaysInput{})
	if err != nil {
		return nil, fmt.Errorf("describe nat gateways: %w", err)
	}
	for _, gw := range natOut.NatGateways {
		typ := "nat-gateway"
		state := aws.StringValue(gw.State)
		out = append(out, ResourceRecord{
			ResourceID: aws.StringValue(gw.NatGatewayId),
			Service:    "VPC",
			Type:       &typ,
			Tags:       tagsToMap(gw.Tags),
			State:      &state,
			Metadata:   map[string]interface{}{"vpc_id": aws.StringValue(gw.VpcId)},
		})
	}

	igwOut, err := svc.DescribeInternetGatewaysWithContext(ctx, &ec2.DescribeInternetGatewaysInput{})
	if err != nil {
		return nil, fmt.Errorf("describe internet gateways: %w", err)
	}
	for _, igw := range igwOut.InternetGateways {
		typ := "internet-gateway"
		out = append(out, ResourceRecord{
			ResourceID: aws.StringValue(igw.InternetGatewayId),
			Service:    "VPC",
			Type:       &typ,
			Tags:       tagsToMap(igw.Tags),
		})
	}

	addrOut, err := svc.DescribeAddressesWithContext(ctx, &ec2.DescribeAddressesInput{})
	if err != nil {
		return nil, fmt.Errorf("describe addresses: %w", err)
	}
	for _, addr := range addrOut.Addresses {
		typ := "elastic-ip"
		out = append(out, ResourceRecord{
			ResourceID: aws.StringValue(addr.AllocationId),
			Service:    "VPC",
			Type:       &typ,
			Name:       stringPtrOrNil(aws.StringValue(addr.PublicIp)),
			Tags:       tagsToMap(addr.Tags),
			Metadata:   map[string]interface{}{"association_id": aws.StringValue(addr.AssociationId)},
		})
	}

	return out, nil
}
