package collector

import "github.com/aws/aws-sdk-go/service/ec2"

// tagValue looks up a tag by key among EC2-style tag structs, returning
// "" when absent.
func tagValue(tags []*ec2.Tag, key string) string {
	for _, t := range tags {
		if t.Key != nil && *t.Key == key {
			if t.Value != nil {
				return *t.Value
			}
		}
	}
	return ""
}

// tagsToMap flattens EC2-style tags into a plain string map for storage
// in ResourceRecord.Tags.
func tagsToMap(tags []*ec2.Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		if t.Key == nil {
			continue
		}
		v := ""
		if t.Value != nil {
			v = *t.Value
		}
		m[*t.Key] = v
	}
	return m
}

func stringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
