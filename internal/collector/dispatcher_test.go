package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/stretchr/testify/assert"
)

func fakeCollector(service string, records []ResourceRecord, err error) Collector {
	return Collector{
		Service: service,
		Run: func(ctx context.Context, sess *session.Session) ([]ResourceRecord, error) {
			return records, err
		},
	}
}

func TestDispatch_ConcatenatesInDispatchOrder(t *testing.T) {
	collectors := []Collector{
		fakeCollector("A", []ResourceRecord{{ResourceID: "a1"}}, nil),
		fakeCollector("B", []ResourceRecord{{ResourceID: "b1"}}, nil),
		fakeCollector("C", []ResourceRecord{{ResourceID: "c1"}}, nil),
	}

	result := Dispatch(context.Background(), nil, collectors)
	assert.Empty(t, result.Errors)

	var ids []string
	for _, r := range result.Records {
		ids = append(ids, r.ResourceID)
	}
	assert.Equal(t, []string{"a1", "b1", "c1"}, ids)
}

func TestDispatch_FailingCollectorDoesNotAbortSweep(t *testing.T) {
	collectors := []Collector{
		fakeCollector("A", []ResourceRecord{{ResourceID: "a1"}}, nil),
		fakeCollector("B", nil, errors.New("throttled")),
		fakeCollector("C", []ResourceRecord{{ResourceID: "c1"}}, nil),
	}

	result := Dispatch(context.Background(), nil, collectors)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, []string{"B: throttled"}, result.Errors)
}

func TestDispatch_HandlesMoreThanOneBatch(t *testing.T) {
	var collectors []Collector
	for i := 0; i < 16; i++ {
		collectors = append(collectors, fakeCollector("svc", []ResourceRecord{{ResourceID: "r"}}, nil))
	}

	result := Dispatch(context.Background(), nil, collectors)
	assert.Len(t, result.Records, 16)
	assert.Empty(t, result.Errors)
}
