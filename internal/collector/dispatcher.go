package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws/session"
	"golang.org/x/sync/errgroup"

	"github.com/finopsbridge/engine/internal/logging"
)

// batchSize is the bounded parallel sweep size (§4.4, §5): the
// dispatcher's sole rate-limit mitigation against the upstream AWS APIs.
const batchSize = 4

var log = logging.For("resource-sync")

// Result is the outcome of one full dispatch: the concatenation of every
// collector's records in dispatch order, plus a collected error list —
// the sweep always completes even when individual services fail.
type Result struct {
	Records []ResourceRecord
	Errors  []string
}

// Dispatch runs every collector in batches of batchSize, awaiting each
// batch's full completion before starting the next. A failing collector
// contributes a "<Service>: <message>" entry to Errors and no records;
// it never aborts the sweep.
func Dispatch(ctx context.Context, sess *session.Session, collectors []Collector) Result {
	var result Result

	for start := 0; start < len(collectors); start += batchSize {
		end := start + batchSize
		if end > len(collectors) {
			end = len(collectors)
		}
		batch := collectors[start:end]

		records, errs := runBatch(ctx, sess, batch)
		result.Records = append(result.Records, records...)
		result.Errors = append(result.Errors, errs...)
	}

	return result
}

// runBatch fans a single batch of collectors out over goroutines and
// waits for all of them; records are reassembled in the batch's
// dispatch order regardless of goroutine completion order.
func runBatch(ctx context.Context, sess *session.Session, batch []Collector) ([]ResourceRecord, []string) {
	perCollector := make([][]ResourceRecord, len(batch))
	errStrings := make([]string, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range batch {
		i, c := i, c
		g.Go(func() error {
			records, err := c.Run(gctx, sess)
			if err != nil {
				errStrings[i] = fmt.Sprintf("%s: %s", c.Service, err.Error())
				log.WithError(err).WithField("collector", c.Service).Warn("collector failed")
				return nil
			}
			perCollector[i] = records
			return nil
		})
	}
	// errgroup.Wait only ever returns non-nil if a Go func itself returns
	// an error, which none of the above do — per-collector failures are
	// captured in errStrings instead so one failing service never cancels
	// its siblings mid-batch.
	_ = g.Wait()

	var records []ResourceRecord
	var errs []string
	for i := range batch {
		records = append(records, perCollector[i]...)
		if errStrings[i] != "" {
			errs = append(errs, errStrings[i])
		}
	}
	return records, errs
}
