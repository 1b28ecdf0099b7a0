// Package jobrunner implements the engine's per-workspace job lifecycle:
// sync the resource inventory, run the analysis path, upsert the
// results. Grounded on worker_/enforcement.go's run/processProvider
// shape, generalized from "per cloud provider, evaluate policies" to
// "per workspace, collect + analyze + persist".
package jobrunner

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/finopsbridge/engine/internal/analyzer"
	"github.com/finopsbridge/engine/internal/cloudclient"
	"github.com/finopsbridge/engine/internal/collector"
	"github.com/finopsbridge/engine/internal/logging"
	"github.com/finopsbridge/engine/internal/pricing"
	"github.com/finopsbridge/engine/internal/store"
)

var log = logging.For("engine")

// Runner drives processWorkspace for one workspace at a time; the
// scheduler is responsible for sequencing calls across workspaces.
type Runner struct {
	store   *store.Store
	factory cloudclient.Factory
	region  string

	// inventorySync defaults to the real collector-backed sweep; tests
	// substitute a stub so the analyzer/persistence path can be
	// exercised without a live AWS session.
	inventorySync func(ctx context.Context, ws *store.Workspace) error
}

// New builds a Runner. region is the fallback AWS region used when a
// workspace does not carry its own.
func New(st *store.Store, factory cloudclient.Factory, region string) *Runner {
	r := &Runner{store: st, factory: factory, region: region}
	r.inventorySync = r.syncInventory
	return r
}

// SetInventorySync overrides the inventory-sync step, bypassing the real
// collector sweep. Exposed for tests in other packages (e.g.
// internal/scheduler) that need to exercise the analysis/persistence
// path without a live AWS session.
func (r *Runner) SetInventorySync(fn func(ctx context.Context, ws *store.Workspace) error) {
	r.inventorySync = fn
}

// ProcessWorkspace runs the full 8-step lifecycle for one workspace.
func (r *Runner) ProcessWorkspace(ctx context.Context, workspaceID string) error {
	ws, err := r.store.GetWorkspace(workspaceID)
	if err != nil {
		return fmt.Errorf("load workspace %s: %w", workspaceID, err)
	}
	if ws == nil {
		log.WithField("workspace_id", workspaceID).Warn("workspace not found, skipping")
		return nil
	}

	now := time.Now().UTC()
	run, err := r.store.CreateJobRun(ws.ID, now)
	if err != nil {
		return fmt.Errorf("create job run for %s: %w", ws.ID, err)
	}
	runLog := log.WithField("workspace_id", ws.ID).WithField("job_run_id", run.ID)

	if err := r.inventorySync(ctx, ws); err != nil {
		runLog.WithError(err).Warn("inventory sync failed, continuing job")
	}

	recsFound, err := r.runAnalysis(ctx, ws)
	if err != nil {
		failAt := time.Now().UTC()
		if ferr := r.store.FailJobRun(run.ID, err.Error(), failAt); ferr != nil {
			runLog.WithError(ferr).Error("failed to record job failure")
		}
		return err
	}

	if err := r.store.SetWorkspaceStatus(ws.ID, store.StatusConnected); err != nil {
		err = fmt.Errorf("set workspace %s connected: %w", ws.ID, err)
		if ferr := r.store.FailJobRun(run.ID, err.Error(), time.Now().UTC()); ferr != nil {
			runLog.WithError(ferr).Error("failed to record job failure")
		}
		return err
	}

	if err := r.store.CompleteJobRun(run.ID, recsFound, time.Now().UTC()); err != nil {
		return fmt.Errorf("complete job run %s: %w", run.ID, err)
	}
	runLog.WithField("recommendations_found", recsFound).Info("job completed")
	return nil
}

// syncInventory is step 3: the full collector sweep, persisted, then a
// stale sweep. Any failure here is the caller's to catch and log — it
// must never abort the job.
func (r *Runner) syncInventory(ctx context.Context, ws *store.Workspace) error {
	sess, err := cloudclient.AssumeRoleSession(ws.RoleArn, r.region)
	if err != nil {
		return fmt.Errorf("assume role for inventory sync: %w", err)
	}

	result := collector.Dispatch(ctx, sess, collector.All())
	for _, e := range result.Errors {
		log.WithField("workspace_id", ws.ID).Warn("collector error: " + e)
	}

	now := time.Now().UTC()
	for _, rec := range result.Records {
		in := store.UpsertResourceInput{
			WorkspaceID:          ws.ID,
			ResourceID:           rec.ResourceID,
			ARN:                  rec.ARN,
			Service:              rec.Service,
			Type:                 rec.Type,
			Name:                 rec.Name,
			Tags:                 rec.Tags,
			State:                rec.State,
			EstimatedMonthlyCost: rec.EstimatedMonthlyCost,
			Metadata:             rec.Metadata,
			Now:                  now,
		}
		if err := r.store.UpsertResource(in); err != nil {
			log.WithField("workspace_id", ws.ID).WithField("resource_id", rec.ResourceID).WithError(err).Warn("upsert resource failed, skipping")
		}
	}

	if _, err := r.store.SweepStaleResources(ws.ID, now); err != nil {
		return fmt.Errorf("sweep stale resources: %w", err)
	}
	return nil
}

// analysisData is the intermediate shape runAnalysis gathers before
// handing descriptors to the analyzer library.
type analysisData struct {
	ec2     []cloudclient.EC2Instance
	cpu     []cloudclient.CPUMetric
	ebs     []cloudclient.EBSVolume
	s3      []cloudclient.S3Bucket
	rds     []cloudclient.RDSInstance
	lambda  []cloudclient.LambdaFunction
	lbs     []cloudclient.LoadBalancer
	nats    []cloudclient.NATGateway
	eips    []cloudclient.ElasticIP
}

// runAnalysis is steps 4-6: fetch, analyze, and upsert cost + recommendations.
// Any error here is fatal for the job per the (a)/(e) error taxonomy
// entries (assume-role failure, analyzer exception).
func (r *Runner) runAnalysis(ctx context.Context, ws *store.Workspace) (int, error) {
	client, err := r.factory.NewClient(ws.RoleArn, r.region)
	if err != nil {
		return 0, fmt.Errorf("construct cloud client: %w", err)
	}

	data, err := r.fetchAnalysisData(ctx, client)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	recs := r.runAnalyzers(data)

	upserts := 0
	for _, rec := range recs {
		in := store.UpsertRecommendationInput{
			WorkspaceID:             ws.ID,
			ResourceID:              rec.ResourceID,
			Type:                    rec.Type,
			Description:             rec.Description,
			EstimatedMonthlySavings: rec.EstimatedMonthlySavings,
			Confidence:              store.Confidence(rec.Confidence),
			Metadata:                rec.Metadata,
		}
		if err := r.store.UpsertRecommendation(in); err != nil {
			log.WithField("workspace_id", ws.ID).WithField("resource_id", rec.ResourceID).WithError(err).Warn("upsert recommendation failed, skipping")
			continue
		}
		upserts++
	}

	r.upsertAnalysisCosts(ws.ID, data, now)

	return upserts, nil
}

// fetchAnalysisData launches the eight list calls concurrently, then the
// EC2 CPU-metric fetch once EC2 ids are known (§5).
func (r *Runner) fetchAnalysisData(ctx context.Context, client cloudclient.Client) (analysisData, error) {
	var data analysisData

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { data.ec2, err = client.ListEC2Instances(gctx); return })
	g.Go(func() (err error) { data.ebs, err = client.ListEBSVolumes(gctx); return })
	g.Go(func() (err error) { data.s3, err = client.ListS3Buckets(gctx); return })
	g.Go(func() (err error) { data.rds, err = client.ListRDSInstances(gctx); return })
	g.Go(func() (err error) { data.lambda, err = client.ListLambdaFunctions(gctx); return })
	g.Go(func() (err error) { data.lbs, err = client.ListLoadBalancers(gctx); return })
	g.Go(func() (err error) { data.nats, err = client.ListNatGateways(gctx); return })
	g.Go(func() (err error) { data.eips, err = client.ListElasticIPs(gctx); return })
	if err := g.Wait(); err != nil {
		return analysisData{}, fmt.Errorf("analysis-path list fetch: %w", err)
	}

	ids := make([]string, 0, len(data.ec2))
	for _, inst := range data.ec2 {
		ids = append(ids, inst.InstanceID)
	}
	cpu, err := client.GetEC2CPUMetrics(ctx, ids)
	if err != nil {
		return analysisData{}, fmt.Errorf("fetch ec2 cpu metrics: %w", err)
	}
	data.cpu = cpu

	return data, nil
}

// runAnalyzers maps analysis-path descriptors into each heuristic's input
// shape and concatenates the resulting recommendations.
func (r *Runner) runAnalyzers(data analysisData) []analyzer.Recommendation {
	cpuByID := make(map[string]cloudclient.CPUMetric, len(data.cpu))
	for _, m := range data.cpu {
		cpuByID[m.InstanceID] = m
	}

	var out []analyzer.Recommendation

	ec2Descriptors := make([]analyzer.EC2Descriptor, 0, len(data.ec2))
	for _, inst := range data.ec2 {
		m := cpuByID[inst.InstanceID]
		ec2Descriptors = append(ec2Descriptors, analyzer.EC2Descriptor{
			ResourceID:    inst.InstanceID,
			Name:          inst.Name,
			State:         inst.State,
			InstanceType:  inst.InstanceType,
			CurrentHourly: pricing.EC2Hourly(inst.InstanceType),
			PeriodDays:    m.PeriodDays,
			AvgCPU:        m.Average,
		})
	}
	out = append(out, analyzer.AnalyzeEC2DownSize(ec2Descriptors)...)

	ebsDescriptors := make([]analyzer.EBSDescriptor, 0, len(data.ebs))
	for _, v := range data.ebs {
		ebsDescriptors = append(ebsDescriptors, analyzer.EBSDescriptor{
			ResourceID:  v.VolumeID,
			State:       v.State,
			Attached:    v.Attached,
			CreateTime:  v.CreateTime,
			SizeGiB:     v.SizeGiB,
			PricePerGiB: pricing.EBSPerGiB(v.VolumeType),
		})
	}
	out = append(out, analyzer.AnalyzeEBSOrphan(ebsDescriptors, time.Now().UTC())...)

	s3Descriptors := make([]analyzer.S3Descriptor, 0, len(data.s3))
	for _, b := range data.s3 {
		s3Descriptors = append(s3Descriptors, analyzer.S3Descriptor{
			ResourceID:       b.Name,
			StorageClass:     b.StorageClass,
			LastAccessedDays: b.LastAccessedDays,
			SizeGB:           pricing.S3BytesToGB(b.SizeBytes),
		})
	}
	out = append(out, analyzer.AnalyzeS3Lifecycle(s3Descriptors)...)

	rdsDescriptors := make([]analyzer.RDSDescriptor, 0, len(data.rds))
	for _, d := range data.rds {
		rdsDescriptors = append(rdsDescriptors, analyzer.RDSDescriptor{
			ResourceID:     d.InstanceID,
			InstanceClass:  d.InstanceClass,
			Status:         d.Status,
			CurrentHourly:  pricing.RDSHourly(d.InstanceClass),
			AvgCPU:         d.AvgCPU,
			AvgConnections: d.AvgConnections,
		})
	}
	out = append(out, analyzer.AnalyzeRDSDownSize(rdsDescriptors)...)

	lambdaDescriptors := make([]analyzer.LambdaDescriptor, 0, len(data.lambda))
	for _, fn := range data.lambda {
		lambdaDescriptors = append(lambdaDescriptors, analyzer.LambdaDescriptor{
			ResourceID:           fn.FunctionName,
			FunctionName:         fn.FunctionName,
			MemoryMB:             fn.MemoryMB,
			TimeoutSec:           fn.TimeoutSec,
			AvgInvocationsPerDay: fn.AvgInvocationsPerDay,
			AvgDurationMs:        fn.AvgDurationMs,
			PricePerGBSecond:     pricing.LambdaPricePerGBSecond,
		})
	}
	out = append(out, analyzer.AnalyzeLambdaUnused(lambdaDescriptors)...)
	out = append(out, analyzer.AnalyzeLambdaOversized(lambdaDescriptors)...)

	elbDescriptors := make([]analyzer.ELBDescriptor, 0, len(data.lbs))
	for _, lb := range data.lbs {
		elbDescriptors = append(elbDescriptors, analyzer.ELBDescriptor{
			ResourceID:         lb.Arn,
			Name:               lb.Name,
			State:              lb.State,
			Hourly:             pricing.ALBHourly,
			TotalTargetCount:   lb.TotalTargetCount,
			RequestCountPerDay: lb.RequestCountPerDay,
		})
	}
	out = append(out, analyzer.AnalyzeELBNoTargets(elbDescriptors)...)
	out = append(out, analyzer.AnalyzeELBNoTraffic(elbDescriptors)...)

	eipDescriptors := make([]analyzer.EIPDescriptor, 0, len(data.eips))
	for _, eip := range data.eips {
		eipDescriptors = append(eipDescriptors, analyzer.EIPDescriptor{
			ResourceID:    eip.AllocationID,
			AssociationID: eip.AssociationID,
		})
	}
	out = append(out, analyzer.AnalyzeEIPUnassociated(eipDescriptors)...)

	natDescriptors := make([]analyzer.NATGatewayDescriptor, 0, len(data.nats))
	for _, gw := range data.nats {
		natDescriptors = append(natDescriptors, analyzer.NATGatewayDescriptor{
			ResourceID:           gw.NatGatewayID,
			State:                gw.State,
			BytesProcessedPerDay: gw.BytesProcessedPerDay,
			Fixed:                pricing.NATGatewayHourly,
			DataTransferPerGB:    pricing.NATGatewayPerGBTransfer,
		})
	}
	out = append(out, analyzer.AnalyzeNATGatewayIdle(natDescriptors)...)

	return out
}

// upsertAnalysisCosts is step 5: the analysis-path resources are a
// subset of the collector-path inventory and only refresh the same
// rows' cost/state fields (SPEC_FULL.md §9 resolves the overlap this
// way — collectors remain the sole source of new Resource rows; this
// path never creates one).
func (r *Runner) upsertAnalysisCosts(workspaceID string, data analysisData, now time.Time) {
	upsertCost := func(resourceID string, cost float64, state *string) {
		c := cost
		if err := r.store.UpdateResourceCost(workspaceID, resourceID, &c, state, now); err != nil {
			log.WithField("workspace_id", workspaceID).WithField("resource_id", resourceID).WithError(err).Warn("update analysis-path cost failed, skipping")
		}
	}

	for _, inst := range data.ec2 {
		state := inst.State
		upsertCost(inst.InstanceID, pricing.EC2MonthlyCost(inst.InstanceType, inst.State), &state)
	}
	for _, v := range data.ebs {
		state := v.State
		upsertCost(v.VolumeID, pricing.EBSMonthlyCost(v.VolumeType, v.SizeGiB), &state)
	}
	for _, b := range data.s3 {
		upsertCost(b.Name, pricing.S3MonthlyCost(b.SizeBytes, b.StorageClass), nil)
	}
	for _, d := range data.rds {
		state := d.Status
		upsertCost(d.InstanceID, pricing.RDSMonthlyCost(d.InstanceClass, d.Status), &state)
	}
	for _, fn := range data.lambda {
		upsertCost(fn.FunctionName, pricing.LambdaMonthlyCost(fn.AvgInvocationsPerDay, fn.AvgDurationMs, fn.MemoryMB), nil)
	}
	for _, lb := range data.lbs {
		state := lb.State
		upsertCost(lb.Arn, pricing.ALBMonthlyCost(lb.State), &state)
	}
	for _, gw := range data.nats {
		state := gw.State
		dailyGB := float64(gw.BytesProcessedPerDay) / (1 << 30)
		upsertCost(gw.NatGatewayID, pricing.NATGatewayMonthlyCost(dailyGB), &state)
	}
	for _, eip := range data.eips {
		upsertCost(eip.AllocationID, pricing.ElasticIPMonthlyCost(eip.AssociationID), nil)
	}
}
