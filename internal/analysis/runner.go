// Package analysis runs Bedrock Data Automation jobs to completion and
// reshapes their output into the normalized analysis document.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime"
	bdatypes "github.com/aws/aws-sdk-go-v2/service/bedrockdataautomationruntime/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gameplay-insights/backend/internal/models"
	"github.com/gameplay-insights/backend/pkg/apperrs"
	"github.com/gameplay-insights/backend/pkg/storage"
)

// Job terminal and intermediate states reported by the runtime API.
const (
	statusSuccess      = "Success"
	statusFailed       = "Failed"
	statusCancelled    = "Cancelled"
	statusInProgress   = "InProgress"
	statusServiceError = "ServiceError"
	statusClientError  = "ClientError"
)

// BedrockRuntime is the subset of the Data Automation runtime API the
// runner uses. *bedrockdataautomationruntime.Client satisfies it.
type BedrockRuntime interface {
	InvokeDataAutomationAsync(ctx context.Context, params *bedrockdataautomationruntime.InvokeDataAutomationAsyncInput, optFns ...func(*bedrockdataautomationruntime.Options)) (*bedrockdataautomationruntime.InvokeDataAutomationAsyncOutput, error)
	GetDataAutomationStatus(ctx context.Context, params *bedrockdataautomationruntime.GetDataAutomationStatusInput, optFns ...func(*bedrockdataautomationruntime.Options)) (*bedrockdataautomationruntime.GetDataAutomationStatusOutput, error)
}

// Downloader reads JSON documents addressed by full s3:// URI.
type Downloader interface {
	GetJSONByURI(ctx context.Context, uri string, out interface{}) error
}

// RunnerConfig holds job submission and polling settings. PollInterval and
// MaxWait default to 30s / 30min when zero.
type RunnerConfig struct {
	Region            string
	Bucket            string
	DefaultProjectARN string
	ProfileARN        string
	PollInterval      time.Duration
	MaxWait           time.Duration
}

// Runner submits a Data Automation job, polls it to a terminal state, and
// downloads its output documents. One job in flight per call; a submitted
// job cannot be cancelled from here.
type Runner struct {
	client BedrockRuntime
	docs   Downloader
	cfg    RunnerConfig
	logger *zap.Logger
	sleep  func(context.Context, time.Duration) error
}

// NewRunner creates a job runner.
func NewRunner(client BedrockRuntime, docs Downloader, cfg RunnerConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 30 * time.Minute
	}
	return &Runner{client: client, docs: docs, cfg: cfg, logger: logger, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// resolveProjectARN picks the analysis project: caller-supplied, else the
// configured default, else the well-known public project for the region.
func (r *Runner) resolveProjectARN(projectARN string) string {
	if projectARN != "" {
		return projectARN
	}
	if r.cfg.DefaultProjectARN != "" {
		return r.cfg.DefaultProjectARN
	}
	return fmt.Sprintf("arn:aws:bedrock:%s:aws:data-automation-project/public-default", r.cfg.Region)
}

// Run submits the analysis job for an uploaded video and waits for its
// output documents. Blocks up to MaxWait; polling uses a constant interval
// with no backoff.
func (r *Runner) Run(ctx context.Context, s3URI, projectARN string) (*models.CombinedOutput, error) {
	project := r.resolveProjectARN(projectARN)
	jobName := "game-analysis-" + uuid.New().String()
	outputURI := fmt.Sprintf("s3://%s/%s", r.cfg.Bucket, storage.JobOutputPrefix(jobName))

	resp, err := r.client.InvokeDataAutomationAsync(ctx, &bedrockdataautomationruntime.InvokeDataAutomationAsyncInput{
		InputConfiguration:  &bdatypes.InputConfiguration{S3Uri: aws.String(s3URI)},
		OutputConfiguration: &bdatypes.OutputConfiguration{S3Uri: aws.String(outputURI)},
		DataAutomationConfiguration: &bdatypes.DataAutomationConfiguration{
			DataAutomationProjectArn: aws.String(project),
		},
		DataAutomationProfileArn: aws.String(r.cfg.ProfileARN),
	})
	if err != nil {
		return nil, &apperrs.JobSubmissionError{Err: err}
	}
	invocationARN := aws.ToString(resp.InvocationArn)
	r.logger.Info("analysis job started",
		zap.String("invocation_arn", invocationARN),
		zap.String("project_arn", project),
		zap.String("input", s3URI))

	return r.await(ctx, invocationARN)
}

// await polls the job until Success, a failure state, or the wait ceiling.
func (r *Runner) await(ctx context.Context, invocationARN string) (*models.CombinedOutput, error) {
	var elapsed time.Duration
	for {
		out, err := r.client.GetDataAutomationStatus(ctx, &bedrockdataautomationruntime.GetDataAutomationStatusInput{
			InvocationArn: aws.String(invocationARN),
		})
		if err != nil {
			return nil, fmt.Errorf("get job status %s: %w", invocationARN, err)
		}
		status := string(out.Status)

		switch status {
		case statusSuccess:
			outputURI := ""
			if out.OutputConfiguration != nil {
				outputURI = aws.ToString(out.OutputConfiguration.S3Uri)
			}
			if outputURI == "" {
				return nil, &apperrs.ResultRetrievalError{Msg: "job succeeded but no output location reported"}
			}
			return r.retrieve(ctx, outputURI)
		case statusFailed, statusCancelled, statusServiceError, statusClientError:
			msg := aws.ToString(out.ErrorMessage)
			r.logger.Error("analysis job failed",
				zap.String("invocation_arn", invocationARN),
				zap.String("status", status),
				zap.String("message", msg))
			return nil, &apperrs.JobFailedError{Status: status, Message: msg}
		case statusInProgress:
		default:
			r.logger.Warn("unexpected job status, continuing to poll",
				zap.String("invocation_arn", invocationARN),
				zap.String("status", status))
		}

		if elapsed >= r.cfg.MaxWait {
			return nil, &apperrs.JobTimeoutError{Elapsed: r.cfg.MaxWait.String()}
		}
		if err := r.sleep(ctx, r.cfg.PollInterval); err != nil {
			return nil, err
		}
		elapsed += r.cfg.PollInterval
		r.logger.Info("polling analysis job",
			zap.String("invocation_arn", invocationARN),
			zap.Duration("elapsed", elapsed),
			zap.Duration("ceiling", r.cfg.MaxWait))
	}
}

// jobMetadata is the small document the job writes at its output location,
// pointing at the per-segment output files.
type jobMetadata struct {
	OutputMetadata []struct {
		SegmentMetadata []struct {
			StandardOutputPath string `json:"standard_output_path"`
			CustomOutputPath   string `json:"custom_output_path"`
		} `json:"segment_metadata"`
	} `json:"output_metadata"`
}

// retrieve downloads the job metadata and then whichever of the standard
// and custom output documents it references. A download failure after the
// job reported success is a hard failure; the source job will not re-run.
func (r *Runner) retrieve(ctx context.Context, outputURI string) (*models.CombinedOutput, error) {
	var meta jobMetadata
	if err := r.docs.GetJSONByURI(ctx, outputURI, &meta); err != nil {
		return nil, &apperrs.ResultRetrievalError{Msg: fmt.Sprintf("download job metadata: %v", err)}
	}

	var standardURI, customURI string
	if len(meta.OutputMetadata) > 0 && len(meta.OutputMetadata[0].SegmentMetadata) > 0 {
		seg := meta.OutputMetadata[0].SegmentMetadata[0]
		standardURI = seg.StandardOutputPath
		customURI = seg.CustomOutputPath
	}
	if standardURI == "" && customURI == "" {
		return nil, &apperrs.ResultRetrievalError{Msg: "job succeeded but no output files found in metadata"}
	}

	combined := &models.CombinedOutput{}
	if standardURI != "" {
		var std models.StandardOutput
		if err := r.docs.GetJSONByURI(ctx, standardURI, &std); err != nil {
			return nil, &apperrs.ResultRetrievalError{Msg: fmt.Sprintf("download standard output: %v", err)}
		}
		combined.StandardOutput = &std
	}
	if customURI != "" {
		var custom models.CustomOutput
		if err := r.docs.GetJSONByURI(ctx, customURI, &custom); err != nil {
			return nil, &apperrs.ResultRetrievalError{Msg: fmt.Sprintf("download custom output: %v", err)}
		}
		combined.CustomOutput = &custom
	}
	r.logger.Info("analysis outputs retrieved",
		zap.Bool("standard", combined.StandardOutput != nil),
		zap.Bool("custom", combined.CustomOutput != nil))
	return combined, nil
}
