package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/repository"
	"github.com/veridian-estates/pipeline-api/internal/storage"
	"go.uber.org/zap"
)

// importMaxErrors caps how many row errors a single job records
const importMaxErrors = 100

// ImportService ingests lead batches from CSV files. The raw file is kept
// in blob storage for audit, each valid row goes through the same intake
// path as a manually created lead, and row failures are collected per job
// instead of aborting the batch.
type ImportService struct {
	workflow *WorkflowService
	refRepo  *repository.ReferenceRepository
	jobRepo  *repository.ImportJobRepository
	store    storage.Storage
	logger   *zap.Logger
}

func NewImportService(
	workflow *WorkflowService,
	refRepo *repository.ReferenceRepository,
	jobRepo *repository.ImportJobRepository,
	store storage.Storage,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		workflow: workflow,
		refRepo:  refRepo,
		jobRepo:  jobRepo,
		store:    store,
		logger:   logger,
	}
}

// ImportCSV stores the file, parses it and creates one lead per row.
// Expected header: name,email,phone,source,language,centre,value_tier,notes.
// The source, language and centre columns carry slugs/codes, not UUIDs.
func (s *ImportService) ImportCSV(ctx context.Context, fileName string, file io.Reader) (*domain.ImportResultDTO, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(file); err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	storagePath, _, err := s.store.Upload(ctx, fileName, "text/csv", bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to store import file: %w", err)
	}

	job := &domain.ImportJob{
		FileName:    fileName,
		StoragePath: storagePath,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}

	reader := csv.NewReader(&buf)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: import file has no header row", ErrValidation)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("%w: import file is missing the name column", ErrValidation)
	}

	var rowErrors []string
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		// Every data row counts, malformed or not, so that
		// TotalRows == CreatedCount + FailedCount holds.
		job.TotalRows++
		if err != nil {
			job.FailedCount++
			rowErrors = appendRowError(rowErrors, rowNum, err)
			continue
		}

		req, err := s.rowToRequest(ctx, columns, record)
		if err != nil {
			job.FailedCount++
			rowErrors = appendRowError(rowErrors, rowNum, err)
			continue
		}

		if _, err := s.workflow.CreateAndAssign(ctx, req, domain.IntakeChannelImport); err != nil {
			job.FailedCount++
			rowErrors = appendRowError(rowErrors, rowNum, err)
			continue
		}
		job.CreatedCount++
	}

	job.Errors = strings.Join(rowErrors, "\n")
	if err := s.jobRepo.Update(ctx, job); err != nil {
		s.logger.Warn("failed to persist import job result",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("lead import completed",
		zap.String("job_id", job.ID.String()),
		zap.String("file", fileName),
		zap.Int("total", job.TotalRows),
		zap.Int("created", job.CreatedCount),
		zap.Int("failed", job.FailedCount),
	)

	return &domain.ImportResultDTO{
		JobID:        job.ID,
		FileName:     job.FileName,
		TotalRows:    job.TotalRows,
		CreatedCount: job.CreatedCount,
		FailedCount:  job.FailedCount,
		Errors:       rowErrors,
	}, nil
}

// ListJobs returns recent import jobs, newest first
func (s *ImportService) ListJobs(ctx context.Context, limit int) ([]domain.ImportJob, error) {
	return s.jobRepo.List(ctx, limit)
}

func (s *ImportService) rowToRequest(ctx context.Context, columns map[string]int, record []string) (*domain.CreateLeadRequest, error) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	req := &domain.CreateLeadRequest{
		Name:  cell("name"),
		Email: cell("email"),
		Phone: cell("phone"),
		Notes: cell("notes"),
	}
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	if slug := cell("source"); slug != "" {
		source, err := s.refRepo.FindLeadSourceBySlug(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("unknown source %q", slug)
		}
		req.SourceID = &source.ID
	}
	if code := cell("language"); code != "" {
		language, err := s.refRepo.FindLanguageByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("unknown language %q", code)
		}
		req.LanguageID = &language.ID
	}
	if code := cell("centre"); code != "" {
		centre, err := s.refRepo.FindCentreByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("unknown centre %q", code)
		}
		req.CentreID = &centre.ID
	}
	if tier := cell("value_tier"); tier != "" {
		vt := domain.ValueTier(tier)
		if !vt.IsValid() {
			return nil, fmt.Errorf("unknown value tier %q", tier)
		}
		req.ValueTier = &vt
	}

	return req, nil
}

func appendRowError(errs []string, rowNum int, err error) []string {
	if len(errs) >= importMaxErrors {
		return errs
	}
	return append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
}
