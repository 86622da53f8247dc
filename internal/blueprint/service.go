// Package blueprint handles uploaded drawings: storage, compliance analysis
// and report generation. Access is always checked against project ownership,
// so a blueprint on someone else's project behaves as missing.
package blueprint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"creativecube.dev/internal/analysis"
	"creativecube.dev/internal/blob"
	"creativecube.dev/internal/ids"
	"creativecube.dev/internal/project"
	"creativecube.dev/internal/stream"
)

func nowUTC() time.Time { return time.Now().UTC() }

// downloadURLTTL bounds how long a presigned file link stays valid.
const downloadURLTTL = 15 * time.Minute

// Service coordinates blueprint uploads, analysis runs and reports.
type Service struct {
	store    Store
	projects project.Service
	blobs    blob.Store
	analyzer analysis.Analyzer
	events   *stream.Stream
	now      func() time.Time
}

func NewService(store Store, projects project.Service, blobs blob.Store, analyzer analysis.Analyzer, events *stream.Stream) *Service {
	return &Service{
		store:    store,
		projects: projects,
		blobs:    blobs,
		analyzer: analyzer,
		events:   events,
		now:      nowUTC,
	}
}

// Upload stores the file and registers a blueprint on the user's project.
func (s *Service) Upload(ctx context.Context, userID, projectID, fileType, filename string, r io.Reader) (Blueprint, error) {
	if !ValidFileType(fileType) {
		return Blueprint{}, fmt.Errorf("%w: file type %q", ErrInvalidInput, fileType)
	}
	if filename == "" {
		return Blueprint{}, fmt.Errorf("%w: missing filename", ErrInvalidInput)
	}
	if _, err := s.projects.Get(ctx, userID, projectID); err != nil {
		return Blueprint{}, mapProjectErr(err)
	}

	key, url, err := s.blobs.Put(ctx, "blueprints", filename, r)
	if err != nil {
		return Blueprint{}, fmt.Errorf("store file: %w", err)
	}

	now := s.now()
	b := Blueprint{
		ID:        ids.New(),
		ProjectID: projectID,
		FileKey:   key,
		FileURL:   url,
		FileType:  fileType,
		Status:    StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateBlueprint(ctx, b); err != nil {
		return Blueprint{}, fmt.Errorf("create blueprint: %w", err)
	}
	return b, nil
}

// Get returns the blueprint if the user owns its project.
func (s *Service) Get(ctx context.Context, userID, blueprintID string) (Blueprint, error) {
	return s.ownedBlueprint(ctx, userID, blueprintID)
}

// ListByProject returns the project's blueprints, newest first. The project
// must belong to the user.
func (s *Service) ListByProject(ctx context.Context, userID, projectID string) ([]Blueprint, error) {
	if _, err := s.projects.Get(ctx, userID, projectID); err != nil {
		return nil, mapProjectErr(err)
	}
	return s.store.ListByProject(ctx, projectID)
}

// Process runs compliance analysis on the blueprint and stores the result.
// Subscribers on the event stream see the processing and completed
// transitions as they happen.
func (s *Service) Process(ctx context.Context, userID, blueprintID string) (Result, error) {
	b, err := s.ownedBlueprint(ctx, userID, blueprintID)
	if err != nil {
		return Result{}, err
	}

	if err := s.store.UpdateStatus(ctx, b.ID, StatusProcessing); err != nil {
		return Result{}, err
	}
	s.events.Publish(stream.Event{
		BlueprintID: b.ID,
		ProjectID:   b.ProjectID,
		Status:      StatusProcessing,
	})

	report, err := s.analyzer.Analyze(ctx, analysis.Input{
		BlueprintID: b.ID,
		FileKey:     b.FileKey,
		FileType:    b.FileType,
	})
	if err != nil {
		return Result{}, fmt.Errorf("analyze: %w", err)
	}

	now := s.now()
	res := Result{
		ID:              ids.New(),
		BlueprintID:     b.ID,
		ComplianceScore: report.ComplianceScore,
		Violations:      report.Violations,
		ExtractedData:   report.ExtractedData,
		RawResponse:     report.RawResponse,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.UpsertResult(ctx, res); err != nil {
		return Result{}, fmt.Errorf("store result: %w", err)
	}
	if err := s.store.UpdateStatus(ctx, b.ID, StatusCompleted); err != nil {
		return Result{}, err
	}

	score := res.ComplianceScore
	s.events.Publish(stream.Event{
		BlueprintID: b.ID,
		ProjectID:   b.ProjectID,
		Status:      StatusCompleted,
		Score:       &score,
	})
	return s.store.GetResult(ctx, b.ID)
}

// Result returns the stored analysis result. ErrNoResult before processing.
func (s *Service) Result(ctx context.Context, userID, blueprintID string) (Result, error) {
	b, err := s.ownedBlueprint(ctx, userID, blueprintID)
	if err != nil {
		return Result{}, err
	}
	return s.store.GetResult(ctx, b.ID)
}

// DownloadURL returns a presigned, time-limited URL for the blueprint file.
func (s *Service) DownloadURL(ctx context.Context, userID, blueprintID string) (string, error) {
	b, err := s.ownedBlueprint(ctx, userID, blueprintID)
	if err != nil {
		return "", err
	}
	url, err := s.blobs.PresignGet(ctx, b.FileKey, downloadURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return url, nil
}

// GenerateReport renders a plain-text compliance report, stores it and
// records its URL on the result.
func (s *Service) GenerateReport(ctx context.Context, userID, blueprintID string) (string, error) {
	b, err := s.ownedBlueprint(ctx, userID, blueprintID)
	if err != nil {
		return "", err
	}
	res, err := s.store.GetResult(ctx, b.ID)
	if err != nil {
		return "", err
	}

	body := renderReport(b, res, s.now())
	_, url, err := s.blobs.Put(ctx, "reports", b.ID+".txt", body)
	if err != nil {
		return "", fmt.Errorf("store report: %w", err)
	}
	if err := s.store.SetReportURL(ctx, b.ID, url); err != nil {
		return "", err
	}
	return url, nil
}

// ownedBlueprint loads the blueprint and verifies the user owns its project.
func (s *Service) ownedBlueprint(ctx context.Context, userID, blueprintID string) (Blueprint, error) {
	b, err := s.store.GetBlueprint(ctx, blueprintID)
	if err != nil {
		return Blueprint{}, err
	}
	if _, err := s.projects.Get(ctx, userID, b.ProjectID); err != nil {
		return Blueprint{}, mapProjectErr(err)
	}
	return b, nil
}

func mapProjectErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, project.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
