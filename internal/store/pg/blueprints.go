package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"creativecube.dev/internal/analysis"
	"creativecube.dev/internal/blueprint"
)

var _ blueprint.Store = (*BlueprintStore)(nil)

// BlueprintStore implements blueprint.Store on Postgres. Analysis payloads
// are kept as jsonb columns.
type BlueprintStore struct {
	db *sql.DB
}

func (s *BlueprintStore) CreateBlueprint(ctx context.Context, b blueprint.Blueprint) error {
	_, err := s.db.ExecContext(ctx, `
		insert into blueprints (id, project_id, file_key, file_url, file_type, status, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, b.ID, b.ProjectID, b.FileKey, b.FileURL, b.FileType, b.Status, b.CreatedAt, b.UpdatedAt)
	return err
}

func (s *BlueprintStore) GetBlueprint(ctx context.Context, id string) (blueprint.Blueprint, error) {
	var b blueprint.Blueprint
	err := s.db.QueryRowContext(ctx, `
		select id, project_id, file_key, file_url, file_type, status, created_at, updated_at
		from blueprints where id=$1
	`, id).Scan(&b.ID, &b.ProjectID, &b.FileKey, &b.FileURL, &b.FileType, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return blueprint.Blueprint{}, blueprint.ErrNotFound
	}
	if err != nil {
		return blueprint.Blueprint{}, err
	}
	return b, nil
}

func (s *BlueprintStore) ListByProject(ctx context.Context, projectID string) ([]blueprint.Blueprint, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, project_id, file_key, file_url, file_type, status, created_at, updated_at
		from blueprints where project_id=$1 order by id desc
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []blueprint.Blueprint
	for rows.Next() {
		var b blueprint.Blueprint
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.FileKey, &b.FileURL, &b.FileType, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *BlueprintStore) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `
		update blueprints set status=$2, updated_at=now() where id=$1
	`, id, status)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return blueprint.ErrNotFound
	}
	return nil
}

func (s *BlueprintStore) UpsertResult(ctx context.Context, r blueprint.Result) error {
	violations, err := json.Marshal(r.Violations)
	if err != nil {
		return fmt.Errorf("marshal violations: %w", err)
	}
	extracted, err := json.Marshal(r.ExtractedData)
	if err != nil {
		return fmt.Errorf("marshal extracted data: %w", err)
	}
	raw, err := json.Marshal(r.RawResponse)
	if err != nil {
		return fmt.Errorf("marshal raw response: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		insert into blueprint_results (id, blueprint_id, compliance_score, violations, extracted_data, raw_response, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
		on conflict (blueprint_id) do update
		set compliance_score = excluded.compliance_score,
		    violations       = excluded.violations,
		    extracted_data   = excluded.extracted_data,
		    raw_response     = excluded.raw_response,
		    updated_at       = excluded.updated_at
	`, r.ID, r.BlueprintID, r.ComplianceScore, violations, extracted, raw, r.CreatedAt, r.UpdatedAt)
	return err
}

func (s *BlueprintStore) GetResult(ctx context.Context, blueprintID string) (blueprint.Result, error) {
	var r blueprint.Result
	var violations, extracted, raw []byte
	var reportURL sql.NullString
	err := s.db.QueryRowContext(ctx, `
		select id, blueprint_id, compliance_score, violations, extracted_data, raw_response, report_url, created_at, updated_at
		from blueprint_results where blueprint_id=$1
	`, blueprintID).Scan(&r.ID, &r.BlueprintID, &r.ComplianceScore, &violations, &extracted, &raw, &reportURL, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return blueprint.Result{}, blueprint.ErrNoResult
	}
	if err != nil {
		return blueprint.Result{}, err
	}

	if len(violations) > 0 {
		var vs []analysis.Violation
		if err := json.Unmarshal(violations, &vs); err != nil {
			return blueprint.Result{}, fmt.Errorf("unmarshal violations: %w", err)
		}
		r.Violations = vs
	}
	if len(extracted) > 0 {
		if err := json.Unmarshal(extracted, &r.ExtractedData); err != nil {
			return blueprint.Result{}, fmt.Errorf("unmarshal extracted data: %w", err)
		}
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &r.RawResponse); err != nil {
			return blueprint.Result{}, fmt.Errorf("unmarshal raw response: %w", err)
		}
	}
	if reportURL.Valid {
		r.ReportURL = &reportURL.String
	}
	return r, nil
}

func (s *BlueprintStore) SetReportURL(ctx context.Context, blueprintID, url string) error {
	res, err := s.db.ExecContext(ctx, `
		update blueprint_results set report_url=$2, updated_at=now() where blueprint_id=$1
	`, blueprintID, url)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return blueprint.ErrNoResult
	}
	return nil
}
