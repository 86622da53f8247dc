package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"creativecube.dev/internal/ids"
	"creativecube.dev/internal/project"
)

var _ project.Service = (*ProjectStore)(nil)

// ProjectStore implements project.Service on Postgres.
type ProjectStore struct {
	db *sql.DB
}

const projectCols = `id, user_id, name, service_type, city, latitude, longitude, status, assigned_to, created_at, updated_at`

func (s *ProjectStore) Create(ctx context.Context, userID string, p project.Project) (project.Project, error) {
	if err := p.Validate(); err != nil {
		return project.Project{}, err
	}
	now := time.Now().UTC()
	p.ID = ids.New()
	p.UserID = userID
	p.Status = project.StatusQueued
	p.AssignedTo = nil
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		insert into projects (id, user_id, name, service_type, city, latitude, longitude, status, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, p.ID, p.UserID, p.Name, p.ServiceType, p.City, p.Latitude, p.Longitude, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return project.Project{}, err
	}
	return p, nil
}

func (s *ProjectStore) Get(ctx context.Context, userID, id string) (project.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+projectCols+` from projects where id=$1 and user_id=$2
	`, id, userID)
	return scanProject(row)
}

func (s *ProjectStore) ListByUser(ctx context.Context, userID string) ([]project.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+projectCols+` from projects where user_id=$1 order by id desc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *ProjectStore) Assign(ctx context.Context, userID, id, engineerID string) (project.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		update projects set assigned_to=$3, updated_at=now()
		where id=$1 and user_id=$2
		returning `+projectCols+`
	`, id, userID, engineerID)
	return scanProject(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (project.Project, error) {
	var p project.Project
	var assigned sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.ServiceType, &p.City,
		&p.Latitude, &p.Longitude, &p.Status, &assigned, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return project.Project{}, project.ErrNotFound
	}
	if err != nil {
		return project.Project{}, err
	}
	if assigned.Valid {
		p.AssignedTo = &assigned.String
	}
	return p, nil
}
