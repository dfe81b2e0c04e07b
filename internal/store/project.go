package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/foliohq/folio/internal/model"
)

type ProjectStore struct {
	db *sql.DB
}

func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func scanProject(scanner interface{ Scan(...any) error }) (*model.Project, error) {
	var p model.Project
	var technologies string

	err := scanner.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Description, &technologies, &p.Thumbnail,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(technologies), &p.Technologies); err != nil {
		return nil, fmt.Errorf("decode technologies: %w", err)
	}
	return &p, nil
}

const projectCols = `id, user_id, title, description, technologies, thumbnail, created_at, updated_at`

func encodeTechnologies(technologies []string) (string, error) {
	if technologies == nil {
		technologies = []string{}
	}
	b, err := json.Marshal(technologies)
	if err != nil {
		return "", fmt.Errorf("encode technologies: %w", err)
	}
	return string(b), nil
}

func (s *ProjectStore) Create(userID, title, description string, technologies []string, thumbnail string) (*model.Project, error) {
	tech, err := encodeTechnologies(technologies)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO projects (id, user_id, title, description, technologies, thumbnail) VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, title, description, tech, thumbnail,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProjectStore) GetByID(id string) (*model.Project, error) {
	row := s.db.QueryRow(`SELECT `+projectCols+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// List returns all projects, newest first.
func (s *ProjectStore) List() ([]*model.Project, error) {
	rows, err := s.db.Query(`SELECT ` + projectCols + ` FROM projects ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []*model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// Update modifies a project owned by userID. Returns ErrNotFound if the
// project does not exist or belongs to someone else.
func (s *ProjectStore) Update(id, userID, title, description string, technologies []string, thumbnail string) (*model.Project, error) {
	tech, err := encodeTechnologies(technologies)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`UPDATE projects SET title = ?, description = ?, technologies = ?, thumbnail = ?, updated_at = datetime('now') WHERE id = ? AND user_id = ?`,
		title, description, tech, thumbnail, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(id)
}

// Delete removes a project owned by userID. Returns ErrNotFound if the
// project does not exist or belongs to someone else.
func (s *ProjectStore) Delete(id, userID string) error {
	result, err := s.db.Exec(`DELETE FROM projects WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
