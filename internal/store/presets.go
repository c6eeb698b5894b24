package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/manash/imgstudio/pkg/models"
)

var ErrPresetNotFound = errors.New("preset not found")

func (s *Store) SavePreset(ctx context.Context, p *models.Preset) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO presets (id, name, aspect_ratio, custom_ratio, resolution, style, model, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   aspect_ratio = excluded.aspect_ratio,
		   custom_ratio = excluded.custom_ratio,
		   resolution = excluded.resolution,
		   style = excluded.style,
		   model = excluded.model`,
		p.ID, p.Name, string(p.Options.AspectRatio), p.Options.CustomRatio,
		string(p.Options.Resolution), nullString(p.Options.Style), p.Options.Model, p.CreatedAt)
	return err
}

func (s *Store) GetPreset(ctx context.Context, name string) (*models.Preset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, aspect_ratio, custom_ratio, resolution, style, model, created_at
		 FROM presets WHERE name = ?`, name)

	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return p, err
}

func (s *Store) ListPresets(ctx context.Context) ([]*models.Preset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, aspect_ratio, custom_ratio, resolution, style, model, created_at
		 FROM presets ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*models.Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

func (s *Store) DeletePreset(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM presets WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreset(row rowScanner) (*models.Preset, error) {
	p := &models.Preset{}
	var ratio, resolution string
	var style sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &ratio, &p.Options.CustomRatio,
		&resolution, &style, &p.Options.Model, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Options.AspectRatio = models.AspectRatio(ratio)
	p.Options.Resolution = models.Resolution(resolution)
	p.Options.Style = style.String
	return p, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
