package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "github.com/enerscope/enerscope/internal/errors"
	"github.com/enerscope/enerscope/internal/logger"
	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/repository"
)

type syncProfileRepository struct {
	db *sql.DB
}

// NewSyncProfileRepository creates a SyncProfileRepository implementation
func NewSyncProfileRepository(db *sql.DB) repository.SyncProfileRepository {
	return &syncProfileRepository{db: db}
}

func (r *syncProfileRepository) GetOrCreate(ctx context.Context, name string, startDate time.Time, baseUnit string) (*models.SyncProfile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("get-or-create sync profile: %s", name)

	// The conflict update is a no-op write so RETURNING yields the existing
	// row with its stored start_date and checkpoint intact.
	var p models.SyncProfile
	err := r.db.QueryRowContext(ctx, `
INSERT INTO sync_profile (name, is_active, start_date, base_unit)
VALUES (?, 1, ?, ?)
ON CONFLICT(name) DO UPDATE SET name = excluded.name
RETURNING id, name, is_active, start_date, last_synced, base_unit
`, name, startDate.UTC(), baseUnit).Scan(&p.ID, &p.Name, &p.IsActive, &p.StartDate, &p.LastSynced, &p.BaseUnit)
	if err != nil {
		log.Error("failed to get-or-create sync profile: %v", err)
		return nil, err
	}
	log.Debug("sync profile ready: id=%d, active=%t", p.ID, p.IsActive)
	return &p, nil
}

func (r *syncProfileRepository) Update(ctx context.Context, id int64, isActive bool, startDate time.Time, lastSynced *time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("updating sync profile: id=%d", id)

	var synced any
	if lastSynced != nil {
		synced = lastSynced.UTC()
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE sync_profile
SET is_active = ?, start_date = ?, last_synced = ?
WHERE id = ?
`, isActive, startDate.UTC(), synced, id)
	if err != nil {
		log.Error("failed to update sync profile: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		log.Debug("sync profile not found: id=%d", id)
		return apperrors.NewNotFoundError("sync profile", id)
	}
	return nil
}

// UpdateSettings applies a user edit. Moving the start date earlier than the
// stored one invalidates the checkpoint so history before the old start gets
// fetched; moving it later keeps the checkpoint.
func (r *syncProfileRepository) UpdateSettings(ctx context.Context, settings models.ProfileSettings) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("updating sync profile settings: %s", settings.Name)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		var current time.Time
		err := tx.QueryRowContext(ctx, `SELECT start_date FROM sync_profile WHERE name = ?`, settings.Name).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("sync profile not found: %s", settings.Name)
			return apperrors.NewNotFoundError("sync profile", settings.Name)
		}
		if err != nil {
			log.Error("failed to read sync profile: %v", err)
			return err
		}

		if settings.StartDate.Before(current) {
			log.Info("start date moved earlier for %s, resetting checkpoint", settings.Name)
			_, err = tx.ExecContext(ctx, `
UPDATE sync_profile
SET is_active = ?, start_date = ?, last_synced = NULL
WHERE name = ?
`, settings.IsActive, settings.StartDate.UTC(), settings.Name)
		} else {
			_, err = tx.ExecContext(ctx, `
UPDATE sync_profile
SET is_active = ?, start_date = ?
WHERE name = ?
`, settings.IsActive, settings.StartDate.UTC(), settings.Name)
		}
		if err != nil {
			log.Error("failed to update sync profile settings: %v", err)
		}
		return err
	})
}

func (r *syncProfileRepository) List(ctx context.Context) ([]models.SyncProfile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("listing sync profiles")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, is_active, start_date, last_synced, base_unit
FROM sync_profile
ORDER BY name ASC
`)
	if err != nil {
		log.Error("failed to list sync profiles: %v", err)
		return nil, err
	}
	defer rows.Close()

	var profiles []models.SyncProfile
	for rows.Next() {
		var p models.SyncProfile
		if err := rows.Scan(&p.ID, &p.Name, &p.IsActive, &p.StartDate, &p.LastSynced, &p.BaseUnit); err != nil {
			log.Error("failed to scan sync profile row: %v", err)
			return nil, err
		}
		profiles = append(profiles, p)
	}

	log.Debug("found %d sync profiles", len(profiles))
	return profiles, rows.Err()
}

func (r *syncProfileRepository) DeleteAll(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("deleting all sync profiles")

	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_profile`)
	if err != nil {
		log.Error("failed to delete sync profiles: %v", err)
	}
	return err
}
