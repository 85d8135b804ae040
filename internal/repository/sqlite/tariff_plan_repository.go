package sqlite

import (
	"context"
	"database/sql"

	"github.com/enerscope/enerscope/internal/logger"
	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/repository"
)

type tariffPlanRepository struct {
	db      *sql.DB
	utility models.Utility
	table   string
}

// NewTariffPlanRepository creates a TariffPlanRepository for one utility
func NewTariffPlanRepository(db *sql.DB, utility models.Utility) repository.TariffPlanRepository {
	return &tariffPlanRepository{
		db:      db,
		utility: utility,
		table:   tablePrefix(utility) + "_tariff_plan",
	}
}

func (r *tariffPlanRepository) Upsert(ctx context.Context, plans []models.TariffPlan) error {
	log := logger.FromContext(ctx).WithPrefix("tariff_plan_repo")
	log.Debug("upserting %d %s tariff plans", len(plans), r.utility)

	if len(plans) == 0 {
		return nil
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO `+r.table+` (tariff_id, plan, effective_date, display_name)
VALUES (?, ?, ?, ?)
ON CONFLICT(tariff_id) DO UPDATE SET
    plan = excluded.plan,
    effective_date = excluded.effective_date,
    display_name = excluded.display_name
`)
		if err != nil {
			log.Error("failed to prepare upsert: %v", err)
			return err
		}
		defer stmt.Close()

		for _, p := range plans {
			if _, err := stmt.ExecContext(ctx, p.TariffID, p.Plan, p.EffectiveDate.UTC(), p.DisplayName); err != nil {
				log.Error("failed to upsert plan %s: %v", p.TariffID, err)
				return err
			}
		}
		return nil
	})
}

func (r *tariffPlanRepository) List(ctx context.Context) ([]models.TariffPlan, error) {
	log := logger.FromContext(ctx).WithPrefix("tariff_plan_repo")
	log.Debug("listing %s tariff plans", r.utility)

	rows, err := r.db.QueryContext(ctx, `
SELECT tariff_id, plan, effective_date, display_name
FROM `+r.table+`
ORDER BY effective_date ASC
`)
	if err != nil {
		log.Error("failed to list tariff plans: %v", err)
		return nil, err
	}
	defer rows.Close()

	var plans []models.TariffPlan
	for rows.Next() {
		var p models.TariffPlan
		if err := rows.Scan(&p.TariffID, &p.Plan, &p.EffectiveDate, &p.DisplayName); err != nil {
			log.Error("failed to scan tariff plan row: %v", err)
			return nil, err
		}
		plans = append(plans, p)
	}
	log.Debug("found %d tariff plans", len(plans))
	return plans, rows.Err()
}

func (r *tariffPlanRepository) DeleteAll(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("tariff_plan_repo")
	log.Debug("deleting all %s tariff plans", r.utility)

	_, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table)
	if err != nil {
		log.Error("failed to delete tariff plans: %v", err)
	}
	return err
}
