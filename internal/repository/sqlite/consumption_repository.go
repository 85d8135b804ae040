package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/enerscope/enerscope/internal/logger"
	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/repository"
)

type consumptionRepository struct {
	db      *sql.DB
	utility models.Utility
	table   string
}

// NewConsumptionRepository creates a ConsumptionRepository for one utility
func NewConsumptionRepository(db *sql.DB, utility models.Utility) repository.ConsumptionRepository {
	return &consumptionRepository{
		db:      db,
		utility: utility,
		table:   tablePrefix(utility) + "_consumption",
	}
}

func (r *consumptionRepository) Insert(ctx context.Context, records []models.ConsumptionRecord) error {
	log := logger.FromContext(ctx).WithPrefix("consumption_repo")
	log.Debug("inserting %d %s readings", len(records), r.utility)

	if len(records) == 0 {
		return nil
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO `+r.table+` (timestamp, energy_consumption_kwh)
VALUES (?, ?)
ON CONFLICT(timestamp) DO UPDATE SET
    energy_consumption_kwh = excluded.energy_consumption_kwh
`)
		if err != nil {
			log.Error("failed to prepare insert: %v", err)
			return err
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx, rec.Timestamp.UTC(), rec.Value); err != nil {
				log.Error("failed to insert reading at %s: %v", rec.Timestamp, err)
				return err
			}
		}
		return nil
	})
}

func (r *consumptionRepository) Raw(ctx context.Context, start, end time.Time) ([]models.ConsumptionRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("consumption_repo")
	log.Debug("listing raw %s readings: start=%s, end=%s", r.utility, start.Format(time.DateOnly), end.Format(time.DateOnly))

	query := sqlBuilder.Select("timestamp", "energy_consumption_kwh").
		From(r.table).
		Where(squirrel.NotEq{"energy_consumption_kwh": models.ConsumptionErrorValue}).
		OrderBy("timestamp ASC")
	if !start.IsZero() {
		query = query.Where(squirrel.GtOrEq{"timestamp": start.UTC()})
	}
	if !end.IsZero() {
		query = query.Where(squirrel.LtOrEq{"timestamp": end.UTC()})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list readings: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []models.ConsumptionRecord
	for rows.Next() {
		var rec models.ConsumptionRecord
		if err := rows.Scan(&rec.Timestamp, &rec.Value); err != nil {
			log.Error("failed to scan reading row: %v", err)
			return nil, err
		}
		records = append(records, rec)
	}
	log.Debug("found %d readings", len(records))
	return records, rows.Err()
}

func (r *consumptionRepository) Daily(ctx context.Context, start, end time.Time) ([]models.DailyTotal, error) {
	log := logger.FromContext(ctx).WithPrefix("consumption_repo")
	log.Debug("aggregating daily %s totals: start=%s, end=%s", r.utility, start.Format(time.DateOnly), end.Format(time.DateOnly))

	query := sqlBuilder.Select("DATE(timestamp) AS day", "SUM(energy_consumption_kwh)").
		From(r.table).
		Where(squirrel.NotEq{"energy_consumption_kwh": models.ConsumptionErrorValue}).
		GroupBy("day").
		OrderBy("day ASC")
	if !start.IsZero() {
		query = query.Where(squirrel.GtOrEq{"timestamp": start.UTC()})
	}
	if !end.IsZero() {
		query = query.Where(squirrel.LtOrEq{"timestamp": end.UTC()})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to aggregate daily totals: %v", err)
		return nil, err
	}
	defer rows.Close()

	var totals []models.DailyTotal
	for rows.Next() {
		var day string
		var t models.DailyTotal
		if err := rows.Scan(&day, &t.Total); err != nil {
			log.Error("failed to scan daily total row: %v", err)
			return nil, err
		}
		t.Date, err = time.Parse(time.DateOnly, day)
		if err != nil {
			log.Error("failed to parse day %q: %v", day, err)
			return nil, err
		}
		totals = append(totals, t)
	}
	log.Debug("found %d daily totals", len(totals))
	return totals, rows.Err()
}

func (r *consumptionRepository) Monthly(ctx context.Context, start, end time.Time) ([]models.MonthlyTotal, error) {
	log := logger.FromContext(ctx).WithPrefix("consumption_repo")
	log.Debug("aggregating monthly %s totals: start=%s, end=%s", r.utility, start.Format(time.DateOnly), end.Format(time.DateOnly))

	query := sqlBuilder.Select("strftime('%Y-%m', timestamp) AS month", "SUM(energy_consumption_kwh)").
		From(r.table).
		Where(squirrel.NotEq{"energy_consumption_kwh": models.ConsumptionErrorValue}).
		GroupBy("month").
		OrderBy("month ASC")
	if !start.IsZero() {
		query = query.Where(squirrel.GtOrEq{"timestamp": start.UTC()})
	}
	if !end.IsZero() {
		query = query.Where(squirrel.LtOrEq{"timestamp": end.UTC()})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to aggregate monthly totals: %v", err)
		return nil, err
	}
	defer rows.Close()

	var totals []models.MonthlyTotal
	for rows.Next() {
		var t models.MonthlyTotal
		if err := rows.Scan(&t.Month, &t.Total); err != nil {
			log.Error("failed to scan monthly total row: %v", err)
			return nil, err
		}
		totals = append(totals, t)
	}
	log.Debug("found %d monthly totals", len(totals))
	return totals, rows.Err()
}

func (r *consumptionRepository) DeleteAll(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("consumption_repo")
	log.Debug("deleting all %s readings", r.utility)

	_, err := r.db.ExecContext(ctx, `DELETE FROM `+r.table)
	if err != nil {
		log.Error("failed to delete readings: %v", err)
	}
	return err
}
