package sqlite

import (
	"context"
	"database/sql"

	"github.com/enerscope/enerscope/internal/logger"
	"github.com/enerscope/enerscope/internal/models"
	"github.com/enerscope/enerscope/internal/repository"
)

type tariffRepository struct {
	db          *sql.DB
	utility     models.Utility
	chargeTable string
	priceTable  string
}

// NewTariffRepository creates a TariffRepository for one utility
func NewTariffRepository(db *sql.DB, utility models.Utility) repository.TariffRepository {
	prefix := tablePrefix(utility)
	return &tariffRepository{
		db:          db,
		utility:     utility,
		chargeTable: prefix + "_standing_charge",
		priceTable:  prefix + "_unit_price",
	}
}

func (r *tariffRepository) InsertStandingCharges(ctx context.Context, charges []models.StandingCharge) error {
	log := logger.FromContext(ctx).WithPrefix("tariff_repo")
	log.Debug("inserting %d %s standing charges", len(charges), r.utility)

	if len(charges) == 0 {
		return nil
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO `+r.chargeTable+` (start_date, standing_charge_pence)
VALUES (?, ?)
ON CONFLICT(start_date) DO UPDATE SET
    standing_charge_pence = excluded.standing_charge_pence
`)
		if err != nil {
			log.Error("failed to prepare insert: %v", err)
			return err
		}
		defer stmt.Close()

		for _, c := range charges {
			if _, err := stmt.ExecContext(ctx, c.StartDate.UTC(), c.Pence); err != nil {
				log.Error("failed to insert standing charge at %s: %v", c.StartDate, err)
				return err
			}
		}
		return nil
	})
}

func (r *tariffRepository) InsertUnitPrices(ctx context.Context, prices []models.UnitPrice) error {
	log := logger.FromContext(ctx).WithPrefix("tariff_repo")
	log.Debug("inserting %d %s unit prices", len(prices), r.utility)

	if len(prices) == 0 {
		return nil
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO `+r.priceTable+` (price_effective_time, unit_price_pence)
VALUES (?, ?)
ON CONFLICT(price_effective_time) DO UPDATE SET
    unit_price_pence = excluded.unit_price_pence
`)
		if err != nil {
			log.Error("failed to prepare insert: %v", err)
			return err
		}
		defer stmt.Close()

		for _, p := range prices {
			if _, err := stmt.ExecContext(ctx, p.EffectiveTime.UTC(), p.Pence); err != nil {
				log.Error("failed to insert unit price at %s: %v", p.EffectiveTime, err)
				return err
			}
		}
		return nil
	})
}

// StandingChargeHistory returns only the rows where the charge actually
// changed, collapsing runs of equal values to their first entry.
func (r *tariffRepository) StandingChargeHistory(ctx context.Context) ([]models.StandingCharge, error) {
	log := logger.FromContext(ctx).WithPrefix("tariff_repo")
	log.Debug("listing %s standing charge history", r.utility)

	rows, err := r.db.QueryContext(ctx, `
SELECT start_date, standing_charge_pence
FROM (
    SELECT start_date,
           standing_charge_pence,
           LAG(standing_charge_pence) OVER (ORDER BY start_date) AS previous_pence
    FROM `+r.chargeTable+`
)
WHERE previous_pence IS NULL OR standing_charge_pence != previous_pence
ORDER BY start_date ASC
`)
	if err != nil {
		log.Error("failed to list standing charges: %v", err)
		return nil, err
	}
	defer rows.Close()

	var charges []models.StandingCharge
	for rows.Next() {
		var c models.StandingCharge
		if err := rows.Scan(&c.StartDate, &c.Pence); err != nil {
			log.Error("failed to scan standing charge row: %v", err)
			return nil, err
		}
		charges = append(charges, c)
	}
	log.Debug("found %d standing charge changes", len(charges))
	return charges, rows.Err()
}

// UnitPriceHistory returns only the rows where the price actually changed,
// collapsing runs of equal values to their first entry.
func (r *tariffRepository) UnitPriceHistory(ctx context.Context) ([]models.UnitPrice, error) {
	log := logger.FromContext(ctx).WithPrefix("tariff_repo")
	log.Debug("listing %s unit price history", r.utility)

	rows, err := r.db.QueryContext(ctx, `
SELECT price_effective_time, unit_price_pence
FROM (
    SELECT price_effective_time,
           unit_price_pence,
           LAG(unit_price_pence) OVER (ORDER BY price_effective_time) AS previous_pence
    FROM `+r.priceTable+`
)
WHERE previous_pence IS NULL OR unit_price_pence != previous_pence
ORDER BY price_effective_time ASC
`)
	if err != nil {
		log.Error("failed to list unit prices: %v", err)
		return nil, err
	}
	defer rows.Close()

	var prices []models.UnitPrice
	for rows.Next() {
		var p models.UnitPrice
		if err := rows.Scan(&p.EffectiveTime, &p.Pence); err != nil {
			log.Error("failed to scan unit price row: %v", err)
			return nil, err
		}
		prices = append(prices, p)
	}
	log.Debug("found %d unit price changes", len(prices))
	return prices, rows.Err()
}

func (r *tariffRepository) DeleteAll(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("tariff_repo")
	log.Debug("deleting all %s tariff rows", r.utility)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+r.chargeTable); err != nil {
			log.Error("failed to delete standing charges: %v", err)
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+r.priceTable); err != nil {
			log.Error("failed to delete unit prices: %v", err)
			return err
		}
		return nil
	})
}
