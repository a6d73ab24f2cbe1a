package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wardrobe/internal/logger"
	"wardrobe/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const outfitLogColumns = `id, outfit_id, log_date, is_ootd, notes,
	temperature_low, temperature_high, weather_condition, created_at, updated_at`

// CreateOutfitLog records a wear event. A second OOTD log for the same date
// fails with a unique constraint violation.
func CreateOutfitLog(ctx context.Context, db *sqlx.DB, log models.OutfitLog) (int64, error) {
	cols := map[string]interface{}{
		"log_date": log.Date,
		"is_ootd":  log.IsOOTD,
	}
	setOptional(cols, "outfit_id", log.OutfitID)
	setOptional(cols, "notes", log.Notes)
	setOptional(cols, "temperature_low", log.TemperatureLow)
	setOptional(cols, "temperature_high", log.TemperatureHigh)
	setOptional(cols, "weather_condition", log.WeatherCondition)

	query, args, err := sq.Insert("outfit_logs").SetMap(cols).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build outfit log insert: %w", err)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		err = wrapError("create outfit log", "outfit_logs", err)
		logger.Warn("Failed to create outfit log", "date", log.Date, "ootd", log.IsOOTD, "error", err)
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get outfit log ID: %w", err)
	}

	return id, nil
}

func GetOutfitLog(ctx context.Context, db *sqlx.DB, id int64) (*models.OutfitLog, error) {
	return getOutfitLog(ctx, db, id)
}

func getOutfitLog(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.OutfitLog, error) {
	var log models.OutfitLog
	err := sqlx.GetContext(ctx, q, &log, "SELECT "+outfitLogColumns+" FROM outfit_logs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outfit log: %w", err)
	}
	return &log, nil
}

// ListOutfitLogs returns logs dated within [from, to], oldest first. An empty
// bound is open.
func ListOutfitLogs(ctx context.Context, db *sqlx.DB, from, to string) ([]models.OutfitLog, error) {
	builder := sq.Select(outfitLogColumns).From("outfit_logs").OrderBy("log_date", "id")
	if from != "" {
		builder = builder.Where(sq.GtOrEq{"log_date": from})
	}
	if to != "" {
		builder = builder.Where(sq.LtOrEq{"log_date": to})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build outfit log query: %w", err)
	}

	var logs []models.OutfitLog
	if err := db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query outfit logs: %w", err)
	}
	return logs, nil
}

func ListOutfitLogsOn(ctx context.Context, db *sqlx.DB, date string) ([]models.OutfitLog, error) {
	return ListOutfitLogs(ctx, db, date, date)
}

// UpdateOutfitLog applies the patch and returns the updated log, or nil when
// it does not exist.
func UpdateOutfitLog(ctx context.Context, db *sqlx.DB, id int64, patch models.OutfitLogPatch) (*models.OutfitLog, error) {
	var updated *models.OutfitLog
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		cols := patch.Columns()
		cols["updated_at"] = sq.Expr(nowExpr)

		n, err := execBuilder(ctx, tx, sq.Update("outfit_logs").SetMap(cols).Where(sq.Eq{"id": id}))
		if err != nil {
			return wrapError("update outfit log", "outfit_logs", err)
		}
		if n == 0 {
			return nil
		}

		updated, err = getOutfitLog(ctx, tx, id)
		return err
	})
	if err != nil {
		logger.Warn("Failed to update outfit log", "log_id", id, "error", err)
		return nil, err
	}

	return updated, nil
}

func DeleteOutfitLog(ctx context.Context, db *sqlx.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM outfit_logs WHERE id = ?", id)
	if err != nil {
		return false, wrapError("delete outfit log", "outfit_logs", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
