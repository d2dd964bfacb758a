package repository

import (
	"context"

	"github.com/stemsi/quizlink-backend/internal/model"
)

// app_settings is a small key/value relation. Callers pass either the pool or
// an open transaction so pointer updates commit with the rows they reference.

func getSetting(ctx context.Context, q querier, key string) (*model.AppSetting, error) {
	s := &model.AppSetting{}
	err := q.QueryRow(ctx, `SELECT key, value, updated_at FROM app_settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func upsertSetting(ctx context.Context, q querier, key, value string) error {
	_, err := q.Exec(ctx,
		`INSERT INTO app_settings (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return err
}

func deleteSetting(ctx context.Context, q querier, key string) error {
	_, err := q.Exec(ctx, `DELETE FROM app_settings WHERE key = $1`, key)
	return err
}
