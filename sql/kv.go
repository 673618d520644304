package sql

import (
	"context"
)

// GetValue returns the stored configuration value for key and whether
// it was set.
//
// Typing and validation live in queuectl.Settings; this layer stores
// opaque strings.
func (s *Store) GetValue(ctx context.Context, key string) (string, bool, error) {
	var ret configModel
	err := s.db.NewSelect().
		Model(&ret).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return ret.Value, true, nil
}

// SetValue stores value under key, replacing any previous value.
func (s *Store) SetValue(ctx context.Context, key string, value string) error {
	model := &configModel{
		Key:   key,
		Value: value,
	}
	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return err
}
