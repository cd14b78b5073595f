package core

import (
	"context"
	"strconv"

	"assetcore/pkg/domain"
)

// Well-known settings keys. All toggles default to enabled when the row is
// absent or unparsable. SettingAuditEnabled is honored by the store itself,
// since audit entries are emitted at the persistence layer.
const (
	SettingNotificationsEnabled = "notificationsEnabled"
	SettingDocumentsEnabled     = "documentsEnabled"
	SettingAuditEnabled         = domain.SettingAuditEnabled
)

// Setting returns the stored value for key.
func (s *Service) Setting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.run(ctx, "get_setting", func(ctx context.Context) error {
		rec, ok, err := s.store.GetOne(ctx, domain.CollectionSettings, domain.FieldKey, key)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError{Entity: "setting", Key: key}
		}
		value = rec.String(domain.FieldValue)
		return nil
	})
	return value, err
}

// SetSetting stores or replaces a setting value.
func (s *Service) SetSetting(ctx context.Context, key, value string) error {
	return s.run(ctx, "set_setting", func(ctx context.Context) error {
		if key == "" {
			return domain.MissingField(domain.FieldKey)
		}
		_, ok, err := s.store.GetOne(ctx, domain.CollectionSettings, domain.FieldKey, key)
		if err != nil {
			return err
		}
		if ok {
			_, err = s.store.Update(ctx, domain.CollectionSettings, domain.FieldKey, key, domain.Record{domain.FieldValue: value})
			return err
		}
		_, err = s.store.Insert(ctx, domain.CollectionSettings, domain.Record{domain.FieldKey: key, domain.FieldValue: value})
		return err
	})
}

// Settings returns every stored setting as a key/value map.
func (s *Service) Settings(ctx context.Context) (map[string]string, error) {
	var out map[string]string
	err := s.run(ctx, "list_settings", func(ctx context.Context) error {
		records, err := s.store.GetAll(ctx, domain.CollectionSettings)
		if err != nil {
			return err
		}
		out = make(map[string]string, len(records))
		for _, rec := range records {
			out[rec.String(domain.FieldKey)] = rec.String(domain.FieldValue)
		}
		return nil
	})
	return out, err
}

func (s *Service) settingEnabled(ctx context.Context, key string) bool {
	rec, ok, err := s.store.GetOne(ctx, domain.CollectionSettings, domain.FieldKey, key)
	if err != nil || !ok {
		return true
	}
	enabled, err := strconv.ParseBool(rec.String(domain.FieldValue))
	if err != nil {
		return true
	}
	return enabled
}

func (s *Service) notificationsEnabled(ctx context.Context) bool {
	return s.settingEnabled(ctx, SettingNotificationsEnabled)
}

func (s *Service) documentsEnabled(ctx context.Context) bool {
	return s.settingEnabled(ctx, SettingDocumentsEnabled)
}
