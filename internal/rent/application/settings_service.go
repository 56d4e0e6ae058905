package application

import (
	"context"
	"errors"

	rent "rentnotice-cloud/internal/rent/domain"
)

// SettingsService reads and saves owner settings.
type SettingsService struct {
	settings SettingsStore
}

// NewSettingsService constructs a service.
func NewSettingsService(settings SettingsStore) (*SettingsService, error) {
	if settings == nil {
		return nil, errors.New("settings service: nil store")
	}
	return &SettingsService{settings: settings}, nil
}

// Get returns the owner's settings, empty when none were saved.
func (s *SettingsService) Get(ctx context.Context, ownerID string) (rent.OwnerSettings, error) {
	if ownerID == "" {
		return rent.OwnerSettings{}, rent.ErrEmptyOwnerID
	}
	settings, err := s.settings.GetSettings(ctx, ownerID)
	if err != nil {
		return rent.OwnerSettings{}, loadErr("settings", err)
	}
	return settings, nil
}

// Save decodes a settings record and replaces the stored settings.
func (s *SettingsService) Save(ctx context.Context, ownerID string, record []byte) (rent.OwnerSettings, error) {
	if ownerID == "" {
		return rent.OwnerSettings{}, rent.ErrEmptyOwnerID
	}
	settings, err := rent.DecodeSettings(record)
	if err != nil {
		return rent.OwnerSettings{}, err
	}
	if err := s.settings.SaveSettings(ctx, ownerID, settings); err != nil {
		return rent.OwnerSettings{}, storeErr("settings", err)
	}
	return settings, nil
}
