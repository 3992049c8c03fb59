package herd

import (
	"context"
	"fmt"

	"github.com/mamadbah2/piggery/internal/domain/models"
)

// Snapshot loads every record of a user and fills the joined display fields.
func (s *Service) Snapshot(ctx context.Context, userID string) (models.HerdSnapshot, error) {
	sows, err := s.repo.ListSows(ctx, userID)
	if err != nil {
		return models.HerdSnapshot{}, fmt.Errorf("load sows: %w", err)
	}
	boars, err := s.repo.ListBoars(ctx, userID)
	if err != nil {
		return models.HerdSnapshot{}, fmt.Errorf("load boars: %w", err)
	}
	breedings, err := s.repo.ListBreedings(ctx, userID)
	if err != nil {
		return models.HerdSnapshot{}, fmt.Errorf("load breedings: %w", err)
	}
	litters, err := s.repo.ListLitters(ctx, userID)
	if err != nil {
		return models.HerdSnapshot{}, fmt.Errorf("load litters: %w", err)
	}
	medical, err := s.repo.ListMedicalRecords(ctx, userID)
	if err != nil {
		return models.HerdSnapshot{}, fmt.Errorf("load medical records: %w", err)
	}

	sowNames := make(map[string]string, len(sows))
	for _, sow := range sows {
		sowNames[sow.ID] = sow.Name
	}
	breeds := make(map[string]string, len(boars))
	for _, boar := range boars {
		breeds[boar.ID] = boar.Breed
	}

	for i := range breedings {
		breedings[i].SowName = sowNames[breedings[i].SowID]
		breedings[i].BoarBreed = breedLabel(breeds, breedings[i].BoarID)
	}
	for i := range litters {
		litters[i].SowName = sowNames[litters[i].SowID]
		litters[i].BoarBreed = breedLabel(breeds, litters[i].BoarID)
	}
	for i := range medical {
		medical[i].SowName = sowNames[medical[i].SowID]
	}

	return models.HerdSnapshot{
		Sows:      sows,
		Boars:     boars,
		Breedings: breedings,
		Litters:   litters,
		Medical:   medical,
	}, nil
}

func breedLabel(breeds map[string]string, boarID *string) string {
	if boarID == nil {
		return ""
	}
	return breeds[*boarID]
}
