package herd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/piggery/internal/domain/models"
	"github.com/mamadbah2/piggery/internal/engine/lifecycle"
	repo "github.com/mamadbah2/piggery/internal/repository/mongodb"
)

// ErrSowUnavailable indicates the sow already has an open breeding or is retired.
var ErrSowUnavailable = errors.New("sow is not available for breeding")

// ErrBreedingClosed indicates the breeding already farrowed or was aborted.
var ErrBreedingClosed = errors.New("breeding is already closed")

// ErrLitterSold indicates the litter was already sold.
var ErrLitterSold = errors.New("litter is already sold")

// DurationSource supplies the current lifecycle durations.
type DurationSource interface {
	Durations() lifecycle.Durations
}

// Service orchestrates record changes and keeps sow availability consistent with breedings.
type Service struct {
	repo      repo.Repository
	durations DurationSource
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewService wires a herd service.
func NewService(repository repo.Repository, durations DurationSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repository,
		durations: durations,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *Service) currentDurations() lifecycle.Durations {
	if s.durations == nil {
		return lifecycle.DefaultDurations()
	}
	return s.durations.Durations().WithDefaults()
}

// SowInput describes a sow registration.
type SowInput struct {
	Name       string     `json:"name"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	IntakeDate *time.Time `json:"intake_date,omitempty"`
	TeatCount  int        `json:"teat_count"`
	BreedIDs   []string   `json:"breed_ids,omitempty"`
}

// RegisterSow stores a new active, available sow.
func (s *Service) RegisterSow(ctx context.Context, userID string, in SowInput) (models.Sow, error) {
	v := models.Violations{}
	if strings.TrimSpace(in.Name) == "" {
		v["name"] = "required"
	}
	if in.TeatCount < 0 {
		v["teat_count"] = "must_not_be_negative"
	}
	if err := v.Err(); err != nil {
		return models.Sow{}, err
	}

	sow := models.Sow{
		ID:          s.newID(),
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		IsActive:    true,
		IsAvailable: true,
		BirthDate:   in.BirthDate,
		IntakeDate:  in.IntakeDate,
		TeatCount:   in.TeatCount,
		BreedIDs:    in.BreedIDs,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.InsertSow(ctx, sow); err != nil {
		return models.Sow{}, err
	}

	s.logger.Info("sow registered", zap.String("user_id", userID), zap.String("sow_id", sow.ID))
	return sow, nil
}

// UpdateSow applies a validated patch to a sow.
func (s *Service) UpdateSow(ctx context.Context, userID, id string, patch models.SowPatch) (models.Sow, error) {
	if err := patch.Validate(); err != nil {
		return models.Sow{}, err
	}
	sow, err := s.repo.GetSow(ctx, userID, id)
	if err != nil {
		return models.Sow{}, err
	}

	updated := patch.Apply(sow)
	if err := s.repo.UpdateSow(ctx, updated); err != nil {
		return models.Sow{}, err
	}
	return updated, nil
}

// BoarInput describes a boar (breed) registration.
type BoarInput struct {
	Breed       string `json:"breed"`
	Description string `json:"description"`
}

// RegisterBoar stores a new breed record.
func (s *Service) RegisterBoar(ctx context.Context, userID string, in BoarInput) (models.Boar, error) {
	if strings.TrimSpace(in.Breed) == "" {
		return models.Boar{}, models.Violations{"breed": "required"}.Err()
	}

	boar := models.Boar{
		ID:          s.newID(),
		UserID:      userID,
		Breed:       strings.TrimSpace(in.Breed),
		Description: in.Description,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.InsertBoar(ctx, boar); err != nil {
		return models.Boar{}, err
	}
	return boar, nil
}

// UpdateBoar edits a boar's description.
func (s *Service) UpdateBoar(ctx context.Context, userID, id string, patch models.BoarPatch) (models.Boar, error) {
	if err := patch.Validate(); err != nil {
		return models.Boar{}, err
	}
	boar, err := s.repo.GetBoar(ctx, userID, id)
	if err != nil {
		return models.Boar{}, err
	}

	updated := patch.Apply(boar)
	if err := s.repo.UpdateBoar(ctx, updated); err != nil {
		return models.Boar{}, err
	}
	return updated, nil
}

// BreedingInput describes a mating event.
type BreedingInput struct {
	SowID     string    `json:"sow_id"`
	BoarID    *string   `json:"boar_id,omitempty"`
	BreedDate time.Time `json:"breed_date"`
}

// RecordBreeding opens a breeding for an available sow and marks the sow unavailable.
// A sow that already has an open breeding is refused even when its availability flag says otherwise.
func (s *Service) RecordBreeding(ctx context.Context, userID string, in BreedingInput) (models.Breeding, error) {
	expected, err := lifecycle.ExpectedFarrowDate(in.BreedDate, s.currentDurations())
	if err != nil {
		return models.Breeding{}, fmt.Errorf("breed date: %w", err)
	}

	sow, err := s.repo.GetSow(ctx, userID, in.SowID)
	if err != nil {
		return models.Breeding{}, err
	}
	if !sow.IsActive || !sow.IsAvailable {
		return models.Breeding{}, fmt.Errorf("sow %s: %w", sow.ID, ErrSowUnavailable)
	}
	open, err := s.openBreeding(ctx, userID, sow.ID)
	if err != nil {
		return models.Breeding{}, err
	}
	if open != nil {
		s.logger.Warn("sow flagged available with an open breeding",
			zap.String("sow_id", sow.ID), zap.String("breeding_id", open.ID))
		if err := s.setAvailability(ctx, sow, false); err != nil {
			s.logger.Error("failed to repair sow availability", zap.String("sow_id", sow.ID), zap.Error(err))
		}
		return models.Breeding{}, fmt.Errorf("sow %s has open breeding %s: %w", sow.ID, open.ID, ErrSowUnavailable)
	}
	if in.BoarID != nil {
		if _, err := s.repo.GetBoar(ctx, userID, *in.BoarID); err != nil {
			return models.Breeding{}, err
		}
	}

	breeding := models.Breeding{
		ID:                 s.newID(),
		UserID:             userID,
		SowID:              sow.ID,
		SowName:            sow.Name,
		BoarID:             in.BoarID,
		BreedDate:          lifecycle.StartOfDay(in.BreedDate),
		ExpectedFarrowDate: expected,
		CreatedAt:          s.now().UTC(),
	}

	// The sow is locked before the insert and released again if the insert fails.
	if err := s.setAvailability(ctx, sow, false); err != nil {
		return models.Breeding{}, err
	}
	if err := s.repo.InsertBreeding(ctx, breeding); err != nil {
		sow.IsAvailable = false
		if rerr := s.setAvailability(ctx, sow, true); rerr != nil {
			s.logger.Error("failed to release sow after breeding insert failed",
				zap.String("sow_id", sow.ID), zap.Error(rerr))
		}
		return models.Breeding{}, err
	}

	s.logger.Info("breeding recorded",
		zap.String("user_id", userID),
		zap.String("sow_id", sow.ID),
		zap.String("expected_farrow_date", lifecycle.FormatDate(expected)))
	return breeding, nil
}

// FarrowInput describes the outcome of a farrowing.
type FarrowInput struct {
	Date        time.Time `json:"date"`
	MaleAlive   int       `json:"male_alive"`
	FemaleAlive int       `json:"female_alive"`
	Dead        int       `json:"dead"`
}

// RecordFarrowing closes an open breeding, frees the sow and creates the litter.
func (s *Service) RecordFarrowing(ctx context.Context, userID, breedingID string, in FarrowInput) (models.Breeding, models.Litter, error) {
	if in.Date.IsZero() {
		return models.Breeding{}, models.Litter{}, fmt.Errorf("farrow date: %w", lifecycle.ErrInvalidDate)
	}

	breeding, err := s.repo.GetBreeding(ctx, userID, breedingID)
	if err != nil {
		return models.Breeding{}, models.Litter{}, err
	}
	if !breeding.IsOpen() {
		return models.Breeding{}, models.Litter{}, fmt.Errorf("breeding %s: %w", breeding.ID, ErrBreedingClosed)
	}

	farrowed := lifecycle.StartOfDay(in.Date)
	patch := models.BreedingPatch{
		ActualFarrowDate:   &farrowed,
		PigletsMaleAlive:   &in.MaleAlive,
		PigletsFemaleAlive: &in.FemaleAlive,
		PigletsDead:        &in.Dead,
	}
	if err := patch.Validate(); err != nil {
		return models.Breeding{}, models.Litter{}, err
	}
	updated, err := patch.Apply(breeding)
	if err != nil {
		return models.Breeding{}, models.Litter{}, err
	}
	litter := models.Litter{
		ID:          s.newID(),
		UserID:      userID,
		SowID:       breeding.SowID,
		BreedingID:  breeding.ID,
		BoarID:      breeding.BoarID,
		BirthDate:   farrowed,
		MaleCount:   in.MaleAlive,
		FemaleCount: in.FemaleAlive,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.UpdateBreeding(ctx, updated); err != nil {
		return models.Breeding{}, models.Litter{}, err
	}
	if err := s.repo.InsertLitter(ctx, litter); err != nil {
		if rerr := s.repo.UpdateBreeding(ctx, breeding); rerr != nil {
			s.logger.Error("failed to reopen breeding after litter insert failed",
				zap.String("breeding_id", breeding.ID), zap.Error(rerr))
		}
		return models.Breeding{}, models.Litter{}, err
	}
	if err := s.releaseSow(ctx, userID, breeding.SowID); err != nil {
		s.logger.Error("breeding closed but sow is still unavailable",
			zap.String("breeding_id", breeding.ID),
			zap.String("sow_id", breeding.SowID),
			zap.Error(err))
		return models.Breeding{}, models.Litter{}, err
	}

	s.logger.Info("farrowing recorded",
		zap.String("user_id", userID),
		zap.String("breeding_id", breeding.ID),
		zap.Int("born", updated.PigletsBornCount))
	return updated, litter, nil
}

// AbortBreeding marks an open breeding aborted and frees the sow.
func (s *Service) AbortBreeding(ctx context.Context, userID, breedingID string) (models.Breeding, error) {
	breeding, err := s.repo.GetBreeding(ctx, userID, breedingID)
	if err != nil {
		return models.Breeding{}, err
	}
	if !breeding.IsOpen() {
		return models.Breeding{}, fmt.Errorf("breeding %s: %w", breeding.ID, ErrBreedingClosed)
	}

	breeding.Aborted = true
	if err := s.repo.UpdateBreeding(ctx, breeding); err != nil {
		return models.Breeding{}, err
	}
	if err := s.releaseSow(ctx, userID, breeding.SowID); err != nil {
		return models.Breeding{}, err
	}
	return breeding, nil
}

// DeleteBreeding removes a breeding, freeing the sow when it was still open.
func (s *Service) DeleteBreeding(ctx context.Context, userID, breedingID string) error {
	breeding, err := s.repo.GetBreeding(ctx, userID, breedingID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBreeding(ctx, userID, breedingID); err != nil {
		return err
	}
	if breeding.IsOpen() {
		return s.releaseSow(ctx, userID, breeding.SowID)
	}
	return nil
}

// StartFattening sets the fattening date and derives the saleable date.
func (s *Service) StartFattening(ctx context.Context, userID, litterID string, date time.Time) (models.Litter, error) {
	if date.IsZero() {
		return models.Litter{}, fmt.Errorf("fattening date: %w", lifecycle.ErrInvalidDate)
	}
	return s.UpdateLitter(ctx, userID, litterID, models.LitterPatch{FatteningAt: &date})
}

// MarkLitterSold records the sale date and, optionally, the average sale weight.
func (s *Service) MarkLitterSold(ctx context.Context, userID, litterID string, date time.Time, avgWeight *float64) (models.Litter, error) {
	if date.IsZero() {
		return models.Litter{}, fmt.Errorf("sold date: %w", lifecycle.ErrInvalidDate)
	}
	litter, err := s.repo.GetLitter(ctx, userID, litterID)
	if err != nil {
		return models.Litter{}, err
	}
	if litter.IsSold() {
		return models.Litter{}, fmt.Errorf("litter %s: %w", litter.ID, ErrLitterSold)
	}

	sold := lifecycle.StartOfDay(date)
	return s.applyLitterPatch(ctx, litter, models.LitterPatch{SoldAt: &sold, AvgWeight: avgWeight})
}

// UpdateLitter applies a validated patch to a litter.
func (s *Service) UpdateLitter(ctx context.Context, userID, litterID string, patch models.LitterPatch) (models.Litter, error) {
	litter, err := s.repo.GetLitter(ctx, userID, litterID)
	if err != nil {
		return models.Litter{}, err
	}
	return s.applyLitterPatch(ctx, litter, patch)
}

func (s *Service) applyLitterPatch(ctx context.Context, litter models.Litter, patch models.LitterPatch) (models.Litter, error) {
	if err := patch.Validate(); err != nil {
		return models.Litter{}, err
	}
	var saleable time.Time
	if models.HasDate(patch.FatteningAt) {
		start := lifecycle.StartOfDay(*patch.FatteningAt)
		var err error
		if saleable, err = lifecycle.SaleableDate(start, s.currentDurations()); err != nil {
			return models.Litter{}, fmt.Errorf("fattening date: %w", err)
		}
		patch.FatteningAt = &start
	}
	updated, err := patch.Apply(litter)
	if err != nil {
		return models.Litter{}, err
	}
	if !saleable.IsZero() {
		updated.SaleableAt = &saleable
	}
	if err := s.repo.UpdateLitter(ctx, updated); err != nil {
		return models.Litter{}, err
	}
	if anomalies := updated.Anomalies(); len(anomalies) > 0 {
		s.logger.Warn("litter lifecycle anomaly", zap.String("litter_id", updated.ID), zap.Strings("anomalies", anomalies))
	}
	return updated, nil
}

// MedicalInput describes a treatment.
type MedicalInput struct {
	SowID    string    `json:"sow_id"`
	Symptoms string    `json:"symptoms"`
	Medicine string    `json:"medicine"`
	UsedAt   time.Time `json:"used_at"`
	Notes    string    `json:"notes"`
}

// RecordMedical stores a treatment for an existing sow.
func (s *Service) RecordMedical(ctx context.Context, userID string, in MedicalInput) (models.MedicalRecord, error) {
	v := models.Violations{}
	if strings.TrimSpace(in.Medicine) == "" {
		v["medicine"] = "required"
	}
	if in.UsedAt.IsZero() {
		v["used_at"] = "required"
	}
	if err := v.Err(); err != nil {
		return models.MedicalRecord{}, err
	}

	sow, err := s.repo.GetSow(ctx, userID, in.SowID)
	if err != nil {
		return models.MedicalRecord{}, err
	}

	record := models.MedicalRecord{
		ID:        s.newID(),
		UserID:    userID,
		SowID:     sow.ID,
		SowName:   sow.Name,
		Symptoms:  in.Symptoms,
		Medicine:  in.Medicine,
		UsedAt:    lifecycle.StartOfDay(in.UsedAt),
		Notes:     in.Notes,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.InsertMedicalRecord(ctx, record); err != nil {
		return models.MedicalRecord{}, err
	}
	return record, nil
}

// UpdateMedical applies a validated patch to a medical record.
func (s *Service) UpdateMedical(ctx context.Context, userID, id string, patch models.MedicalRecordPatch) (models.MedicalRecord, error) {
	if err := patch.Validate(); err != nil {
		return models.MedicalRecord{}, err
	}
	record, err := s.repo.GetMedicalRecord(ctx, userID, id)
	if err != nil {
		return models.MedicalRecord{}, err
	}

	updated := patch.Apply(record)
	if err := s.repo.UpdateMedicalRecord(ctx, updated); err != nil {
		return models.MedicalRecord{}, err
	}
	return updated, nil
}

func (s *Service) releaseSow(ctx context.Context, userID, sowID string) error {
	sow, err := s.repo.GetSow(ctx, userID, sowID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.logger.Warn("sow missing while closing breeding", zap.String("sow_id", sowID))
			return nil
		}
		return err
	}
	return s.setAvailability(ctx, sow, true)
}

func (s *Service) openBreeding(ctx context.Context, userID, sowID string) (*models.Breeding, error) {
	breedings, err := s.repo.ListBreedings(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range breedings {
		if breedings[i].SowID == sowID && breedings[i].IsOpen() {
			return &breedings[i], nil
		}
	}
	return nil, nil
}

func (s *Service) setAvailability(ctx context.Context, sow models.Sow, available bool) error {
	if sow.IsAvailable == available {
		return nil
	}
	sow.IsAvailable = available
	if err := s.repo.UpdateSow(ctx, sow); err != nil {
		return fmt.Errorf("update sow %s availability: %w", sow.ID, err)
	}
	return nil
}
