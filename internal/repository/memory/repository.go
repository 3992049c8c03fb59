// Package memory provides an in-memory Repository for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mamadbah2/piggery/internal/domain/models"
	"github.com/mamadbah2/piggery/internal/repository/mongodb"
)

var _ mongodb.Repository = (*Repository)(nil)

type table[T any] struct {
	order []string
	rows  map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) insert(id string, v T) error {
	if _, exists := t.rows[id]; exists {
		return fmt.Errorf("duplicate id %s", id)
	}
	t.order = append(t.order, id)
	t.rows[id] = v
	return nil
}

func (t *table[T]) replace(id string, v T) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	t.rows[id] = v
	return true
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(v string) bool { return v == id })
	return true
}

func (t *table[T]) all(keep func(T) bool) []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		if v := t.rows[id]; keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Repository keeps records in insertion order, guarded by a single mutex.
type Repository struct {
	mu        sync.RWMutex
	sows      *table[models.Sow]
	boars     *table[models.Boar]
	breedings *table[models.Breeding]
	litters   *table[models.Litter]
	medical   *table[models.MedicalRecord]
	snapshots []models.DashboardSnapshot
}

// NewRepository returns an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		sows:      newTable[models.Sow](),
		boars:     newTable[models.Boar](),
		breedings: newTable[models.Breeding](),
		litters:   newTable[models.Litter](),
		medical:   newTable[models.MedicalRecord](),
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, mongodb.ErrNotFound)
}

func lookup[T any](t *table[T], kind, userID, id string, owner func(T) string) (T, error) {
	v, ok := t.rows[id]
	if !ok || owner(v) != userID {
		var zero T
		return zero, notFound(kind, id)
	}
	return v, nil
}

func sowOwner(s models.Sow) string { return s.UserID }
func boarOwner(b models.Boar) string { return b.UserID }
func breedingOwner(b models.Breeding) string { return b.UserID }
func litterOwner(l models.Litter) string { return l.UserID }
func medicalOwner(m models.MedicalRecord) string { return m.UserID }

func ownedBy[T any](userID string, owner func(T) string) func(T) bool {
	return func(v T) bool { return owner(v) == userID }
}

// ListSows returns the owner's sows ordered by name.
func (r *Repository) ListSows(_ context.Context, userID string) ([]models.Sow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.sows.all(ownedBy(userID, sowOwner))
	slices.SortStableFunc(out, func(a, b models.Sow) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// GetSow loads one sow.
func (r *Repository) GetSow(_ context.Context, userID, id string) (models.Sow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lookup(r.sows, "sow", userID, id, sowOwner)
}

// InsertSow stores a new sow.
func (r *Repository) InsertSow(_ context.Context, sow models.Sow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sows.insert(sow.ID, sow)
}

// UpdateSow replaces a stored sow.
func (r *Repository) UpdateSow(_ context.Context, sow models.Sow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := lookup(r.sows, "sow", sow.UserID, sow.ID, sowOwner); err != nil {
		return err
	}
	r.sows.replace(sow.ID, sow)
	return nil
}

// ListBoars returns the owner's boars ordered by breed.
func (r *Repository) ListBoars(_ context.Context, userID string) ([]models.Boar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.boars.all(ownedBy(userID, boarOwner))
	slices.SortStableFunc(out, func(a, b models.Boar) int { return strings.Compare(a.Breed, b.Breed) })
	return out, nil
}

// GetBoar loads one boar.
func (r *Repository) GetBoar(_ context.Context, userID, id string) (models.Boar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lookup(r.boars, "boar", userID, id, boarOwner)
}

// InsertBoar stores a new boar.
func (r *Repository) InsertBoar(_ context.Context, boar models.Boar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.boars.insert(boar.ID, boar)
}

// UpdateBoar replaces a stored boar.
func (r *Repository) UpdateBoar(_ context.Context, boar models.Boar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := lookup(r.boars, "boar", boar.UserID, boar.ID, boarOwner); err != nil {
		return err
	}
	r.boars.replace(boar.ID, boar)
	return nil
}

// ListBreedings returns the owner's breedings ordered by breed date.
func (r *Repository) ListBreedings(_ context.Context, userID string) ([]models.Breeding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.breedings.all(ownedBy(userID, breedingOwner))
	slices.SortStableFunc(out, func(a, b models.Breeding) int { return a.BreedDate.Compare(b.BreedDate) })
	return out, nil
}

// GetBreeding loads one breeding.
func (r *Repository) GetBreeding(_ context.Context, userID, id string) (models.Breeding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lookup(r.breedings, "breeding", userID, id, breedingOwner)
}

// InsertBreeding stores a new breeding.
func (r *Repository) InsertBreeding(_ context.Context, breeding models.Breeding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.breedings.insert(breeding.ID, breeding)
}

// UpdateBreeding replaces a stored breeding.
func (r *Repository) UpdateBreeding(_ context.Context, breeding models.Breeding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := lookup(r.breedings, "breeding", breeding.UserID, breeding.ID, breedingOwner); err != nil {
		return err
	}
	r.breedings.replace(breeding.ID, breeding)
	return nil
}

// DeleteBreeding removes a breeding.
func (r *Repository) DeleteBreeding(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := lookup(r.breedings, "breeding", userID, id, breedingOwner); err != nil {
		return err
	}
	r.breedings.remove(id)
	return nil
}

// ListLitters returns the owner's litters ordered by birth date.
func (r *Repository) ListLitters(_ context.Context, userID string) ([]models.Litter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.litters.all(ownedBy(userID, litterOwner))
	slices.SortStableFunc(out, func(a, b models.Litter) int { return a.BirthDate.Compare(b.BirthDate) })
	return out, nil
}

// GetLitter loads one litter.
func (r *Repository) GetLitter(_ context.Context, userID, id string) (models.Litter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lookup(r.litters, "litter", userID, id, litterOwner)
}

// InsertLitter stores a new litter.
func (r *Repository) InsertLitter(_ context.Context, litter models.Litter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.litters.insert(litter.ID, litter)
}

// UpdateLitter replaces a stored litter.
func (r *Repository) UpdateLitter(_ context.Context, litter models.Litter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := lookup(r.litters, "litter", litter.UserID, litter.ID, litterOwner); err != nil {
		return err
	}
	r.litters.replace(litter.ID, litter)
	return nil
}

// ListMedicalRecords returns the owner's medical records ordered by usage date.
func (r *Repository) ListMedicalRecords(_ context.Context, userID string) ([]models.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.medical.all(ownedBy(userID, medicalOwner))
	slices.SortStableFunc(out, func(a, b models.MedicalRecord) int { return a.UsedAt.Compare(b.UsedAt) })
	return out, nil
}

// GetMedicalRecord loads one medical record.
func (r *Repository) GetMedicalRecord(_ context.Context, userID, id string) (models.MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lookup(r.medical, "medical record", userID, id, medicalOwner)
}

// InsertMedicalRecord stores a new medical record.
func (r *Repository) InsertMedicalRecord(_ context.Context, record models.MedicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.medical.insert(record.ID, record)
}

// UpdateMedicalRecord replaces a stored medical record.
func (r *Repository) UpdateMedicalRecord(_ context.Context, record models.MedicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := lookup(r.medical, "medical record", record.UserID, record.ID, medicalOwner); err != nil {
		return err
	}
	r.medical.replace(record.ID, record)
	return nil
}

// SaveDashboardSnapshot appends a dashboard snapshot.
func (r *Repository) SaveDashboardSnapshot(_ context.Context, snapshot models.DashboardSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snapshot)
	return nil
}

// Snapshots returns the stored dashboard snapshots.
func (r *Repository) Snapshots() []models.DashboardSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.snapshots)
}
