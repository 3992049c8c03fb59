package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/piggery/internal/domain/models"
)

// ErrNotFound is returned when no record matches the id for the given owner.
var ErrNotFound = errors.New("record not found")

const (
	sowsCollection      = "sows"
	boarsCollection     = "boars"
	breedingsCollection = "breedings"
	littersCollection   = "litters"
	medicalCollection   = "medical_records"
	snapshotsCollection = "dashboard_snapshots"
)

// Repository defines the herd record storage operations. Every call is scoped to one owner.
type Repository interface {
	ListSows(ctx context.Context, userID string) ([]models.Sow, error)
	GetSow(ctx context.Context, userID, id string) (models.Sow, error)
	InsertSow(ctx context.Context, sow models.Sow) error
	UpdateSow(ctx context.Context, sow models.Sow) error

	ListBoars(ctx context.Context, userID string) ([]models.Boar, error)
	GetBoar(ctx context.Context, userID, id string) (models.Boar, error)
	InsertBoar(ctx context.Context, boar models.Boar) error
	UpdateBoar(ctx context.Context, boar models.Boar) error

	ListBreedings(ctx context.Context, userID string) ([]models.Breeding, error)
	GetBreeding(ctx context.Context, userID, id string) (models.Breeding, error)
	InsertBreeding(ctx context.Context, breeding models.Breeding) error
	UpdateBreeding(ctx context.Context, breeding models.Breeding) error
	DeleteBreeding(ctx context.Context, userID, id string) error

	ListLitters(ctx context.Context, userID string) ([]models.Litter, error)
	GetLitter(ctx context.Context, userID, id string) (models.Litter, error)
	InsertLitter(ctx context.Context, litter models.Litter) error
	UpdateLitter(ctx context.Context, litter models.Litter) error

	ListMedicalRecords(ctx context.Context, userID string) ([]models.MedicalRecord, error)
	GetMedicalRecord(ctx context.Context, userID, id string) (models.MedicalRecord, error)
	InsertMedicalRecord(ctx context.Context, record models.MedicalRecord) error
	UpdateMedicalRecord(ctx context.Context, record models.MedicalRecord) error

	SaveDashboardSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDBRepository connects, pings and ensures the owner indexes exist.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &MongoDBRepository{client: client, db: client.Database(dbName)}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	for _, name := range []string{sowsCollection, boarsCollection, breedingsCollection, littersCollection, medicalCollection, snapshotsCollection} {
		model := mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}}
		if _, err := r.db.Collection(name).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create user_id index on %s: %w", name, err)
		}
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func ownerFilter(userID string) bson.M {
	return bson.M{"user_id": userID}
}

func recordFilter(userID, id string) bson.M {
	return bson.M{"_id": id, "user_id": userID}
}

func list[T any](ctx context.Context, coll *mongo.Collection, userID string, sortKey string) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: sortKey, Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := coll.Find(ctx, ownerFilter(userID), opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

func get[T any](ctx context.Context, coll *mongo.Collection, userID, id string) (T, error) {
	var out T
	err := coll.FindOne(ctx, recordFilter(userID, id)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, fmt.Errorf("%s %s: %w", coll.Name(), id, ErrNotFound)
	}
	if err != nil {
		return out, fmt.Errorf("find %s %s: %w", coll.Name(), id, err)
	}
	return out, nil
}

func insert(ctx context.Context, coll *mongo.Collection, doc any) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func replace(ctx context.Context, coll *mongo.Collection, userID, id string, doc any) error {
	res, err := coll.ReplaceOne(ctx, recordFilter(userID, id), doc)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", coll.Name(), id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s %s: %w", coll.Name(), id, ErrNotFound)
	}
	return nil
}

// ListSows returns the owner's sows ordered by name.
func (r *MongoDBRepository) ListSows(ctx context.Context, userID string) ([]models.Sow, error) {
	return list[models.Sow](ctx, r.db.Collection(sowsCollection), userID, "name")
}

// GetSow loads one sow.
func (r *MongoDBRepository) GetSow(ctx context.Context, userID, id string) (models.Sow, error) {
	return get[models.Sow](ctx, r.db.Collection(sowsCollection), userID, id)
}

// InsertSow stores a new sow.
func (r *MongoDBRepository) InsertSow(ctx context.Context, sow models.Sow) error {
	return insert(ctx, r.db.Collection(sowsCollection), sow)
}

// UpdateSow replaces a stored sow.
func (r *MongoDBRepository) UpdateSow(ctx context.Context, sow models.Sow) error {
	return replace(ctx, r.db.Collection(sowsCollection), sow.UserID, sow.ID, sow)
}

// ListBoars returns the owner's boars ordered by breed.
func (r *MongoDBRepository) ListBoars(ctx context.Context, userID string) ([]models.Boar, error) {
	return list[models.Boar](ctx, r.db.Collection(boarsCollection), userID, "breed")
}

// GetBoar loads one boar.
func (r *MongoDBRepository) GetBoar(ctx context.Context, userID, id string) (models.Boar, error) {
	return get[models.Boar](ctx, r.db.Collection(boarsCollection), userID, id)
}

// InsertBoar stores a new boar.
func (r *MongoDBRepository) InsertBoar(ctx context.Context, boar models.Boar) error {
	return insert(ctx, r.db.Collection(boarsCollection), boar)
}

// UpdateBoar replaces a stored boar.
func (r *MongoDBRepository) UpdateBoar(ctx context.Context, boar models.Boar) error {
	return replace(ctx, r.db.Collection(boarsCollection), boar.UserID, boar.ID, boar)
}

// ListBreedings returns the owner's breedings ordered by breed date.
func (r *MongoDBRepository) ListBreedings(ctx context.Context, userID string) ([]models.Breeding, error) {
	return list[models.Breeding](ctx, r.db.Collection(breedingsCollection), userID, "breed_date")
}

// GetBreeding loads one breeding.
func (r *MongoDBRepository) GetBreeding(ctx context.Context, userID, id string) (models.Breeding, error) {
	return get[models.Breeding](ctx, r.db.Collection(breedingsCollection), userID, id)
}

// InsertBreeding stores a new breeding.
func (r *MongoDBRepository) InsertBreeding(ctx context.Context, breeding models.Breeding) error {
	return insert(ctx, r.db.Collection(breedingsCollection), breeding)
}

// UpdateBreeding replaces a stored breeding.
func (r *MongoDBRepository) UpdateBreeding(ctx context.Context, breeding models.Breeding) error {
	return replace(ctx, r.db.Collection(breedingsCollection), breeding.UserID, breeding.ID, breeding)
}

// DeleteBreeding removes a breeding.
func (r *MongoDBRepository) DeleteBreeding(ctx context.Context, userID, id string) error {
	res, err := r.db.Collection(breedingsCollection).DeleteOne(ctx, recordFilter(userID, id))
	if err != nil {
		return fmt.Errorf("failed to delete breeding %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("breeding %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListLitters returns the owner's litters ordered by birth date.
func (r *MongoDBRepository) ListLitters(ctx context.Context, userID string) ([]models.Litter, error) {
	return list[models.Litter](ctx, r.db.Collection(littersCollection), userID, "birth_date")
}

// GetLitter loads one litter.
func (r *MongoDBRepository) GetLitter(ctx context.Context, userID, id string) (models.Litter, error) {
	return get[models.Litter](ctx, r.db.Collection(littersCollection), userID, id)
}

// InsertLitter stores a new litter.
func (r *MongoDBRepository) InsertLitter(ctx context.Context, litter models.Litter) error {
	return insert(ctx, r.db.Collection(littersCollection), litter)
}

// UpdateLitter replaces a stored litter.
func (r *MongoDBRepository) UpdateLitter(ctx context.Context, litter models.Litter) error {
	return replace(ctx, r.db.Collection(littersCollection), litter.UserID, litter.ID, litter)
}

// ListMedicalRecords returns the owner's medical records ordered by usage date.
func (r *MongoDBRepository) ListMedicalRecords(ctx context.Context, userID string) ([]models.MedicalRecord, error) {
	return list[models.MedicalRecord](ctx, r.db.Collection(medicalCollection), userID, "used_at")
}

// GetMedicalRecord loads one medical record.
func (r *MongoDBRepository) GetMedicalRecord(ctx context.Context, userID, id string) (models.MedicalRecord, error) {
	return get[models.MedicalRecord](ctx, r.db.Collection(medicalCollection), userID, id)
}

// InsertMedicalRecord stores a new medical record.
func (r *MongoDBRepository) InsertMedicalRecord(ctx context.Context, record models.MedicalRecord) error {
	return insert(ctx, r.db.Collection(medicalCollection), record)
}

// UpdateMedicalRecord replaces a stored medical record.
func (r *MongoDBRepository) UpdateMedicalRecord(ctx context.Context, record models.MedicalRecord) error {
	return replace(ctx, r.db.Collection(medicalCollection), record.UserID, record.ID, record)
}

// SaveDashboardSnapshot saves a dashboard snapshot to the database.
func (r *MongoDBRepository) SaveDashboardSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error {
	return insert(ctx, r.db.Collection(snapshotsCollection), snapshot)
}
