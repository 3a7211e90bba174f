package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Evolvus/evolvus-application/domain"
	"github.com/Evolvus/evolvus-application/schema"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const ApplicationCollection = "applications"

type mongoApplicationRepository struct {
	col *mongo.Collection
	// desc guards inserts at the storage boundary; patchDesc guards
	// update patches. They differ: the storage variant carries
	// insert-only constraints (short legacy codes, alphabetic names)
	// that must not reject patches the facade-side schema accepts.
	desc      *schema.Descriptor
	patchDesc *schema.Descriptor
}

func NewMongoApplication(conn *Connection, desc, patchDesc *schema.Descriptor) domain.ApplicationRepository {
	return &mongoApplicationRepository{
		col:       conn.Database().Collection(ApplicationCollection),
		desc:      desc,
		patchDesc: patchDesc,
	}
}

// Save implements domain.ApplicationRepository.
func (m *mongoApplicationRepository) Save(ctx context.Context, app *domain.Application) (*domain.Application, error) {
	if app == nil {
		return nil, fmt.Errorf("save: %w", domain.ErrInvalidArgument)
	}
	doc := app.Document()
	m.desc.ApplyDefaults(doc)
	if err := m.desc.Validate(doc); err != nil {
		return nil, err
	}

	stored := *app
	if stored.ID.IsZero() {
		stored.ID = bson.NewObjectID()
	}
	if stored.Enabled == nil {
		stored.Enabled = lo.ToPtr(true)
	}
	if _, err := m.col.InsertOne(ctx, stored); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("application with code %s: %w", app.ApplicationCode, domain.ErrConflict)
		}
		return nil, fmt.Errorf("error saving application: %w", err)
	}
	return &stored, nil
}

// FindByCode implements domain.ApplicationRepository.
func (m *mongoApplicationRepository) FindByCode(ctx context.Context, code string) (domain.Application, error) {
	return m.findOne(ctx, bson.D{{Key: "applicationCode", Value: code}})
}

// FindByCodeAndEnabled implements domain.ApplicationRepository.
func (m *mongoApplicationRepository) FindByCodeAndEnabled(ctx context.Context, code string, enabled bool) (domain.Application, error) {
	return m.findOne(ctx, bson.D{
		{Key: "applicationCode", Value: code},
		{Key: "enabled", Value: enabled},
	})
}

// FindByID implements domain.ApplicationRepository.
func (m *mongoApplicationRepository) FindByID(ctx context.Context, id string) (domain.Application, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.Application{}, fmt.Errorf("%q: %w", id, domain.ErrMalformedID)
	}
	return m.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

// FindOne implements domain.ApplicationRepository.
func (m *mongoApplicationRepository) FindOne(ctx context.Context, query map[string]any) (domain.Application, error) {
	if len(query) == 0 {
		return domain.Application{}, fmt.Errorf("findOne: %w", domain.ErrInvalidArgument)
	}
	return m.findOne(ctx, toFilter(query))
}

func (m *mongoApplicationRepository) findOne(ctx context.Context, filter bson.D) (domain.Application, error) {
	var app domain.Application
	err := m.col.FindOne(ctx, filter).Decode(&app)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Application{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Application{}, fmt.Errorf("error finding application: %w", err)
	}
	return app, nil
}

// FindAll implements domain.ApplicationRepository. A limit below 1
// returns every record, in storage-native order.
func (m *mongoApplicationRepository) FindAll(ctx context.Context, limit int) ([]domain.Application, error) {
	findOptions := options.Find()
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}
	cursor, err := m.col.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	defer cursor.Close(ctx)

	apps := make([]domain.Application, 0)
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("error decoding applications: %w", err)
	}
	return apps, nil
}

// Update implements domain.ApplicationRepository. The record is looked
// up first, the patch is validated field-by-field, and only fields that
// actually change stored values are written.
func (m *mongoApplicationRepository) Update(ctx context.Context, id string, patch map[string]any) (domain.UpdateResult, error) {
	var res domain.UpdateResult
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return res, fmt.Errorf("%q: %w", id, domain.ErrMalformedID)
	}

	var current bson.M
	err = m.col.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return res, fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return res, fmt.Errorf("error finding application: %w", err)
	}

	changes, err := validatePatch(m.patchDesc, current, patch)
	if err != nil {
		return res, err
	}
	if len(changes) == 0 {
		return res, fmt.Errorf("application %s: %w", id, domain.ErrNoOpUpdate)
	}
	changes["updatedDate"] = time.Now().UTC()

	updateRes, err := m.col.UpdateByID(ctx, oid, bson.M{"$set": changes})
	if err != nil {
		return res, fmt.Errorf("error updating application: %w", err)
	}
	res.Matched = updateRes.MatchedCount
	res.Modified = updateRes.ModifiedCount
	return res, nil
}

// DeleteAll implements domain.ApplicationRepository. Test/reset only.
func (m *mongoApplicationRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := m.col.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("error deleting applications: %w", err)
	}
	return res.DeletedCount, nil
}
