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

const ApplicationEntityCollection = "applicationentities"

type mongoApplicationEntityRepository struct {
	col  *mongo.Collection
	desc *schema.Descriptor
}

func NewMongoApplicationEntity(conn *Connection, desc *schema.Descriptor) domain.ApplicationEntityRepository {
	return &mongoApplicationEntityRepository{
		col:  conn.Database().Collection(ApplicationEntityCollection),
		desc: desc,
	}
}

// Save implements domain.ApplicationEntityRepository.
func (m *mongoApplicationEntityRepository) Save(ctx context.Context, entity *domain.ApplicationEntity) (*domain.ApplicationEntity, error) {
	if entity == nil {
		return nil, fmt.Errorf("save: %w", domain.ErrInvalidArgument)
	}
	doc := entity.Document()
	m.desc.ApplyDefaults(doc)
	if err := m.desc.Validate(doc); err != nil {
		return nil, err
	}

	stored := *entity
	if stored.ID.IsZero() {
		stored.ID = bson.NewObjectID()
	}
	if stored.Enabled == nil {
		stored.Enabled = lo.ToPtr(true)
	}
	if _, err := m.col.InsertOne(ctx, stored); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("application entity with code %d: %w", entity.Code, domain.ErrConflict)
		}
		return nil, fmt.Errorf("error saving application entity: %w", err)
	}
	return &stored, nil
}

// FindByCode implements domain.ApplicationEntityRepository.
func (m *mongoApplicationEntityRepository) FindByCode(ctx context.Context, code int) (domain.ApplicationEntity, error) {
	return m.findOne(ctx, bson.D{{Key: "code", Value: code}})
}

// FindByCodeAndEnabled implements domain.ApplicationEntityRepository.
func (m *mongoApplicationEntityRepository) FindByCodeAndEnabled(ctx context.Context, code int, enabled bool) (domain.ApplicationEntity, error) {
	return m.findOne(ctx, bson.D{
		{Key: "code", Value: code},
		{Key: "enabled", Value: enabled},
	})
}

// FindByID implements domain.ApplicationEntityRepository.
func (m *mongoApplicationEntityRepository) FindByID(ctx context.Context, id string) (domain.ApplicationEntity, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.ApplicationEntity{}, fmt.Errorf("%q: %w", id, domain.ErrMalformedID)
	}
	return m.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

// FindOne implements domain.ApplicationEntityRepository.
func (m *mongoApplicationEntityRepository) FindOne(ctx context.Context, query map[string]any) (domain.ApplicationEntity, error) {
	if len(query) == 0 {
		return domain.ApplicationEntity{}, fmt.Errorf("findOne: %w", domain.ErrInvalidArgument)
	}
	return m.findOne(ctx, toFilter(query))
}

func (m *mongoApplicationEntityRepository) findOne(ctx context.Context, filter bson.D) (domain.ApplicationEntity, error) {
	var entity domain.ApplicationEntity
	err := m.col.FindOne(ctx, filter).Decode(&entity)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ApplicationEntity{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.ApplicationEntity{}, fmt.Errorf("error finding application entity: %w", err)
	}
	return entity, nil
}

// FindAll implements domain.ApplicationEntityRepository.
func (m *mongoApplicationEntityRepository) FindAll(ctx context.Context, limit int) ([]domain.ApplicationEntity, error) {
	findOptions := options.Find()
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}
	cursor, err := m.col.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("error listing application entities: %w", err)
	}
	defer cursor.Close(ctx)

	entities := make([]domain.ApplicationEntity, 0)
	if err := cursor.All(ctx, &entities); err != nil {
		return nil, fmt.Errorf("error decoding application entities: %w", err)
	}
	return entities, nil
}

// Update implements domain.ApplicationEntityRepository.
func (m *mongoApplicationEntityRepository) Update(ctx context.Context, id string, patch map[string]any) (domain.UpdateResult, error) {
	var res domain.UpdateResult
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return res, fmt.Errorf("%q: %w", id, domain.ErrMalformedID)
	}

	var current bson.M
	err = m.col.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return res, fmt.Errorf("application entity %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return res, fmt.Errorf("error finding application entity: %w", err)
	}

	changes, err := validatePatch(m.desc, current, patch)
	if err != nil {
		return res, err
	}
	if len(changes) == 0 {
		return res, fmt.Errorf("application entity %s: %w", id, domain.ErrNoOpUpdate)
	}
	changes["updatedDate"] = time.Now().UTC()

	updateRes, err := m.col.UpdateByID(ctx, oid, bson.M{"$set": changes})
	if err != nil {
		return res, fmt.Errorf("error updating application entity: %w", err)
	}
	res.Matched = updateRes.MatchedCount
	res.Modified = updateRes.ModifiedCount
	return res, nil
}

// DeleteAll implements domain.ApplicationEntityRepository. Test/reset only.
func (m *mongoApplicationEntityRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := m.col.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("error deleting application entities: %w", err)
	}
	return res.DeletedCount, nil
}
