package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Evolvus/evolvus-application/domain"
	"github.com/Evolvus/evolvus-application/schema"
)

// EntityService is the public facade for ApplicationEntity records,
// the numeric-code sibling of Service.
type EntityService struct {
	auditor
	repo domain.ApplicationEntityRepository
	desc *schema.Descriptor
}

func NewEntityService(logger *slog.Logger, repo domain.ApplicationEntityRepository, sink domain.AuditSink) *EntityService {
	if logger == nil {
		logger = newLogger("applicationentity")
	}
	return &EntityService{
		auditor: auditor{
			logger: logger,
			sink:   sink,
			audit:  Config{}.auditInfo("applicationentity"),
		},
		repo: repo,
		desc: schema.ApplicationEntity(),
	}
}

func (s *EntityService) Validate(entity *domain.ApplicationEntity) error {
	if entity == nil {
		return fmt.Errorf("validate: application entity is nil: %w", domain.ErrInvalidArgument)
	}
	return s.desc.Validate(entity.Document())
}

func (s *EntityService) Save(ctx context.Context, entity *domain.ApplicationEntity) (saved *domain.ApplicationEntity, err error) {
	if entity == nil {
		return nil, fmt.Errorf("save: application entity is nil: %w", domain.ErrInvalidArgument)
	}
	defer func() { observeOp("applicationentity", "save", err) }()

	keyData := map[string]any{"operation": "save", "code": entity.Code}
	if err = s.Validate(entity); err != nil {
		s.logger.Error("application entity failed validation", "code", entity.Code, "error", err)
		s.emit(s.event("SAVE APPLICATION ENTITY", domain.AuditStatusFailure, entity.CreatedBy, keyData, err.Error()))
		return nil, err
	}

	s.emit(s.event("SAVE APPLICATION ENTITY", domain.AuditStatusSuccess, entity.CreatedBy, keyData, ""))
	saved, err = s.repo.Save(ctx, entity)
	if err != nil {
		s.logger.Error("error saving application entity", "code", entity.Code, "error", err)
		s.emit(s.event("SAVE APPLICATION ENTITY", domain.AuditStatusFailure, entity.CreatedBy, keyData, err.Error()))
		return nil, err
	}
	return saved, nil
}

func (s *EntityService) GetAll(ctx context.Context, limit int) (entities []domain.ApplicationEntity, err error) {
	defer func() { observeOp("applicationentity", "getAll", err) }()
	s.emit(s.event("FIND ALL APPLICATION ENTITIES", domain.AuditStatusSuccess, "",
		map[string]any{"operation": "findAll", "limit": limit}, ""))
	return s.repo.FindAll(ctx, limit)
}

func (s *EntityService) GetByID(ctx context.Context, id string) (entity domain.ApplicationEntity, err error) {
	if id == "" {
		return entity, fmt.Errorf("getById: id is empty: %w", domain.ErrInvalidArgument)
	}
	defer func() { observeOp("applicationentity", "getById", err) }()
	s.emit(s.event("FIND APPLICATION ENTITY BY ID", domain.AuditStatusSuccess, "",
		map[string]any{"operation": "findById", "id": id}, ""))
	entity, err = s.repo.FindByID(ctx, id)
	return s.found(entity, err)
}

func (s *EntityService) GetOne(ctx context.Context, query map[string]any) (entity domain.ApplicationEntity, err error) {
	if len(query) == 0 {
		return entity, fmt.Errorf("getOne: query is empty: %w", domain.ErrInvalidArgument)
	}
	defer func() { observeOp("applicationentity", "getOne", err) }()
	s.emit(s.event("FIND ONE APPLICATION ENTITY", domain.AuditStatusSuccess, "",
		map[string]any{"operation": "findOne", "query": query}, ""))
	entity, err = s.repo.FindOne(ctx, query)
	return s.found(entity, err)
}

// FindByCode looks a record up by its unique numeric code. Codes start
// at 1; zero is not a valid code.
func (s *EntityService) FindByCode(ctx context.Context, code int) (entity domain.ApplicationEntity, err error) {
	if code == 0 {
		return entity, fmt.Errorf("findByCode: code is zero: %w", domain.ErrInvalidArgument)
	}
	defer func() { observeOp("applicationentity", "findByCode", err) }()
	s.emit(s.event("FIND APPLICATION ENTITY BY CODE", domain.AuditStatusSuccess, "",
		map[string]any{"operation": "findByCode", "code": code}, ""))
	entity, err = s.repo.FindByCode(ctx, code)
	return s.found(entity, err)
}

func (s *EntityService) FindByCodeAndEnabled(ctx context.Context, code int, enabled bool) (entity domain.ApplicationEntity, err error) {
	if code == 0 {
		return entity, fmt.Errorf("findByCodeAndEnabled: code is zero: %w", domain.ErrInvalidArgument)
	}
	defer func() { observeOp("applicationentity", "findByCodeAndEnabled", err) }()
	s.emit(s.event("FIND APPLICATION ENTITY BY CODE AND ENABLED", domain.AuditStatusSuccess, "",
		map[string]any{"operation": "findByCodeAndEnabled", "code": code, "enabled": enabled}, ""))
	entity, err = s.repo.FindByCodeAndEnabled(ctx, code, enabled)
	return s.found(entity, err)
}

func (s *EntityService) found(entity domain.ApplicationEntity, err error) (domain.ApplicationEntity, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ApplicationEntity{}, nil
	}
	if err != nil {
		return domain.ApplicationEntity{}, err
	}
	return entity, nil
}

func (s *EntityService) Update(ctx context.Context, id string, patch map[string]any) (res domain.UpdateResult, err error) {
	if id == "" || len(patch) == 0 {
		return res, fmt.Errorf("update: id or patch is empty: %w", domain.ErrInvalidArgument)
	}
	defer func() { observeOp("applicationentity", "update", err) }()

	keyData := map[string]any{"operation": "update", "id": id, "patch": patch}
	s.emit(s.event("UPDATE APPLICATION ENTITY", domain.AuditStatusSuccess, "", keyData, ""))
	res, err = s.repo.Update(ctx, id, patch)
	if err != nil {
		s.logger.Error("error updating application entity", "id", id, "error", err)
		s.emit(s.event("UPDATE APPLICATION ENTITY", domain.AuditStatusFailure, "", keyData, err.Error()))
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return res, fmt.Errorf("there is no application entity with id %s: %w", id, domain.ErrNotFound)
		case errors.Is(err, domain.ErrNoOpUpdate):
			return res, fmt.Errorf("update of application entity %s would change no values: %w", id, domain.ErrNoOpUpdate)
		}
		return res, err
	}
	return res, nil
}

// DeleteAll removes every record. Reserved for test and reset use.
func (s *EntityService) DeleteAll(ctx context.Context) (int64, error) {
	return s.repo.DeleteAll(ctx)
}
