// Package application is the data-access library for Application and
// ApplicationEntity records: schema-validated saves, point lookups,
// bulk listing and partial updates against a document store, with
// audit events posted to the docket collaborator on every significant
// operation.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Evolvus/evolvus-application/domain"
	"github.com/Evolvus/evolvus-application/schema"
)

// Service is the public facade for Application records. It validates
// input, emits audit events and delegates persistence to the
// repository; errors from the repository are surfaced, never swallowed.
type Service struct {
	auditor
	repo domain.ApplicationRepository
	desc *schema.Descriptor
}

func NewService(logger *slog.Logger, repo domain.ApplicationRepository, sink domain.AuditSink) *Service {
	if logger == nil {
		logger = newLogger("application")
	}
	return &Service{
		auditor: auditor{
			logger: logger,
			sink:   sink,
			audit:  Config{}.auditInfo("application"),
		},
		repo: repo,
		desc: schema.Application(),
	}
}

// Validate checks a candidate record against the declarative schema and
// returns the complete list of violated constraints.
func (s *Service) Validate(app *domain.Application) error {
	if app == nil {
		return fmt.Errorf("validate: application is nil: %w", domain.ErrInvalidArgument)
	}
	return s.desc.Validate(app.Document())
}

// Save validates the record, emits the audit event and inserts it. An
// invalid record never reaches the repository; any failure, validation
// or persistence, produces a failure audit event carrying the error.
func (s *Service) Save(ctx context.Context, app *domain.Application) (saved *domain.Application, err error) {
	if app == nil {
		return nil, fmt.Errorf("save: application is nil: %w", domain.ErrInvalidArgument)
	}
	defer func() { observeOp("application", "save", err) }()

	keyData := map[string]any{"operation": "save", "applicationCode": app.ApplicationCode}
	if err = s.Validate(app); err != nil {
		s.logger.Error("application failed validation", "applicationCode", app.ApplicationCode, "error", err)
		s.emit(s.event("SAVE APPLICATION", domain.AuditStatusFailure, app.CreatedBy, keyData, err.Error()))
		return nil, err
	}

	s.emit(s.event("SAVE APPLICATION", domain.AuditStatusSuccess, app.CreatedBy, keyData, ""))
	saved, err = s.repo.Save(ctx, app)
	if err != nil {
		s.logger.Error("error saving application", "applicationCode", app.ApplicationCode, "error", err)
		s.emit(s.event("SAVE APPLICATION", domain.AuditStatusFailure, app.CreatedBy, keyData, err.Error()))
		return nil, err
	}
	return saved, nil
}

// GetAll returns up to limit records in storage-native order; a limit
// below 1 returns everything.
func (s *Service) GetAll(ctx context.Context, limit int) (apps []domain.Application, err error) {
	defer func() { observeOp("application", "getAll", err) }()
	s.emit(s.event("FIND ALL APPLICATIONS", domain.AuditStatusSuccess, "",
		map[string]any{"operation": "findAll", "limit": limit}, ""))
	return s.repo.FindAll(ctx, limit)
}

// GetByID looks a record up by primary key. A well-formed id matching
// nothing yields the empty record; a malformed id is an error.
func (s *Service) GetByID(ctx context.Context, id string) (app domain.Application, err error) {
	if id == "" {
		return app, fmt.Errorf("getById: id is empty: %w", domain.ErrInvalidArgument)
	}
	defer func() { observeOp("application", "getById", err) }()
	s.emit(s.event("FIND APPLICATION BY ID", domain.AuditStatusSuccess, "",
		map[string]any{"operation": "findById", "id": id}, ""))
	app, err = s.repo.FindByID(ctx, id)
	return s.found(app, err)
}

// GetOne returns the first record matching an equality query.
func (s *Service) GetOne(ctx context.Context, query map[string]any) (app domain.Application, err error) {
	if len(query) == 0 {
		return app, fmt.Errorf("getOne: query is empty: %w", domain.ErrInvalidArgument)
	}
	defer func() { observeOp("application", "getOne", err) }()
	s.emit(s.event("FIND ONE APPLICATION", domain.AuditStatusSuccess, "",
		map[string]any{"operation": "findOne", "query": query}, ""))
	app, err = s.repo.FindOne(ctx, query)
	return s.found(app, err)
}

// FindByCode looks a record up by its unique business code.
func (s *Service) FindByCode(ctx context.Context, code string) (app domain.Application, err error) {
	if code == "" {
		return app, fmt.Errorf("findByCode: code is empty: %w", domain.ErrInvalidArgument)
	}
	defer func() { observeOp("application", "findByCode", err) }()
	s.emit(s.event("FIND APPLICATION BY CODE", domain.AuditStatusSuccess, "",
		map[string]any{"operation": "findByCode", "applicationCode": code}, ""))
	app, err = s.repo.FindByCode(ctx, code)
	return s.found(app, err)
}

// FindByCodeAndEnabled looks a record up by code and enabled flag.
func (s *Service) FindByCodeAndEnabled(ctx context.Context, code string, enabled bool) (app domain.Application, err error) {
	if code == "" {
		return app, fmt.Errorf("findByCodeAndEnabled: code is empty: %w", domain.ErrInvalidArgument)
	}
	defer func() { observeOp("application", "findByCodeAndEnabled", err) }()
	s.emit(s.event("FIND APPLICATION BY CODE AND ENABLED", domain.AuditStatusSuccess, "",
		map[string]any{"operation": "findByCodeAndEnabled", "applicationCode": code, "enabled": enabled}, ""))
	app, err = s.repo.FindByCodeAndEnabled(ctx, code, enabled)
	return s.found(app, err)
}

// found renders repository absence as the empty record. Every other
// error, including a malformed identifier, passes through.
func (s *Service) found(app domain.Application, err error) (domain.Application, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Application{}, nil
	}
	if err != nil {
		return domain.Application{}, err
	}
	return app, nil
}

// Update applies a partial field-level patch to the record with the
// given id.
func (s *Service) Update(ctx context.Context, id string, patch map[string]any) (res domain.UpdateResult, err error) {
	if id == "" || len(patch) == 0 {
		return res, fmt.Errorf("update: id or patch is empty: %w", domain.ErrInvalidArgument)
	}
	defer func() { observeOp("application", "update", err) }()

	keyData := map[string]any{"operation": "update", "id": id, "patch": patch}
	s.emit(s.event("UPDATE APPLICATION", domain.AuditStatusSuccess, "", keyData, ""))
	res, err = s.repo.Update(ctx, id, patch)
	if err != nil {
		s.logger.Error("error updating application", "id", id, "error", err)
		s.emit(s.event("UPDATE APPLICATION", domain.AuditStatusFailure, "", keyData, err.Error()))
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return res, fmt.Errorf("there is no application with id %s: %w", id, domain.ErrNotFound)
		case errors.Is(err, domain.ErrNoOpUpdate):
			return res, fmt.Errorf("update of application %s would change no values: %w", id, domain.ErrNoOpUpdate)
		}
		return res, err
	}
	return res, nil
}

// DeleteAll removes every record. Reserved for test and reset use.
func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	return s.repo.DeleteAll(ctx)
}
