package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Evolvus/evolvus-application/domain"
	"github.com/Evolvus/evolvus-application/schema"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// memApplicationRepo mimics the store's behavior at the repository
// contract: unique code, ObjectID identity, diff-based updates.
type memApplicationRepo struct {
	mu   sync.Mutex
	apps []domain.Application
	desc *schema.Descriptor
}

func newMemApplicationRepo() *memApplicationRepo {
	return &memApplicationRepo{desc: schema.Application()}
}

func (m *memApplicationRepo) Save(_ context.Context, app *domain.Application) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.apps {
		if existing.ApplicationCode == app.ApplicationCode {
			return nil, fmt.Errorf("application with code %s: %w", app.ApplicationCode, domain.ErrConflict)
		}
	}
	stored := *app
	stored.ID = bson.NewObjectID()
	if stored.Enabled == nil {
		stored.Enabled = lo.ToPtr(true)
	}
	m.apps = append(m.apps, stored)
	return &stored, nil
}

func (m *memApplicationRepo) FindByCode(_ context.Context, code string) (domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.apps {
		if app.ApplicationCode == code {
			return app, nil
		}
	}
	return domain.Application{}, domain.ErrNotFound
}

func (m *memApplicationRepo) FindByCodeAndEnabled(_ context.Context, code string, enabled bool) (domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.apps {
		if app.ApplicationCode == code && app.IsEnabled() == enabled {
			return app, nil
		}
	}
	return domain.Application{}, domain.ErrNotFound
}

func (m *memApplicationRepo) FindByID(_ context.Context, id string) (domain.Application, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.Application{}, fmt.Errorf("%q: %w", id, domain.ErrMalformedID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.apps {
		if app.ID == oid {
			return app, nil
		}
	}
	return domain.Application{}, domain.ErrNotFound
}

func (m *memApplicationRepo) FindOne(_ context.Context, query map[string]any) (domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.apps {
		doc := app.Document()
		matches := true
		for k, v := range query {
			if doc[k] != v {
				matches = false
				break
			}
		}
		if matches {
			return app, nil
		}
	}
	return domain.Application{}, domain.ErrNotFound
}

func (m *memApplicationRepo) FindAll(_ context.Context, limit int) ([]domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apps := make([]domain.Application, len(m.apps))
	copy(apps, m.apps)
	if limit > 0 && limit < len(apps) {
		apps = apps[:limit]
	}
	return apps, nil
}

func (m *memApplicationRepo) Update(_ context.Context, id string, patch map[string]any) (domain.UpdateResult, error) {
	var res domain.UpdateResult
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return res, fmt.Errorf("%q: %w", id, domain.ErrMalformedID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, app := range m.apps {
		if app.ID != oid {
			continue
		}
		if err := m.desc.ValidatePatch(patch); err != nil {
			return res, err
		}
		doc := app.Document()
		changed := false
		for k, v := range patch {
			if doc[k] != v {
				changed = true
			}
		}
		if !changed {
			return res, fmt.Errorf("application %s: %w", id, domain.ErrNoOpUpdate)
		}
		if name, ok := patch["applicationName"].(string); ok {
			m.apps[i].ApplicationName = name
		}
		if desc, ok := patch["description"].(string); ok {
			m.apps[i].Description = desc
		}
		if enabled, ok := patch["enabled"].(bool); ok {
			m.apps[i].Enabled = lo.ToPtr(enabled)
		}
		if updatedBy, ok := patch["updatedBy"].(string); ok {
			m.apps[i].UpdatedBy = updatedBy
		}
		m.apps[i].UpdatedDate = lo.ToPtr(time.Now().UTC())
		res.Matched, res.Modified = 1, 1
		return res, nil
	}
	return res, fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
}

func (m *memApplicationRepo) DeleteAll(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.apps))
	m.apps = nil
	return n, nil
}

func (m *memApplicationRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.apps)
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (r *recordingSink) Post(_ context.Context, event domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recordingSink) last() domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type failingSink struct{}

func (failingSink) Post(context.Context, domain.AuditEvent) error {
	return errors.New("docket unreachable")
}

func testApplication() *domain.Application {
	return &domain.Application{
		TenantID:        "IVL",
		ApplicationCode: "CDA",
		ApplicationName: "FLUX CDA",
		CreatedBy:       "Kavya",
		CreatedDate:     time.Now().UTC(),
	}
}

func newTestService() (*Service, *memApplicationRepo, *recordingSink) {
	repo := newMemApplicationRepo()
	sink := &recordingSink{}
	return NewService(nil, repo, sink), repo, sink
}

func TestSaveValidRecord(t *testing.T) {
	svc, _, sink := newTestService()

	saved, err := svc.Save(context.Background(), testApplication())
	require.NoError(t, err)
	assert.False(t, saved.ID.IsZero())
	assert.True(t, saved.IsEnabled())
	assert.Equal(t, "Kavya", saved.CreatedBy)

	assert.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 10*time.Millisecond)
	event := sink.last()
	assert.Equal(t, "SAVE APPLICATION", event.Name)
	assert.Equal(t, domain.AuditStatusSuccess, event.Status)
	assert.Equal(t, "Kavya", event.CreatedBy)
	assert.Contains(t, event.KeyDataAsJSON, "CDA")
}

func TestSaveInvalidRecordEnumeratesViolations(t *testing.T) {
	svc, repo, sink := newTestService()

	_, err := svc.Save(context.Background(), &domain.Application{ApplicationCode: "A"})
	require.Error(t, err)

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := lo.Map(verr.Violations, func(v schema.Violation, _ int) string { return v.Field })
	assert.Contains(t, fields, "tenantId")
	assert.Contains(t, fields, "applicationName")
	assert.Contains(t, fields, "createdBy")
	assert.Contains(t, fields, "createdDate")
	assert.Contains(t, fields, "applicationCode")

	// the repository was never touched, and the failure was audited
	assert.Equal(t, 0, repo.count())
	assert.Eventually(t, func() bool {
		return sink.count() == 1 && sink.last().Status == domain.AuditStatusFailure
	}, time.Second, 10*time.Millisecond)
}

func TestSaveNilRecord(t *testing.T) {
	svc, _, sink := newTestService()

	_, err := svc.Save(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Never(t, func() bool { return sink.count() > 0 }, 200*time.Millisecond, 20*time.Millisecond)
}

func TestSaveDuplicateCode(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Save(ctx, testApplication())
	require.NoError(t, err)

	second := testApplication()
	second.ApplicationName = "FLUX CDA again"
	_, err = svc.Save(ctx, second)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// the first record is still retrievable
	found, err := svc.FindByCode(ctx, "CDA")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestFindByCodeNotFoundIsEmptyRecord(t *testing.T) {
	svc, _, _ := newTestService()

	found, err := svc.FindByCode(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.True(t, found.IsZero())
}

func TestFindByCodeEmptyCode(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.FindByCode(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestFindByCodeAndEnabled(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	app := testApplication()
	app.Enabled = lo.ToPtr(false)
	_, err := svc.Save(ctx, app)
	require.NoError(t, err)

	found, err := svc.FindByCodeAndEnabled(ctx, "CDA", false)
	require.NoError(t, err)
	assert.Equal(t, "CDA", found.ApplicationCode)

	found, err = svc.FindByCodeAndEnabled(ctx, "CDA", true)
	require.NoError(t, err)
	assert.True(t, found.IsZero())
}

func TestGetByID(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	saved, err := svc.Save(ctx, testApplication())
	require.NoError(t, err)

	found, err := svc.GetByID(ctx, saved.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, saved.ID, found.ID)

	// well-formed id, no match: empty record, no error
	found, err = svc.GetByID(ctx, bson.NewObjectID().Hex())
	require.NoError(t, err)
	assert.True(t, found.IsZero())

	// malformed id: an error, never masked
	_, err = svc.GetByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, domain.ErrMalformedID)

	_, err = svc.GetByID(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGetOne(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Save(ctx, testApplication())
	require.NoError(t, err)

	found, err := svc.GetOne(ctx, map[string]any{"applicationCode": "CDA"})
	require.NoError(t, err)
	assert.Equal(t, "FLUX CDA", found.ApplicationName)

	found, err = svc.GetOne(ctx, map[string]any{"applicationCode": "NOPE"})
	require.NoError(t, err)
	assert.True(t, found.IsZero())

	_, err = svc.GetOne(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGetAllLimits(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	all, err := svc.GetAll(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)

	for i, code := range []string{"CDA", "RTP", "ACH"} {
		app := testApplication()
		app.ApplicationCode = code
		app.ApplicationName = fmt.Sprintf("FLUX APP %c", 'A'+i)
		_, err := svc.Save(ctx, app)
		require.NoError(t, err)
	}

	all, err = svc.GetAll(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	all, err = svc.GetAll(ctx, -1)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	two, err := svc.GetAll(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	ten, err := svc.GetAll(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, ten, 3)
}

func TestUpdate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	saved, err := svc.Save(ctx, testApplication())
	require.NoError(t, err)
	id := saved.ID.Hex()

	res, err := svc.Update(ctx, id, map[string]any{"applicationName": "FLUX CDA 2"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Modified, int64(1))

	// repeating the same values is a no-op, distinct from not-found
	_, err = svc.Update(ctx, id, map[string]any{"applicationName": "FLUX CDA 2"})
	assert.ErrorIs(t, err, domain.ErrNoOpUpdate)

	_, err = svc.Update(ctx, bson.NewObjectID().Hex(), map[string]any{"applicationName": "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(ctx, "not-an-object-id", map[string]any{"applicationName": "X"})
	assert.ErrorIs(t, err, domain.ErrMalformedID)

	_, err = svc.Update(ctx, "", map[string]any{"applicationName": "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.Update(ctx, id, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestUpdateRejectsImmutableFields(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	saved, err := svc.Save(ctx, testApplication())
	require.NoError(t, err)

	_, err = svc.Update(ctx, saved.ID.Hex(), map[string]any{"createdBy": "intruder"})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "immutable", verr.Violations[0].Constraint)
}

func TestAuditFailureDoesNotAbortOperation(t *testing.T) {
	repo := newMemApplicationRepo()
	svc := NewService(nil, repo, failingSink{})

	saved, err := svc.Save(context.Background(), testApplication())
	require.NoError(t, err)
	assert.False(t, saved.ID.IsZero())
}

func TestNoSinkConfigured(t *testing.T) {
	repo := newMemApplicationRepo()
	svc := NewService(nil, repo, nil)

	_, err := svc.Save(context.Background(), testApplication())
	assert.NoError(t, err)
}

// The full lifecycle: save, point lookup, update, list.
func TestLifecycle(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	original := testApplication()
	saved, err := svc.Save(ctx, original)
	require.NoError(t, err)

	found, err := svc.FindByCode(ctx, "CDA")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, found.ID)
	assert.Equal(t, "FLUX CDA", found.ApplicationName)

	_, err = svc.Update(ctx, saved.ID.Hex(), map[string]any{"applicationName": "FLUX CDA 2"})
	require.NoError(t, err)

	all, err := svc.GetAll(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "FLUX CDA 2", all[0].ApplicationName)
	assert.Equal(t, original.CreatedBy, all[0].CreatedBy)
	assert.Equal(t, original.CreatedDate, all[0].CreatedDate)
	assert.NotNil(t, all[0].UpdatedDate)

	n, err := svc.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
