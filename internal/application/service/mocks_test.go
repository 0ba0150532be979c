package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/application/workflow"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Mock directory
type mockDirectory struct {
	actors    map[string]*entity.Actor
	lookupErr error
}

func newMockDirectory(actors ...*entity.Actor) *mockDirectory {
	d := &mockDirectory{actors: make(map[string]*entity.Actor)}
	for _, a := range actors {
		d.actors[a.ID] = a
	}
	return d
}

func (m *mockDirectory) GetByID(ctx context.Context, id string) (*entity.Actor, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.actors[id], nil
}

func (m *mockDirectory) ListByRole(ctx context.Context, role entity.Role) ([]*entity.Actor, error) {
	var result []*entity.Actor
	for _, a := range m.actors {
		if a.Role == role {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DisplayName < result[j].DisplayName })
	return result, nil
}

// memClaimRepo keeps claims in memory and honours ClaimQuery ordering
type memClaimRepo struct {
	claims    []*entity.Claim
	createErr error
	queryErr  error
	queries   []port.ClaimQuery
}

func (m *memClaimRepo) Create(ctx context.Context, claim *entity.Claim) error {
	if m.createErr != nil {
		return m.createErr
	}
	claim.ID = int64(len(m.claims) + 1)
	stored := *claim
	m.claims = append(m.claims, &stored)
	return nil
}

func (m *memClaimRepo) GetByID(ctx context.Context, id int64) (*entity.Claim, error) {
	for _, c := range m.claims {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memClaimRepo) Update(ctx context.Context, claim *entity.Claim) error {
	for i, c := range m.claims {
		if c.ID == claim.ID {
			if c.Version != claim.Version {
				return entity.ErrConcurrentUpdate
			}
			claim.Version++
			copied := *claim
			m.claims[i] = &copied
			return nil
		}
	}
	return entity.ErrConcurrentUpdate
}

func (m *memClaimRepo) Query(ctx context.Context, q port.ClaimQuery) ([]*entity.Claim, error) {
	m.queries = append(m.queries, q)
	if m.queryErr != nil {
		return nil, m.queryErr
	}

	statuses := make(map[string]bool)
	for _, s := range q.Statuses {
		statuses[s] = true
	}

	var result []*entity.Claim
	for _, c := range m.claims {
		if q.LecturerID != "" && c.LecturerID != q.LecturerID {
			continue
		}
		if len(statuses) > 0 && !statuses[c.Status] {
			continue
		}
		copied := *c
		result = append(result, &copied)
	}

	key := func(c *entity.Claim) time.Time {
		if q.OrderBy == port.SortByClaimMonth {
			return c.ClaimMonth
		}
		return c.SubmittedAt
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := key(result[i]), key(result[j])
		if a.Equal(b) {
			return result[i].ID < result[j].ID
		}
		if q.Direction == port.Descending {
			return a.After(b)
		}
		return a.Before(b)
	})

	return result, nil
}

func (m *memClaimRepo) DocumentKeys(ctx context.Context) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	for _, c := range m.claims {
		if c.DocumentKey != "" {
			keys[c.DocumentKey] = struct{}{}
		}
	}
	return keys, nil
}

func (m *memClaimRepo) add(c *entity.Claim) *entity.Claim {
	c.ID = int64(len(m.claims) + 1)
	m.claims = append(m.claims, c)
	return c
}

func (m *memClaimRepo) get(id int64) *entity.Claim {
	for _, c := range m.claims {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Mock history repository
type mockHistoryRepo struct {
	histories []*entity.ClaimHistory
	createErr error
}

func (m *mockHistoryRepo) Create(ctx context.Context, history *entity.ClaimHistory) error {
	if m.createErr != nil {
		return m.createErr
	}
	history.ID = int64(len(m.histories) + 1)
	m.histories = append(m.histories, history)
	return nil
}

func (m *mockHistoryRepo) GetByClaimID(ctx context.Context, claimID int64) ([]*entity.ClaimHistory, error) {
	result := []*entity.ClaimHistory{}
	for _, h := range m.histories {
		if h.ClaimID == claimID {
			result = append(result, h)
		}
	}
	return result, nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Mock document store
type mockDocumentStore struct {
	storeFunc    func(ctx context.Context, content []byte, originalFilename string) (string, error)
	retrieveFunc func(ctx context.Context, key string) ([]byte, error)
	documents    map[string][]byte
	deleted      []string
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{documents: make(map[string][]byte)}
}

func (m *mockDocumentStore) Store(ctx context.Context, content []byte, originalFilename string) (string, error) {
	if m.storeFunc != nil {
		return m.storeFunc(ctx, content, originalFilename)
	}
	key := fmt.Sprintf("doc-%d", len(m.documents)+1)
	m.documents[key] = content
	return key, nil
}

func (m *mockDocumentStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if m.retrieveFunc != nil {
		return m.retrieveFunc(ctx, key)
	}
	content, ok := m.documents[key]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return content, nil
}

func (m *mockDocumentStore) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.documents, key)
	return nil
}

func (m *mockDocumentStore) ContentType(filename string) string {
	return "application/pdf"
}

// Mock exporter
type mockExporter struct {
	writeErr  error
	report    *entity.MonthlyReport
	lecturers []*entity.LecturerSummary
}

func (m *mockExporter) ContentType() string   { return "application/test" }
func (m *mockExporter) FileExtension() string { return ".test" }

func (m *mockExporter) Write(w io.Writer, report *entity.MonthlyReport, lecturers []*entity.LecturerSummary) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.report = report
	m.lecturers = lecturers
	_, err := io.WriteString(w, "report")
	return err
}

type mockLogger struct {
	errors int
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.errors++
}

// Fixtures

var (
	testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	lecturerLee = &entity.Actor{ID: "lec-1", DisplayName: "Lee Lecturer", Role: entity.RoleLecturer}
	lecturerKim = &entity.Actor{ID: "lec-2", DisplayName: "Kim Lecturer", Role: entity.RoleLecturer}
	coordinator = &entity.Actor{ID: "pc-1", DisplayName: "Pat Coordinator", Role: entity.RoleProgrammeCoordinator}
	manager     = &entity.Actor{ID: "am-1", DisplayName: "", Role: entity.RoleAcademicManager}
	hrOfficer   = &entity.Actor{ID: "hr-1", DisplayName: "Hana HR", Role: entity.RoleHR}
)

func testClock() time.Time { return testNow }

type fixture struct {
	directory *mockDirectory
	claims    *memClaimRepo
	history   *mockHistoryRepo
	documents *mockDocumentStore
	logger    *mockLogger
	service   ClaimService
}

func newFixture() *fixture {
	f := &fixture{
		directory: newMockDirectory(lecturerLee, lecturerKim, coordinator, manager, hrOfficer),
		claims:    &memClaimRepo{},
		history:   &mockHistoryRepo{},
		documents: newMockDocumentStore(),
		logger:    &mockLogger{},
	}
	engine := workflow.NewEngine(f.claims, f.history, &mockTxManager{}, workflow.WithClock(testClock))
	f.service = NewClaimService(f.directory, f.claims, f.history, f.documents, engine, f.logger, WithClock(testClock))
	return f
}

func storedClaim(lecturerID string, status string, claimMonth time.Time, submittedAt time.Time, hours, rate int64) *entity.Claim {
	return &entity.Claim{
		LecturerID:  lecturerID,
		HoursWorked: decimal.NewFromInt(hours),
		HourlyRate:  decimal.NewFromInt(rate),
		ClaimMonth:  claimMonth,
		Status:      status,
		SubmittedAt: submittedAt,
	}
}

func monthOf(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}
