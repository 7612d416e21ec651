package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	memdb "github.com/hashicorp/go-memdb"
	"github.com/justsurfingit/careerhub/internal/models"
)

const (
	tableUsers      = "users"
	tableSessions   = "sessions"
	tableCompanies  = "companies"
	tableJobs       = "jobs"
	tableJobEvents  = "job_events"
	tableCVs        = "cvs"
	tableOnboarding = "onboarding"
)

func uintIndex(name, field string, unique bool) *memdb.IndexSchema {
	return &memdb.IndexSchema{Name: name, Unique: unique, Indexer: &memdb.UintFieldIndex{Field: field}}
}

func memSchema() *memdb.DBSchema {
	id := func() *memdb.IndexSchema { return uintIndex("id", "ID", true) }
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableUsers: {
				Name: tableUsers,
				Indexes: map[string]*memdb.IndexSchema{
					"id": id(),
					"email": {
						Name:    "email",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Email", Lowercase: true},
					},
				},
			},
			tableSessions: {
				Name: tableSessions,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Token"}},
				},
			},
			tableCompanies: {
				Name: tableCompanies,
				Indexes: map[string]*memdb.IndexSchema{
					"id": id(),
					"name": {
						Name:    "name",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Name", Lowercase: true},
					},
				},
			},
			tableJobs: {
				Name:    tableJobs,
				Indexes: map[string]*memdb.IndexSchema{"id": id()},
			},
			tableJobEvents: {
				Name: tableJobEvents,
				Indexes: map[string]*memdb.IndexSchema{
					"id":     id(),
					"job_id": uintIndex("job_id", "JobID", false),
				},
			},
			tableCVs: {
				Name: tableCVs,
				Indexes: map[string]*memdb.IndexSchema{
					"id":      id(),
					"user_id": uintIndex("user_id", "UserID", false),
				},
			},
			tableOnboarding: {
				Name: tableOnboarding,
				Indexes: map[string]*memdb.IndexSchema{
					"id":      id(),
					"user_id": uintIndex("user_id", "UserID", true),
				},
			},
		},
	}
}

// MemStore keeps all records in go-memdb tables. Stored objects are copies and
// are never mutated in place.
type MemStore struct {
	db  *memdb.MemDB
	now func() time.Time

	// guarded by memdb's single-writer lock: only touched inside write txns
	nextID map[string]uint
}

func NewMemStore() (*MemStore, error) {
	db, err := memdb.NewMemDB(memSchema())
	if err != nil {
		return nil, err
	}
	return &MemStore{db: db, now: time.Now, nextID: make(map[string]uint)}, nil
}

func (m *MemStore) allocID(table string) uint {
	m.nextID[table]++
	return m.nextID[table]
}

func (m *MemStore) first(table, index string, args ...interface{}) (interface{}, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(table, index, args...)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrNotFound
	}
	return raw, nil
}

func (m *MemStore) CreateUser(_ context.Context, u *models.User) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	u.Email = normalizeEmail(u.Email)
	existing, err := txn.First(tableUsers, "email", u.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("user %s: %w", u.Email, ErrDuplicate)
	}
	u.ID = m.allocID(tableUsers)
	u.CreatedAt, u.UpdatedAt = m.now(), m.now()
	row := *u
	if err := txn.Insert(tableUsers, &row); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (m *MemStore) UpdateUser(_ context.Context, u *models.User) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	if existing, err := txn.First(tableUsers, "id", u.ID); err != nil {
		return err
	} else if existing == nil {
		return ErrNotFound
	}
	u.UpdatedAt = m.now()
	row := *u
	if err := txn.Insert(tableUsers, &row); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (m *MemStore) UserByID(_ context.Context, id uint) (*models.User, error) {
	raw, err := m.first(tableUsers, "id", id)
	if err != nil {
		return nil, err
	}
	u := *raw.(*models.User)
	return &u, nil
}

func (m *MemStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	raw, err := m.first(tableUsers, "email", email)
	if err != nil {
		return nil, err
	}
	u := *raw.(*models.User)
	return &u, nil
}

func (m *MemStore) CreateSession(_ context.Context, s *models.Session) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	s.CreatedAt = m.now()
	row := *s
	if err := txn.Insert(tableSessions, &row); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (m *MemStore) SessionByToken(_ context.Context, token string) (*models.Session, error) {
	raw, err := m.first(tableSessions, "id", token)
	if err != nil {
		return nil, err
	}
	s := *raw.(*models.Session)
	return &s, nil
}

func (m *MemStore) DeleteSession(_ context.Context, token string) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	if _, err := txn.DeleteAll(tableSessions, "id", token); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (m *MemStore) FirstOrCreateCompany(_ context.Context, name string) (*models.Company, error) {
	txn := m.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tableCompanies, "name", name)
	if err != nil {
		return nil, err
	}
	if raw != nil {
		c := *raw.(*models.Company)
		return &c, nil
	}
	c := models.Company{ID: m.allocID(tableCompanies), Name: name, CreatedAt: m.now(), UpdatedAt: m.now()}
	row := c
	if err := txn.Insert(tableCompanies, &row); err != nil {
		return nil, err
	}
	txn.Commit()
	return &c, nil
}

func (m *MemStore) CreateJob(_ context.Context, j *models.Job) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	j.ID = m.allocID(tableJobs)
	j.CreatedAt, j.UpdatedAt = m.now(), m.now()
	if j.Status == "" {
		j.Status = models.StatusSaved
	}
	row := *j
	row.Company = models.Company{}
	row.Skills = append([]string(nil), j.Skills...)
	if err := txn.Insert(tableJobs, &row); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// withCompany returns a copy of the stored job with its company loaded.
func withCompany(txn *memdb.Txn, stored *models.Job) (models.Job, error) {
	j := *stored
	raw, err := txn.First(tableCompanies, "id", j.CompanyID)
	if err != nil {
		return j, err
	}
	if raw != nil {
		j.Company = *raw.(*models.Company)
	}
	return j, nil
}

func (m *MemStore) JobByID(_ context.Context, id uint) (*models.Job, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableJobs, "id", id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrNotFound
	}
	j, err := withCompany(txn, raw.(*models.Job))
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (m *MemStore) ListJobs(_ context.Context, q JobQuery) ([]models.Job, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableJobs, "id")
	if err != nil {
		return nil, err
	}
	jobs := []models.Job{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		j, err := withCompany(txn, raw.(*models.Job))
		if err != nil {
			return nil, err
		}
		if q.Matches(&j) {
			jobs = append(jobs, j)
		}
	}
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].ID < jobs[b].ID })
	return page(jobs, q.Offset, q.Limit), nil
}

func (m *MemStore) UpdateJobStatus(_ context.Context, id uint, status string) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tableJobs, "id", id)
	if err != nil {
		return err
	}
	if raw == nil {
		return ErrNotFound
	}
	row := *raw.(*models.Job)
	row.Status = status
	row.UpdatedAt = m.now()
	if err := txn.Insert(tableJobs, &row); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (m *MemStore) CreateJobEvent(_ context.Context, e *models.JobEvent) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	e.ID = m.allocID(tableJobEvents)
	e.CreatedAt = m.now()
	row := *e
	if err := txn.Insert(tableJobEvents, &row); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (m *MemStore) JobEvents(_ context.Context, jobID uint) ([]models.JobEvent, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableJobEvents, "job_id", jobID)
	if err != nil {
		return nil, err
	}
	events := []models.JobEvent{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		events = append(events, *raw.(*models.JobEvent))
	}
	sort.Slice(events, func(a, b int) bool { return events[a].ID < events[b].ID })
	return events, nil
}

func copyCV(cv *models.CV) models.CV {
	c := *cv
	c.Skills = append([]string(nil), cv.Skills...)
	c.Experience = append([]models.Experience(nil), cv.Experience...)
	c.Education = append([]models.Education(nil), cv.Education...)
	return c
}

func (m *MemStore) CreateCV(_ context.Context, cv *models.CV) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	cv.ID = m.allocID(tableCVs)
	cv.CreatedAt, cv.UpdatedAt = m.now(), m.now()
	row := copyCV(cv)
	if err := txn.Insert(tableCVs, &row); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (m *MemStore) UpdateCV(_ context.Context, cv *models.CV) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tableCVs, "id", cv.ID)
	if err != nil {
		return err
	}
	if raw == nil {
		return ErrNotFound
	}
	cv.CreatedAt = raw.(*models.CV).CreatedAt
	cv.UpdatedAt = m.now()
	row := copyCV(cv)
	if err := txn.Insert(tableCVs, &row); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (m *MemStore) CVByID(_ context.Context, id uint) (*models.CV, error) {
	raw, err := m.first(tableCVs, "id", id)
	if err != nil {
		return nil, err
	}
	cv := copyCV(raw.(*models.CV))
	return &cv, nil
}

func (m *MemStore) CVsByUser(_ context.Context, userID uint) ([]models.CV, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableCVs, "user_id", userID)
	if err != nil {
		return nil, err
	}
	cvs := []models.CV{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		cvs = append(cvs, copyCV(raw.(*models.CV)))
	}
	sort.Slice(cvs, func(a, b int) bool { return cvs[a].ID < cvs[b].ID })
	return cvs, nil
}

func (m *MemStore) DeleteCV(_ context.Context, id uint) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	n, err := txn.DeleteAll(tableCVs, "id", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	txn.Commit()
	return nil
}

func (m *MemStore) OnboardingByUser(_ context.Context, userID uint) (*models.Onboarding, error) {
	raw, err := m.first(tableOnboarding, "user_id", userID)
	if err != nil {
		return nil, err
	}
	o := *raw.(*models.Onboarding)
	o.Skills = append([]string(nil), o.Skills...)
	o.DesiredRoles = append([]string(nil), o.DesiredRoles...)
	return &o, nil
}

func (m *MemStore) SaveOnboarding(_ context.Context, o *models.Onboarding) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	if o.ID == 0 {
		o.ID = m.allocID(tableOnboarding)
		o.CreatedAt = m.now()
	}
	o.UpdatedAt = m.now()
	row := *o
	row.Skills = append([]string(nil), o.Skills...)
	row.DesiredRoles = append([]string(nil), o.DesiredRoles...)
	if err := txn.Insert(tableOnboarding, &row); err != nil {
		return err
	}
	txn.Commit()
	return nil
}
