package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justsurfingit/careerhub/internal/models"
	"gorm.io/gorm"
)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// translate maps gorm errors onto the store's sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%v: %w", err, ErrDuplicate)
	default:
		return err
	}
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("user %s: %w", u.Email, ErrDuplicate)
	}
	return translate(s.DB.WithContext(ctx).Create(u).Error)
}

func (s *GormStore) UpdateUser(ctx context.Context, u *models.User) error {
	return translate(s.DB.WithContext(ctx).Save(u).Error)
}

func (s *GormStore) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) CreateSession(ctx context.Context, sess *models.Session) error {
	return translate(s.DB.WithContext(ctx).Create(sess).Error)
}

func (s *GormStore) SessionByToken(ctx context.Context, token string) (*models.Session, error) {
	var sess models.Session
	if err := s.DB.WithContext(ctx).Where("token = ?", token).First(&sess).Error; err != nil {
		return nil, translate(err)
	}
	return &sess, nil
}

func (s *GormStore) DeleteSession(ctx context.Context, token string) error {
	return s.DB.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error
}

// FirstOrCreateCompany matches names case-insensitively, like the lower(name)
// unique index, and keeps the first spelling.
func (s *GormStore) FirstOrCreateCompany(ctx context.Context, name string) (*models.Company, error) {
	db := s.DB.WithContext(ctx)
	find := func() (*models.Company, error) {
		var company models.Company
		if err := db.Where("lower(name) = lower(?)", name).First(&company).Error; err != nil {
			return nil, translate(err)
		}
		return &company, nil
	}

	company, err := find()
	if !errors.Is(err, ErrNotFound) {
		return company, err
	}
	company = &models.Company{Name: name}
	if err := db.Create(company).Error; err != nil {
		err = translate(err)
		// lost a race with another insert of the same name
		if errors.Is(err, ErrDuplicate) {
			return find()
		}
		return nil, err
	}
	return company, nil
}

func (s *GormStore) CreateJob(ctx context.Context, j *models.Job) error {
	if j.Status == "" {
		j.Status = models.StatusSaved
	}
	return translate(s.DB.WithContext(ctx).Omit("Company").Create(j).Error)
}

func (s *GormStore) JobByID(ctx context.Context, id uint) (*models.Job, error) {
	var j models.Job
	if err := s.DB.WithContext(ctx).Preload("Company").First(&j, id).Error; err != nil {
		return nil, translate(err)
	}
	return &j, nil
}

func (s *GormStore) ListJobs(ctx context.Context, q JobQuery) ([]models.Job, error) {
	tx := s.DB.WithContext(ctx).Joins("Company").Order("jobs.id")
	if q.UserID != 0 {
		tx = tx.Where("jobs.user_id = ?", q.UserID)
	}
	if q.Text != "" {
		like := "%" + q.Text + "%"
		tx = tx.Where(`jobs.title ILIKE ? OR jobs.description ILIKE ? OR "Company".name ILIKE ?`, like, like, like)
	}
	if q.Location != "" {
		tx = tx.Where("jobs.location ILIKE ?", "%"+q.Location+"%")
	}
	if q.Remote != nil {
		tx = tx.Where("jobs.remote = ?", *q.Remote)
	}
	if q.Status != "" {
		tx = tx.Where("jobs.status = ?", q.Status)
	}
	// skills live in a JSON column, so that filter and the paging after it run in Go
	if len(q.Skills) == 0 {
		if q.Limit > 0 {
			tx = tx.Limit(q.Limit)
		}
		if q.Offset > 0 {
			tx = tx.Offset(q.Offset)
		}
	}

	var jobs []models.Job
	if err := tx.Find(&jobs).Error; err != nil {
		return nil, err
	}
	if len(q.Skills) == 0 {
		return jobs, nil
	}
	return filterSkills(jobs, q), nil
}

func (s *GormStore) UpdateJobStatus(ctx context.Context, id uint, status string) error {
	res := s.DB.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateJobEvent(ctx context.Context, e *models.JobEvent) error {
	return s.DB.WithContext(ctx).Create(e).Error
}

func (s *GormStore) JobEvents(ctx context.Context, jobID uint) ([]models.JobEvent, error) {
	var events []models.JobEvent
	err := s.DB.WithContext(ctx).Where("job_id = ?", jobID).Order("id").Find(&events).Error
	return events, err
}

func (s *GormStore) CreateCV(ctx context.Context, cv *models.CV) error {
	return s.DB.WithContext(ctx).Create(cv).Error
}

func (s *GormStore) UpdateCV(ctx context.Context, cv *models.CV) error {
	var existing models.CV
	if err := s.DB.WithContext(ctx).Select("id", "created_at").First(&existing, cv.ID).Error; err != nil {
		return translate(err)
	}
	cv.CreatedAt = existing.CreatedAt
	return s.DB.WithContext(ctx).Save(cv).Error
}

func (s *GormStore) CVByID(ctx context.Context, id uint) (*models.CV, error) {
	var cv models.CV
	if err := s.DB.WithContext(ctx).First(&cv, id).Error; err != nil {
		return nil, translate(err)
	}
	return &cv, nil
}

func (s *GormStore) CVsByUser(ctx context.Context, userID uint) ([]models.CV, error) {
	var cvs []models.CV
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&cvs).Error
	return cvs, err
}

func (s *GormStore) DeleteCV(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.CV{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) OnboardingByUser(ctx context.Context, userID uint) (*models.Onboarding, error) {
	var o models.Onboarding
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&o).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (s *GormStore) SaveOnboarding(ctx context.Context, o *models.Onboarding) error {
	return s.DB.WithContext(ctx).Save(o).Error
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemStore)(nil)
)
