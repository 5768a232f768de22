// Package store is the document store accessor. It exposes the persisted
// collections as typed records and performs every mutation inside a single
// transaction so concurrent writers never overwrite each other.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/reliefnet/disaster-api/pkg/apperrors"
	"github.com/reliefnet/disaster-api/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmergencyStore is the persistence contract of the emergency registry
type EmergencyStore interface {
	ListEmergencies(ctx context.Context) ([]models.Emergency, error)
	GetEmergency(ctx context.Context, id string) (*models.Emergency, error)
	InsertEmergency(ctx context.Context, e *models.Emergency) error
	UpdateEmergency(ctx context.Context, id string, fn func(*models.Emergency) error) (*models.Emergency, error)
}

// AccountStore is the persistence contract of the identity directory
type AccountStore interface {
	FindAccount(ctx context.Context, role models.Role, id string) (*models.Account, error)
	FindAccountByLogin(ctx context.Context, role models.Role, login string) (*models.Account, error)
	CreateAccount(ctx context.Context, a *models.Account) error
	UpdateAccount(ctx context.Context, role models.Role, id string, fn func(*models.Account) error) (*models.Account, error)
	ListAccounts(ctx context.Context, role models.Role) ([]models.Account, error)
	CountAccounts(ctx context.Context, role models.Role) (int64, error)
}

// Store implements EmergencyStore and AccountStore on top of gorm
type Store struct {
	DB *gorm.DB
}

// New wraps an open gorm connection
func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) ListEmergencies(ctx context.Context) ([]models.Emergency, error) {
	emergencies := []models.Emergency{}
	if err := s.DB.WithContext(ctx).Order("created_at asc, id asc").Find(&emergencies).Error; err != nil {
		return nil, apperrors.Storage("list emergencies", err)
	}
	return emergencies, nil
}

func (s *Store) GetEmergency(ctx context.Context, id string) (*models.Emergency, error) {
	var e models.Emergency
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.NotFoundError{Resource: "emergency", ID: id}
	}
	if err != nil {
		return nil, apperrors.Storage("get emergency", err)
	}
	return &e, nil
}

func (s *Store) InsertEmergency(ctx context.Context, e *models.Emergency) error {
	if err := s.DB.WithContext(ctx).Create(e).Error; err != nil {
		return apperrors.Storage("insert emergency", err)
	}
	return nil
}

// UpdateEmergency locks the row, applies fn and saves the result. If fn returns
// an error nothing is written.
func (s *Store) UpdateEmergency(ctx context.Context, id string, fn func(*models.Emergency) error) (*models.Emergency, error) {
	var e models.Emergency
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&e).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperrors.NotFoundError{Resource: "emergency", ID: id}
		}
		if err != nil {
			return err
		}
		if err := fn(&e); err != nil {
			return err
		}
		return tx.Save(&e).Error
	})
	if err != nil {
		return nil, apperrors.Storage("update emergency", err)
	}
	return &e, nil
}

func (s *Store) FindAccount(ctx context.Context, role models.Role, id string) (*models.Account, error) {
	var a models.Account
	err := s.DB.WithContext(ctx).Where("role = ? AND id = ?", role, id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.NotFoundError{Resource: string(role), ID: id}
	}
	if err != nil {
		return nil, apperrors.Storage("find account", err)
	}
	return &a, nil
}

// FindAccountByLogin matches login against the email (case-insensitively) or
// the phone number of accounts in role.
func (s *Store) FindAccountByLogin(ctx context.Context, role models.Role, login string) (*models.Account, error) {
	var a models.Account
	email := strings.ToLower(strings.TrimSpace(login))
	err := s.DB.WithContext(ctx).
		Where("role = ? AND (email = ? OR phone_number = ?)", role, email, strings.TrimSpace(login)).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.NotFoundError{Resource: string(role), ID: login}
	}
	if err != nil {
		return nil, apperrors.Storage("find account", err)
	}
	return &a, nil
}

func (s *Store) CreateAccount(ctx context.Context, a *models.Account) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, a.Role, a.Email, a.ID); err != nil {
			return err
		}
		return tx.Create(a).Error
	})
	return apperrors.Storage("create account", err)
}

func (s *Store) UpdateAccount(ctx context.Context, role models.Role, id string, fn func(*models.Account) error) (*models.Account, error) {
	var a models.Account
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("role = ? AND id = ?", role, id).First(&a).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperrors.NotFoundError{Resource: string(role), ID: id}
		}
		if err != nil {
			return err
		}
		if err := fn(&a); err != nil {
			return err
		}
		if err := ensureEmailFree(tx, a.Role, a.Email, a.ID); err != nil {
			return err
		}
		return tx.Save(&a).Error
	})
	if err != nil {
		return nil, apperrors.Storage("update account", err)
	}
	return &a, nil
}

func (s *Store) ListAccounts(ctx context.Context, role models.Role) ([]models.Account, error) {
	accounts := []models.Account{}
	if err := s.DB.WithContext(ctx).Where("role = ?", role).Order("created_at asc, id asc").Find(&accounts).Error; err != nil {
		return nil, apperrors.Storage("list accounts", err)
	}
	return accounts, nil
}

func (s *Store) CountAccounts(ctx context.Context, role models.Role) (int64, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Account{}).Where("role = ?", role).Count(&count).Error; err != nil {
		return 0, apperrors.Storage("count accounts", err)
	}
	return count, nil
}

// Read loads every collection into a Document. Collections are never nil.
func (s *Store) Read(ctx context.Context) (models.Document, error) {
	var doc models.Document
	emergencies, err := s.ListEmergencies(ctx)
	if err != nil {
		return doc, err
	}
	doc.Emergencies = emergencies
	for _, role := range models.Roles {
		accounts, err := s.ListAccounts(ctx, role)
		if err != nil {
			return doc, err
		}
		doc.SetAccounts(role, accounts)
	}
	return doc, nil
}

// Import upserts the collections present in doc by id. Nil collections and
// every record not mentioned in doc are left as they are.
func (s *Store) Import(ctx context.Context, doc models.Document) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if doc.Emergencies != nil {
			for i := range doc.Emergencies {
				e := doc.Emergencies[i]
				if e.ID == "" {
					return apperrors.Required("emergencies.id")
				}
				if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&e).Error; err != nil {
					return fmt.Errorf("emergency %s: %w", e.ID, err)
				}
			}
		}
		for _, role := range models.Roles {
			accounts := doc.Accounts(role)
			if accounts == nil {
				continue
			}
			for i := range accounts {
				a := accounts[i]
				a.Role = role
				a.Email = strings.ToLower(strings.TrimSpace(a.Email))
				if a.ID == "" {
					return apperrors.Required(role.Collection() + ".id")
				}
				if err := ensureEmailFree(tx, a.Role, a.Email, a.ID); err != nil {
					return err
				}
				if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&a).Error; err != nil {
					return fmt.Errorf("%s %s: %w", role, a.ID, err)
				}
			}
		}
		return nil
	})
	return apperrors.Storage("import document", err)
}

func ensureEmailFree(tx *gorm.DB, role models.Role, email, selfID string) error {
	var count int64
	err := tx.Model(&models.Account{}).
		Where("role = ? AND email = ? AND id <> ?", role, email, selfID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return &apperrors.ConflictError{
			Message: fmt.Sprintf("Email %s is already registered for the role %s", email, role),
		}
	}
	return nil
}
