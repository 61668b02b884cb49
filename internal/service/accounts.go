package service

import (
	"context" // Request scoped operations
	"strings" // Username normalisation
	"time"    // Cache TTL

	"course_registration/internal/domain" // Importing domain models
	"course_registration/internal/utils"  // Cache helpers

	"github.com/pkg/errors"      // Error wrapping
	"github.com/sirupsen/logrus" // Logging
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// AccountInput carries account fields for create and edit.
// On edit, empty fields keep their stored value.
type AccountInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// AccountStore holds user identities and roles
type AccountStore struct {
	db    *gorm.DB
	cache *utils.Cache
}

// NewAccountStore creates an account store
func NewAccountStore(db *gorm.DB, cache *utils.Cache) *AccountStore {
	return &AccountStore{db: db, cache: cache}
}

// Create adds a new account with a hashed credential
func (s *AccountStore) Create(ctx context.Context, in AccountInput) (*domain.Account, error) {
	if !in.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.checkUnique(ctx, 0, username, email); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	account := domain.Account{Username: username, Email: email, Password: string(hash), Role: in.Role}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateIdentity // Lost a race with a concurrent create
		}
		return nil, errors.Wrap(err, "create account")
	}
	s.invalidate(ctx)
	logrus.WithFields(logrus.Fields{
		"account_id": account.ID,       // New account ID
		"username":   account.Username, // Username
		"role":       account.Role,     // Role
	}).Info("Account created")
	return &account, nil
}

// Update applies a partial edit. An empty password leaves the credential unchanged.
// Moving an account away from the student role removes its enrollments.
func (s *AccountStore) Update(ctx context.Context, id uint, in AccountInput) (*domain.Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Role != "" && !in.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	updates := map[string]any{}
	if u := strings.TrimSpace(in.Username); u != "" && u != account.Username {
		updates["username"] = u
	}
	if e := strings.ToLower(strings.TrimSpace(in.Email)); e != "" && e != account.Email {
		updates["email"] = e
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.Wrap(err, "hash password")
		}
		updates["password"] = string(hash)
	}
	role := account.Role
	if in.Role != "" && in.Role != account.Role {
		role = in.Role
		updates["role"] = string(in.Role)
	}
	if len(updates) == 0 {
		return account, nil
	}
	username, _ := updates["username"].(string)
	email, _ := updates["email"].(string)
	if err := s.checkUnique(ctx, id, username, email); err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Account{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if role != domain.RoleStudent {
			// Former student: the ledger only holds student rows
			return tx.Where("student_id = ?", id).Delete(&domain.Enrollment{}).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, errors.Wrap(err, "update account")
	}
	s.invalidate(ctx)
	logrus.WithFields(logrus.Fields{
		"account_id": id,   // Edited account
		"role":       role, // Role after edit
	}).Info("Account updated")
	return s.Get(ctx, id)
}

// Delete removes an account and every enrollment row it holds.
// Courses naming a deleted instructor keep the teacher string.
func (s *AccountStore) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&domain.Enrollment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Account{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return errors.Wrap(err, "delete account")
	}
	s.invalidate(ctx)
	logrus.WithField("account_id", id).Info("Account deleted")
	return nil
}

// Get returns an account by ID
func (s *AccountStore) Get(ctx context.Context, id uint) (*domain.Account, error) {
	var account domain.Account
	if err := s.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "get account")
	}
	return &account, nil
}

// GetByUsername returns an account by its exact username
func (s *AccountStore) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var account domain.Account
	if err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "get account by username")
	}
	return &account, nil
}

// List returns every account ordered by ID
func (s *AccountStore) List(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := s.db.WithContext(ctx).Order("id").Find(&accounts).Error; err != nil {
		return nil, errors.Wrap(err, "list accounts")
	}
	return accounts, nil
}

// ListByRole returns the accounts holding role, ordered by username
func (s *AccountStore) ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := s.db.WithContext(ctx).Where("role = ?", role).Order("username").Find(&accounts).Error; err != nil {
		return nil, errors.Wrap(err, "list accounts by role")
	}
	return accounts, nil
}

// InstructorUsernames returns instructor usernames, served from cache when available
func (s *AccountStore) InstructorUsernames(ctx context.Context) ([]string, error) {
	var names []string
	if found, err := s.cache.Get(ctx, utils.InstructorListKey, &names); err == nil && found {
		return names, nil
	}
	names = []string{} // Encode an empty list, not null
	err := s.db.WithContext(ctx).Model(&domain.Account{}).
		Where("role = ?", domain.RoleInstructor).
		Order("username").
		Pluck("username", &names).Error
	if err != nil {
		return nil, errors.Wrap(err, "list instructors")
	}
	_ = s.cache.Set(ctx, utils.InstructorListKey, names, 60*time.Second)
	return names, nil
}

// Count returns the number of accounts holding role
func (s *AccountStore) Count(ctx context.Context, role domain.Role) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.Account{}).Where("role = ?", role).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "count accounts")
	}
	return n, nil
}

// Authenticate checks a username and password pair
func (s *AccountStore) Authenticate(ctx context.Context, username, password string) (*domain.Account, error) {
	account, err := s.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	// Compare provided password with stored hash
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return account, nil
}

// checkUnique fails with ErrDuplicateIdentity when another account holds username or email
func (s *AccountStore) checkUnique(ctx context.Context, exceptID uint, username, email string) error {
	if username == "" && email == "" {
		return nil
	}
	q := s.db.WithContext(ctx).Model(&domain.Account{}).Where("id <> ?", exceptID)
	switch {
	case username != "" && email != "":
		q = q.Where("username = ? OR email = ?", username, email)
	case username != "":
		q = q.Where("username = ?", username)
	default:
		q = q.Where("email = ?", email)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return errors.Wrap(err, "check account uniqueness")
	}
	if n > 0 {
		return domain.ErrDuplicateIdentity
	}
	return nil
}

func (s *AccountStore) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, utils.InstructorListKey); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate instructor cache")
	}
}
