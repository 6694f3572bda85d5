// Package user provides lookup and reconciliation operations for user accounts.
package user

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoProfilePortal/GoProfilePortal/internal/db/models"
)

const (
	subjectQueryPattern = "external_subject = ?"
)

var (
	// ErrUserNotFound is returned when no user exists for the given subject.
	ErrUserNotFound = errors.New("user not found")
	// ErrSubjectEmpty is returned when an operation is attempted with an empty subject.
	ErrSubjectEmpty = errors.New("external subject cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// GetBySubject retrieves a user by its external subject identifier.
func GetBySubject(db *gorm.DB, subject string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if subject == "" {
		return nil, ErrSubjectEmpty
	}

	var user models.User
	result := db.Where(subjectQueryPattern, subject).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// UpsertBySubject reconciles a user account after a successful login.
// A missing account is created; an existing one gets its email refreshed
// (empty email input keeps the stored value) along with its update timestamp.
// First and last name are never written here: the profile form owns them.
//
// Two callbacks for the same unseen subject may race on the insert. The
// unique index on external_subject turns the loser's insert into an error,
// which is resolved by re-fetching the winner's row and updating it instead.
func UpsertBySubject(db *gorm.DB, subject, email string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if subject == "" {
		return nil, ErrSubjectEmpty
	}

	var user models.User
	result := db.Where(subjectQueryPattern, subject).First(&user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		user = models.User{
			ExternalSubject: subject,
			Email:           email,
		}

		createErr := db.Create(&user).Error
		if createErr == nil {
			return &user, nil
		}

		// Insert conflict: someone else created the row between our lookup
		// and the insert. Fall through to the update path on their row.
		refetch := db.Where(subjectQueryPattern, subject).First(&user)
		if refetch.Error != nil {
			return nil, createErr
		}
	} else if result.Error != nil {
		return nil, result.Error
	}

	if email != "" {
		user.Email = email
	}

	if err := db.Save(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateNames sets the user's first and last name from the profile form,
// creating the account first if the subject has never been seen.
func UpdateNames(db *gorm.DB, subject, email, firstName, lastName string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if subject == "" {
		return nil, ErrSubjectEmpty
	}

	var user models.User
	result := db.Where(subjectQueryPattern, subject).First(&user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		user = models.User{
			ExternalSubject: subject,
			Email:           email,
		}
	} else if result.Error != nil {
		return nil, result.Error
	}

	user.FirstName = firstName
	user.LastName = lastName

	if err := db.Save(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}
