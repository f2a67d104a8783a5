package repository

import (
	"context"

	"gorm.io/gorm"

	"pettech-backend/internal/model"
)

// PasswordCheck reports whether a stored password value accepts the supplied one.
type PasswordCheck func(stored string) bool

type OwnerRepository struct {
	gateway
}

func NewOwnerRepository(db *gorm.DB) *OwnerRepository {
	return &OwnerRepository{gateway{db: db}}
}

// Register inserts the owner and returns the store-assigned id.
func (r *OwnerRepository) Register(ctx context.Context, owner *model.Owner) (uint, error) {
	err := r.withTx(ctx, "insert owner", func(tx *gorm.DB) error {
		return tx.Create(owner).Error
	})
	if err != nil {
		return 0, err
	}
	return owner.ID, nil
}

// VerifyLogin returns the owner whose email equals email byte for byte and
// whose stored password passes check, or nil when none does.
//
// Email equality is re-checked in Go because some collations (MySQL's
// default) compare case-insensitively.
func (r *OwnerRepository) VerifyLogin(ctx context.Context, email string, check PasswordCheck) (*model.Owner, error) {
	var found *model.Owner
	err := r.withTx(ctx, "select owner by credentials", func(tx *gorm.DB) error {
		var candidates []model.Owner
		if err := tx.Where("owner_email = ?", email).Order("id ASC").Find(&candidates).Error; err != nil {
			return err
		}
		for i := range candidates {
			if candidates[i].OwnerEmail == email && check(candidates[i].Password) {
				found = &candidates[i]
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
