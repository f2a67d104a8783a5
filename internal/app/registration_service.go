package app

import (
	"context"

	"pettech-backend/internal/model"
	"pettech-backend/internal/repository"
)

type OwnerStore interface {
	Register(ctx context.Context, owner *model.Owner) (uint, error)
	VerifyLogin(ctx context.Context, email string, check repository.PasswordCheck) (*model.Owner, error)
}

type RegistrationService struct {
	owners    OwnerStore
	passwords PasswordHasher
}

// RegisterInput fields are pointers so that "required" means present: an
// explicitly empty string is accepted, an absent key is not.
type RegisterInput struct {
	OwnerName   *string `json:"owner_name" validate:"required"`
	OwnerMobile *string `json:"owner_mobile" validate:"required"`
	AnimalType  *string `json:"animal_type" validate:"required"`
	AnimalAge   *int    `json:"animal_age" validate:"required,min=0"`
	OwnerEmail  *string `json:"owner_email" validate:"required"`
	Password    *string `json:"password" validate:"required"`
}

type LoginInput struct {
	OwnerEmail *string `json:"owner_email" validate:"required"`
	Password   *string `json:"password" validate:"required"`
}

type RegistrationResult struct {
	RegistrationNumber uint `json:"registration_number"`
}

type LoginResult struct {
	ID        uint   `json:"id"`
	OwnerName string `json:"owner_name"`
}

func NewRegistrationService(owners OwnerStore, passwords PasswordHasher) *RegistrationService {
	if passwords == nil {
		passwords = plainPasswords{}
	}
	return &RegistrationService{owners: owners, passwords: passwords}
}

// Register validates input and stores a new owner. Values are stored as
// supplied; no trimming or case folding is applied.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*RegistrationResult, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	stored, err := s.passwords.Hash(*input.Password)
	if err != nil {
		return nil, err
	}

	id, err := s.owners.Register(ctx, &model.Owner{
		OwnerName:   *input.OwnerName,
		OwnerMobile: *input.OwnerMobile,
		AnimalType:  *input.AnimalType,
		AnimalAge:   *input.AnimalAge,
		OwnerEmail:  *input.OwnerEmail,
		Password:    stored,
	})
	if err != nil {
		return nil, err
	}
	return &RegistrationResult{RegistrationNumber: id}, nil
}

// VerifyLogin returns ErrInvalidCredential unless exactly this email and
// password were registered.
func (s *RegistrationService) VerifyLogin(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	owner, err := s.owners.VerifyLogin(ctx, *input.OwnerEmail, s.passwords.Check(*input.Password))
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrInvalidCredential
	}
	return &LoginResult{ID: owner.ID, OwnerName: owner.OwnerName}, nil
}
