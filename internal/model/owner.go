package model

import "time"

// Owner is a pet owner's registration row. Password holds whatever the
// configured password mode stores: the verbatim value or a bcrypt hash.
type Owner struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerName   string    `gorm:"size:128;not null" json:"owner_name"`
	OwnerMobile string    `gorm:"size:32;not null" json:"owner_mobile"`
	AnimalType  string    `gorm:"size:64;not null" json:"animal_type"`
	AnimalAge   int       `gorm:"not null" json:"animal_age"`
	OwnerEmail  string    `gorm:"size:255;not null;index" json:"owner_email"`
	Password    string    `gorm:"size:255;not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Owner) TableName() string {
	return "patient_data"
}
