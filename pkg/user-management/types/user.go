package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Account    Account    `bson:"account" json:"account"`
	Profile    Profile    `bson:"profile" json:"profile"`
	Timestamps Timestamps `bson:"timestamps" json:"timestamps"`
}

type Account struct {
	// AccountID is the sanitized (lowercase, trimmed) email address.
	AccountID string `bson:"accountID" json:"accountID"`

	// GoogleID is set at most once, when the account is first linked to a
	// Google identity. It is never exposed to API clients.
	GoogleID string `bson:"googleID,omitempty" json:"-"`

	// VerificationCode is the pending OTP challenge. nil means no challenge
	// is outstanding. Never exposed to API clients.
	VerificationCode *VerificationCode `bson:"verificationCode,omitempty" json:"-"`
}

// VerificationCode is an issued-but-unconsumed OTP. Expiry is checked at
// verification time, there is no background cleanup.
type VerificationCode struct {
	Code      string    `bson:"code" json:"code"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
}

func (vc VerificationCode) IsExpired(now time.Time) bool {
	return !now.Before(vc.ExpiresAt)
}

type Profile struct {
	Name      string    `bson:"name,omitempty" json:"name,omitempty"`
	BirthDate time.Time `bson:"birthDate,omitempty" json:"birthDate,omitempty"`
}

type Timestamps struct {
	CreatedAt int64 `bson:"createdAt" json:"createdAt"`
	UpdatedAt int64 `bson:"updatedAt" json:"updatedAt"`
	LastLogin int64 `bson:"lastLogin" json:"lastLogin"`
}

// HasGoogleLink reports whether the account is already bound to an external
// Google subject.
func (a Account) HasGoogleLink() bool {
	return a.GoogleID != ""
}
