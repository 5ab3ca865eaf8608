package model

import "time"

// KeyType determines how an access key may be redeemed.
type KeyType string

const (
	KeyPermanent KeyType = "PERMANENT"
	KeyExpiring  KeyType = "EXPIRING"
	KeySingleUse KeyType = "SINGLE_USE"
)

// ValidKeyType reports whether t is one of the known key types.
func ValidKeyType(t KeyType) bool {
	return t == KeyPermanent || t == KeyExpiring || t == KeySingleUse
}

// KeyStatus is the lifecycle state of an access key.  USED and EXPIRED are
// terminal states set automatically by consumption and expiry checks.
type KeyStatus string

const (
	KeyActive   KeyStatus = "ACTIVE"
	KeyInactive KeyStatus = "INACTIVE"
	KeyUsed     KeyStatus = "USED"
	KeyExpired  KeyStatus = "EXPIRED"
)

// AccessKey represents a row in the `access_keys` table.  A key redeemed at
// registration grants its Permission to the new account instead of the
// public default.  Permission is fixed at creation and never changes.
//
// Fields:
//  ID          – primary key identifier.
//  Key         – unique shareable code (≤100 chars).
//  Type        – PERMANENT / EXPIRING / SINGLE_USE.
//  Permission  – level granted on redemption (never Visitor).
//  CreatedAt   – timestamp of creation.
//  ExpiresAt   – expiry for EXPIRING keys (nullable).
//  UseCount    – how many times the key has been redeemed.
//  MaxUses     – redemption cap; 1 for SINGLE_USE keys (nullable).
//  Status      – ACTIVE / INACTIVE / USED / EXPIRED.
//  Description – free-text note (nullable).
//  CreatedBy   – user id of the creator (nullable).
type AccessKey struct {
	ID          uint64
	Key         string
	Type        KeyType
	Permission  Permission
	CreatedAt   time.Time
	ExpiresAt   *time.Time
	UseCount    uint32
	MaxUses     *uint32
	Status      KeyStatus
	Description *string
	CreatedBy   *uint64
}

// Exhausted reports whether the key has reached its redemption cap.
func (k AccessKey) Exhausted() bool {
	return k.MaxUses != nil && k.UseCount >= *k.MaxUses
}

// ExpiredAt reports whether the key's expiry has passed at the given time.
// Only EXPIRING keys carry an expiry.
func (k AccessKey) ExpiredAt(now time.Time) bool {
	return k.Type == KeyExpiring && k.ExpiresAt != nil && !now.Before(*k.ExpiresAt)
}
