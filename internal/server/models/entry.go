package models

import "time"

// Envelope is the encrypted form of a vault secret. Nonce, Tag and
// Ciphertext are always written together.
type Envelope struct {
	Algorithm  string
	Nonce      []byte
	Tag        []byte
	Ciphertext []byte
}

type VaultEntry struct {
	ID                string
	UserID            string
	PlatformName      string
	AccountIdentifier string
	Description       *string
	Envelope          Envelope
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PublicEntry is what callers see when listing entries: display fields only.
type PublicEntry struct {
	ID                string
	PlatformName      string
	AccountIdentifier string
	Description       *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (e *VaultEntry) Public() *PublicEntry {
	return &PublicEntry{
		ID:                e.ID,
		PlatformName:      e.PlatformName,
		AccountIdentifier: e.AccountIdentifier,
		Description:       e.Description,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}
