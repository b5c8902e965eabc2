package models

import "time"

// Identifier is one issued name in a namespace.
type Identifier struct {
	ID        int64     `json:"id" db:"id"`
	Namespace string    `json:"namespace" db:"namespace"`
	Name      string    `json:"name" db:"name"`
	Ordinal   uint64    `json:"ordinal" db:"ordinal"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type AllocateRequest struct {
	DryRun bool `json:"dry_run,omitempty"`
}

type AllocateResponse struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Ordinal   uint64 `json:"ordinal"`
	DryRun    bool   `json:"dry_run,omitempty"`
}

type ListResponse struct {
	Namespace   string        `json:"namespace"`
	Identifiers []*Identifier `json:"identifiers"`
}

// DecodeResponse classifies an arbitrary name against the active alphabet.
type DecodeResponse struct {
	Name    string `json:"name"`
	Valid   bool   `json:"valid"`
	Ordinal uint64 `json:"ordinal,omitempty"`
	Error   string `json:"error,omitempty"`
}
