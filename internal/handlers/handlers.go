package handlers

import (
	"time"

	"media-index/internal/index"
	"media-index/internal/vault"
)

// Handlers carries the shared dependencies of every API endpoint.
type Handlers struct {
	index     *index.Index
	vault     *vault.Vault
	startTime time.Time
}

// New creates the handler set over an index and its vault.
func New(ix *index.Index, v *vault.Vault) *Handlers {
	return &Handlers{
		index:     ix,
		vault:     v,
		startTime: time.Now(),
	}
}
