package archive

import (
	memorystore "assetcore/internal/infra/archive/memory"
)

// NewMemory returns an in-memory archive suitable for tests.
func NewMemory() Store { return memorystore.New() }
