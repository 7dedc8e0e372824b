// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Metadata.DocID must not be empty
//   - Metadata.Page and Metadata.ChunkIndex must not be negative
//   - Metadata.SubjectRole must be a known role (empty means general)
//
// NOT validated (populated later in the pipeline):
//   - Vector (empty until the index embeds the chunk)
//   - ID (derived during ingestion; empty is valid for hand-built chunks)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.Metadata.DocID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyDocID)
	}

	if chunk.Metadata.Page < 0 || chunk.Metadata.ChunkIndex < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativePosition)
	}

	if err := ValidateRole(chunk.Metadata.SubjectRole); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}

	return nil
}

// ValidateRole validates that a SubjectRole is one of the known roles.
// The empty string is accepted and normalized to general by NormalizeRole.
func ValidateRole(role SubjectRole) error {
	switch role {
	case "", RoleGeneral, RoleCoach, RoleRider, RoleOfficial, RoleHorse:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidRole, role)
}

// NormalizeRole maps the empty role to RoleGeneral and leaves known roles
// unchanged. Call after ValidateRole.
func NormalizeRole(role SubjectRole) SubjectRole {
	if role == "" {
		return RoleGeneral
	}
	return role
}
