package core

import (
	"errors"
	"testing"
)

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{
			name: "valid chunk",
			chunk: &Chunk{
				ID:   "doc1_p1_c0",
				Text: "Each coach must be at least 21 years old.",
				Metadata: Metadata{
					DocID:       "doc1",
					Page:        1,
					SubjectRole: RoleCoach,
				},
			},
			wantErr: nil,
		},
		{
			name: "valid chunk with empty vector",
			chunk: &Chunk{
				Text:     "Rule text",
				Vector:   nil,
				Metadata: Metadata{DocID: "doc1"},
			},
			wantErr: nil,
		},
		{
			name: "valid chunk with empty role",
			chunk: &Chunk{
				Text:     "Rule text",
				Metadata: Metadata{DocID: "doc1", SubjectRole: ""},
			},
			wantErr: nil,
		},
		{
			name: "valid chunk with empty id",
			chunk: &Chunk{
				Text:     "Rule text",
				Metadata: Metadata{DocID: "doc1"},
			},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name: "empty text",
			chunk: &Chunk{
				Text:     "",
				Metadata: Metadata{DocID: "doc1"},
			},
			wantErr: ErrEmptyText,
		},
		{
			name: "empty doc id",
			chunk: &Chunk{
				Text:     "Rule text",
				Metadata: Metadata{DocID: ""},
			},
			wantErr: ErrEmptyDocID,
		},
		{
			name: "negative page",
			chunk: &Chunk{
				Text:     "Rule text",
				Metadata: Metadata{DocID: "doc1", Page: -1},
			},
			wantErr: ErrNegativePosition,
		},
		{
			name: "negative chunk index",
			chunk: &Chunk{
				Text:     "Rule text",
				Metadata: Metadata{DocID: "doc1", ChunkIndex: -2},
			},
			wantErr: ErrNegativePosition,
		},
		{
			name: "unknown role",
			chunk: &Chunk{
				Text:     "Rule text",
				Metadata: Metadata{DocID: "doc1", SubjectRole: "groom"},
			},
			wantErr: ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateChunk() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRole(t *testing.T) {
	for _, role := range []SubjectRole{"", RoleGeneral, RoleCoach, RoleRider, RoleOfficial, RoleHorse} {
		if err := ValidateRole(role); err != nil {
			t.Errorf("ValidateRole(%q) error = %v, want nil", role, err)
		}
	}

	if err := ValidateRole("spectator"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("ValidateRole() error = %v, want ErrInvalidRole", err)
	}
}

func TestNormalizeRole(t *testing.T) {
	if got := NormalizeRole(""); got != RoleGeneral {
		t.Errorf("NormalizeRole(\"\") = %v, want %v", got, RoleGeneral)
	}
	if got := NormalizeRole(RoleCoach); got != RoleCoach {
		t.Errorf("NormalizeRole(coach) = %v, want coach", got)
	}
}
