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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("chunk text cannot be empty")

	// ErrEmptyDocID indicates the metadata DocID field is empty.
	ErrEmptyDocID = errors.New("document id cannot be empty")

	// ErrInvalidRole indicates an unknown SubjectRole value.
	ErrInvalidRole = errors.New("invalid subject role")

	// ErrNegativePosition indicates a negative page or chunk index.
	ErrNegativePosition = errors.New("page and chunk index cannot be negative")
)
