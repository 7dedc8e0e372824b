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


// Package storage provides the storage abstraction layer for evidex.
//
// This package defines the interfaces that decouple storage implementation
// from the index and retrieval logic, plus the MUS binary serializers for
// the persisted record types. It allows different storage backends
// (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public
// constructors to enforce abstraction and enable multiple storage backend
// implementations:
//
//	store, err := badger.NewSnapshotStore(backend)  // returns storage.SnapshotStore
//
// This design decision prioritizes:
//   - Abstraction: Prevents accidental coupling to BadgerDB specifics
//   - Swappability: Easy to add alternative backends
//   - Testing: Consumers can use in-memory backends without modification
//
// # Architecture
//
// The storage layer exposes two stores:
//
//   - SnapshotStore: The index's durable chunk snapshot. Saves are
//     new-then-swap: a save writes every row under a fresh generation and
//     only then flips the live-generation pointer, so an interrupted save
//     never damages the previous snapshot.
//   - QueryLog: Append-only retrieval log, newest-first reads.
//
// # Serialization
//
// Persisted records use the MUS binary format, written by hand against the
// mus-go primitive serializers (varint integers, length-prefixed strings,
// raw floats). Field order in mus.go is the wire format.
//
// # Thread Safety
//
// All store implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All store methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific
// timeout requirements.
package storage
