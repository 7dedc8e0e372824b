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


// Package index owns the stored chunk corpus and its embedding arena.
//
// The Index type keeps a chunk list and a row-aligned vector matrix in
// lockstep, supports:
//   - Semantic search by cosine similarity over the arena
//   - Whole-word keyword scans independent of embeddings
//   - Metadata lookups through secondary indices (document, page,
//     section bucket, topic tag)
//
// Every mutation compacts or appends the arena and persists a full
// snapshot through storage.SnapshotStore, so restarts reload the exact
// corpus. Reads take a shared lock and may run concurrently; mutations
// are exclusive because compaction changes row alignment.
package index
