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


// Package router classifies incoming questions before retrieval runs.
//
// The Router type matches a question against a table of rule categories
// using case-insensitive substring triggers and produces an Intent:
//   - Answer mode: direct lookup vs. broad coverage
//   - Subject role the question is about (coach, rider, horse, official)
//   - Must-have terms that gate and boost downstream ranking
//   - Query expansions appended to the search fan-out
//
// Category tables can be loaded from TOML so deployments can tune
// routing without a rebuild.
package router
