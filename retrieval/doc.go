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


// Package retrieval runs the multi-signal query pipeline.
//
// The Orchestrator type combines, per question:
//   - Intent routing and query expansion
//   - Concurrent semantic searches merged by chunk identity
//   - Keyword injection for lexically obvious matches
//   - Role, term and category score boosting
//   - Neighbor expansion by page, section range and topic
//   - Evidence gating under a fixed budget, with a fallback pass
//
// The output is a bounded, ranked evidence set ready for answer
// generation; the pipeline itself never calls a language model.
package retrieval
