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


package ingest

import (
	"regexp"
	"strconv"

	"github.com/poiesic/evidex/core"
)

// Section references take a few shapes in rule text: a labeled
// "Rule 1102.A" or "Section 5401", a bare numbered heading like
// "4302.B", or a lettered hunter rule like "HU111". The reference
// closest to the start of the chunk wins.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:rule|section|article)\s+(\d{3,4})(?:\.([A-Z]))?\b`),
	regexp.MustCompile(`\b(\d{3,4})\.([A-Z])\b`),
	regexp.MustCompile(`\bHU(\d{2,3})\b`),
}

// extractSection finds the leading section reference in a chunk.
// Returns 0 and an empty subrule when the chunk has none.
func extractSection(text string) (int, string) {
	bestPos := -1
	bestID := 0
	bestSubrule := ""
	for _, re := range sectionPatterns {
		m := re.FindStringSubmatchIndex(text)
		if m == nil || (bestPos >= 0 && m[0] >= bestPos) {
			continue
		}
		id, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		bestPos, bestID, bestSubrule = m[0], id, ""
		if len(m) >= 6 && m[4] >= 0 {
			bestSubrule = text[m[4]:m[5]]
		}
	}
	return bestID, bestSubrule
}

var rolePatterns = []struct {
	role core.SubjectRole
	re   *regexp.Regexp
}{
	{core.RoleCoach, regexp.MustCompile(`(?i)\b(?:coach(?:es|ing)?|instructors?|trainers?)\b`)},
	{core.RoleOfficial, regexp.MustCompile(`(?i)\b(?:judges?|stewards?|officials?|show committee)\b`)},
	{core.RoleRider, regexp.MustCompile(`(?i)\b(?:riders?|exhibitors?|members?|competitors?)\b`)},
	{core.RoleHorse, regexp.MustCompile(`(?i)\b(?:horses?|pon(?:y|ies)|mounts?)\b`)},
}

// detectRole picks the role whose vocabulary appears most often in the
// chunk. Ties keep the earlier entry, so text addressing both a coach
// and a horse stays a coach chunk. No vocabulary at all means general.
func detectRole(text string) core.SubjectRole {
	role := core.RoleGeneral
	bestCount := 0
	for _, rp := range rolePatterns {
		if n := len(rp.re.FindAllStringIndex(text, -1)); n > bestCount {
			role, bestCount = rp.role, n
		}
	}
	return role
}

// topicVocabulary maps each topic tag to the vocabulary that earns it.
// A chunk can carry several tags; scan order fixes tag order.
var topicVocabulary = []struct {
	tag string
	re  *regexp.Regexp
}{
	{"medications", regexp.MustCompile(`(?i)\b(?:medications?|drugs?|therapeutic|veterinarians?)\b`)},
	{"qualification", regexp.MustCompile(`(?i)\b(?:points?|qualif(?:y|ies|ying|ication)|regionals?|nationals?)\b`)},
	{"measurement", regexp.MustCompile(`(?i)\b(?:hands|measured?|measurements?|remeasured?)\b`)},
	{"equipment", regexp.MustCompile(`(?i)\b(?:martingales?|tack|bits?|saddles?|bridles?|equipment)\b`)},
	{"alternates", regexp.MustCompile(`(?i)\b(?:alternates?|substitut(?:e|es|ed|ion|ions))\b`)},
	{"prize list", regexp.MustCompile(`(?i)\bprize[ -]?lists?\b`)},
	{"heights", regexp.MustCompile(`(?i)\b(?:heights?|fences?|jumps?|jumping|oxers?)\b`)},
	{"coaching", regexp.MustCompile(`(?i)\b(?:coach(?:es|ing)?|instructors?|trainers?)\b`)},
}

// detectTopics scans the chunk against the fixed topic vocabulary.
func detectTopics(text string) []string {
	var tags []string
	for _, tv := range topicVocabulary {
		if tv.re.MatchString(text) {
			tags = append(tags, tv.tag)
		}
	}
	return tags
}
