// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package contract

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// DefaultMaxQueryBytes is the query size limit when KGRAPH_MAX_QUERY_BYTES is unset.
const DefaultMaxQueryBytes = 64 << 10

// MaxQueryBytes returns the effective query size limit.
func MaxQueryBytes() int {
	if v := os.Getenv("KGRAPH_MAX_QUERY_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultMaxQueryBytes
}

// ValidationResult represents the result of a validation check.
type ValidationResult struct {
	OK      bool
	Message string
}

var readOnlyLeads = map[string]bool{"SELECT": true, "WITH": true, "EXPLAIN": true, "VALUES": true}

var writeKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "REPLACE": true, "UPSERT": true,
	"DROP": true, "CREATE": true, "ALTER": true, "ATTACH": true, "DETACH": true,
	"VACUUM": true, "REINDEX": true, "PRAGMA": true, "BEGIN": true, "COMMIT": true,
}

// ValidateReadOnlyQuery accepts a single SELECT, WITH, EXPLAIN or VALUES
// statement that contains no data-changing keyword outside string literals.
func ValidateReadOnlyQuery(query string) *ValidationResult {
	if limit := MaxQueryBytes(); len(query) > limit {
		return &ValidationResult{Message: fmt.Sprintf("query is %d bytes; the limit is %d", len(query), limit)}
	}

	words, statements := scan(query)
	if len(words) == 0 {
		return &ValidationResult{Message: "query is empty"}
	}
	if statements > 1 {
		return &ValidationResult{Message: "only one statement is allowed"}
	}
	if !readOnlyLeads[words[0]] {
		return &ValidationResult{Message: fmt.Sprintf("statement must start with SELECT, WITH, EXPLAIN or VALUES, not %s", words[0])}
	}
	for _, w := range words {
		if writeKeywords[w] {
			return &ValidationResult{Message: fmt.Sprintf("%s is not allowed in a read-only query", w)}
		}
	}
	return &ValidationResult{OK: true}
}

// scan returns the upper-cased bare words of query, skipping string
// literals, quoted identifiers and comments, and the number of non-empty
// statements separated by semicolons.
func scan(query string) ([]string, int) {
	var (
		words      []string
		statements int
		inStmt     bool
		word       strings.Builder
	)
	flush := func() {
		if word.Len() > 0 {
			words = append(words, strings.ToUpper(word.String()))
			word.Reset()
		}
	}

	rs := []rune(query)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '\'' || r == '"' || r == '`':
			flush()
			inStmt = true
			for i++; i < len(rs); i++ {
				if rs[i] == r {
					if i+1 < len(rs) && rs[i+1] == r {
						i++
						continue
					}
					break
				}
			}
		case r == '-' && i+1 < len(rs) && rs[i+1] == '-':
			flush()
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case r == '/' && i+1 < len(rs) && rs[i+1] == '*':
			flush()
			for i += 2; i+1 < len(rs) && !(rs[i] == '*' && rs[i+1] == '/'); i++ {
			}
			i++
		case r == ';':
			flush()
			if inStmt {
				statements++
			}
			inStmt = false
		case unicode.IsLetter(r) || r == '_' || (word.Len() > 0 && unicode.IsDigit(r)):
			word.WriteRune(r)
			inStmt = true
		default:
			flush()
			if !unicode.IsSpace(r) {
				inStmt = true
			}
		}
	}
	flush()
	if inStmt {
		statements++
	}
	return words, statements
}
