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

package ingestion

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Field is an optional source value: either Present(v) or Missing.
// It is the only representation of null-like input past the parsing boundary.
type Field[T string | bool] struct {
	value   T
	present bool
}

// Present wraps a value that was supplied in the source row.
func Present[T string | bool](v T) Field[T] {
	return Field[T]{value: v, present: true}
}

// Missing is the absent value.
func Missing[T string | bool]() Field[T] {
	return Field[T]{}
}

// Get returns the value and whether it is present.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.present
}

// IsPresent reports whether the field carries a value.
func (f Field[T]) IsPresent() bool {
	return f.present
}

// OrElse returns the value, or def when the field is Missing.
func (f Field[T]) OrElse(def T) T {
	if !f.present {
		return def
	}
	return f.value
}

// Value implements driver.Valuer; Missing is written as SQL NULL.
func (f Field[T]) Value() (driver.Value, error) {
	if !f.present {
		return nil, nil
	}
	return f.value, nil
}

func (f Field[T]) String() string {
	if !f.present {
		return "<missing>"
	}
	return fmt.Sprint(f.value)
}

// normalizer turns raw TSV cells into Fields.
type normalizer struct {
	nulls map[string]struct{}
}

func newNormalizer(nullValues []string) normalizer {
	return normalizer{nulls: Config{NullValues: nullValues}.nullSet()}
}

func (n normalizer) text(raw string) Field[string] {
	v := strings.TrimSpace(raw)
	if _, isNull := n.nulls[v]; isNull || v == "" {
		return Missing[string]()
	}
	return Present(v)
}

func (n normalizer) boolean(raw string) (Field[bool], error) {
	v, ok := n.text(raw).Get()
	if !ok {
		return Missing[bool](), nil
	}
	switch strings.ToLower(v) {
	case "true", "t", "yes", "y", "1":
		return Present(true), nil
	case "false", "f", "no", "n", "0":
		return Present(false), nil
	}
	return Missing[bool](), fmt.Errorf("invalid boolean %q", v)
}
