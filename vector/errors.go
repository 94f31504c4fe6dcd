// Copyright 2026 Veritas Legal Systems
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

package vector

import "errors"

var (
	// ErrEmptyVector is returned when a zero-length vector is
	// upserted or queried.
	ErrEmptyVector = errors.New("empty vector")

	// ErrDimensionMismatch is returned when a vector's dimension
	// disagrees with the vectors already in the collection.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyID is returned when an upsert carries no id.
	ErrEmptyID = errors.New("empty vector id")
)
