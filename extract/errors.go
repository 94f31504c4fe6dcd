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

package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat indicates the input format has no registered extractor.
	// Ingestion reports this as an ignored outcome, not a failure.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractionFailed indicates a registered extractor could not produce text.
	// Ingestion treats this as terminal for the call.
	ErrExtractionFailed = errors.New("extraction failed")
)

// UnsupportedFormatError carries the rejected format name.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q", e.Format)
}

// Unwrap allows errors.Is(err, ErrUnsupportedFormat).
func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}
