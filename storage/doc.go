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

// Package storage provides the metadata registry abstraction for casetrace.
//
// This package defines the repository interface that decouples the storage
// implementation from the pipeline and the derived-intelligence builders.
// The production backend lives in storage/badger; tests use the same
// backend in in-memory mode.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.DocumentRepository interface to
// prevent accidental coupling to BadgerDB specifics:
//
//	repo, err := badger.NewDocumentRepository(backend)
//
// # Consistency
//
// CreateDocument performs the corpus-scoped content-hash check and the
// insert inside a single transaction. Two concurrent ingestions of the
// same bytes therefore yield exactly one document; one caller receives
// ErrDuplicateKey with the surviving document.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
