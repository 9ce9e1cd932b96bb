// Package importer turns vendor spreadsheets into clean, keyed records.
//
// This package holds the import pipeline and the service around it,
// independent of any transport. It is used by the HTTP server, the
// importctl CLI and tests without modification.
//
// # Pipeline
//
// [Parse] runs one grid through these stages, strictly in order:
//
//  1. [LocateHeader] skips merged group titles and metadata rows
//  2. [MapColumns] binds declared columns to header cells; a missing
//     required column aborts with [*StructuralMismatchError]
//  3. [CoerceCell] turns raw cells into strings (ISO dates, plain decimals)
//  4. [ValidateRows] reports every empty required cell in the batch
//  5. the definition's [EnrichFunc] derives normalized fields and the
//     record key, returning non-fatal warnings
//
// Parsing is pure. No stage reads files, touches the network or blocks.
//
// # Import Types
//
// Import types are registered at init time using [Register]. Each
// [Definition] pairs a [ColumnSchema] with an optional enricher:
//
//	importer.Register(importer.Definition{
//	    Schema: schema, // usually loaded from YAML with ParseSchema
//	    Enrich: vessel.Enrich,
//	})
//
// # Service
//
// [Service] adds what a request needs around the pipeline: a size limit,
// an import slot from [Limiter], a timeout and the [Upserter] call. Rows
// with validation errors are withheld from the upsert.
//
// # Error Handling
//
// [MapError] maps failures to operator messages with support codes:
//
//   - IMP001-IMP002: structural mismatch, invalid rows
//   - FILE001-FILE005: size, unreadable or empty workbooks
//   - UPL001-UPL003: busy, cancelled, timed out
//   - SCH001: unknown import type
//   - DB001-DB004: database failures
package importer
