// Package service implements the content pipeline's application services.
//
// ContentProcessingService holds the per-article stages. Each stage delegates
// judgment to an injected generation.ContentGenerator or media searcher and
// falls back to a safe default when that call fails. IngestService is the
// orchestrator that fetches articles, gates them on safety and timeliness,
// runs the stages and persists the result. BookAssemblyService compiles a
// month's processed events into a MonthlyBook.
//
// All collaborators are passed to the constructors; services hold no
// exported state and are safe for concurrent use once built.
package service
