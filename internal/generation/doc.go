// Package generation provides interfaces and implementations for interacting
// with external AI/LLM services for content generation. It abstracts the
// details of model integration, allowing the pipeline to verify, rewrite,
// categorize and enrich news content without coupling to a specific provider.
//
// Provider adapters (Gemini, OpenAI) only implement Completer. ContentClient
// turns a Completer into a full ContentGenerator: it owns the prompts and the
// normalization of model answers into typed results with safe defaults.
package generation
