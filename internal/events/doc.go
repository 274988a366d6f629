// Package events carries notifications about what the content pipeline did
// to each article.
//
// The pipeline emits a PipelineEvent when it skips an article, persists a
// processed event, or falls back to a safe default in one of its stages.
// Handlers such as the metrics collector and the debug logger subscribe to
// an Emitter without the pipeline knowing about them.
package events
