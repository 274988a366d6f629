// Package openai provides an OpenAI chat-completions adapter for the
// generation package. It is selected instead of Gemini when the LLM
// provider is configured as "openai".
package openai
