// Package gemini provides the Google Gemini adapters for the generation package.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the content pipeline to Google's Gemini and Imagen models
// without exposing the details of the external service to the core application.
//
// Key components:
//
// 1. Completer:
//   - Implements generation.Completer over Models.GenerateContent
//   - Retries transient failures with exponential backoff and jitter
//   - Translates safety blocks and empty candidates into generation errors
//
// 2. ImageGenerator:
//   - Implements generation.ImageGenerator over Models.GenerateImages
//   - Writes each returned image as a PNG under the configured directory
//
// The package depends on the google.golang.org/genai client library for
// authentication, request formatting, and response decoding.
package gemini
