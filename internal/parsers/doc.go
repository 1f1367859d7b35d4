// Package parsers turns exported chat histories into normalised
// conversations. Each supported format has its own Parser; the Registry
// routes an upload to one by file extension and, for JSON, by payload shape.
//
// Supported exports:
//
//   - Claude conversations.json (array, {conversations:[...]} wrapper, or a single conversation)
//   - ChatGPT, Gemini and Deepseek markdown transcripts
//   - Anything else as a single plain-text document, when the caller opts in
package parsers
