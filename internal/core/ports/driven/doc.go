// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - Parser: Turns one export format into conversations
//   - ParserRegistry: Routes a file to the right parser
//   - PostProcessor: Cuts conversations into chunks
//   - EmbeddingService: Generates vector embeddings (Cloudflare, OpenAI, Gemini, Ollama)
//   - VectorStore: Persists chunk rows and answers similarity queries (SQLite, Postgres, memory)
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or parser package
package driven
