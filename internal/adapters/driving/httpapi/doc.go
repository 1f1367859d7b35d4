// Package httpapi exposes ingestion, retrieval and session saving over
// JSON/HTTP, together with health and Prometheus endpoints.
//
// Routes:
//
//	POST /v1/ingest    domain.IngestRequest   -> domain.IngestResult
//	POST /v1/retrieve  domain.RetrieveRequest -> domain.RetrievalResult
//	POST /v1/sessions  domain.SessionRequest  -> {"success": true}
//	GET  /healthz
//	GET  /metrics
package httpapi
