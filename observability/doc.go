// Package observability provides logging and metrics support for the
// scholargraph client.
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stderr",
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("batch_id", batchID).Msg("batch started")
//
// # Metrics
//
// Initialize metrics against a registry:
//
//	metrics := observability.NewMetrics(prometheus.DefaultRegisterer, "scholargraph")
//	metrics.APIRequestsTotal.WithLabelValues("paper/search").Inc()
//
// # Standard Fields
//
// Common log fields used across the client:
//
//   - batch_id: batch lookup correlation identifier
//   - operation: facade operation name
//   - query: keyword, title, or author name being looked up
//   - endpoint: Graph API endpoint label
//   - attempt: retry attempt number
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
