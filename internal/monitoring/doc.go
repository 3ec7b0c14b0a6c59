/*
Package monitoring provides Prometheus metrics for the launcher backend.

Tracked concerns:

  - HTTP requests (count, latency) via gin middleware
  - Stage lifecycle operations (saves, reverts, loads)
  - Resolver snapshot generation (duration, failures)
  - Storage operation failures per gateway operation
  - Connected event-stream clients

Expose via the standard endpoint:

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
