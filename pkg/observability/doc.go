/*
Package observability provides tools for monitoring the ledger.

Metrics exports operation and event counters to Prometheus, and Broadcaster fans
committed events out to live subscribers such as the HTTP event stream. Both plug
into the ledger through domain.Hooks.
*/
package observability
