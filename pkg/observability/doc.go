/*
Package observability binds controller lifecycle hooks to Prometheus collectors
and to structured logs.
*/
package observability
