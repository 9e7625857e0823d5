// Package lanterns is the HTTP client of the remote lantern service.
//
// Failures are reported as *domain.GatewayError: transport errors and 5xx are
// unreachable, 401 and 403 unauthorized, 404 on reads not found and any other
// 4xx rejected with the service's detail message. Nothing is retried.
package lanterns
