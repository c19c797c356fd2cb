// Package ports declares the interfaces between layers. The HTTP handlers
// call TodoService, the application service calls TodoRepository, and the
// readiness handler calls HealthRegistry. Mocks for all of them live in the
// mocks package and are generated by mockery (.mockery.yaml).
package ports
