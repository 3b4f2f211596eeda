// Package driving defines the interfaces through which the outside world
// drives the core: the "driving" or "primary" ports in hexagonal
// architecture. The CLI depends on these interfaces; core services
// implement them.
package driving
