// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TokenStore: credential record persistence (SQLite, Secret Manager, memory)
//   - CredentialSource: acquires a new credential (consent flow, service account)
//   - TokenRefresher: exchanges a refresh token at the provider's token endpoint
//
// # Consumer Interfaces
//
//   - TokenProvider: the capability the Google API connectors consume; the
//     auth service implements it
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
