// Package file loads gsuite settings from the local filesystem.
// Settings come from an optional TOML file in the config directory,
// with GSUITE_-prefixed environment variables taking precedence.
package file
