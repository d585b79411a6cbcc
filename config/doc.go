// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the keep-alive settings (target URLs,
// ping interval, retry policy, request timeout), logging and the optional
// status server, and converts them into a keepalive.Config.
package config
