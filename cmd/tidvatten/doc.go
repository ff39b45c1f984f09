// Command tidvatten serves the keeper report API and keeps the registry of
// known keepers in sync with the upstream forum.
//
// Usage:
//
//	tidvatten --config tidvatten.toml [--tokens-file tokens.json] [--listen-addr 127.0.0.1:8000]
//
// See cmd/flags for the full list of flags; every service flag can also be
// set through a TIDVATTEN_* environment variable.
package main
