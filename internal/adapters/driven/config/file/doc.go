// Package file keeps recall settings in a TOML file under the config
// directory (~/.recall by default). Secrets are written with 0600 permissions.
package file
