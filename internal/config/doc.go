// Package config manages user-level settings stored at ~/.tweaks/config.yaml.
// Values resolve in viper's usual order: flags bound by the CLI, then
// TWEAKS_* environment variables, then the config file, then defaults.
package config
