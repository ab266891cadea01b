/*
Package config loads cell settings from YAML or JSON.

Files are validated against an embedded JSON schema before use, so an unknown
key or a malformed retry section fails at load time rather than silently
falling back to defaults.

	name: db-pool
	metrics: true
	tracing: false
	retry:
	  attempts: 3
	  backoff: 100ms
	  max_backoff: 2s
	  factor: 2
	  jitter: 0.1

Load and hand the result to lazycell.FromConfig:

	cfg, err := config.FromFile("cell.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	cell := lazycell.New(connect, lazycell.FromConfig(cfg)...)

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
