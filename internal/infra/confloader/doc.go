// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables
//  3. YAML configuration file
//  4. Defaults already present in the target struct
//
// Environment variables use a prefix and a double underscore for nesting,
// since many keys contain single underscores:
//
//	PARKING_ENVD_SERVER__HTTP__ADDR=:9090  -> server.http.addr
//	PARKING_CONSOLE_APP_URL=https://...    -> app_url
//
// Watcher reports changes to individual files through fsnotify.
package confloader
