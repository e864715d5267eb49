// Package config loads runtime configuration for the account client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables prefixed with ACCOUNTKEEPER_ (e.g. ACCOUNTKEEPER_API_URL).
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-api string        origin of the remote user API
//	-paths string      comma-separated candidate user API paths, in probe order
//	-auth string       origin of the auth service
//	-key string        auth service api key
//	-redirect string   base URL recovery links point back to
//	-admins string     comma-separated administrator emails
//	-data string       directory of the local database
//	-t int             request timeout (seconds)
//	-log string        log level
//
// # JSON schema
//
//	{
//	  "api_url": "https://backend.example",
//	  "users_api_paths": ["/api/usuarios_registrados", "/api/users"],
//	  "delete_fallback_path": "/api/usuarios_registrados",
//	  "auth_url": "https://project.supabase.co",
//	  "auth_api_key": "public-anon-key",
//	  "redirect_url": "https://app.example/",
//	  "admin_emails": ["root@example.com"],
//	  "data_dir": "data",
//	  "request_timeout": "15s",
//	  "log_level": "info"
//	}
//
// Pinning users_api_paths to a single entry retires probing once the real
// backend route is known.
package config
