// Package config provides configuration loading and validation for filegate.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (FILEGATE_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with FILEGATE_ prefix:
//   - server.port → FILEGATE_SERVER_PORT
//   - database.type → FILEGATE_DATABASE_TYPE
//   - storage.endpoint → FILEGATE_STORAGE_ENDPOINT
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: port, max_upload_size and presign_expiry
//   - Database: type, DSN, and usage table name
//   - Storage: MinIO endpoint, bucket and credentials
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Database type must be sqlite or postgres
//   - Storage endpoint, bucket and credentials must be set
//   - Log level must be debug, info, warn, or error
package config
