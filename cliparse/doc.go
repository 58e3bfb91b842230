// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse parses server configuration from CLI flags with environment
variable fallbacks. A .env file, when present, is loaded first.

Settings:

  - PORT (-p): server port (default 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default sqlite)
  - DATABASE_URL (-d): PostgreSQL connection string (required for postgres)
  - DATABASE_PATH (-f): SQLite file path (default radio.db)
  - DB_POOL_SIZE (-pool): max PostgreSQL connections (default 10)
  - DB_POOL_TIMEOUT_MS (-pool-timeout): connection acquisition timeout
    (default 5000)
*/
package cliparse
