// Package config loads the certificate lifecycle configuration from
// environment variables (CERTMATE_* prefix) with caarlos0/env, after a
// one-time best-effort .env load. Components receive the resulting Config
// explicitly at construction; nothing reads the environment at runtime.
package config
