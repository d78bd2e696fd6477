package config

import "github.com/joho/godotenv"

// LoadDotEnv reads .env files into the environment.
// Existing variables are not overridden.
func LoadDotEnv(paths ...string) error {
	return godotenv.Load(paths...)
}
