package main

import "github.com/spf13/viper"

// Config holds the runtime settings. Every field can be overridden via the
// environment variable of the same name.
type Config struct {
	Port      string
	Database  string
	SecretKey string
}

func loadConfig() Config {
	viper.AutomaticEnv()
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("DATABASE_URL", "./warbler.db")
	viper.SetDefault("SECRET_KEY", "it's a secret")

	return Config{
		Port:      viper.GetString("PORT"),
		Database:  viper.GetString("DATABASE_URL"),
		SecretKey: viper.GetString("SECRET_KEY"),
	}
}
