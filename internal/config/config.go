package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	S3         S3Config         `mapstructure:"s3"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Nomination NominationConfig `mapstructure:"nomination"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines how bearer tokens from the identity provider are verified.
// Tokens are issued externally; this service only validates them and reads
// the group claim to gate admin routes.
type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	AdminGroup string `mapstructure:"admin_group"`
}

// NominationConfig holds the nomination workflow knobs.
type NominationConfig struct {
	// MaxAttachmentSize is the upload size limit in bytes.
	MaxAttachmentSize int64 `mapstructure:"max_attachment_size"`
	// StatusPolicy selects the transition policy: "permissive" or "final".
	StatusPolicy string `mapstructure:"status_policy"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variable handling, e.g. jwt.admin_group -> JWT_ADMIN_GROUP
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "pw_genius")
	viper.SetDefault("s3.region", "us-west-2")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("jwt.admin_group", "admin")
	viper.SetDefault("nomination.max_attachment_size", 25*1024*1024)
	viper.SetDefault("nomination.status_policy", "permissive")

	err = viper.ReadInConfig()
	// Missing config file is fine; env vars and defaults still apply.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
