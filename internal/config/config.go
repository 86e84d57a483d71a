package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	S3       S3Config       `mapstructure:"s3"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	// StaticDir is the directory with the browser client; left empty to
	// disable static serving (API-only deployments).
	StaticDir string `mapstructure:"static_dir"`
}

// DatabaseConfig selects and configures the storage engine.
// Driver is "postgres" or "sqlite"; URL is the postgres DSN, Path the
// sqlite file (":memory:" for ephemeral).
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
	Path   string `mapstructure:"path"`
}

// StorageConfig selects the upload backend: "local" or "s3".
type StorageConfig struct {
	Backend   string `mapstructure:"backend"`
	UploadDir string `mapstructure:"upload_dir"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	// PublicBaseURL overrides the object URL root when the bucket sits
	// behind a CDN; defaults to <endpoint>/<bucket>.
	PublicBaseURL string `mapstructure:"public_base_url"`
	UseSSL        bool   `mapstructure:"use_ssl"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variables override file values, e.g.
	// database.url -> DATABASE_URL, storage.upload_dir -> STORAGE_UPLOAD_DIR.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":4000")
	viper.SetDefault("server.static_dir", "./web")
	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.url", "postgres://localhost:5432/workoutlog?sslmode=disable")
	viper.SetDefault("database.path", "workoutlog.db")
	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.upload_dir", "./uploads")
	viper.SetDefault("s3.use_ssl", true)

	err = viper.ReadInConfig()
	// A missing config file is fine; defaults and env vars carry the run.
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
