package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// App holds general application settings
type App struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Debug   bool   `toml:"debug"`
}

// Proposals holds the guilds, channels and roles the proposals module works with
type Proposals struct {
	Guilds   []string `toml:"guilds"`
	Channels []string `toml:"channels"`
	Roles    []string `toml:"roles"`
}

// Events holds the guilds and channels the loot events module works with
type Events struct {
	Guilds   []string `toml:"guilds"`
	Channels []string `toml:"channels"`
}

// Hangar holds the guilds the hangar module works with
type Hangar struct {
	Guilds []string `toml:"guilds"`
}

// Activity holds the guilds and application ids the presence tracker watches
type Activity struct {
	Guilds       []string `toml:"guilds"`
	Applications []string `toml:"applications"`
}

// Voice holds the voice channels the bot connects to on startup
type Voice struct {
	Channels []string `toml:"channels"`
}

// Item is one entry of the loot item catalog offered in the add loot modal
type Item struct {
	Id   string `toml:"id"`
	Name string `toml:"name"`
}

type Config struct {
	App       App       `toml:"app"`
	Proposals Proposals `toml:"proposals"`
	Events    Events    `toml:"events"`
	Hangar    Hangar    `toml:"hangar"`
	Activity  Activity  `toml:"activity"`
	Voice     Voice     `toml:"voice"`
	Items     []Item    `toml:"items"`

	// Secrets, taken from the environment
	DiscordToken string `toml:"-"`
	MongoUri     string `toml:"-"`
	RedisAddr    string `toml:"-"`
	RedisPass    string `toml:"-"`
}

// Load the configuration from the TOML file and the environment.
// Outside of production a .env file is loaded first
func Load() (Config, error) {

	var config Config

	if os.Getenv("GO_ENV") != "production" {
		// A missing .env file is fine, the variables may be in the environment already
		godotenv.Load()
	}

	filename := os.Getenv("QADIR_CONFIG")
	if filename == "" {
		filename = "config.toml"
	}
	if _, err := toml.DecodeFile(filename, &config); err != nil {
		return Config{}, fmt.Errorf("could not decode config file %s: %w", filename, err)
	}

	config.DiscordToken = os.Getenv("DISCORD_TOKEN")
	if config.DiscordToken == "" {
		return Config{}, fmt.Errorf("environment variable DISCORD_TOKEN is not set")
	}
	config.MongoUri = os.Getenv("MONGODB_URI")
	if config.MongoUri == "" {
		return Config{}, fmt.Errorf("environment variable MONGODB_URI is not set")
	}
	config.RedisAddr = os.Getenv("REDIS_ADDR")
	if config.RedisAddr == "" {
		return Config{}, fmt.Errorf("environment variable REDIS_ADDR is not set")
	}
	config.RedisPass = os.Getenv("REDIS_PASSWORD")

	return config, nil
}

// Database returns the database name to use depending on the environment
func Database() string {
	if os.Getenv("GO_ENV") == "production" {
		return "qadir-main"
	}
	return "qadir-dev"
}
