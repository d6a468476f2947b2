package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Settings are operator-tunable knobs loaded from subshare.yml and hot
// reloaded while the process runs.
type Settings struct {
	RevealSeconds          int `mapstructure:"revealSeconds"`
	SuccessDisplayMillis   int `mapstructure:"successDisplayMillis"`
	VerifierTimeoutSeconds int `mapstructure:"verifierTimeoutSeconds"`
}

func DefaultSettings() Settings {
	return Settings{
		RevealSeconds:          10,
		SuccessDisplayMillis:   1500,
		VerifierTimeoutSeconds: 30,
	}
}

type SettingsHolder struct {
	current atomic.Value // holds Settings
}

func NewSettingsHolder() (*SettingsHolder, error) {
	v := viper.New()

	v.SetConfigName("subshare")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/subshare")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SUBSHARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultSettings()
	v.SetDefault("settings.revealSeconds", defaults.RevealSeconds)
	v.SetDefault("settings.successDisplayMillis", defaults.SuccessDisplayMillis)
	v.SetDefault("settings.verifierTimeoutSeconds", defaults.VerifierTimeoutSeconds)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Settings
	if err := v.UnmarshalKey("settings", &cfg); err != nil {
		return nil, err
	}
	if err := validateSettings(cfg); err != nil {
		return nil, err
	}

	holder := &SettingsHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Settings
		if err := v.UnmarshalKey("settings", &updated); err != nil {
			log.Printf("[settings] reload failed: %v", err)
			return
		}
		if err := validateSettings(updated); err != nil {
			log.Printf("[settings] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[settings] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticSettingsHolder pins settings without file watching. Test use.
func NewStaticSettingsHolder(cfg Settings) *SettingsHolder {
	holder := &SettingsHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *SettingsHolder) Get() Settings {
	return h.current.Load().(Settings)
}

func validateSettings(cfg Settings) error {
	if cfg.RevealSeconds <= 0 {
		return errors.New("settings.revealSeconds must be positive")
	}
	if cfg.SuccessDisplayMillis < 0 {
		return errors.New("settings.successDisplayMillis cannot be negative")
	}
	if cfg.VerifierTimeoutSeconds <= 0 {
		return errors.New("settings.verifierTimeoutSeconds must be positive")
	}
	return nil
}
