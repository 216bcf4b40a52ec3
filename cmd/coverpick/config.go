package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/anatolykoptev/go-coverpick"
)

// fileConfig is the YAML configuration file. Credentials may be left empty
// and supplied through the environment instead.
type fileConfig struct {
	Gemini struct {
		APIKey     string `yaml:"api_key"`
		Model      string `yaml:"model"`
		ImageModel string `yaml:"image_model"`
	} `yaml:"gemini"`

	Unsplash struct {
		AccessKey string `yaml:"access_key"`
	} `yaml:"unsplash"`

	Pexels struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"pexels"`

	WebSearch struct {
		APIKey       string   `yaml:"api_key"`
		EngineID     string   `yaml:"engine_id"`
		ExtraBlocked []string `yaml:"extra_blocked"`
	} `yaml:"web_search"`

	Pricing coverpick.Pricing `yaml:"pricing"`

	Timeouts struct {
		Source   string `yaml:"source"`
		Judge    string `yaml:"judge"`
		Planner  string `yaml:"planner"`
		Generate string `yaml:"generate"`
	} `yaml:"timeouts"`

	UserAgent string `yaml:"user_agent"`
}

// loadConfig reads path (a missing file means defaults) and applies
// environment overrides.
func loadConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *fileConfig) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if key := os.Getenv("UNSPLASH_ACCESS_KEY"); key != "" {
		c.Unsplash.AccessKey = key
	}
	if key := os.Getenv("PEXELS_API_KEY"); key != "" {
		c.Pexels.APIKey = key
	}
	if key := os.Getenv("GOOGLE_CSE_KEY"); key != "" {
		c.WebSearch.APIKey = key
	}
	if cx := os.Getenv("GOOGLE_CSE_CX"); cx != "" {
		c.WebSearch.EngineID = cx
	}
}

// sources builds every backend; disabled ones are skipped by the picker.
func (c *fileConfig) sources() []coverpick.Source {
	return []coverpick.Source{
		&coverpick.WebSearchSource{
			APIKey:       c.WebSearch.APIKey,
			EngineID:     c.WebSearch.EngineID,
			ExtraBlocked: c.WebSearch.ExtraBlocked,
		},
		&coverpick.UnsplashSource{AccessKey: c.Unsplash.AccessKey},
		&coverpick.PexelsSource{APIKey: c.Pexels.APIKey},
	}
}

// timeouts parses the duration strings; empty values keep package defaults.
func (c *fileConfig) timeouts() (source, judge, planner, generate time.Duration, err error) {
	parse := func(name, s string) time.Duration {
		if s == "" || err != nil {
			return 0
		}
		d, perr := time.ParseDuration(s)
		if perr != nil {
			err = fmt.Errorf("invalid %s timeout %q: %w", name, s, perr)
		}
		return d
	}
	source = parse("source", c.Timeouts.Source)
	judge = parse("judge", c.Timeouts.Judge)
	planner = parse("planner", c.Timeouts.Planner)
	generate = parse("generate", c.Timeouts.Generate)
	return source, judge, planner, generate, err
}
