package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Cycle struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	Workers         int `yaml:"workers"`
	WindowHours     int `yaml:"window_hours"`
}

type Storage struct {
	Driver          string `yaml:"driver"` // memory | postgres
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"`
}

type Sim struct {
	Seed            int64   `yaml:"seed"`
	Traders         int     `yaml:"traders"`
	Assets          int     `yaml:"assets"`
	StartingCapital float64 `yaml:"starting_capital"`
	PriceRPS        float64 `yaml:"price_rps"` // price source rate limit, req/s
}

type Root struct {
	Cycle   Cycle   `yaml:"cycle"`
	Storage Storage `yaml:"storage"`
	Sim     Sim     `yaml:"sim"`
}

func Load(path string) (Root, error) {
	var c Root
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return withDefaults(c), nil
}

// Default returns the configuration used when no file is given.
func Default() Root {
	return withDefaults(Root{})
}

func withDefaults(c Root) Root {
	if c.Cycle.IntervalSeconds == 0 {
		c.Cycle.IntervalSeconds = 300
	}
	if c.Cycle.Workers == 0 {
		c.Cycle.Workers = 1 // sequential unless configured otherwise
	}
	if c.Cycle.WindowHours == 0 {
		c.Cycle.WindowHours = 24
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.MaxOpenConns == 0 {
		c.Storage.MaxOpenConns = 10
	}
	if c.Storage.MaxIdleConns == 0 {
		c.Storage.MaxIdleConns = 5
	}
	if c.Storage.ConnMaxLifetime == 0 {
		c.Storage.ConnMaxLifetime = 30
	}
	if c.Sim.Seed == 0 {
		c.Sim.Seed = 1
	}
	if c.Sim.Traders == 0 {
		c.Sim.Traders = 70
	}
	if c.Sim.Assets == 0 {
		c.Sim.Assets = 20
	}
	if c.Sim.StartingCapital == 0 {
		c.Sim.StartingCapital = 10000
	}
	if c.Sim.PriceRPS == 0 {
		c.Sim.PriceRPS = 500
	}
	return c
}
