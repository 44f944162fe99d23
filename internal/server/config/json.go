package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/messagely/internal/flagx"
)

// JsonConfig mirrors Config for JSON files. Absent keys leave the current
// value in place.
type JsonConfig struct {
	EndpointAddrGRPC string `json:"endpoint_addr_grpc"`
	DatabaseDSN      string `json:"database_dsn"`
	BcryptWorkFactor int    `json:"bcrypt_work_factor"`
	MetricsAddr      string `json:"metrics_addr"`
	LogFile          string `json:"log_file"`
	LogLevel         string `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, into config. An
// unreadable or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrGRPC != "" {
		config.EndpointAddrGRPC = c.EndpointAddrGRPC
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.BcryptWorkFactor != 0 {
		config.BcryptWorkFactor = c.BcryptWorkFactor
	}
	if c.MetricsAddr != "" {
		config.MetricsAddr = c.MetricsAddr
	}
	if c.LogFile != "" {
		config.LogFile = c.LogFile
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
