package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/btcsuite/btcd/btcutil"
)

const (
	// DatadirKey is the local data directory to store the internal state of
	// the daemon.
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the
	// values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// ExplorerEndpointKey is the url of the esplora HTTP API used as chain
	// view, ie. https://blockstream.info/api
	ExplorerEndpointKey = "EXPLORER_ENDPOINT"
	// ObserverIntervalKey is the interval in milliseconds between two polls
	// of the same seal outpoint.
	ObserverIntervalKey = "OBSERVER_INTERVAL"
	// ObserverRequestsPerSecondKey caps the overall poll frequency against
	// the explorer.
	ObserverRequestsPerSecondKey = "OBSERVER_REQUESTS_PER_SECOND"
	// ProtocolTagKey is the domain-separation string new seals are defined
	// under. Changing it on an existing registry makes old proofs unverifiable.
	ProtocolTagKey = "PROTOCOL_TAG"

	// DbLocation is the folder inside the datadir containing db files.
	DbLocation = "db"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("seald", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("SEALD")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(ExplorerEndpointKey, "http://127.0.0.1:3000")
	vip.SetDefault(ObserverIntervalKey, 5000)
	vip.SetDefault(ObserverRequestsPerSecondKey, 10)
	vip.SetDefault(ProtocolTagKey, "bitseal")

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetFloat(key string) float64 {
	return vip.GetFloat64(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetDbDir returns the db directory inside the datadir.
func GetDbDir() string {
	return filepath.Join(GetDatadir(), DbLocation)
}

// GetLogLevel returns the configured logrus level.
func GetLogLevel() log.Level {
	return log.Level(GetInt(LogLevelKey))
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if len(GetString(ExplorerEndpointKey)) <= 0 {
		return fmt.Errorf("missing explorer endpoint")
	}

	if len(GetString(ProtocolTagKey)) <= 0 {
		return fmt.Errorf("missing protocol tag")
	}

	if GetInt(ObserverIntervalKey) <= 0 {
		return fmt.Errorf(
			"%s must be a positive number of milliseconds", ObserverIntervalKey,
		)
	}

	return nil
}

func initDatadir() error {
	return makeDirectoryIfNotExists(filepath.Join(GetDatadir(), DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
