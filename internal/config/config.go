package config

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/bcmr-indexer/common"
	bcmrconfig "github.com/gaze-network/bcmr-indexer/modules/bcmr/config"
	"github.com/gaze-network/bcmr-indexer/pkg/logger"
	"github.com/gaze-network/bcmr-indexer/pkg/logger/slogx"
	"github.com/gaze-network/bcmr-indexer/pkg/middleware/requestlogger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding the configuration, e.g. BCMR_NETWORK.
const EnvPrefix = "BCMR"

var (
	isInit       bool
	mu           sync.Mutex
	parseOnce    sync.Once
	viperConfig  = viper.New()
	globalConfig = defaultConfig()
)

type Config struct {
	EnableModules []string          `mapstructure:"enable_modules"`
	APIOnly       bool              `mapstructure:"api_only"`
	Logger        logger.Config     `mapstructure:"logger"`
	BitcoinNode   BitcoinNodeClient `mapstructure:"bitcoin_node"`
	Network       common.Network    `mapstructure:"network"`
	HTTPServer    HTTPServerConfig  `mapstructure:"http_server"`
	Modules       Modules           `mapstructure:"modules"`
}

type BitcoinNodeClient struct {
	Host       string `mapstructure:"host"`
	User       string `mapstructure:"user"`
	Pass       string `mapstructure:"pass"`
	DisableTLS bool   `mapstructure:"disable_tls"`
}

type Modules struct {
	BCMR bcmrconfig.Config `mapstructure:"bcmr"`
}

type HTTPServerConfig struct {
	Port   int                  `mapstructure:"port"`
	Logger requestlogger.Config `mapstructure:"logger"`
}

func defaultConfig() *Config {
	return &Config{
		EnableModules: []string{"bcmr"},
		Logger: logger.Config{
			Output: "TEXT",
		},
		Network: common.NetworkMainnet,
		BitcoinNode: BitcoinNodeClient{
			User: "user",
			Pass: "pass",
		},
		HTTPServer: HTTPServerConfig{
			Port: 8080,
		},
		Modules: Modules{
			BCMR: bcmrconfig.Config{
				Database:         "postgres",
				APIHandlers:      []string{"http"},
				IPFSGateway:      "https://ipfs.io",
				FetchTimeout:     30 * time.Second,
				FetchRateLimit:   10,
				Workers:          4,
				MaxTaskAttempts:  3,
				BackfillInterval: 10 * time.Minute,
				WatchInterval:    time.Hour,
			},
		},
	}
}

// Parse parse the configuration from environment variables
func Parse(configFile ...string) Config {
	mu.Lock()
	defer mu.Unlock()
	return parse(configFile...)
}

// Load returns the loaded configuration
func Load() Config {
	mu.Lock()
	defer mu.Unlock()
	if isInit {
		return *globalConfig
	}
	return parse()
}

// BindPFlag binds a specific key to a pflag (as used by cobra).
// Example (where serverCmd is a Cobra instance):
//
//	serverCmd.Flags().Int("port", 1138, "Port to run Application server on")
//	Viper.BindPFlag("port", serverCmd.Flags().Lookup("port"))
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viperConfig.BindPFlag(key, flag); err != nil {
		logger.Panic("Something went wrong, failed to bind flag for config", slogx.String("package", "config"), slogx.Error(err))
	}
}

// SetDefault sets the default value for this key.
// SetDefault is case-insensitive for a key.
// Default only used when no value is provided by the user via flag, config or ENV.
func SetDefault(key string, value any) { viperConfig.SetDefault(key, value) }

func parse(configFile ...string) Config {
	ctx := logger.WithContext(context.Background(), slogx.String("package", "config"))

	parseOnce.Do(func() {
		if len(configFile) > 0 && configFile[0] != "" {
			viperConfig.SetConfigFile(configFile[0])
		} else {
			viperConfig.AddConfigPath("./")
			viperConfig.SetConfigName("config")
		}

		viperConfig.SetEnvPrefix(EnvPrefix)
		viperConfig.AutomaticEnv()
		viperConfig.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viperConfig.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.WarnContext(ctx, "Config file not found, use default config value", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "Invalid config file", slogx.Error(err))
			}
		}

		if err := viperConfig.Unmarshal(globalConfig); err != nil {
			logger.PanicContext(ctx, "Something went wrong, failed to unmarshal config", slogx.Error(err))
		}

		isInit = true
	})

	return *globalConfig
}
