package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/andreazorzetto/yh/highlight"
	"github.com/hokaccha/go-prettyjson"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/DavidSemke/TechstackApi/conf"
	"github.com/DavidSemke/TechstackApi/internal/build"
	"github.com/DavidSemke/TechstackApi/internal/log"
	"github.com/DavidSemke/TechstackApi/internal/server"
	"github.com/DavidSemke/TechstackApi/internal/server/biz"
	"github.com/DavidSemke/TechstackApi/internal/server/db"
	"github.com/DavidSemke/TechstackApi/internal/validate"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config":
			handleConfigCommand()
			return
		case "version", "--version", "-v":
			showVersion()
			return
		case "help", "--help", "-h":
			showHelp()
			return
		case "build-info":
			showBuildInfo()
			return
		}
	}

	startServer()
}

func showBuildInfo() {
	fmt.Println(build.GetBuildInfo())
}

type logger struct{}

func (l *logger) LogEvent(event fxevent.Event) {
	log.Debug(context.Background(), "fx event", log.Any("event", event))
}

func startServer() {
	server.Run(
		fx.WithLogger(func() fxevent.Logger {
			return &logger{}
		}),
		fx.Provide(conf.Load),
		fx.Provide(
			func(cfg conf.Config) server.Config { return cfg.APIServer },
			func(cfg conf.Config) db.Config { return cfg.DB },
			func(cfg conf.Config) log.Config { return cfg.Log },
			func(cfg conf.Config) biz.AuthConfig { return cfg.Auth },
			func(cfg server.Config) validate.ImageURLChecker {
				if cfg.ImageCheckEnabled {
					return validate.NewHTTPImageURLChecker()
				}

				return validate.NopImageURLChecker{}
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, server *server.Server, conn *gorm.DB) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					go func() {
						err := server.Run()
						if err != nil {
							log.Error(context.Background(), "server run error:", log.Cause(err))
							os.Exit(1)
						}
					}()

					return nil
				},
				OnStop: func(ctx context.Context) error {
					err := server.Shutdown(ctx)
					if err != nil {
						log.Error(context.Background(), "server shutdown error:", log.Cause(err))
					}

					sqlDB, err := conn.DB()
					if err != nil {
						return err
					}

					err = sqlDB.Close()
					if err != nil {
						log.Error(context.Background(), "db close error:", log.Cause(err))
					}

					return nil
				},
			})
		}),
	)
}

func handleConfigCommand() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: techstack config <preview|validate|get>")
		os.Exit(1)
	}

	switch os.Args[2] {
	case "preview":
		configPreview()
	case "validate":
		configValidate()
	case "get":
		configGet()
	default:
		fmt.Println("Usage: techstack config <preview|validate|get>")
		os.Exit(1)
	}
}

func configPreview() {
	format := "yml"

	for i := 3; i < len(os.Args); i++ {
		if os.Args[i] == "--format" || os.Args[i] == "-f" {
			if i+1 < len(os.Args) {
				format = os.Args[i+1]
			}
		}
	}

	config, err := conf.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var output string

	switch format {
	case "json":
		b, err := prettyjson.Marshal(config)
		if err != nil {
			fmt.Printf("Failed to preview config: %v\n", err)
			os.Exit(1)
		}

		output = string(b)
	case "yml", "yaml":
		b, err := yaml.Marshal(config)
		if err != nil {
			fmt.Printf("Failed to preview config: %v\n", err)
			os.Exit(1)
		}

		output, err = highlight.Highlight(bytes.NewBuffer(b))
		if err != nil {
			fmt.Printf("Failed to preview config: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unsupported format: %s\n", format)
		os.Exit(1)
	}

	fmt.Println(output)
}

func configValidate() {
	config, err := conf.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	errors := validateConfig(config)

	if len(errors) == 0 {
		fmt.Println("Configuration is valid!")
		return
	}

	fmt.Println("Configuration validation failed:")

	for _, err := range errors {
		fmt.Printf("  - %s\n", err)
	}

	os.Exit(1)
}

func validateConfig(config conf.Config) []string {
	var errors []string

	if config.APIServer.Port <= 0 || config.APIServer.Port > 65535 {
		errors = append(errors, "server.port must be between 1 and 65535")
	}

	if config.DB.DSN == "" {
		errors = append(errors, "db.dsn cannot be empty")
	}

	if config.Log.Name == "" {
		errors = append(errors, "log.name cannot be empty")
	}

	if config.Auth.SecretKey == "" {
		errors = append(errors, "auth.secret_key cannot be empty")
	}

	if config.APIServer.CORS.Enabled && len(config.APIServer.CORS.AllowedOrigins) == 0 {
		errors = append(errors, "server.cors.allowed_origins cannot be empty when CORS is enabled")
	}

	return errors
}

func configGet() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: techstack config get <key>")
		fmt.Println("")
		fmt.Println("Available keys:")
		fmt.Println("  server.port    Server port number")
		fmt.Println("  server.name    Server name")
		fmt.Println("  db.dialect     Database dialect")
		fmt.Println("  db.dsn         Database DSN")
		os.Exit(1)
	}

	key := os.Args[3]

	config, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var value interface{}

	switch key {
	case "server.port":
		value = config.APIServer.Port
	case "server.name":
		value = config.APIServer.Name
	case "server.debug":
		value = config.APIServer.Debug
	case "db.dialect":
		value = config.DB.Dialect
	case "db.dsn":
		value = config.DB.DSN
	default:
		fmt.Fprintf(os.Stderr, "Unknown config key: %s\n", key)
		os.Exit(1)
	}

	fmt.Println(value)
}

func showHelp() {
	fmt.Println("Techstack API")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  techstack                    Start the server (default)")
	fmt.Println("  techstack config preview     Preview configuration")
	fmt.Println("  techstack config validate    Validate configuration")
	fmt.Println("  techstack config get <key>   Get a specific config value")
	fmt.Println("  techstack version            Show version")
	fmt.Println("  techstack help               Show this help message")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -f, --format FORMAT       Output format for config preview (yml, json)")
}

func showVersion() {
	fmt.Println(build.Version)
}
