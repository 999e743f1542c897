//go:build linux

package main

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rwolafka/nfs-ganesha/config"
	fsalerrors "github.com/rwolafka/nfs-ganesha/errors"
	"github.com/rwolafka/nfs-ganesha/export"
	"github.com/rwolafka/nfs-ganesha/fsal"
	"github.com/rwolafka/nfs-ganesha/handle"
	"github.com/rwolafka/nfs-ganesha/object"
)

var cfgFile string
var printConfig bool

var rootCmd = &cobra.Command{
	Use:   "fsal-exportd",
	Short: "Bootstrap an export and exercise its operation suite as a smoke check.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Decode()
		if err != nil {
			return fmt.Errorf("decoding config: %w", err)
		}
		initLogOutput(cfg.Logging)
		if printConfig {
			rendered, err := cfg.YAML()
			if err != nil {
				return fmt.Errorf("rendering resolved config: %w", err)
			}
			fmt.Print(rendered)
			return nil
		}
		if cfg.RootPath == "" {
			return fmt.Errorf("root-path is required")
		}
		return runSmokeCheck(cfg)
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML export config file.")
	rootCmd.PersistentFlags().BoolVar(&printConfig, "print-config", false, "Print the resolved config as YAML and exit, without bootstrapping the export.")
	if err := config.BindFlags(rootCmd.PersistentFlags()); err != nil {
		log.Fatalf("fsal-exportd: binding flags: %v", err)
	}
}

func initConfig() {
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("fsal-exportd: reading config file %s: %v", cfgFile, err)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initLogOutput routes the standard logger through a rotating file sink
// when logging.file-path is set, leaving it on stderr otherwise.
func initLogOutput(cfg config.LogConfig) {
	if cfg.FilePath == "" {
		return
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
}

// instanceTag identifies one export instance in this process's log lines,
// so concurrent exports started in the same process stay distinguishable.
var instanceTag = uuid.New().String()

func runSmokeCheck(cfg config.Config) error {
	result, err := fsal.BootstrapRoot(cfg.RootPath)
	if err != nil {
		return fmt.Errorf("bootstrapping export root %s: %w", cfg.RootPath, err)
	}

	caps := capabilitiesFromConfig(cfg.Capabilities)
	exp := export.New(result.RootDirFD, uint32(cfg.Umask), object.AttrAll, caps...)
	root := object.New(result.Handle, result.Kind, result.Attrs, exp)
	core := fsal.NewCore(exp)

	log.Printf("fsal-exportd[%s]: export %s bootstrapped, root kind=%s", instanceTag, cfg.RootPath, root.Kind())

	smokeName := fmt.Sprintf(".fsal-exportd-smoke-%s", instanceTag[:8])
	attrs := object.Attributes{
		Mask: object.AttrMode | object.AttrUID | object.AttrGID,
		Mode: 0755,
		UID:  uint32(cfg.UID),
		GID:  uint32(cfg.GID),
	}

	child, err := core.Mkdir(root, smokeName, attrs)
	if err != nil {
		return fmt.Errorf("mkdir %s: %w", smokeName, err)
	}
	log.Printf("fsal-exportd[%s]: created %s", instanceTag, smokeName)

	looked, err := core.Lookup(root, smokeName)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", smokeName, err)
	}
	if !core.Compare(child, looked) {
		return fmt.Errorf("lookup %s did not resolve to the just-created directory", smokeName)
	}

	var seen []string
	_, err = core.Readdir(root, 1024, nil, func(name string, dtype uint8, parent handle.Blob, cookie []byte) (bool, error) {
		seen = append(seen, name)
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("readdir export root: %w", err)
	}
	log.Printf("fsal-exportd[%s]: root directory has %d entries", instanceTag, len(seen))

	core.Acquire(looked)
	if err := core.Release(looked); !fsalerrors.Is(err, fsalerrors.Busy) {
		return fmt.Errorf("release of acquired looked-up child: want BUSY, got %v", err)
	}
	if err := core.Release(looked); err != nil {
		return fmt.Errorf("release looked-up child: %w", err)
	}
	if err := core.Release(child); err != nil {
		return fmt.Errorf("release created child: %w", err)
	}

	if err := core.Unlink(root, smokeName); err != nil {
		return fmt.Errorf("unlink %s: %w", smokeName, err)
	}

	log.Printf("fsal-exportd[%s]: smoke check passed", instanceTag)
	return nil
}

func capabilitiesFromConfig(c config.CapabilityConfig) []export.Capability {
	var caps []export.Capability
	if c.LinkSupport {
		caps = append(caps, export.CapLink)
	}
	if c.SymlinkSupport {
		caps = append(caps, export.CapSymlink)
	}
	if c.ChownRestricted {
		caps = append(caps, export.CapChownRestricted)
	}
	return caps
}
