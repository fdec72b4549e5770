// Package config handles project discovery and configuration.
//
// Settings are layered with viper: command-line flags override KUBEGEN_*
// environment variables, which override kubegen.yaml, which overrides the
// built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	kgerrors "github.com/cameronsjo/kubegen/internal/errors"
)

// FileName is the config file looked up when --config is not given.
const FileName = "kubegen.yaml"

// EnvPrefix prefixes every environment override (KUBEGEN_TEMPLATES_DIR, ...).
const EnvPrefix = "KUBEGEN"

// Keys understood in kubegen.yaml, the environment and flags.
const (
	KeyTemplatesDir     = "templates_dir"
	KeyVersionsDir      = "versions_dir"
	KeyLogLevel         = "log_level"
	KeyKubectlBinary    = "kubectl.binary"
	KeyKubectlNamespace = "kubectl.namespace"
	KeyKubectlContext   = "kubectl.context"
	KeyKubectlArgs      = "kubectl.args"
	KeyKubectlTimeout   = "kubectl.timeout"
)

// flagKeys maps persistent flag names onto config keys.
var flagKeys = map[string]string{
	"templates-dir": KeyTemplatesDir,
	"versions-dir":  KeyVersionsDir,
	"log-level":     KeyLogLevel,
	"kubectl":       KeyKubectlBinary,
	"namespace":     KeyKubectlNamespace,
	"context":       KeyKubectlContext,
	"kubectl-args":  KeyKubectlArgs,
	"timeout":       KeyKubectlTimeout,
}

// Config holds the kubegen project configuration.
type Config struct {
	// Root is the directory relative paths are resolved against: the
	// directory holding the config file, or the working directory.
	Root string

	// File is the config file that was read, empty if none.
	File string

	// TemplatesDir holds the templates managed by `kubegen versions`.
	TemplatesDir string

	// VersionsDir holds one subdirectory per saved version plus index.json.
	VersionsDir string

	// LogLevel is the diagnostic log level.
	LogLevel string

	Kubectl Kubectl
}

// Kubectl configures how the cluster CLI is invoked.
type Kubectl struct {
	// Binary is the kubectl executable name or path.
	Binary string

	// Namespace is passed as --namespace when set.
	Namespace string

	// Context is passed as --context when set.
	Context string

	// Args are extra arguments, shell-quoted, added to every call.
	Args string

	// Timeout bounds each call; zero means no timeout.
	Timeout time.Duration
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyTemplatesDir, "templates")
	v.SetDefault(KeyVersionsDir, "templates_versions")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyKubectlBinary, "kubectl")
	v.SetDefault(KeyKubectlNamespace, "")
	v.SetDefault(KeyKubectlContext, "")
	v.SetDefault(KeyKubectlArgs, "")
	v.SetDefault(KeyKubectlTimeout, time.Duration(0))
}

// FindRoot searches upward from dir for a directory containing kubegen.yaml.
func FindRoot(dir string) (string, error) {
	for {
		if info, err := os.Stat(filepath.Join(dir, FileName)); err == nil && !info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("project root not found (no %s)", FileName)
}

// Load builds the configuration. configFile may be empty, in which case
// kubegen.yaml is searched for upward from the working directory and its
// absence is not an error. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	root := wd
	if configFile == "" {
		if found, err := FindRoot(wd); err == nil {
			configFile = filepath.Join(found, FileName)
		}
	} else if _, err := os.Stat(configFile); err != nil {
		return nil, kgerrors.Wrap(kgerrors.KindNotFound, err, "config file %s", configFile)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil, kgerrors.Wrap(kgerrors.KindNotFound, err, "config file %s", configFile)
			}
			return nil, kgerrors.Wrap(kgerrors.KindParse, err, "parse config file %s", configFile)
		}
		abs, err := filepath.Abs(configFile)
		if err != nil {
			return nil, fmt.Errorf("resolve config file: %w", err)
		}
		configFile = abs
		root = filepath.Dir(abs)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Root:         root,
		File:         configFile,
		TemplatesDir: resolve(root, v.GetString(KeyTemplatesDir)),
		VersionsDir:  resolve(root, v.GetString(KeyVersionsDir)),
		LogLevel:     v.GetString(KeyLogLevel),
		Kubectl: Kubectl{
			Binary:    v.GetString(KeyKubectlBinary),
			Namespace: v.GetString(KeyKubectlNamespace),
			Context:   v.GetString(KeyKubectlContext),
			Args:      v.GetString(KeyKubectlArgs),
			Timeout:   v.GetDuration(KeyKubectlTimeout),
		},
	}

	if cfg.Kubectl.Timeout < 0 {
		return nil, kgerrors.New(kgerrors.KindValidation, "kubectl timeout must not be negative, got %s", cfg.Kubectl.Timeout)
	}

	return cfg, nil
}

// resolve makes path absolute relative to root.
func resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
