// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package packagerconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"hastepack.dev/x/packager/pkg/coremodules"
	"hastepack.dev/x/packager/pkg/manifest"
	"hastepack.dev/x/packager/pkg/utils"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

var ErrInvalidConfig = errors.New("invalid hpk config")

type Config struct {
	HomePath   string `yaml:"-"`
	CachePath  string `yaml:"-"`
	ProjectDir string `yaml:"-"`

	// Roots default to the project directory. Relative paths are relative to it.
	Roots      []string `yaml:"roots,omitempty"`
	AssetRoots []string `yaml:"asset-roots,omitempty"`
	AssetExts  []string `yaml:"asset-exts,omitempty"`
	Platforms  []string `yaml:"platforms,omitempty"`
	// Blacklist is a regular expression matched against slash separated paths
	Blacklist        string            `yaml:"blacklist,omitempty"`
	Polyfills        []string          `yaml:"polyfills,omitempty"`
	ExtraNodeModules map[string]string `yaml:"extra-node-modules,omitempty"`
	ExternalModules  []string          `yaml:"external-modules,omitempty"`

	// Manifest is the path of the manifest reference. Unset disables namespace qualification.
	Manifest string `yaml:"manifest,omitempty"`
	// CoreModules is the path of the core modules list. Unset means discovery.
	CoreModules string `yaml:"core-modules,omitempty"`
	// AppName defaults to the name in the project's package.json
	AppName           string `yaml:"app-name,omitempty"`
	DefineFn          string `yaml:"define-fn,omitempty"`
	TransformCacheKey string `yaml:"transform-cache-key,omitempty"`

	Platform   string `yaml:"platform,omitempty"`
	ResetCache bool   `yaml:"reset-cache,omitempty"`
	Watch      bool   `yaml:"watch,omitempty"`
}

// Get loads the config of the project in projectDir
func Get(projectDir string) (*Config, error) {
	homePath, err := getHomePath()
	if err != nil {
		return nil, err
	}
	return GetWithCustomHome(projectDir, homePath)
}

func GetWithCustomHome(projectDir, homePath string) (*Config, error) {
	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, err
	}
	config := Config{}

	// hpk.yaml is optional
	configFilePath := filepath.Join(projectDir, ConfigFileName)
	fileInfo, err := os.Stat(configFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		if fileInfo.IsDir() {
			return nil, fmt.Errorf("%q is directory and not a file", configFilePath)
		}

		bytes, err := os.ReadFile(configFilePath)
		if err != nil {
			return nil, err
		}

		if err := yaml.UnmarshalWithOptions(bytes, &config, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidConfig, configFilePath, err)
		}
	}

	if platform, ok := os.LookupEnv(PlatformEnvVar); ok {
		config.Platform = platform
	}

	if manifestPath, ok := os.LookupEnv(ManifestEnvVar); ok {
		config.Manifest = manifestPath
	}

	resetCache, ok, err := utils.BoolEnvVar(ResetCacheEnvVar)
	if err != nil {
		return nil, err
	}
	if ok {
		config.ResetCache = resetCache
	}

	if polyfills, ok := utils.ListEnvVar(PolyfillsEnvVar); ok {
		config.Polyfills = append(config.Polyfills, polyfills...)
	}

	if len(config.Roots) == 0 {
		config.Roots = []string{"."}
	}
	if len(config.AssetExts) == 0 {
		config.AssetExts = DefaultAssetExts
	}

	resolve := func(p string, _ int) string { return utils.ResolvePath(projectDir, p) }
	config.Roots = lo.Map(config.Roots, resolve)
	config.AssetRoots = lo.Map(config.AssetRoots, resolve)
	config.Polyfills = lo.Map(config.Polyfills, resolve)
	config.ExtraNodeModules = lo.MapValues(config.ExtraNodeModules, func(p string, _ string) string {
		return utils.ResolvePath(projectDir, p)
	})
	if config.Manifest != "" {
		config.Manifest = utils.ResolvePath(projectDir, config.Manifest)
	}
	if config.CoreModules != "" {
		config.CoreModules = utils.ResolvePath(projectDir, config.CoreModules)
	}

	config.ProjectDir = projectDir
	config.HomePath = homePath
	config.CachePath = filepath.Join(homePath, cacheDirName)
	return &config, nil
}

func (c *Config) EnsureDirs() error {
	return utils.EnsureDirs(c.HomePath, c.CachePath)
}

func (c *Config) BlacklistRegexp() (*regexp.Regexp, error) {
	if c.Blacklist == "" {
		return nil, nil
	}
	re, err := regexp.Compile(c.Blacklist)
	if err != nil {
		return nil, fmt.Errorf("%w: blacklist: %w", ErrInvalidConfig, err)
	}
	return re, nil
}

// ReadManifest returns nil when no manifest is configured
func (c *Config) ReadManifest() (*manifest.Manifest, error) {
	if c.Manifest == "" {
		return nil, nil
	}
	return manifest.Read(c.Manifest)
}

func (c *Config) ReadCoreModules() (*coremodules.List, error) {
	if c.CoreModules == "" {
		return coremodules.Discover(c.ProjectDir)
	}
	return coremodules.Read(c.CoreModules)
}

func (c *Config) ExternalModulesAllowList() map[string]bool {
	return lo.SliceToMap(c.ExternalModules, func(name string) (string, bool) {
		return name, true
	})
}

// ResolveAppName returns the configured app name, or the name in the project's package.json
func (c *Config) ResolveAppName() (string, error) {
	if c.AppName != "" {
		return c.AppName, nil
	}
	return ReadAppName(c.ProjectDir)
}

// ReadAppName reads the package name from dir/package.json. A missing file yields an empty name.
func ReadAppName(dir string) (string, error) {
	bytes, err := os.ReadFile(filepath.Join(dir, PackageJSONName))
	if os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", err
	}
	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(bytes, &pkg); err != nil {
		return "", fmt.Errorf("invalid %s in %q: %w", PackageJSONName, dir, err)
	}
	return pkg.Name, nil
}

func getHomePath() (string, error) {
	if v, ok := os.LookupEnv(HomeEnvVar); ok {
		return v, nil
	}

	return getAppUserDataDirectory(appDirName)
}

func getAppUserDataDirectory(appName string) (string, error) {
	switch runtime.GOOS {
	case "windows":
		dir, ok := os.LookupEnv("APPDATA")
		if !ok {
			return "", fmt.Errorf("APPDATA environment variable is not set")
		}
		return filepath.Join(dir, appName), nil
	default:
		dir, ok := os.LookupEnv("HOME")
		if !ok {
			return "", fmt.Errorf("HOME environment variable is not set")
		}
		return filepath.Join(dir, "."+appName), nil
	}
}
