package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/logging"
	"github.com/arthur-debert/dotmod/pkg/paths"
)

// EnvPrefix prefixes environment overrides: DOTMOD_FETCH_TIMEOUT sets
// fetch.timeout
const EnvPrefix = "DOTMOD_"

// Load reads the configuration in increasing precedence: built-in
// defaults, <config>/dotmod.toml, every file in <config>/modules.d in
// lexical order, DOTMOD_* environment variables, then overrides (dotted
// keys, typically from command line flags).
func Load(p paths.Paths, overrides map[string]interface{}) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load built-in defaults")
	}

	// 2. Main config file
	if _, err := os.Stat(p.ConfigFile()); err == nil {
		if err := k.Load(file.Provider(p.ConfigFile()), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load %s", p.ConfigFile()).
				WithDetail("file", p.ConfigFile())
		}
		logger.Debug().Str("file", p.ConfigFile()).Msg("loaded config file")
	}

	// 3. Registry fragments
	fragments, err := fragmentFiles(p.ModulesDir())
	if err != nil {
		return nil, err
	}
	for _, path := range fragments {
		parser := koanf.Parser(toml.Parser())
		if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
			parser = yaml.Parser()
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load %s", path).
				WithDetail("file", path)
		}
		logger.Debug().Str("file", path).Msg("loaded registry fragment")
	}

	// 4. Environment
	err = k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment variables")
	}

	// 5. Overrides
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	return decode(k)
}

// fragmentFiles lists the TOML and YAML files of dir in lexical order
func fragmentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read %s", dir)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".toml", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func settingsConf(result interface{}) koanf.UnmarshalConf {
	return koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           result,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
}

func decode(k *koanf.Koanf) (*Config, error) {
	cfg := &Config{
		Sources: make(map[string]SourceConfig),
		Modules: make(map[string]ModuleConfig),
		Invalid: make(map[string]error),
	}

	if err := k.UnmarshalWithConf("fetch", &cfg.Fetch, settingsConf(&cfg.Fetch)); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfiguration, "invalid [fetch] settings")
	}
	if err := k.UnmarshalWithConf("log", &cfg.Log, settingsConf(&cfg.Log)); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfiguration, "invalid [log] settings")
	}

	for name, raw := range tables(k, "sources") {
		var sc SourceConfig
		if err := strictDecode(raw, &sc); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfiguration, "source %q is malformed", name).
				WithDetail("source", name)
		}
		cfg.Sources[name] = sc
	}

	for name, raw := range tables(k, "modules") {
		var mc ModuleConfig
		if err := strictDecode(raw, &mc); err != nil {
			cfg.Invalid[name] = err
			continue
		}
		cfg.Modules[name] = mc
	}
	return cfg, nil
}

// tables returns the sub-tables under key, keyed by name. A non-table
// value is passed through so decoding reports it.
func tables(k *koanf.Koanf, key string) map[string]interface{} {
	raw, ok := k.Get(key).(map[string]interface{})
	if !ok {
		return nil
	}
	return raw
}

// strictDecode rejects unknown keys so typos in definitions surface
func strictDecode(input interface{}, result interface{}) error {
	if _, ok := input.(map[string]interface{}); !ok {
		return fmt.Errorf("expected a table, got %T", input)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           result,
		TagName:          "koanf",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
