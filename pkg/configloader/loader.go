// Package configloader loads upload properties from environment variables, YAML
// documents, or configuration files using Viper. Unset keys fall back to the
// library defaults; the resulting properties are always validated before being
// handed back.
package configloader

import (
	"bytes"
	"strings"

	"github.com/hyp3rd/ewrap"
	"github.com/spf13/viper"

	"github.com/hyp3rd/logrelay"
)

const defaultEnvPrefix = "LOGRELAY"

// rawProperties mirrors the configuration surface as read by Viper.
type rawProperties struct {
	MaxBlockSize     int   `mapstructure:"max_block_size"`
	UploadThreshold  int64 `mapstructure:"upload_threshold"`
	MaxStorageVolume int64 `mapstructure:"max_storage_volume"`
}

func allKeys() []string {
	return []string{
		"max_block_size",
		"upload_threshold",
		"max_storage_volume",
	}
}

// FromEnv loads upload properties sourced from environment variables using the
// provided prefix. Environment keys are normalized by uppercasing and replacing
// dots with underscores, e.g. LOGRELAY_MAX_BLOCK_SIZE.
func FromEnv(prefix string) (*logrelay.UploadProperties, error) {
	viperInstance := viper.New()

	err := bindEnvironment(viperInstance, normalizePrefix(prefix))
	if err != nil {
		return nil, err
	}

	raw, err := loadRawFromViper(viperInstance)
	if err != nil {
		return nil, err
	}

	return applyRaw(raw)
}

// FromYAML loads upload properties from a YAML document provided as bytes.
func FromYAML(data []byte) (*logrelay.UploadProperties, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigType("yaml")

	err := viperInstance.ReadConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ewrap.Wrap(err, "failed to read YAML configuration")
	}

	raw, err := loadRawFromViper(viperInstance)
	if err != nil {
		return nil, err
	}

	return applyRaw(raw)
}

// FromFile loads upload properties from a YAML file and merges environment
// overrides using the default prefix.
func FromFile(path string) (*logrelay.UploadProperties, error) {
	viperInstance := viper.New()

	err := bindEnvironment(viperInstance, defaultEnvPrefix)
	if err != nil {
		return nil, err
	}

	viperInstance.SetConfigFile(path)

	err = viperInstance.ReadInConfig()
	if err != nil {
		return nil, ewrap.Wrap(err, "failed to read configuration file").
			WithMetadata("path", path)
	}

	raw, err := loadRawFromViper(viperInstance)
	if err != nil {
		return nil, err
	}

	return applyRaw(raw)
}

func loadRawFromViper(viperInstance *viper.Viper) (rawProperties, error) {
	var raw rawProperties

	// Materialize bound environment values so Unmarshal sees them.
	for _, key := range allKeys() {
		if !viperInstance.IsSet(key) {
			continue
		}

		viperInstance.Set(key, viperInstance.Get(key))
	}

	err := viperInstance.Unmarshal(&raw)
	if err != nil {
		return rawProperties{}, ewrap.Wrap(err, "failed to decode upload properties")
	}

	return raw, nil
}

func bindEnvironment(viperInstance *viper.Viper, prefix string) error {
	replacer := strings.NewReplacer(".", "_")
	viperInstance.SetEnvKeyReplacer(replacer)

	if prefix != "" {
		viperInstance.SetEnvPrefix(prefix)
	}

	viperInstance.AutomaticEnv()

	for _, key := range allKeys() {
		err := viperInstance.BindEnv(key)
		if err != nil {
			return ewrap.Wrap(err, "failed to bind environment key").
				WithMetadata("key", key).
				WithMetadata("prefix", prefix)
		}
	}

	return nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return defaultEnvPrefix
	}

	prefix = strings.TrimSuffix(prefix, "_")
	prefix = strings.ReplaceAll(prefix, "-", "_")

	return strings.ToUpper(prefix)
}

// applyRaw fills unset keys with library defaults and validates the result.
func applyRaw(raw rawProperties) (*logrelay.UploadProperties, error) {
	props := logrelay.DefaultProperties()

	if raw.MaxBlockSize != 0 {
		props.MaxBlockSize = raw.MaxBlockSize
	}

	if raw.UploadThreshold != 0 {
		props.UploadThreshold = raw.UploadThreshold
	}

	if raw.MaxStorageVolume != 0 {
		props.MaxStorageVolume = raw.MaxStorageVolume
	}

	err := props.Validate()
	if err != nil {
		return nil, err
	}

	return &props, nil
}
