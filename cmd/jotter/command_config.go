package main

import (
	"encoding/json"
	"errors"
	"flag"
	"io"
	"strings"

	"jotter/internal/app"
	"jotter/internal/config"

	toml "github.com/pelletier/go-toml/v2"
)

type ConfigCommand struct {
	stdout io.Writer
	stderr io.Writer
}

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"

	configScopeCore        = "core"
	configScopeUI          = "ui"
	configScopeKeybindings = "keybindings"
)

type configOutput struct {
	CoreConfigPath string                  `json:"core_config_path,omitempty" toml:"core_config_path,omitempty"`
	UIConfigPath   string                  `json:"ui_config_path,omitempty" toml:"ui_config_path,omitempty"`
	Daemon         *effectiveDaemonConfig  `json:"daemon,omitempty" toml:"daemon,omitempty"`
	Auth           *effectiveAuthConfig    `json:"auth,omitempty" toml:"auth,omitempty"`
	Logging        *effectiveLoggingConfig `json:"logging,omitempty" toml:"logging,omitempty"`
	UI             *effectiveUIConfig      `json:"ui,omitempty" toml:"ui,omitempty"`
	Keybindings    map[string]string       `json:"keybindings,omitempty" toml:"keybindings,omitempty"`
}

type coreConfigOutput struct {
	Daemon  effectiveDaemonConfig  `json:"daemon" toml:"daemon"`
	Auth    effectiveAuthConfig    `json:"auth" toml:"auth"`
	Logging effectiveLoggingConfig `json:"logging" toml:"logging"`
}

type effectiveDaemonConfig struct {
	Address        string   `json:"address" toml:"address"`
	BaseURL        string   `json:"base_url" toml:"base_url"`
	Storage        string   `json:"storage" toml:"storage"`
	CORSOrigins    []string `json:"cors_origins,omitempty" toml:"cors_origins,omitempty"`
	TrustedProxies []string `json:"trusted_proxies,omitempty" toml:"trusted_proxies,omitempty"`
}

type effectiveAuthConfig struct {
	SessionTTL         string `json:"session_ttl" toml:"session_ttl"`
	RateLimitPerMinute int    `json:"rate_limit_per_minute" toml:"rate_limit_per_minute"`
}

type effectiveLoggingConfig struct {
	Level string `json:"level" toml:"level"`
}

type effectiveUIConfig struct {
	CellWidthPx    int    `json:"cell_width_px" toml:"cell_width_px"`
	ConfirmDelete  bool   `json:"confirm_delete" toml:"confirm_delete"`
	SearchDebounce string `json:"search_debounce" toml:"search_debounce"`
	AutosaveQuiet  string `json:"autosave_quiet" toml:"autosave_quiet"`
}

func NewConfigCommand(stdout, stderr io.Writer) *ConfigCommand {
	return &ConfigCommand{
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	defaults := fs.Bool("default", false, "print default config values")
	format := fs.String("format", configFormatJSON, "output format: json|toml")
	var scopes stringList
	fs.Var(&scopes, "scope", "scope to print: core|ui|keybindings|all (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolvedFormat, err := resolveConfigFormat(*format)
	if err != nil {
		return err
	}
	resolvedScopes, err := resolveConfigScopes(scopes)
	if err != nil {
		return err
	}
	payload, err := c.buildOutput(*defaults, resolvedScopes)
	if err != nil {
		return err
	}
	return writeConfigOutput(c.stdout, resolvedFormat, projectedConfigPayload(payload, resolvedScopes))
}

func (c *ConfigCommand) buildOutput(defaults bool, scopes map[string]struct{}) (configOutput, error) {
	out := configOutput{}

	includeCore := scopeSelected(scopes, configScopeCore)
	includeUI := scopeSelected(scopes, configScopeUI)
	includeKeybindings := scopeSelected(scopes, configScopeKeybindings)

	if includeUI || includeKeybindings {
		uiPath, err := config.UIConfigPath()
		if err != nil {
			return configOutput{}, err
		}
		uiCfg := config.DefaultUIConfig()
		if !defaults {
			uiCfg, err = config.LoadUIConfig()
			if err != nil {
				return configOutput{}, err
			}
		}
		if includeUI {
			out.UIConfigPath = uiPath
			out.UI = &effectiveUIConfig{
				CellWidthPx:    uiCfg.CellWidth(),
				ConfirmDelete:  uiCfg.ShouldConfirmDelete(),
				SearchDebounce: uiCfg.SearchDebounceInterval().String(),
				AutosaveQuiet:  uiCfg.AutosaveQuietPeriod().String(),
			}
		}
		if includeKeybindings {
			bindings := app.DefaultKeybindings()
			if !defaults {
				bindings = app.NewKeybindings(uiCfg.Keybindings)
			}
			out.Keybindings = bindings.Bindings()
		}
	}

	if includeCore {
		corePath, err := config.CoreConfigPath()
		if err != nil {
			return configOutput{}, err
		}
		coreCfg := config.DefaultCoreConfig()
		if !defaults {
			coreCfg, err = config.LoadCoreConfig()
			if err != nil {
				return configOutput{}, err
			}
		}
		out.CoreConfigPath = corePath
		out.Daemon = &effectiveDaemonConfig{
			Address:        coreCfg.DaemonAddress(),
			BaseURL:        coreCfg.DaemonBaseURL(),
			Storage:        coreCfg.StorageBackend(),
			CORSOrigins:    coreCfg.CORSOrigins(),
			TrustedProxies: coreCfg.TrustedProxies(),
		}
		out.Auth = &effectiveAuthConfig{
			SessionTTL:         coreCfg.SessionTTL().String(),
			RateLimitPerMinute: coreCfg.AuthRatePerMinute(),
		}
		out.Logging = &effectiveLoggingConfig{
			Level: coreCfg.LogLevel(),
		}
	}

	return out, nil
}

func writeConfigOutput(out io.Writer, format string, payload any) error {
	switch format {
	case configFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case configFormatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		_, err = out.Write(data)
		return err
	default:
		return errors.New("unsupported format")
	}
}

func projectedConfigPayload(payload configOutput, scopes map[string]struct{}) any {
	if len(scopes) != 1 {
		return payload
	}
	if scopeSelected(scopes, configScopeKeybindings) {
		if payload.Keybindings == nil {
			return map[string]string{}
		}
		return payload.Keybindings
	}
	if scopeSelected(scopes, configScopeUI) {
		if payload.UI == nil {
			return effectiveUIConfig{}
		}
		return *payload.UI
	}
	if scopeSelected(scopes, configScopeCore) {
		out := coreConfigOutput{
			Logging: effectiveLoggingConfig{
				Level: "info",
			},
		}
		if payload.Daemon != nil {
			out.Daemon = *payload.Daemon
		}
		if payload.Auth != nil {
			out.Auth = *payload.Auth
		}
		if payload.Logging != nil {
			out.Logging = *payload.Logging
		}
		return out
	}
	return payload
}

func resolveConfigFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", configFormatJSON:
		return configFormatJSON, nil
	case configFormatTOML:
		return configFormatTOML, nil
	default:
		return "", errors.New("invalid format: must be json or toml")
	}
}

func resolveConfigScopes(values []string) (map[string]struct{}, error) {
	if len(values) == 0 {
		return map[string]struct{}{
			configScopeCore:        {},
			configScopeUI:          {},
			configScopeKeybindings: {},
		}, nil
	}
	out := map[string]struct{}{}
	for _, raw := range values {
		parts := strings.Split(raw, ",")
		for _, part := range parts {
			scope, err := normalizeConfigScope(part)
			if err != nil {
				return nil, err
			}
			if scope == "all" {
				return map[string]struct{}{
					configScopeCore:        {},
					configScopeUI:          {},
					configScopeKeybindings: {},
				}, nil
			}
			out[scope] = struct{}{}
		}
	}
	return out, nil
}

func normalizeConfigScope(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "all":
		return "all", nil
	case configScopeCore, "daemon":
		return configScopeCore, nil
	case configScopeUI:
		return configScopeUI, nil
	case configScopeKeybindings, "keys":
		return configScopeKeybindings, nil
	default:
		return "", errors.New("invalid scope: must be core, ui, keybindings, or all")
	}
}

func scopeSelected(scopes map[string]struct{}, scope string) bool {
	_, ok := scopes[scope]
	return ok
}
