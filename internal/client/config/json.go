package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// slice fields distinguish "absent" from "empty" so a partial file only
// overrides what it names.
type JsonConfig struct {
	APIBaseURL         *string         `json:"api_url"`
	UsersAPIPaths      []string        `json:"users_api_paths"`
	DeleteFallbackPath *string         `json:"delete_fallback_path"`
	AuthURL            *string         `json:"auth_url"`
	AuthAPIKey         *string         `json:"auth_api_key"`
	RedirectBaseURL    *string         `json:"redirect_url"`
	AdminEmails        []string        `json:"admin_emails"`
	DataDir            *string         `json:"data_dir"`
	DBFile             *string         `json:"db_file"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	LogLevel           *string         `json:"log_level"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config.
// Without such a flag nothing happens. Read or decode errors panic; the
// caller decides whether to recover.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.JsonConfigFlags(args)
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.DeleteFallbackPath, jc.DeleteFallbackPath)
	setString(&cfg.AuthURL, jc.AuthURL)
	setString(&cfg.AuthAPIKey, jc.AuthAPIKey)
	setString(&cfg.RedirectBaseURL, jc.RedirectBaseURL)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.DBFile, jc.DBFile)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.UsersAPIPaths != nil {
		cfg.UsersAPIPaths = jc.UsersAPIPaths
	}
	if jc.AdminEmails != nil {
		cfg.AdminEmails = jc.AdminEmails
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
