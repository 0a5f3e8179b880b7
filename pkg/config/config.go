package config

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/seek/config"
	ConfigFileName    = "seek.yml"
)

// ValidBlobDrivers is the list of content blob storage drivers
var ValidBlobDrivers = []string{"file", "s3"}

// SeekConfig holds all SEEK configuration settings
type SeekConfig struct {
	// SiteBaseHost is the public base URL of the site
	SiteBaseHost string `yaml:"site_base_host" json:"site_base_host"`

	// APIVersion is reported in the meta block of API responses
	APIVersion string `yaml:"api_version" json:"api_version"`

	SearchEnabled         bool `yaml:"search_enabled" json:"search_enabled"`
	ExternalSearchEnabled bool `yaml:"external_search_enabled" json:"external_search_enabled"`
	FacetedSearchEnabled  bool `yaml:"faceted_search_enabled" json:"faceted_search_enabled"`

	// SearchPageSize is the number of hits requested per type before the
	// dispatcher widens the page to the full hit count
	SearchPageSize int `yaml:"search_page_size" json:"search_page_size"`

	// SearchIndexURL is the Weaviate endpoint
	SearchIndexURL string `yaml:"search_index_url" json:"search_index_url"`

	ProgrammesEnabled          bool `yaml:"programmes_enabled" json:"programmes_enabled"`
	AllowUserProgrammeCreation bool `yaml:"allow_user_programme_creation" json:"allow_user_programme_creation"`

	// IsVirtualLiver relaxes the project requirement on nodes
	IsVirtualLiver bool `yaml:"is_virtualliver" json:"is_virtualliver"`

	PubmedAPIEmail   string `yaml:"pubmed_api_email" json:"pubmed_api_email"`
	CrossrefAPIEmail string `yaml:"crossref_api_email" json:"crossref_api_email"`

	BlobDriver  string `yaml:"blob_driver" json:"blob_driver"`
	BlobPath    string `yaml:"blob_path" json:"blob_path"`
	S3Bucket    string `yaml:"s3_bucket" json:"s3_bucket"`
	S3Region    string `yaml:"s3_region" json:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint" json:"s3_endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style" json:"s3_path_style"`

	// RedisURL enables the shared metadata cache when set
	RedisURL string `yaml:"redis_url" json:"redis_url"`

	// SessionTokenTTL is the lifetime of login tokens in seconds
	SessionTokenTTL int `yaml:"session_token_ttl" json:"session_token_ttl"`

	// SessionSecret signs login tokens. Only read from the environment.
	SessionSecret string `yaml:"-" json:"-"`

	RateLimitRPS   int `yaml:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst int `yaml:"rate_limit_burst" json:"rate_limit_burst"`

	// TrustedProxies is a list of CIDR ranges for trusted proxies
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	ReindexSchedule    string `yaml:"reindex_schedule" json:"reindex_schedule"`
	AuthLookupSchedule string `yaml:"auth_lookup_schedule" json:"auth_lookup_schedule"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors SeekConfig with pointers so that explicit false and
// zero values in the file are distinguishable from absent keys.
type fileConfig struct {
	SiteBaseHost               *string  `yaml:"site_base_host"`
	APIVersion                 *string  `yaml:"api_version"`
	SearchEnabled              *bool    `yaml:"search_enabled"`
	ExternalSearchEnabled      *bool    `yaml:"external_search_enabled"`
	FacetedSearchEnabled       *bool    `yaml:"faceted_search_enabled"`
	SearchPageSize             *int     `yaml:"search_page_size"`
	SearchIndexURL             *string  `yaml:"search_index_url"`
	ProgrammesEnabled          *bool    `yaml:"programmes_enabled"`
	AllowUserProgrammeCreation *bool    `yaml:"allow_user_programme_creation"`
	IsVirtualLiver             *bool    `yaml:"is_virtualliver"`
	PubmedAPIEmail             *string  `yaml:"pubmed_api_email"`
	CrossrefAPIEmail           *string  `yaml:"crossref_api_email"`
	BlobDriver                 *string  `yaml:"blob_driver"`
	BlobPath                   *string  `yaml:"blob_path"`
	S3Bucket                   *string  `yaml:"s3_bucket"`
	S3Region                   *string  `yaml:"s3_region"`
	S3Endpoint                 *string  `yaml:"s3_endpoint"`
	S3PathStyle                *bool    `yaml:"s3_path_style"`
	RedisURL                   *string  `yaml:"redis_url"`
	SessionTokenTTL            *int     `yaml:"session_token_ttl"`
	RateLimitRPS               *int     `yaml:"rate_limit_rps"`
	RateLimitBurst             *int     `yaml:"rate_limit_burst"`
	TrustedProxies             []string `yaml:"trusted_proxies"`
	ReindexSchedule            *string  `yaml:"reindex_schedule"`
	AuthLookupSchedule         *string  `yaml:"auth_lookup_schedule"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *SeekConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *SeekConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = NewDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Set replaces the global configuration. Used by tests and by callers that
// build a config programmatically.
func Set(cfg *SeekConfig) {
	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	Set(cfg)
	return nil
}

// NewDefault returns a config with default values
func NewDefault() *SeekConfig {
	cfg := &SeekConfig{
		SiteBaseHost:               "http://localhost:3000",
		APIVersion:                 "0.3",
		SearchEnabled:              true,
		ExternalSearchEnabled:      false,
		FacetedSearchEnabled:       false,
		SearchPageSize:             30,
		SearchIndexURL:             "http://localhost:8080",
		ProgrammesEnabled:          true,
		AllowUserProgrammeCreation: false,
		IsVirtualLiver:             false,
		BlobDriver:                 "file",
		BlobPath:                   "/var/lib/seek/filestore",
		S3Region:                   "us-east-1",
		SessionTokenTTL:            3600,
		RateLimitRPS:               20,
		RateLimitBurst:             40,
		TrustedProxies:             []string{},
		ReindexSchedule:            "@every 1m",
		AuthLookupSchedule:         "@every 30s",
		sources:                    make(map[string]string),
	}
	for _, name := range attributeNames() {
		cfg.sources[name] = "default"
	}
	return cfg
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*SeekConfig, error) {
	config := NewDefault()

	configPath := os.Getenv("SEEK_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"site_base_host", "api_version",
		"search_enabled", "external_search_enabled", "faceted_search_enabled",
		"search_page_size", "search_index_url",
		"programmes_enabled", "allow_user_programme_creation", "is_virtualliver",
		"pubmed_api_email", "crossref_api_email",
		"blob_driver", "blob_path", "s3_bucket", "s3_region", "s3_endpoint", "s3_path_style",
		"redis_url", "session_token_ttl", "session_secret",
		"rate_limit_rps", "rate_limit_burst", "trusted_proxies",
		"reindex_schedule", "auth_lookup_schedule",
	}
}

func (c *SeekConfig) applyFileConfig(file *fileConfig) {
	setString(&c.SiteBaseHost, file.SiteBaseHost, c.sources, "site_base_host")
	setString(&c.APIVersion, file.APIVersion, c.sources, "api_version")
	setBool(&c.SearchEnabled, file.SearchEnabled, c.sources, "search_enabled")
	setBool(&c.ExternalSearchEnabled, file.ExternalSearchEnabled, c.sources, "external_search_enabled")
	setBool(&c.FacetedSearchEnabled, file.FacetedSearchEnabled, c.sources, "faceted_search_enabled")
	setInt(&c.SearchPageSize, file.SearchPageSize, c.sources, "search_page_size")
	setString(&c.SearchIndexURL, file.SearchIndexURL, c.sources, "search_index_url")
	setBool(&c.ProgrammesEnabled, file.ProgrammesEnabled, c.sources, "programmes_enabled")
	setBool(&c.AllowUserProgrammeCreation, file.AllowUserProgrammeCreation, c.sources, "allow_user_programme_creation")
	setBool(&c.IsVirtualLiver, file.IsVirtualLiver, c.sources, "is_virtualliver")
	setString(&c.PubmedAPIEmail, file.PubmedAPIEmail, c.sources, "pubmed_api_email")
	setString(&c.CrossrefAPIEmail, file.CrossrefAPIEmail, c.sources, "crossref_api_email")
	setString(&c.BlobDriver, file.BlobDriver, c.sources, "blob_driver")
	setString(&c.BlobPath, file.BlobPath, c.sources, "blob_path")
	setString(&c.S3Bucket, file.S3Bucket, c.sources, "s3_bucket")
	setString(&c.S3Region, file.S3Region, c.sources, "s3_region")
	setString(&c.S3Endpoint, file.S3Endpoint, c.sources, "s3_endpoint")
	setBool(&c.S3PathStyle, file.S3PathStyle, c.sources, "s3_path_style")
	setString(&c.RedisURL, file.RedisURL, c.sources, "redis_url")
	setInt(&c.SessionTokenTTL, file.SessionTokenTTL, c.sources, "session_token_ttl")
	setInt(&c.RateLimitRPS, file.RateLimitRPS, c.sources, "rate_limit_rps")
	setInt(&c.RateLimitBurst, file.RateLimitBurst, c.sources, "rate_limit_burst")
	setString(&c.ReindexSchedule, file.ReindexSchedule, c.sources, "reindex_schedule")
	setString(&c.AuthLookupSchedule, file.AuthLookupSchedule, c.sources, "auth_lookup_schedule")
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
}

func (c *SeekConfig) applyEnvConfig() {
	envString(&c.SiteBaseHost, c.sources, "site_base_host")
	envString(&c.APIVersion, c.sources, "api_version")
	envBool(&c.SearchEnabled, c.sources, "search_enabled")
	envBool(&c.ExternalSearchEnabled, c.sources, "external_search_enabled")
	envBool(&c.FacetedSearchEnabled, c.sources, "faceted_search_enabled")
	envInt(&c.SearchPageSize, c.sources, "search_page_size")
	envString(&c.SearchIndexURL, c.sources, "search_index_url")
	envBool(&c.ProgrammesEnabled, c.sources, "programmes_enabled")
	envBool(&c.AllowUserProgrammeCreation, c.sources, "allow_user_programme_creation")
	envBool(&c.IsVirtualLiver, c.sources, "is_virtualliver")
	envString(&c.PubmedAPIEmail, c.sources, "pubmed_api_email")
	envString(&c.CrossrefAPIEmail, c.sources, "crossref_api_email")
	envString(&c.BlobDriver, c.sources, "blob_driver")
	envString(&c.BlobPath, c.sources, "blob_path")
	envString(&c.S3Bucket, c.sources, "s3_bucket")
	envString(&c.S3Region, c.sources, "s3_region")
	envString(&c.S3Endpoint, c.sources, "s3_endpoint")
	envBool(&c.S3PathStyle, c.sources, "s3_path_style")
	envString(&c.RedisURL, c.sources, "redis_url")
	envInt(&c.SessionTokenTTL, c.sources, "session_token_ttl")
	envString(&c.SessionSecret, c.sources, "session_secret")
	envInt(&c.RateLimitRPS, c.sources, "rate_limit_rps")
	envInt(&c.RateLimitBurst, c.sources, "rate_limit_burst")
	envString(&c.ReindexSchedule, c.sources, "reindex_schedule")
	envString(&c.AuthLookupSchedule, c.sources, "auth_lookup_schedule")
	if val := os.Getenv("SEEK_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
}

// EnvName returns the environment variable that overrides an attribute
func EnvName(attribute string) string {
	return "SEEK_" + strings.ToUpper(attribute)
}

func setString(dst *string, val *string, sources map[string]string, name string) {
	if val != nil {
		*dst = *val
		sources[name] = "file"
	}
}

func setBool(dst *bool, val *bool, sources map[string]string, name string) {
	if val != nil {
		*dst = *val
		sources[name] = "file"
	}
}

func setInt(dst *int, val *int, sources map[string]string, name string) {
	if val != nil {
		*dst = *val
		sources[name] = "file"
	}
}

func envString(dst *string, sources map[string]string, name string) {
	if val := os.Getenv(EnvName(name)); val != "" {
		*dst = val
		sources[name] = "environment"
	}
}

func envBool(dst *bool, sources map[string]string, name string) {
	if val := os.Getenv(EnvName(name)); val != "" {
		*dst = val == "true" || val == "1"
		sources[name] = "environment"
	}
}

func envInt(dst *int, sources map[string]string, name string) {
	if val := os.Getenv(EnvName(name)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
			sources[name] = "environment"
		}
	}
}

// ConfigFilePath returns the path to the config file
func (c *SeekConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *SeekConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// TokenTTL returns the session token TTL as a duration
func (c *SeekConfig) TokenTTL() time.Duration {
	return time.Duration(c.SessionTokenTTL) * time.Second
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *SeekConfig) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *SeekConfig) Validate() error {
	if _, err := url.ParseRequestURI(c.SiteBaseHost); err != nil {
		return fmt.Errorf("invalid site_base_host value: %s", c.SiteBaseHost)
	}

	if c.SearchPageSize <= 0 {
		return fmt.Errorf("search_page_size must be positive, got %d", c.SearchPageSize)
	}

	validDriver := false
	for _, d := range ValidBlobDrivers {
		if c.BlobDriver == d {
			validDriver = true
		}
	}
	if !validDriver {
		return fmt.Errorf("invalid blob_driver: %s", c.BlobDriver)
	}
	if c.BlobDriver == "s3" && c.S3Bucket == "" {
		return fmt.Errorf("s3_bucket is required when blob_driver is s3")
	}

	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *SeekConfig) Attributes() []Attribute {
	secret := ""
	if c.SessionSecret != "" {
		secret = "(hidden)"
	}
	return []Attribute{
		{Name: "site_base_host", Value: c.SiteBaseHost, Source: c.Source("site_base_host")},
		{Name: "api_version", Value: c.APIVersion, Source: c.Source("api_version")},
		{Name: "search_enabled", Value: strconv.FormatBool(c.SearchEnabled), Source: c.Source("search_enabled")},
		{Name: "external_search_enabled", Value: strconv.FormatBool(c.ExternalSearchEnabled), Source: c.Source("external_search_enabled")},
		{Name: "faceted_search_enabled", Value: strconv.FormatBool(c.FacetedSearchEnabled), Source: c.Source("faceted_search_enabled")},
		{Name: "search_page_size", Value: strconv.Itoa(c.SearchPageSize), Source: c.Source("search_page_size")},
		{Name: "search_index_url", Value: c.SearchIndexURL, Source: c.Source("search_index_url")},
		{Name: "programmes_enabled", Value: strconv.FormatBool(c.ProgrammesEnabled), Source: c.Source("programmes_enabled")},
		{Name: "allow_user_programme_creation", Value: strconv.FormatBool(c.AllowUserProgrammeCreation), Source: c.Source("allow_user_programme_creation")},
		{Name: "is_virtualliver", Value: strconv.FormatBool(c.IsVirtualLiver), Source: c.Source("is_virtualliver")},
		{Name: "pubmed_api_email", Value: c.PubmedAPIEmail, Source: c.Source("pubmed_api_email")},
		{Name: "crossref_api_email", Value: c.CrossrefAPIEmail, Source: c.Source("crossref_api_email")},
		{Name: "blob_driver", Value: c.BlobDriver, Source: c.Source("blob_driver")},
		{Name: "blob_path", Value: c.BlobPath, Source: c.Source("blob_path")},
		{Name: "s3_bucket", Value: c.S3Bucket, Source: c.Source("s3_bucket")},
		{Name: "s3_region", Value: c.S3Region, Source: c.Source("s3_region")},
		{Name: "s3_endpoint", Value: c.S3Endpoint, Source: c.Source("s3_endpoint")},
		{Name: "s3_path_style", Value: strconv.FormatBool(c.S3PathStyle), Source: c.Source("s3_path_style")},
		{Name: "redis_url", Value: c.RedisURL, Source: c.Source("redis_url")},
		{Name: "session_token_ttl", Value: strconv.Itoa(c.SessionTokenTTL), Source: c.Source("session_token_ttl")},
		{Name: "session_secret", Value: secret, Source: c.Source("session_secret")},
		{Name: "rate_limit_rps", Value: strconv.Itoa(c.RateLimitRPS), Source: c.Source("rate_limit_rps")},
		{Name: "rate_limit_burst", Value: strconv.Itoa(c.RateLimitBurst), Source: c.Source("rate_limit_burst")},
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "reindex_schedule", Value: c.ReindexSchedule, Source: c.Source("reindex_schedule")},
		{Name: "auth_lookup_schedule", Value: c.AuthLookupSchedule, Source: c.Source("auth_lookup_schedule")},
	}
}

// FormatText returns a text representation of the configuration
func (c *SeekConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-32s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-32s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-32s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *SeekConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
