package sync

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/config"
)

// Config is the full, immutable run configuration. It is constructed
// once at process start and passed explicitly into each component.
type Config struct {
	API APISettings

	// Stages maps an RD pipeline stage id to the destination status label.
	// It drives both which deals are fetched and what status they carry.
	Stages map[string]string

	// Fields maps an RD custom field id to its destination property.
	Fields map[string]FieldMapping

	// Containers is the ordered list of field names under which the deals
	// API may expose the custom field list.
	Containers []string

	// Properties names the always-present destination properties.
	Properties PropertyNames

	// StatusType is "select" or "multi_select" depending on which
	// generation of the destination database is in use.
	StatusType string

	Phone PhoneSettings

	// MultiSelectCompare is "joined" or "first", see MultiSelectMode.
	MultiSelectCompare string

	Notify NotifySettings
}

type APISettings struct {
	Keys struct {
		Notion           string
		RDStation        string
		BotConversa      string
		DriveCredentials string
		DriveToken       string
	}
	Ids struct {
		NotionDatabase         string
		BotConversaSubscribers string
		DriveFolder            string
	}
	Endpoints struct {
		Notion      string
		RDStation   string
		BotConversa string
	}
}

// FieldMapping declares the destination property for one RD custom field.
type FieldMapping struct {
	Name string
	Type string
}

// PropertyNames holds the destination property names the pipeline always
// writes.
type PropertyNames struct {
	Name       string
	ExternalID string
	Phone      string
	Status     string
}

type PhoneSettings struct {
	Strategy      string
	Country       string
	FallbackField string
}

type NotifySettings struct {
	DelaySeconds int
}

// LoadConfig reads layered YAML sources (later sources override earlier
// ones) with ${ENV_VAR} expansion for secrets, then applies defaults.
func LoadConfig(sources ...io.Reader) (Config, error) {
	var result Config
	var options []config.YAMLOption
	for _, s := range sources {
		options = append(options, config.Source(s))
	}
	options = append(options, config.Expand(os.LookupEnv))
	yaml, err := config.NewYAML(options...)
	if err != nil {
		return result, fmt.Errorf("failed to read yaml config %w", err)
	}

	readError := func(key string, cause error) error {
		return fmt.Errorf("failed to read '%s' from yaml config %w", key, cause)
	}

	key := "api"
	if err = yaml.Get(key).Populate(&result.API); err != nil {
		return result, readError(key, err)
	}
	key = "stages"
	if err = yaml.Get(key).Populate(&result.Stages); err != nil {
		return result, readError(key, err)
	}
	key = "fields"
	if yaml.Get(key).HasValue() {
		if err = yaml.Get(key).Populate(&result.Fields); err != nil {
			return result, readError(key, err)
		}
	}
	key = "containers"
	if yaml.Get(key).HasValue() {
		if err = yaml.Get(key).Populate(&result.Containers); err != nil {
			return result, readError(key, err)
		}
	}
	key = "properties"
	if yaml.Get(key).HasValue() {
		if err = yaml.Get(key).Populate(&result.Properties); err != nil {
			return result, readError(key, err)
		}
	}
	key = "statusType"
	result.StatusType = yaml.Get(key).String()
	key = "phone"
	if yaml.Get(key).HasValue() {
		if err = yaml.Get(key).Populate(&result.Phone); err != nil {
			return result, readError(key, err)
		}
	}
	key = "multiSelectCompare"
	result.MultiSelectCompare = yaml.Get(key).String()
	key = "notify"
	if yaml.Get(key).HasValue() {
		if err = yaml.Get(key).Populate(&result.Notify); err != nil {
			return result, readError(key, err)
		}
	}

	applyDefaults(&result)
	return result, result.Validate()
}

// LoadConfigFromFiles opens each path and delegates to LoadConfig.
func LoadConfigFromFiles(paths ...string) (Config, error) {
	var readers []io.Reader
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to open config file %w", err)
		}
		closers = append(closers, f)
		readers = append(readers, f)
	}
	return LoadConfig(readers...)
}

func applyDefaults(cfg *Config) {
	if cfg.API.Endpoints.Notion == "" {
		cfg.API.Endpoints.Notion = "https://api.notion.com"
	}
	if cfg.API.Endpoints.RDStation == "" {
		cfg.API.Endpoints.RDStation = "https://crm.rdstation.com"
	}
	if cfg.API.Endpoints.BotConversa == "" {
		cfg.API.Endpoints.BotConversa = "https://backend.botconversa.com.br"
	}
	if len(cfg.Containers) == 0 {
		cfg.Containers = []string{"deal_custom_fields", "custom_fields", "fields"}
	}
	if cfg.Properties.Name == "" {
		cfg.Properties.Name = "Nome (Completar)"
	}
	if cfg.Properties.ExternalID == "" {
		cfg.Properties.ExternalID = "ID (RD Station)"
	}
	if cfg.Properties.Phone == "" {
		cfg.Properties.Phone = "Telefone"
	}
	if cfg.Properties.Status == "" {
		cfg.Properties.Status = "Status"
	}
	if cfg.StatusType == "" {
		cfg.StatusType = "multi_select"
	}
	if cfg.Phone.Strategy == "" {
		cfg.Phone.Strategy = string(PhoneStrategyE164)
	}
	if cfg.Phone.Country == "" {
		cfg.Phone.Country = "Brazil"
	}
	if cfg.MultiSelectCompare == "" {
		cfg.MultiSelectCompare = string(MultiSelectJoined)
	}
	if cfg.Notify.DelaySeconds == 0 {
		cfg.Notify.DelaySeconds = 1
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if len(c.Stages) == 0 {
		return fmt.Errorf("config requires at least one stage mapping")
	}
	switch c.StatusType {
	case "select", "multi_select":
	default:
		return fmt.Errorf("invalid statusType %q, expected select or multi_select", c.StatusType)
	}
	switch PhoneStrategy(c.Phone.Strategy) {
	case PhoneStrategyE164, PhoneStrategyDigits:
	default:
		return fmt.Errorf("invalid phone strategy %q, expected e164 or digits", c.Phone.Strategy)
	}
	switch MultiSelectMode(c.MultiSelectCompare) {
	case MultiSelectJoined, MultiSelectFirst:
	default:
		return fmt.Errorf("invalid multiSelectCompare %q, expected joined or first", c.MultiSelectCompare)
	}
	seen := map[string]string{}
	for fieldID, mapping := range c.Fields {
		if mapping.Name == "" || mapping.Type == "" {
			return fmt.Errorf("field mapping %s requires a name and a type", fieldID)
		}
		if other, exists := seen[mapping.Name]; exists {
			return fmt.Errorf("fields %s and %s both map to property %q", other, fieldID, mapping.Name)
		}
		seen[mapping.Name] = fieldID
	}
	return nil
}
