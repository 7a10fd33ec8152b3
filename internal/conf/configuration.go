package conf

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	defaultVersion = "1"

	// DefaultRPCURL is the public OP Mainnet endpoint.
	DefaultRPCURL  = "https://mainnet.optimism.io"
	DefaultChainID = 10
)

// APIConfiguration holds the HTTP listener configuration.
type APIConfiguration struct {
	Host               string
	Port               string        `envconfig:"PORT" default:"9998"`
	RequestIDHeader    string        `envconfig:"REQUEST_ID_HEADER"`
	MaxRequestDuration time.Duration `json:"max_request_duration" split_words:"true" default:"10s"`
}

func (a *APIConfiguration) Validate() error {
	if a.MaxRequestDuration <= 0 {
		return errors.New("conf: API max request duration must be positive")
	}
	return nil
}

// ChainConfiguration holds the RPC endpoint used to read wallet contracts.
type ChainConfiguration struct {
	RPCURL        string        `json:"rpc_url" envconfig:"RPC_URL"`
	ID            int64         `json:"id"`
	VerifyChainID bool          `json:"verify_chain_id" split_words:"true" default:"false"`
	DialTimeout   time.Duration `json:"dial_timeout" split_words:"true" default:"5s"`
}

func (c *ChainConfiguration) Validate() error {
	u, err := url.ParseRequestURI(c.RPCURL)
	if err != nil {
		return err
	}

	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return errors.New("conf: chain RPC URL must use http(s) or ws(s)")
	}

	if c.ID <= 0 {
		return errors.New("conf: chain ID must be positive")
	}
	return nil
}

// MessageConfiguration holds the values written into issued challenges.
type MessageConfiguration struct {
	Domain    string        `json:"domain" required:"true"`
	URI       string        `json:"uri" required:"true"`
	Scheme    string        `json:"scheme"`
	Statement string        `json:"statement"`
	Version   string        `json:"version"`
	Validity  time.Duration `json:"validity" default:"5m"`
}

func (m *MessageConfiguration) Validate() error {
	if strings.TrimSpace(m.Domain) == "" {
		return errors.New("conf: message domain must not be empty")
	}
	if strings.Contains(m.Statement, "\n") {
		return errors.New("conf: message statement must be a single line")
	}
	if _, err := url.ParseRequestURI(m.URI); err != nil {
		return err
	}
	if m.Validity < 0 {
		return errors.New("conf: message validity must not be negative")
	}
	return nil
}

// NonceConfiguration holds the key that signs issued nonces. Instances behind
// the same load balancer must share it.
type NonceConfiguration struct {
	Secret string        `json:"-"`
	TTL    time.Duration `json:"ttl" default:"10m"`
}

func (n *NonceConfiguration) Validate() error {
	if n.TTL <= 0 {
		return errors.New("conf: nonce TTL must be positive")
	}
	if n.Secret != "" && len(n.Secret) < 32 {
		return errors.New("conf: nonce secret must be at least 32 characters")
	}
	return nil
}

// GlobalConfiguration holds all the configuration that applies to all instances.
type GlobalConfiguration struct {
	API             APIConfiguration
	Chain           ChainConfiguration
	Message         MessageConfiguration
	Nonce           NonceConfiguration
	Logging         LoggingConfig `envconfig:"LOG"`
	Tracing         TracingConfig
	Metrics         MetricsConfig
	RateLimitHeader string  `split_words:"true"`
	RateLimitVerify float64 `split_words:"true" default:"30"`
	RateLimitNonce  float64 `split_words:"true" default:"60"`

	CORS CORSConfiguration `json:"cors"`
}

type CORSConfiguration struct {
	AllowedHeaders []string `json:"allowed_headers" split_words:"true"`
}

func (c *CORSConfiguration) AllAllowedHeaders(defaults []string) []string {
	set := make(map[string]bool)
	for _, header := range defaults {
		set[header] = true
	}

	var result []string
	result = append(result, defaults...)

	for _, header := range c.AllowedHeaders {
		if !set[header] {
			result = append(result, header)
		}

		set[header] = true
	}

	return result
}

func loadEnvironment(filename string) error {
	var err error
	if filename != "" {
		err = godotenv.Overload(filename)
	} else {
		err = godotenv.Load()
		// handle if .env file does not exist, this is OK
		if os.IsNotExist(err) {
			return nil
		}
	}
	return err
}

// LoadGlobal loads configuration from the environment, after applying the
// optional env file.
func LoadGlobal(filename string) (*GlobalConfiguration, error) {
	if err := loadEnvironment(filename); err != nil {
		return nil, err
	}

	config := new(GlobalConfiguration)
	if err := envconfig.Process("siwe", config); err != nil {
		return nil, err
	}

	if err := config.ApplyDefaults(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadChain loads only the chain section. Commands that never issue messages
// use it so the message settings are not required.
func LoadChain(filename string) (*ChainConfiguration, error) {
	if err := loadEnvironment(filename); err != nil {
		return nil, err
	}

	config := new(ChainConfiguration)
	if err := envconfig.Process("siwe_chain", config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *ChainConfiguration) applyDefaults() {
	if c.RPCURL == "" {
		c.RPCURL = DefaultRPCURL
	}
	if c.ID == 0 {
		c.ID = DefaultChainID
	}
}

// ApplyDefaults sets defaults for a GlobalConfiguration
func (config *GlobalConfiguration) ApplyDefaults() error {
	config.Chain.applyDefaults()

	if config.Message.Version == "" {
		config.Message.Version = defaultVersion
	}

	if config.Message.Scheme == "" {
		if u, err := url.Parse(config.Message.URI); err == nil && u.Scheme != "https" {
			config.Message.Scheme = u.Scheme
		}
	}

	if config.Logging.Fields == nil {
		config.Logging.Fields = map[string]string{}
	}

	return nil
}

// Validate validates all of configuration.
func (c *GlobalConfiguration) Validate() error {
	validatables := []interface {
		Validate() error
	}{
		&c.API,
		&c.Chain,
		&c.Message,
		&c.Nonce,
		&c.Tracing,
		&c.Metrics,
	}

	for _, validatable := range validatables {
		if err := validatable.Validate(); err != nil {
			return err
		}
	}

	if c.RateLimitVerify <= 0 || c.RateLimitNonce <= 0 {
		return errors.New("conf: rate limits must be positive")
	}

	return nil
}
