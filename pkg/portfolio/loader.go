package portfolio

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrMissingSection is returned when a required top-level section is absent.
var ErrMissingSection = errors.New("missing required section")

// RequiredSections lists the top-level keys every portfolio document must carry.
//
//nolint:gochecknoglobals // fixed schema contract
var RequiredSections = []string{
	"personal",
	"education",
	"experience",
	"skills",
	"projects",
	"social",
	"entryLevel",
	"personality",
}

// maxDocumentBytes caps remote documents.
const maxDocumentBytes = 4 << 20

// Load reads a portfolio document from a file path or http(s) URL.
// JSON and YAML documents are both accepted.
func Load(ctx context.Context, source string) (cfg Config, err error) {
	var raw []byte
	raw, err = fetch(ctx, source)
	if err != nil {
		return cfg, err
	}

	cfg, err = Parse(raw)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse portfolio document: %s", source)
		return cfg, err
	}

	return cfg, err
}

// LoadOrFallback loads the document and substitutes Fallback() on any failure.
// The loaded result reports which one the caller got.
func LoadOrFallback(ctx context.Context, source string, logger *slog.Logger) (cfg Config, loaded bool) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := Load(ctx, source)
	if err != nil {
		logger.Error("failed to load portfolio configuration, using fallback", "source", source, "error", err)
		cfg = Fallback()
		return cfg, false
	}

	logger.Info("loaded portfolio configuration", "source", source, "name", cfg.Personal.Name,
		"projects", len(cfg.Projects), "experience", len(cfg.Experience))
	return cfg, true
}

// Parse decodes a JSON or YAML document, checks the required sections and
// normalizes the result.
func Parse(raw []byte) (cfg Config, err error) {
	var data []byte
	data, err = toJSON(raw)
	if err != nil {
		return cfg, err
	}

	for _, section := range RequiredSections {
		value := gjson.GetBytes(data, section)
		if !value.Exists() || value.Type == gjson.Null {
			err = errors.Wrapf(ErrMissingSection, "section %q", section)
			return cfg, err
		}
	}

	err = json.Unmarshal(data, &cfg)
	if err != nil {
		err = errors.Wrap(err, "failed to decode portfolio document")
		return cfg, err
	}

	Normalize(&cfg)

	return cfg, err
}

// toJSON returns raw unchanged if it is JSON, otherwise converts YAML to JSON.
func toJSON(raw []byte) (data []byte, err error) {
	if gjson.ValidBytes(raw) {
		data = raw
		return data, err
	}

	var doc map[string]interface{}
	err = yaml.Unmarshal(raw, &doc)
	if err != nil {
		err = errors.Wrap(err, "document is neither valid JSON nor YAML")
		return data, err
	}

	if doc == nil {
		err = errors.New("document is empty")
		return data, err
	}

	data, err = json.Marshal(doc)
	if err != nil {
		err = errors.Wrap(err, "failed to convert YAML document")
		return data, err
	}

	return data, err
}

// fetch retrieves the document from a URL or from disk.
func fetch(ctx context.Context, source string) (data []byte, err error) {
	if source == "" {
		err = errors.New("portfolio source is required")
		return data, err
	}

	parsedURL, urlErr := url.Parse(source)
	if urlErr == nil && (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") {
		data, err = fetchFromURL(ctx, source)
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch portfolio from URL: %s", source)
			return data, err
		}
		return data, err
	}

	data, err = os.ReadFile(source)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Errorf("portfolio file not found: %s", source)
			return data, err
		}
		err = errors.Wrapf(err, "failed to read portfolio file: %s", source)
		return data, err
	}

	if len(data) == 0 {
		err = errors.Errorf("portfolio file is empty: %s", source)
		return data, err
	}

	return data, err
}

func fetchFromURL(ctx context.Context, urlStr string) (data []byte, err error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return data, err
	}

	req.Header.Set("User-Agent", "portfolio-assistant/1.0")

	var resp *http.Response
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return data, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("HTTP request failed with status: %d", resp.StatusCode)
		return data, err
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return data, err
	}

	if len(data) == 0 {
		err = errors.New("fetched document is empty")
		return data, err
	}

	return data, err
}
