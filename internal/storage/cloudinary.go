package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const uploadFolder = "lumo-service-uploads"

// Cloudinary uploads assets through the Cloudinary REST API using signed
// requests.
type Cloudinary struct {
	cloudName string
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
}

// NewCloudinary constructs a Cloudinary storage client.
func NewCloudinary(cloudName, apiKey, apiSecret string) *Cloudinary {
	return &Cloudinary{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   "https://api.cloudinary.com",
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Cloudinary) Store(ctx context.Context, name string, data []byte) (StoredAsset, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := c.sign(map[string]string{
		"folder":    uploadFolder,
		"timestamp": timestamp,
	})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return StoredAsset{}, err
	}
	if _, err := part.Write(data); err != nil {
		return StoredAsset{}, err
	}
	for key, value := range map[string]string{
		"api_key":   c.apiKey,
		"timestamp": timestamp,
		"folder":    uploadFolder,
		"signature": signature,
	} {
		if err := writer.WriteField(key, value); err != nil {
			return StoredAsset{}, err
		}
	}
	if err := writer.Close(); err != nil {
		return StoredAsset{}, err
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return StoredAsset{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return StoredAsset{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return StoredAsset{}, err
	}

	var parsed struct {
		SecureURL string `json:"secure_url"`
		PublicID  string `json:"public_id"`
		Error     *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return StoredAsset{}, fmt.Errorf("cloudinary: unexpected response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices || parsed.SecureURL == "" {
		message := "upload failed"
		if parsed.Error != nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
		}
		return StoredAsset{}, fmt.Errorf("cloudinary: %s", message)
	}

	return StoredAsset{URL: parsed.SecureURL, StorageID: parsed.PublicID}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, storageID string) error {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := c.sign(map[string]string{
		"public_id": storageID,
		"timestamp": timestamp,
	})

	form := url.Values{
		"public_id": {storageID},
		"timestamp": {timestamp},
		"api_key":   {c.apiKey},
		"signature": {signature},
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/destroy", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var parsed struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("cloudinary: unexpected response: %w", err)
	}

	if parsed.Result != "ok" && parsed.Result != "not found" {
		return fmt.Errorf("cloudinary: destroy failed: %s", parsed.Result)
	}

	return nil
}

// sign produces the Cloudinary request signature: SHA-1 over the sorted
// key=value pairs joined with '&', followed by the API secret.
func (c *Cloudinary) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}
