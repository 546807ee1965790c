package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Private files are stored as raw, authenticated assets: they have no public
// delivery URL and can only be fetched through a signed download link.
const (
	resourceType = "raw"
	deliveryType = "authenticated"
)

// ErrNotConfigured is returned when Cloudinary credentials are missing.
var ErrNotConfigured = errors.New("document storage is not configured")

// StorageService keeps private documents.
type StorageService interface {
	UploadPrivate(ctx context.Context, r io.Reader, folder, name string) (*StoredFile, error)
	Delete(ctx context.Context, publicID string) error
	SignedURL(publicID string, ttl time.Duration) (string, error)
}

type StoredFile struct {
	PublicID string
	Bytes    int
}

// assetAPI is satisfied by *uploader.API.
type assetAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStorage implements StorageService.
type CloudinaryStorage struct {
	assets    assetAPI
	cloudName string
	apiKey    string
	apiSecret string
	now       func() time.Time
}

// NewCloudinaryStorage builds the storage from account credentials.
func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) (*CloudinaryStorage, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, ErrNotConfigured
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &CloudinaryStorage{
		assets:    &cld.Upload,
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		now:       time.Now,
	}, nil
}

// UploadPrivate stores r under folder/name and returns the Cloudinary public ID.
func (s *CloudinaryStorage) UploadPrivate(ctx context.Context, r io.Reader, folder, name string) (*StoredFile, error) {
	res, err := s.assets.Upload(ctx, r, uploader.UploadParams{
		Folder:       folder,
		PublicID:     name,
		Type:         deliveryType,
		ResourceType: resourceType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload file: %s", res.Error.Message)
	}
	return &StoredFile{PublicID: res.PublicID, Bytes: res.Bytes}, nil
}

// Delete removes a stored file by its public ID.
func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	res, err := s.assets.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		Type:         deliveryType,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("failed to delete file: %s", res.Error.Message)
	}
	return nil
}

// SignedURL returns a private download link that stops working after ttl.
// expires_at is sent as Unix seconds, which the download endpoint expects.
func (s *CloudinaryStorage) SignedURL(publicID string, ttl time.Duration) (string, error) {
	if s.cloudName == "" || s.apiSecret == "" {
		return "", ErrNotConfigured
	}
	now := s.now()
	params := url.Values{}
	params.Set("public_id", publicID)
	params.Set("type", deliveryType)
	params.Set("timestamp", strconv.FormatInt(now.Unix(), 10))
	params.Set("expires_at", strconv.FormatInt(now.Add(ttl).Unix(), 10))
	signature, err := api.SignParameters(params, s.apiSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign download url: %w", err)
	}
	params.Set("signature", signature)
	params.Set("api_key", s.apiKey)

	return fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/%s/download?%s",
		s.cloudName, resourceType, params.Encode()), nil
}
