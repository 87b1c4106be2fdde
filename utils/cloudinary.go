package utils

import (
	"fmt"

	"m3allem/config"

	"github.com/cloudinary/cloudinary-go/v2"
)

// NewCloudinary builds a Cloudinary client from the configured credentials.
func NewCloudinary() (*cloudinary.Cloudinary, error) {
	cloudName := config.AppConfig.CloudinaryCloudName
	apiKey := config.AppConfig.CloudinaryAPIKey
	apiSecret := config.AppConfig.CloudinaryAPISecret

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("utils.NewCloudinary: failed to initialize Cloudinary: %w", err)
	}
	return cld, nil
}
