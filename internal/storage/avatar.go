package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
	"golang.org/x/image/draw"

	"github.com/salonworks/booking-api/internal/config"
	"github.com/salonworks/booking-api/internal/httperr"
)

const (
	maxAvatarEdge  = 512
	avatarQuality  = 85
	maxUploadBytes = 5 << 20
)

// AvatarStore normalizes profile images to webp and keeps them in S3.
// A nil store is valid and means uploads are disabled.
type AvatarStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewAvatarStore returns nil when no bucket is configured.
func NewAvatarStore(cfg *config.Config) *AvatarStore {
	if cfg.S3Bucket == "" {
		return nil
	}

	client := s3.New(s3.Options{
		Region: cfg.S3Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				cfg.S3AccessKey,
				cfg.S3SecretKey,
				"",
			),
		),
	})

	baseURL := cfg.S3BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf(
			"https://%s.s3.%s.amazonaws.com",
			cfg.S3Bucket,
			cfg.S3Region,
		)
	}

	return &AvatarStore{
		client:  client,
		bucket:  cfg.S3Bucket,
		baseURL: baseURL,
	}
}

func (s *AvatarStore) Enabled() bool {
	return s != nil && s.client != nil
}

// Upload decodes a jpeg or png, downscales the long edge to 512px and
// stores the webp under a per-user key. Returns the public URL.
func (s *AvatarStore) Upload(
	ctx context.Context,
	userID string,
	r io.Reader,
) (string, error) {

	if !s.Enabled() {
		return "", httperr.ErrBusiness("uploads_disabled")
	}

	src, _, err := image.Decode(io.LimitReader(r, maxUploadBytes))
	if err != nil {
		return "", httperr.ErrBusiness("invalid_image")
	}

	scaled := downscale(src, maxAvatarEdge)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, scaled, &webp.Options{Quality: avatarQuality}); err != nil {
		return "", err
	}

	key := fmt.Sprintf("avatars/%s.webp", userID)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("image/webp"),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

func downscale(src image.Image, maxEdge int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxEdge && h <= maxEdge {
		return src
	}

	if w >= h {
		h = h * maxEdge / w
		w = maxEdge
	} else {
		w = w * maxEdge / h
		h = maxEdge
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
