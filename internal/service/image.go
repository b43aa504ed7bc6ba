package service

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/mealsnap/backend/config"
)

// ImageService stores captured meal photos in S3 so entries can reference a
// durable URL instead of a device-local path.
type ImageService struct {
	s3Config *config.S3Config
	prep     *ImagePrepService
}

func NewImageService(s3Config *config.S3Config, prep *ImagePrepService) *ImageService {
	return &ImageService{
		s3Config: s3Config,
		prep:     prep,
	}
}

// UploadMealPhoto resizes and re-encodes the photo, uploads it under a fresh
// key and returns the public URL.
func (s *ImageService) UploadMealPhoto(ctx context.Context, userID uuid.UUID, imageData []byte) (string, error) {
	optimized := s.prep.Optimize(imageData)
	fileName := fmt.Sprintf("meal-photos/%s/%s.jpg", userID, uuid.New())
	return s.uploadToS3(ctx, optimized, fileName)
}

func (s *ImageService) uploadToS3(ctx context.Context, imageData []byte, fileName string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageService] uploaded meal photo to %s", publicURL)

	return publicURL, nil
}
