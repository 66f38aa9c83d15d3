package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lactacare/internal/domain"
	"lactacare/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// ObjectPutter is the slice of the S3 API the archiver needs; *s3.Client implements it
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type ContainerLister interface {
	List(ctx context.Context, filter repository.ContainerFilter) ([]*domain.Container, error)
}

type ReservationLister interface {
	List(ctx context.Context, filter repository.ReservationFilter) ([]*domain.Reservation, error)
}

type AlertLister interface {
	LoadAll(ctx context.Context) ([]domain.AlertRecord, error)
}

// S3Config selects the bucket; Endpoint enables S3-compatible stores such as MinIO
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string
}

// NewS3Client builds a client from the default credential chain
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Snapshot is the archived state of the custody core at one instant
type Snapshot struct {
	TakenAt      time.Time             `json:"taken_at"`
	Containers   []*domain.Container   `json:"containers"`
	Reservations []*domain.Reservation `json:"reservations"`
	Alerts       []domain.AlertRecord  `json:"alerts"`
}

// Archiver uploads JSON snapshots of containers, reservations and alerts
type Archiver struct {
	putter       ObjectPutter
	bucket       string
	containers   ContainerLister
	reservations ReservationLister
	alerts       AlertLister
	logger       *zap.Logger
}

func NewArchiver(putter ObjectPutter, bucket string, containers ContainerLister, reservations ReservationLister, alerts AlertLister, logger *zap.Logger) *Archiver {
	return &Archiver{
		putter:       putter,
		bucket:       bucket,
		containers:   containers,
		reservations: reservations,
		alerts:       alerts,
		logger:       logger,
	}
}

func (a *Archiver) Snapshot(ctx context.Context, now time.Time) (*Snapshot, error) {
	containers, err := a.containers.List(ctx, repository.ContainerFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	reservations, err := a.reservations.List(ctx, repository.ReservationFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	alerts, err := a.alerts.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return &Snapshot{
		TakenAt:      now.UTC(),
		Containers:   containers,
		Reservations: reservations,
		Alerts:       alerts,
	}, nil
}

// Key is the object key of the snapshot taken at now
func Key(now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("snapshots/%s/lactacare-%s.json", now.Format("2006/01/02"), now.Format("20060102T150405Z"))
}

// Run takes a snapshot and uploads it, returning the object key
func (a *Archiver) Run(ctx context.Context, now time.Time) (string, error) {
	snapshot, err := a.Snapshot(ctx, now)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	key := Key(now)
	_, err = a.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"containers":   fmt.Sprint(len(snapshot.Containers)),
			"reservations": fmt.Sprint(len(snapshot.Reservations)),
			"alerts":       fmt.Sprint(len(snapshot.Alerts)),
		},
	})
	if err != nil {
		a.logger.Error("Failed to upload snapshot", zap.String("bucket", a.bucket), zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to upload snapshot: %w", err)
	}

	a.logger.Info("📦 Snapshot archived",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
		zap.Int("containers", len(snapshot.Containers)),
		zap.Int("reservations", len(snapshot.Reservations)),
		zap.Int("alerts", len(snapshot.Alerts)),
	)
	return key, nil
}
