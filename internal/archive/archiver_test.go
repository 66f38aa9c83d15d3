package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"lactacare/internal/domain"
	"lactacare/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (p *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	p.body = body
	return &s3.PutObjectOutput{}, nil
}

var at = time.Date(2024, 3, 5, 3, 0, 0, 0, time.UTC)

func seeded(t *testing.T) (*repository.InMemoryContainerRepository, *repository.InMemoryReservationRepository, *repository.InMemoryAlertStore) {
	t.Helper()
	ctx := context.Background()
	containers := repository.NewContainerRepository()
	reservations := repository.NewReservationRepository()
	alerts := repository.NewAlertStore()

	c, err := domain.NewContainer(90, domain.Frozen, "patient-1", at, at)
	require.NoError(t, err)
	require.NoError(t, containers.Create(ctx, c))

	r, err := domain.NewReservation("patient-1", "sala-1", at.AddDate(0, 0, 1), 9*60, 10*60, at)
	require.NoError(t, err)
	require.NoError(t, reservations.Create(ctx, r))

	require.NoError(t, alerts.Save(ctx, domain.AlertRecord{ID: 1, Kind: domain.AlertNearExpiry, SubjectID: c.ID, CreatedAt: at}))
	return containers, reservations, alerts
}

func TestArchiver_UploadsSnapshot(t *testing.T) {
	containers, reservations, alerts := seeded(t)
	putter := &fakePutter{}
	archiver := NewArchiver(putter, "lactacare-archive", containers, reservations, alerts, zap.NewNop())

	key, err := archiver.Run(context.Background(), at)
	require.NoError(t, err)

	assert.Equal(t, "snapshots/2024/03/05/lactacare-20240305T030000Z.json", key)
	assert.Equal(t, "lactacare-archive", aws.ToString(putter.input.Bucket))
	assert.Equal(t, key, aws.ToString(putter.input.Key))
	assert.Equal(t, "application/json", aws.ToString(putter.input.ContentType))
	assert.Equal(t, "1", putter.input.Metadata["containers"])

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(putter.body, &snapshot))
	assert.True(t, at.Equal(snapshot.TakenAt))
	assert.Len(t, snapshot.Containers, 1)
	assert.Len(t, snapshot.Reservations, 1)
	require.Len(t, snapshot.Alerts, 1)
	assert.Equal(t, domain.AlertNearExpiry, snapshot.Alerts[0].Kind)
}

func TestArchiver_UploadFailure(t *testing.T) {
	containers, reservations, alerts := seeded(t)
	putter := &fakePutter{err: errors.New("access denied")}
	archiver := NewArchiver(putter, "b", containers, reservations, alerts, zap.NewNop())

	_, err := archiver.Run(context.Background(), at)

	assert.ErrorContains(t, err, "access denied")
}
