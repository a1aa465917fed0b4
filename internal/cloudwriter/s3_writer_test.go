package cloudwriter

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts map[string][]byte
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func TestS3WriterUploadsOnClose(t *testing.T) {
	client := &fakeS3{puts: map[string][]byte{}}
	factory := NewS3WriterFactoryWithClient(client)

	w, err := factory.NewWriter(context.Background(), "bucket", "exports/forecasts.parquet")
	require.NoError(t, err)
	_, err = w.Write([]byte("PAR1"))
	require.NoError(t, err)
	_, err = w.Write([]byte("body"))
	require.NoError(t, err)
	assert.Empty(t, client.puts)

	require.NoError(t, w.Close())
	assert.Equal(t, []byte("PAR1body"), client.puts["bucket/exports/forecasts.parquet"])

	require.NoError(t, w.Close())
	_, err = w.Write([]byte("late"))
	assert.Error(t, err)
}

func TestS3WriterReportsUploadFailure(t *testing.T) {
	boom := errors.New("access denied")
	factory := NewS3WriterFactoryWithClient(&fakeS3{err: boom})

	w, err := factory.NewWriter(context.Background(), "bucket", "key")
	require.NoError(t, err)
	assert.ErrorIs(t, w.Close(), boom)

	_, err = factory.NewWriter(context.Background(), "", "key")
	assert.Error(t, err)
}
