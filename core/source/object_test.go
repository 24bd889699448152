package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rangeClient is a storage.Client fake serving one object with real Range
// semantics, so the ranged-GET restart path is exercised for real.
type rangeClient struct {
	data    string
	gets    int
	statErr error
}

func (c *rangeClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return true, nil
}

func (c *rangeClient) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return nil
}

func (c *rangeClient) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return minio.UploadInfo{}, nil
}

func (c *rangeClient) GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	c.gets++
	body := c.data
	if r := opts.Header().Get("Range"); r != "" {
		var start int64
		if _, err := fmt.Sscanf(r, "bytes=%d-", &start); err != nil {
			return nil, err
		}
		if start > int64(len(body)) {
			start = int64(len(body))
		}
		body = body[start:]
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (c *rangeClient) StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if c.statErr != nil {
		return minio.ObjectInfo{}, c.statErr
	}
	return minio.ObjectInfo{Key: object, Size: int64(len(c.data))}, nil
}

func ndjsonFixture(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `{"id":"id-%03d","value":%d,"updated_at":"t%d"}`+"\n", i, i, i)
	}
	return b.String()
}

func TestObjectSource_Count(t *testing.T) {
	client := &rangeClient{data: ndjsonFixture(5) + "\n\n"} // trailing blank lines ignored
	src := NewObject("source", client, "datasets", "accounts.ndjson", "id")

	n, err := src.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestObjectSource_CountMissingObject(t *testing.T) {
	client := &rangeClient{statErr: errors.New("The specified key does not exist")}
	src := NewObject("source", client, "datasets", "accounts.ndjson", "id")

	_, err := src.Count(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stat object accounts.ndjson")
	// The failure comes from metadata alone; no stream was opened.
	assert.Zero(t, client.gets)
}

func TestObjectSource_CountEmptyObject(t *testing.T) {
	client := &rangeClient{data: ""}
	src := NewObject("source", client, "datasets", "accounts.ndjson", "id")

	n, err := src.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, client.gets)
}

func TestObjectSource_Paging(t *testing.T) {
	client := &rangeClient{data: ndjsonFixture(5)}
	src := NewObject("source", client, "datasets", "accounts.ndjson", "id")
	ctx := context.Background()
	exclude := map[string]struct{}{"updated_at": {}}

	page, err := src.Page(ctx, exclude, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "id-000", page[0]["id"])
	assert.NotContains(t, page[0], "updated_at")

	// The second page resumes from the memoized byte offset via a ranged GET.
	page, err = src.Page(ctx, exclude, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "id-002", page[0]["id"])

	page, err = src.Page(ctx, exclude, 4, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "id-004", page[0]["id"])

	page, err = src.Page(ctx, exclude, 5, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestObjectSource_NumbersKeepExactText(t *testing.T) {
	client := &rangeClient{data: `{"id":"1","amount":1.50}` + "\n"}
	src := NewObject("source", client, "datasets", "amounts.ndjson", "id")

	page, err := src.Page(context.Background(), nil, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	// json.Number, not float64
	assert.Equal(t, "1.50", fmt.Sprintf("%v", page[0]["amount"]))
}

func TestObjectSource_MalformedLine(t *testing.T) {
	client := &rangeClient{data: `{"id":"1"}` + "\n" + "{not json\n"}
	src := NewObject("source", client, "datasets", "accounts.ndjson", "id")

	_, err := src.Page(context.Background(), nil, 0, 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
}

func TestObjectSource_DistinctIDs(t *testing.T) {
	client := &rangeClient{data: ndjsonFixture(3)}
	src := NewObject("target", client, "datasets", "accounts.ndjson", "id")

	ids, err := src.DistinctIDs(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.Contains(t, ids, "id-002")
}
