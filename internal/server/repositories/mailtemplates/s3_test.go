package mailtemplates

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/shopaccounts/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	gotBucket string
	gotKey    string
	body      string
	err       error
}

func (f *fakeGetter) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gotBucket = aws.ToString(in.Bucket)
	f.gotKey = aws.ToString(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestS3Find_Found(t *testing.T) {
	g := &fakeGetter{body: `{"subject":"Welcome","content":"Hello {{.Login}}"}`}
	repo := NewS3Repository(g, "mail", "templates")

	got, err := repo.FindByNameAndLocale(context.Background(), "userRegistration", "en")
	require.NoError(t, err)

	assert.Equal(t, "mail", g.gotBucket)
	assert.Equal(t, "templates/userRegistration/en.json", g.gotKey)
	assert.Equal(t, "Welcome", got.Subject)
	assert.Equal(t, "Hello {{.Login}}", got.Content)
	assert.Equal(t, "en", got.Locale)
}

func TestS3Find_NoSuchKey(t *testing.T) {
	repo := NewS3Repository(&fakeGetter{err: &types.NoSuchKey{}}, "mail", "")

	_, err := repo.FindByNameAndLocale(context.Background(), "userRegistration", "de")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestS3Find_Errors(t *testing.T) {
	_, err := NewS3Repository(&fakeGetter{err: errors.New("timeout")}, "mail", "").
		FindByNameAndLocale(context.Background(), "userRegistration", "en")
	assert.ErrorContains(t, err, "s3 error: timeout")

	_, err = NewS3Repository(&fakeGetter{body: "{not json"}, "mail", "").
		FindByNameAndLocale(context.Background(), "userRegistration", "en")
	assert.ErrorContains(t, err, "template userRegistration/en")
}

func TestNewS3Client_AppliesOptions(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minioadmin", creds.AccessKeyID)
		return aws.Config{Region: lo.Region}, nil
	}

	c, err := NewS3Client(context.Background(), S3Options{
		Region: "us-east-1", AccessKey: "minioadmin", SecretKey: "minioadmin", BaseEndpoint: "http://127.0.0.1:9000",
	})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(c.Options().BaseEndpoint))
	assert.True(t, c.Options().UsePathStyle)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}
	_, err = NewS3Client(context.Background(), S3Options{})
	assert.ErrorContains(t, err, "aws config: no creds")
}
