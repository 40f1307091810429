package testutil

import (
	"context"
	"testing"
	"time"

	wmsaws "github.com/USSTM/wms-backend/internal/aws"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	"github.com/testcontainers/testcontainers-go/wait"
)

const TestBucket = "wms-test-refdata"

type TestLocalStack struct {
	Container *localstack.LocalStackContainer
	Config    aws.Config
	S3        *s3.Client
	Service   *wmsaws.S3Service
}

func NewTestLocalStack(t *testing.T) *TestLocalStack {
	ctx := context.Background()

	container, err := localstack.Run(ctx,
		"localstack/localstack:3.0",
		testcontainers.WithReuseByName("wms-backend-test-localstack"),
		testcontainers.CustomizeRequest(testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Env: map[string]string{
					"SERVICES": "s3",
				},
			},
		}),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("Ready.").
					WithOccurrence(1).
					WithStartupTimeout(60*time.Second),
				wait.ForListeningPort("4566/tcp").
					WithStartupTimeout(60*time.Second),
			),
		),
	)
	require.NoError(t, err, "Failed to start LocalStack container")

	endpoint, err := container.PortEndpoint(ctx, "4566/tcp", "http")
	require.NoError(t, err, "Failed to get LocalStack endpoint")

	credentialsProvider := aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     "test",
			SecretAccessKey: "test",
			SessionToken:    "test",
			Source:          "HardcodedCredentials",
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentialsProvider),
	)
	require.NoError(t, err, "Failed to load AWS config")

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	service := wmsaws.NewS3ServiceWithClient(s3Client, TestBucket)
	if err := service.CreateBucket(ctx); err != nil {
		t.Logf("S3 bucket creation attempted: %v", err)
	}

	ls := &TestLocalStack{
		Container: container,
		Config:    cfg,
		S3:        s3Client,
		Service:   service,
	}

	t.Cleanup(func() {
		ls.Close()
	})

	return ls
}

func (ls *TestLocalStack) Close() {
	if ls.Container != nil {
		ls.Container.Terminate(context.Background())
	}
}

// Cleanup empties the test bucket between tests
func (ls *TestLocalStack) Cleanup(t *testing.T) {
	ctx := context.Background()

	names, err := ls.Service.ListDocuments(ctx)
	if err != nil {
		t.Logf("Failed to list documents: %v", err)
		return
	}
	for _, name := range names {
		_, err := ls.S3.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(TestBucket),
			Key:    aws.String("refdata/" + name),
		})
		if err != nil {
			t.Logf("Failed to delete %s: %v", name, err)
		}
	}
}
