package aws

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/diillson/ticket-region-reports/internal/domain/repository"
)

// S3PutObjectAPI é o subconjunto do cliente S3 usado aqui.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// STSCallerIdentityAPI é o subconjunto do cliente STS usado aqui.
type STSCallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// AWSRepositoryImpl implementa o StorageRepository com cache de clientes.
type AWSRepositoryImpl struct {
	cfgCache    map[string]aws.Config
	clientCache map[string]interface{}
	mu          sync.Mutex
}

// NewAWSRepository cria uma nova implementação do StorageRepository.
func NewAWSRepository() repository.StorageRepository {
	return &AWSRepositoryImpl{
		cfgCache:    make(map[string]aws.Config),
		clientCache: make(map[string]interface{}),
	}
}

func (r *AWSRepositoryImpl) getAWSConfig(ctx context.Context, profile string) (aws.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg, ok := r.cfgCache[profile]; ok {
		return cfg, nil
	}

	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for profile %s: %w", profile, err)
	}

	r.cfgCache[profile] = cfg
	return cfg, nil
}

func (r *AWSRepositoryImpl) getServiceClient(ctx context.Context, profile, service string) (interface{}, error) {
	cacheKey := fmt.Sprintf("%s-%s", profile, service)

	r.mu.Lock()
	if client, ok := r.clientCache[cacheKey]; ok {
		r.mu.Unlock()
		return client, nil
	}
	r.mu.Unlock()

	cfg, err := r.getAWSConfig(ctx, profile)
	if err != nil {
		return nil, err
	}

	var client interface{}
	switch service {
	case "sts":
		client = sts.NewFromConfig(cfg)
	case "s3":
		client = s3.NewFromConfig(cfg)
	default:
		return nil, fmt.Errorf("unsupported service: %s", service)
	}

	r.mu.Lock()
	r.clientCache[cacheKey] = client
	r.mu.Unlock()

	return client, nil
}

// SetClient registers a pre-built client, mainly for tests.
func (r *AWSRepositoryImpl) SetClient(profile, service string, client interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clientCache[fmt.Sprintf("%s-%s", profile, service)] = client
}

// GetAccountID devolve a conta das credenciais em uso.
func (r *AWSRepositoryImpl) GetAccountID(ctx context.Context, profile string) (string, error) {
	client, err := r.getServiceClient(ctx, profile, "sts")
	if err != nil {
		return "", err
	}
	stsClient, ok := client.(STSCallerIdentityAPI)
	if !ok {
		return "", fmt.Errorf("unexpected STS client type %T", client)
	}

	output, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %w", err)
	}

	return aws.ToString(output.Account), nil
}

// Upload envia o arquivo local para s3://bucket/key e devolve a URI.
func (r *AWSRepositoryImpl) Upload(ctx context.Context, profile, bucket, key, localPath, contentType string) (string, error) {
	client, err := r.getServiceClient(ctx, profile, "s3")
	if err != nil {
		return "", err
	}
	s3Client, ok := client.(S3PutObjectAPI)
	if !ok {
		return "", fmt.Errorf("unexpected S3 client type %T", client)
	}

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("error opening %s for upload: %w", localPath, err)
	}
	defer file.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s3Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", key, bucket, err)
	}

	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}
