// internal/matching/media.go

package matching

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"golang.org/x/sync/errgroup"
)

// MediaURLProvider turns a stored media reference into a URL clients can fetch
type MediaURLProvider interface {
	URL(ctx context.Context, ref string) (string, error)
}

// LocalMediaURLProvider serves media from the API host
type LocalMediaURLProvider struct {
	baseURL string
}

// NewLocalMediaURLProvider creates a provider that prefixes refs with baseURL
func NewLocalMediaURLProvider(baseURL string) *LocalMediaURLProvider {
	return &LocalMediaURLProvider{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (p *LocalMediaURLProvider) URL(ctx context.Context, ref string) (string, error) {
	if isAbsoluteURL(ref) {
		return ref, nil
	}
	return p.baseURL + "/uploads/" + strings.TrimPrefix(ref, "/"), nil
}

// S3MediaURLProvider presigns GET requests for objects in a bucket
type S3MediaURLProvider struct {
	s3Client *s3.S3
	bucket   string
	baseURL  string
	expiry   time.Duration
}

// NewS3MediaURLProvider creates a presigning provider for bucket
func NewS3MediaURLProvider(sess *session.Session, bucket, region string, expiry time.Duration) *S3MediaURLProvider {
	return &S3MediaURLProvider{
		s3Client: s3.New(sess),
		bucket:   bucket,
		baseURL:  fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region),
		expiry:   expiry,
	}
}

// NewS3Session creates an AWS session for region
func NewS3Session(region string) (*session.Session, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return sess, nil
}

// URL accepts either an object key or a previously issued bucket URL
func (p *S3MediaURLProvider) URL(ctx context.Context, ref string) (string, error) {
	key := ref
	if isAbsoluteURL(ref) {
		if !strings.HasPrefix(ref, p.baseURL+"/") {
			return ref, nil
		}
		key = strings.TrimPrefix(ref, p.baseURL+"/")
		// drop the query of an expired presigned URL
		if i := strings.IndexByte(key, '?'); i >= 0 {
			key = key[:i]
		}
	}

	req, _ := p.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)

	url, err := req.Presign(p.expiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return url, nil
}

func isAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

const mediaRefreshConcurrency = 8

// refreshMedia rewrites photo URLs of each result in place. A failed photo
// keeps its stored URL.
func refreshMedia(ctx context.Context, provider MediaURLProvider, results []PropertyMatchResult) {
	if provider == nil || len(results) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mediaRefreshConcurrency)

	for i := range results {
		if results[i].Property == nil || len(results[i].Property.Photos) == 0 {
			continue
		}

		// copy so repository-owned structs are never mutated
		p := *results[i].Property
		p.Photos = append([]string(nil), p.Photos...)
		results[i].Property = &p

		g.Go(func() error {
			for j, ref := range p.Photos {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				url, err := provider.URL(gctx, ref)
				if err != nil {
					mediaRefreshFailures.Inc()
					log.Printf("Failed to refresh media for property %s: %v", p.ID, err)
					continue
				}
				p.Photos[j] = url
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("Media refresh interrupted: %v", err)
	}
}
