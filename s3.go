package main

import (
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// plotStore uploads rendered plots to a bucket and hands out presigned links.
type plotStore struct {
	svc      *s3.S3
	uploader *s3manager.Uploader
	bucket   string
}

func newPlotStore(sess *session.Session, bucket string) *plotStore {
	return &plotStore{
		svc:      s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   bucket,
	}
}

func (s *plotStore) bucketExists() (bool, error) {
	list, err := s.svc.ListBuckets(nil)
	if err != nil {
		return false, fmt.Errorf("could not list buckets: %w", err)
	}
	for _, bucket := range list.Buckets {
		if aws.StringValue(bucket.Name) == s.bucket {
			return true, nil
		}
	}
	return false, nil
}

// ensureBucket creates the bucket unless it already exists.
func (s *plotStore) ensureBucket() error {
	exists, err := s.bucketExists()
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = s.svc.CreateBucket(&s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("unable to create bucket %q: %w", s.bucket, err)
	}

	fmt.Printf("Waiting for bucket %q to be created...\n", s.bucket)
	err = s.svc.WaitUntilBucketExists(&s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("error occurred while waiting for bucket %q to be created: %w", s.bucket, err)
	}

	fmt.Printf("Bucket %q successfully created\n", s.bucket)
	return nil
}

// upload stores body under a dated key and returns a link valid for an hour.
func (s *plotStore) upload(name string, body io.Reader) (string, error) {
	location := objectKey(time.Now(), name)
	_, err := s.uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(location),
		Body:   body,
	})
	if err != nil {
		return "", fmt.Errorf("error occurred while uploading %s: %w", name, err)
	}

	req, _ := s.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(location),
	})
	urlStr, err := req.Presign(1 * time.Hour)
	if err != nil {
		return "", fmt.Errorf("failed to sign request for %s: %w", location, err)
	}
	return urlStr, nil
}

func objectKey(now time.Time, name string) string {
	return now.Format("2006-01-02") + " " + name
}
