package filestore

import (
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"

	"github.com/memeboard/memeboard-backend/model"
)

// S3FileStore stores blobs in a single S3 bucket. The blob path is the
// object key, so Get/Delete work directly off Content columns.
type S3FileStore struct {
	bucket   string
	uploader *s3manager.Uploader
	svc      *s3.S3
}

func NewS3FileStore(bucket, region string) (*S3FileStore, error) {
	// AWS client session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	return &S3FileStore{
		bucket:   bucket,
		uploader: s3manager.NewUploader(sess),
		svc:      s3.New(sess),
	}, nil
}

func (s *S3FileStore) PutBytes(key string, r io.Reader) (string, error) {
	_, err := s.uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return "", errors.Wrapf(model.ErrStorageIO, "fail to upload %s to s3: %v", key, err)
	}
	return key, nil
}

func (s *S3FileStore) GetBytes(path string) (io.ReadCloser, error) {
	out, err := s.svc.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, errors.Wrapf(model.ErrNotFound, "s3 object %s", path)
		}
		return nil, errors.Wrapf(model.ErrStorageIO, "fail to get %s from s3: %v", path, err)
	}
	return out.Body, nil
}

func (s *S3FileStore) DeleteBytes(path string) error {
	if !s.IsKeyExisted(path) {
		return errors.Wrapf(model.ErrNotFound, "s3 object %s", path)
	}
	_, err := s.svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return errors.Wrapf(model.ErrStorageIO, "fail to delete %s from s3: %v", path, err)
	}
	return nil
}

func (s *S3FileStore) IsKeyExisted(key string) bool {
	_, err := s.svc.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err == nil
}

var _ FileStore = &S3FileStore{}
