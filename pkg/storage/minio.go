// Package storage 는 FAQ 코퍼스 오브젝트 스토리지(MinIO) 접근을 제공한다.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/black940514/chatbot-project/internal/config"
	"github.com/black940514/chatbot-project/pkg/log"
)

// MinioClient 는 전역 MinIO 클라이언트 인스턴스다.
var MinioClient *minio.Client

// InitMinIO 는 MinIO 클라이언트를 초기화하고 버킷 존재를 보장한다.
func InitMinIO(cfg config.MinIOConfig) {
	var err error

	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatal("MinIO 클라이언트 초기화 실패", err)
	}

	log.Info("MinIO 클라이언트 초기화 완료")

	ctx := context.Background()
	bucketName := cfg.BucketName
	exists, err := MinioClient.BucketExists(ctx, bucketName)
	if err != nil {
		log.Fatal("MinIO 버킷 확인 실패", err)
	}

	if !exists {
		log.Infof("버킷 '%s' 없음, 생성 중...", bucketName)
		if err := MinioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			log.Fatal("MinIO 버킷 생성 실패", err)
		}
		log.Infof("버킷 '%s' 생성 완료", bucketName)
	} else {
		log.Infof("버킷 '%s' 이미 존재", bucketName)
	}
}

// FetchObject 는 오브젝트 전체 내용을 메모리로 읽어 반환한다.
// 코퍼스 JSON 파일 크기를 가정한 단순 구현이다.
func FetchObject(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	object, err := MinioClient.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("MinIO 오브젝트 조회 실패: %w", err)
	}
	defer object.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(object); err != nil {
		return nil, fmt.Errorf("MinIO 오브젝트 읽기 실패: %w", err)
	}
	return buf.Bytes(), nil
}
