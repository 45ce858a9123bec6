package adapters

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"recycle_portal_backend/internal/adapters/storage"
	"recycle_portal_backend/internal/counteroffers/domain"
	"recycle_portal_backend/internal/counteroffers/service"

	"github.com/rwcarlsen/goexif/exif"
)

const evidenceFolder = "counter-offers"

// CounterOfferEvidenceStore stores counter-offer photos in object storage.
type CounterOfferEvidenceStore struct {
	storage storage.StorageService
	bucket  string
	now     func() time.Time
}

// NewCounterOfferEvidenceStore creates an evidence store on the given bucket.
func NewCounterOfferEvidenceStore(svc storage.StorageService, bucket string) *CounterOfferEvidenceStore {
	return &CounterOfferEvidenceStore{
		storage: svc,
		bucket:  bucket,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Upload writes the photo and returns its public URL and object key.
func (s *CounterOfferEvidenceStore) Upload(ctx context.Context, file service.EvidenceUpload) (domain.Evidence, error) {
	if err := s.storage.ValidateContentType(file.ContentType); err != nil {
		return domain.Evidence{}, err
	}
	size := int64(len(file.Data))
	if err := s.storage.ValidateFileSize(size); err != nil {
		return domain.Evidence{}, err
	}

	folder := fmt.Sprintf("%s/%s", evidenceFolder, s.now().Format("2006/01"))
	key, err := s.storage.UploadFile(ctx, s.bucket, folder, file.FileName, file.ContentType,
		bytes.NewReader(file.Data), size, photoMetadata(file.Data))
	if err != nil {
		return domain.Evidence{}, err
	}

	return domain.Evidence{
		URL:        s.storage.ObjectURL(s.bucket, key),
		EvidenceID: key,
	}, nil
}

// photoMetadata records when and with what camera a photo was taken, when
// the image carries EXIF data. Photos without it get no metadata.
func photoMetadata(data []byte) map[string]string {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	meta := make(map[string]string)
	if taken, err := x.DateTime(); err == nil {
		meta["captured-at"] = taken.UTC().Format(time.RFC3339)
	}
	for key, field := range map[string]exif.FieldName{"camera-make": exif.Make, "camera-model": exif.Model} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		if v, err := tag.StringVal(); err == nil && strings.TrimSpace(v) != "" {
			meta[key] = strings.TrimSpace(v)
		}
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

var _ service.EvidenceStore = (*CounterOfferEvidenceStore)(nil)
