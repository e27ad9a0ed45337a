package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

// Kind selects one of the managed content documents.
type Kind string

const (
	KindCalendar Kind = "calendar"
	KindMenu     Kind = "menu"
	KindOGP      Kind = "ogp"
)

// Kinds lists every managed content kind.
var Kinds = []Kind{KindCalendar, KindMenu, KindOGP}

// ParseKind validates a raw kind string from a request path.
func ParseKind(raw string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == raw {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
}

var (
	// ErrUnknownKind is returned for a kind outside the managed set.
	ErrUnknownKind = errors.New("unknown content kind")
	// ErrNotFound is returned when no document or object exists for a key.
	ErrNotFound = errors.New("content not found")
	// ErrInvalidJSON is returned when a content payload does not parse.
	ErrInvalidJSON = errors.New("content is not valid JSON")
)

const (
	bucketContent   = "content"
	bucketImages    = "images"
	bucketImageMeta = "imagemeta"

	// DefaultMaxImagesPerKind bounds stored images per kind; the oldest
	// are pruned when the cap is exceeded.
	DefaultMaxImagesPerKind = 10
)

// ObjectInfo is the metadata record kept alongside each uploaded image.
type ObjectInfo struct {
	Key         string
	Kind        string
	ContentType string
	Size        int64
	UploadedAt  time.Time
}

// Store is a bbolt-backed content and image store.
type Store struct {
	db        *bolt.DB
	maxImages int
	now       func() time.Time
}

// Open opens (or creates) the content database at dataDir/content.db.
// maxImagesPerKind <= 0 takes [DefaultMaxImagesPerKind].
func Open(dataDir string, maxImagesPerKind int) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dataDir, "content.db")
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt at %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketContent, bucketImages, bucketImageMeta} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	if maxImagesPerKind <= 0 {
		maxImagesPerKind = DefaultMaxImagesPerKind
	}

	return &Store{db: db, maxImages: maxImagesPerKind, now: time.Now}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetContent returns the raw JSON document for kind.
func (s *Store) GetContent(kind Kind) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketContent)).Get([]byte(kind))
		if v == nil {
			return ErrNotFound
		}
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

// PutContent replaces the JSON document for kind. The payload must be valid
// JSON; it is stored byte-for-byte otherwise.
func (s *Store) PutContent(kind Kind, data []byte) error {
	if !json.Valid(data) {
		return ErrInvalidJSON
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketContent)).Put([]byte(kind), data)
	})
}

// PutImage stores an uploaded image under a fresh UUID key and prunes the
// kind's oldest images beyond the retention cap in the same transaction.
func (s *Store) PutImage(kind Kind, contentType string, data []byte) (string, error) {
	key := uuid.NewString()
	info := ObjectInfo{
		Key:         key,
		Kind:        string(kind),
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedAt:  s.now().UTC(),
	}
	meta, err := msgpack.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("marshal ObjectInfo: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(bucketImages)).Put([]byte(key), data); err != nil {
			return err
		}
		if err := tx.Bucket([]byte(bucketImageMeta)).Put([]byte(key), meta); err != nil {
			return err
		}
		return s.pruneLocked(tx, kind)
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// GetImage returns an image's bytes and content type by key.
func (s *Store) GetImage(key string) ([]byte, string, error) {
	var (
		data        []byte
		contentType string
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketImages)).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		data = append([]byte(nil), v...)

		if m := tx.Bucket([]byte(bucketImageMeta)).Get([]byte(key)); m != nil {
			var info ObjectInfo
			if err := msgpack.Unmarshal(m, &info); err != nil {
				return fmt.Errorf("unmarshal ObjectInfo for %s: %w", key, err)
			}
			contentType = info.ContentType
		}
		return nil
	})
	return data, contentType, err
}

// ListImages returns metadata for a kind's stored images, newest first.
func (s *Store) ListImages(kind Kind) ([]ObjectInfo, error) {
	var infos []ObjectInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		var innerErr error
		infos, innerErr = imagesOfKind(tx, kind)
		return innerErr
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UploadedAt.After(infos[j].UploadedAt)
	})
	return infos, nil
}

// DeleteImage removes an image and its metadata. Idempotent.
func (s *Store) DeleteImage(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(bucketImages)).Delete([]byte(key)); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketImageMeta)).Delete([]byte(key))
	})
}

func (s *Store) pruneLocked(tx *bolt.Tx, kind Kind) error {
	infos, err := imagesOfKind(tx, kind)
	if err != nil {
		return err
	}
	if len(infos) <= s.maxImages {
		return nil
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UploadedAt.Before(infos[j].UploadedAt)
	})

	for _, victim := range infos[:len(infos)-s.maxImages] {
		if err := tx.Bucket([]byte(bucketImages)).Delete([]byte(victim.Key)); err != nil {
			return err
		}
		if err := tx.Bucket([]byte(bucketImageMeta)).Delete([]byte(victim.Key)); err != nil {
			return err
		}
	}
	return nil
}

func imagesOfKind(tx *bolt.Tx, kind Kind) ([]ObjectInfo, error) {
	var infos []ObjectInfo
	err := tx.Bucket([]byte(bucketImageMeta)).ForEach(func(k, v []byte) error {
		var info ObjectInfo
		if err := msgpack.Unmarshal(v, &info); err != nil {
			return fmt.Errorf("unmarshal ObjectInfo for %s: %w", k, err)
		}
		if info.Kind == string(kind) {
			infos = append(infos, info)
		}
		return nil
	})
	return infos, err
}
