package installstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

var bucketProjects = []byte("projects")

// ErrProjectExists reports an AddProject for a path already on record.
var ErrProjectExists = errors.New("project already registered")

// ProjectType classifies a tracked project by the SDK its manifest pulls
// in. The legacy and UPM variants cover projects created before VPM; this
// tool only ever assigns the VPM variants but keeps the full set so records
// written by the Creator Companion read back intact.
type ProjectType int

const (
	ProjectUnknown ProjectType = iota
	ProjectLegacySDK2
	ProjectLegacyWorlds
	ProjectLegacyAvatars
	ProjectUpmWorlds
	ProjectUpmAvatars
	ProjectUpmStarter
	ProjectWorlds
	ProjectAvatars
	ProjectVpmStarter
)

func (t ProjectType) String() string {
	switch t {
	case ProjectUnknown:
		return "Unknown"
	case ProjectLegacySDK2:
		return "Legacy SDK2"
	case ProjectLegacyWorlds:
		return "Legacy Worlds"
	case ProjectLegacyAvatars:
		return "Legacy Avatars"
	case ProjectUpmWorlds:
		return "UPM Worlds"
	case ProjectUpmAvatars:
		return "UPM Avatars"
	case ProjectUpmStarter:
		return "UPM Starter"
	case ProjectWorlds:
		return "Worlds"
	case ProjectAvatars:
		return "Avatars"
	case ProjectVpmStarter:
		return "VPM Starter"
	default:
		return fmt.Sprintf("Unexpected(%d)", int(t))
	}
}

// ProjectRecord is one tracked project. Timestamps are milliseconds since
// the Unix epoch. ID is assigned by the store.
type ProjectRecord struct {
	ID           uint64      `json:"-"`
	Path         string      `json:"path"`
	UnityVersion string      `json:"unityVersion,omitempty"`
	Type         ProjectType `json:"type"`
	Favorite     bool        `json:"favorite"`
	CreatedAt    int64       `json:"createdAt"`
	UpdatedAt    int64       `json:"updatedAt"`
}

// AddProject records a new tracked project, assigning its ID and stamping
// its timestamps. Paths are unique; a duplicate yields ErrProjectExists.
func (s *Store) AddProject(rec *ProjectRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProjects)

		dup := false
		err := b.ForEach(func(_, v []byte) error {
			var existing ProjectRecord
			if err := json.Unmarshal(v, &existing); err == nil && existing.Path == rec.Path {
				dup = true
			}
			return nil
		})
		if err != nil {
			return err
		}
		if dup {
			return errors.Wrap(ErrProjectExists, rec.Path)
		}

		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		rec.ID = id

		now := time.Now().UnixMilli()
		if rec.CreatedAt == 0 {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(idKey(id), data)
	})
}

// ListProjects returns every tracked project in insertion order.
func (s *Store) ListProjects() ([]ProjectRecord, error) {
	var out []ProjectRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketProjects).ForEach(func(k, v []byte) error {
			var rec ProjectRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				s.logger.WithError(err).Warn("Skipping corrupt project record")
				return nil
			}
			rec.ID = decodeID(k)
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing projects")
	}
	return out, nil
}

// RemoveProject deletes the record with the given ID. Removing an absent ID
// is a no-op.
func (s *Store) RemoveProject(id uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketProjects).Delete(idKey(id))
	})
}

// SetFavorite flips the favorite flag on an existing record and touches its
// updated timestamp.
func (s *Store) SetFavorite(id uint64, favorite bool) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProjects)
		data := b.Get(idKey(id))
		if data == nil {
			return errors.Errorf("no project with id %d", id)
		}
		var rec ProjectRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return errors.Wrapf(err, "decoding project %d", id)
		}
		rec.Favorite = favorite
		rec.UpdatedAt = time.Now().UnixMilli()
		out, err := json.Marshal(&rec)
		if err != nil {
			return err
		}
		return b.Put(idKey(id), out)
	})
}
