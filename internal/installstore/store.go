// Package installstore keeps the tool's persistent environment state in a
// BoltDB file: the Unity editor installations it knows about (a small keyed
// CRUD store plus the "most suitable editor for this project" lookup) and
// the list of tracked projects.
package installstore

import (
	"encoding/json"
	"os"
	"time"

	"github.com/boltdb/bolt"
	"github.com/jmank88/nuts"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/CirnoV/vrc-get/vps"
)

var bucketInstallations = []byte("unityInstallations")

// ErrAlreadyExists reports an Add for a path already on record.
var ErrAlreadyExists = errors.New("unity installation already registered")

// Installation is one editor record. ID is assigned by the store.
type Installation struct {
	ID            uint64 `json:"-"`
	Path          string `json:"path"`
	Version       string `json:"version"`
	LoadedFromHub bool   `json:"loadedFromHub"`
}

// UnityVersion parses the recorded version, or returns false when the
// record predates version probing.
func (i Installation) UnityVersion() (vps.UnityVersion, bool) {
	v, err := vps.ParseUnityVersion(i.Version)
	if err != nil {
		return vps.UnityVersion{}, false
	}
	return v, true
}

// Store is a BoltDB-backed installation store. Access methods are safe for
// concurrent use with each other, excluding Close.
type Store struct {
	db     *bolt.DB
	logger *logrus.Logger
}

// Open opens or creates the store file.
func Open(path string, logger *logrus.Logger) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening installation store %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketInstallations, bucketProjects} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initializing installation store")
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases all database resources. Must not be called concurrently
// with any other method.
func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "closing installation store")
}

// Add records a new installation, assigning its ID. Paths are unique; a
// duplicate yields ErrAlreadyExists.
func (s *Store) Add(inst *Installation) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketInstallations)

		dup := false
		err := b.ForEach(func(_, v []byte) error {
			var existing Installation
			if err := json.Unmarshal(v, &existing); err == nil && existing.Path == inst.Path {
				dup = true
			}
			return nil
		})
		if err != nil {
			return err
		}
		if dup {
			return errors.Wrap(ErrAlreadyExists, inst.Path)
		}

		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		inst.ID = id

		data, err := json.Marshal(inst)
		if err != nil {
			return err
		}
		return b.Put(idKey(id), data)
	})
}

// Update rewrites an existing record in place.
func (s *Store) Update(inst Installation) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketInstallations)
		if b.Get(idKey(inst.ID)) == nil {
			return errors.Errorf("no installation with id %d", inst.ID)
		}
		data, err := json.Marshal(inst)
		if err != nil {
			return err
		}
		return b.Put(idKey(inst.ID), data)
	})
}

// Remove deletes the record with the given ID. Removing an absent ID is a
// no-op.
func (s *Store) Remove(id uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketInstallations).Delete(idKey(id))
	})
}

// List returns every recorded installation in insertion order.
func (s *Store) List() ([]Installation, error) {
	var out []Installation
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketInstallations).ForEach(func(k, v []byte) error {
			var inst Installation
			if err := json.Unmarshal(v, &inst); err != nil {
				s.logger.WithError(err).Warn("Skipping corrupt installation record")
				return nil
			}
			inst.ID = decodeID(k)
			out = append(out, inst)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing installations")
	}
	return out, nil
}

// SyncFromHub reconciles the records against the editor paths the Unity
// Hub reports. Records whose binary no longer exists on disk are removed,
// and the hub flag is rewritten where it disagrees with the hub's list.
// Hub paths not yet on record are returned for the caller to probe and Add.
func (s *Store) SyncFromHub(hubPaths []string) ([]string, error) {
	fromHub := make(map[string]bool, len(hubPaths))
	for _, p := range hubPaths {
		fromHub[p] = true
	}

	installations, err := s.List()
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(installations))
	for _, inst := range installations {
		if _, err := os.Stat(inst.Path); err != nil {
			s.logger.WithField("path", inst.Path).Info("Removing Unity editor that no longer exists")
			if err := s.Remove(inst.ID); err != nil {
				return nil, err
			}
			continue
		}
		known[inst.Path] = true

		if inHub := fromHub[inst.Path]; inHub != inst.LoadedFromHub {
			inst.LoadedFromHub = inHub
			if err := s.Update(inst); err != nil {
				return nil, err
			}
		}
	}

	var added []string
	for _, p := range hubPaths {
		if !known[p] {
			added = append(added, p)
		}
	}
	return added, nil
}

// FindMostSuitable picks the recorded editor best matching the expected
// version: an exact match wins, then same major+minor+revision, then same
// major+minor, then same major.
func (s *Store) FindMostSuitable(expected vps.UnityVersion) (*Installation, error) {
	installations, err := s.List()
	if err != nil {
		return nil, err
	}

	var revisionMatch, minorMatch, majorMatch *Installation

	for i := range installations {
		inst := installations[i]
		v, ok := inst.UnityVersion()
		if !ok {
			continue
		}

		if v == expected {
			return &inst, nil
		}
		if v.Major() != expected.Major() {
			continue
		}
		if v.Minor() == expected.Minor() {
			if v.Revision() == expected.Revision() {
				revisionMatch = &inst
			} else {
				minorMatch = &inst
			}
		} else {
			majorMatch = &inst
		}
	}

	if revisionMatch != nil {
		return revisionMatch, nil
	}
	if minorMatch != nil {
		return minorMatch, nil
	}
	return majorMatch, nil
}

// idKey encodes IDs as fixed-width big-endian keys so bucket iteration
// follows insertion order.
func idKey(id uint64) []byte {
	key := make(nuts.Key, 8)
	key.Put(id)
	return key
}

func decodeID(k []byte) uint64 {
	var id uint64
	for _, b := range k {
		id = id<<8 | uint64(b)
	}
	return id
}
